package amplitude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/eventlake/amplitude-connector/pkg/amplitude/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate moq -rm -out ../test/client_mock.go . Client

type Client interface {
	WriteEvents(ctx context.Context, events []Event) (*UploadResult, error)
	BatchUploadEvents(ctx context.Context, events []Event) (*UploadResult, error)
	UpdateUserProperties(ctx context.Context, identifications []Identification) (*IdentifyResult, error)
	ExportEvents(ctx context.Context, start, end string) (*ExportResult, error)
	ReadUserProfile(ctx context.Context, userID, deviceID string, parameters ...RequestDecoratorFunc) (*UserProfileResult, error)
	Read(ctx context.Context, query string) ([]EventRecord, error)
	Capabilities() DriverCapabilities
	ListObjects() []string
	Fields(objectName string) (map[string]FieldSchema, error)
	Close()
}

const (
	// MaxBatchEventCount is the upper bound the batch endpoint puts on the
	// number of events in a single request.
	MaxBatchEventCount = 2000

	maxWritePayloadBytes = 1 * 1024 * 1024
	maxBatchPayloadBytes = 20 * 1024 * 1024

	userAgent = "amplitude-connector/1.0.0"
)

func APIKey(key string) func(*amplitudeClient) {
	return func(c *amplitudeClient) {
		c.apiKey = key
	}
}

func SecretKey(key string) func(*amplitudeClient) {
	return func(c *amplitudeClient) {
		c.secretKey = key
	}
}

func AccessToken(token string) func(*amplitudeClient) {
	return func(c *amplitudeClient) {
		c.accessToken = token
	}
}

func Region(region string) func(*amplitudeClient) {
	return func(c *amplitudeClient) {
		c.region = region
	}
}

func Timeout(timeout time.Duration) func(*amplitudeClient) {
	return func(c *amplitudeClient) {
		c.timeout = timeout
	}
}

func MaxRetries(count int) func(*amplitudeClient) {
	return func(c *amplitudeClient) {
		c.maxRetries = count
	}
}

func Debug(enabled string) func(*amplitudeClient) {
	return func(c *amplitudeClient) {
		c.debug = (enabled == "true")
	}
}

// Endpoints redirects all five API endpoints to a single base URL, for
// tests and local development against a stand in server.
func Endpoints(baseURL string) func(*amplitudeClient) {
	return func(c *amplitudeClient) {
		c.baseOverride = baseURL
	}
}

// NewClient creates a client from the supplied options. At least one of
// APIKey and AccessToken is required and construction fails before any
// network traffic when both are missing.
func NewClient(options ...func(*amplitudeClient)) (Client, error) {
	c := &amplitudeClient{
		region:     RegionStandard,
		timeout:    30 * time.Second,
		maxRetries: 3,
	}

	for _, option := range options {
		option(c)
	}

	if c.apiKey == "" && c.accessToken == "" {
		return nil, errors.NewAuthenticationError(
			"API key or access token required",
			map[string]any{"suggestion": "Set AMPLITUDE_API_KEY environment variable"},
		)
	}

	c.endpoints = endpointsForRegion(c.region)
	if c.baseOverride != "" {
		c.endpoints = endpointsForBase(c.baseOverride)
	}

	c.httpClient = &http.Client{
		Timeout: c.timeout,
		Transport: otelhttp.NewTransport(&retryRoundTripper{
			proxied:    http.DefaultTransport,
			maxRetries: c.maxRetries,
		}),
	}

	return c, nil
}

// NewClientFromEnv creates a client configured from the AMPLITUDE_*
// environment variables.
func NewClientFromEnv(ctx context.Context) (Client, error) {
	apiKey := env.GetVariableOrDefault(ctx, "AMPLITUDE_API_KEY", "")
	secretKey := env.GetVariableOrDefault(ctx, "AMPLITUDE_SECRET_KEY", "")
	accessToken := env.GetVariableOrDefault(ctx, "AMPLITUDE_ACCESS_TOKEN", "")

	if apiKey == "" && accessToken == "" {
		return nil, errors.NewAuthenticationError(
			"Missing Amplitude credentials. Set AMPLITUDE_API_KEY environment variable.",
			map[string]any{
				"env_vars":   []string{"AMPLITUDE_API_KEY", "AMPLITUDE_ACCESS_TOKEN"},
				"suggestion": "Set AMPLITUDE_API_KEY in your environment",
			},
		)
	}

	timeoutSeconds := env.GetVariableOrDefault(ctx, "AMPLITUDE_TIMEOUT", "30")
	timeout, err := strconv.Atoi(timeoutSeconds)
	if err != nil {
		return nil, errors.NewValidationError(
			"AMPLITUDE_TIMEOUT must be an integer number of seconds",
			map[string]any{"provided": timeoutSeconds},
		)
	}

	retryCount := env.GetVariableOrDefault(ctx, "AMPLITUDE_MAX_RETRIES", "3")
	maxRetries, err := strconv.Atoi(retryCount)
	if err != nil {
		return nil, errors.NewValidationError(
			"AMPLITUDE_MAX_RETRIES must be an integer",
			map[string]any{"provided": retryCount},
		)
	}

	return NewClient(
		APIKey(apiKey),
		SecretKey(secretKey),
		AccessToken(accessToken),
		Region(env.GetVariableOrDefault(ctx, "AMPLITUDE_REGION", RegionStandard)),
		Timeout(time.Duration(timeout)*time.Second),
		MaxRetries(maxRetries),
		Debug(env.GetVariableOrDefault(ctx, "AMPLITUDE_DEBUG", "false")),
		Endpoints(env.GetVariableOrDefault(ctx, "AMPLITUDE_BASE_URL", "")),
	)
}

const (
	TraceAttributeRegion     string = "amplitude-region"
	TraceAttributeEventCount string = "event-count"
)

var tracer = otel.Tracer("amplitude-client")

type amplitudeClient struct {
	apiKey       string
	secretKey    string
	accessToken  string
	region       string
	timeout      time.Duration
	maxRetries   int
	debug        bool
	baseOverride string
	endpoints    endpoints
	httpClient   *http.Client
}

type uploadRequest struct {
	APIKey string  `json:"api_key"`
	Events []Event `json:"events"`
}

func (c amplitudeClient) WriteEvents(ctx context.Context, events []Event) (*UploadResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, opWriteEvents.name,
		trace.WithAttributes(attribute.String(TraceAttributeRegion, c.region)),
		trace.WithAttributes(attribute.Int(TraceAttributeEventCount, len(events))),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if len(events) == 0 {
		err = errors.NewValidationError(
			"events must be a non-empty list",
			map[string]any{"suggestion": "Provide at least one event"},
		)
		return nil, err
	}

	payload, err := json.Marshal(uploadRequest{APIKey: c.apiKey, Events: events})
	if err != nil {
		err = fmt.Errorf("failed to serialize events: %s (%w)", err.Error(), errors.ErrDriver)
		return nil, err
	}

	if len(payload) > maxWritePayloadBytes {
		err = errors.NewPayloadTooLargeError(
			fmt.Sprintf("Payload exceeds 1MB limit (%d bytes)", len(payload)),
			map[string]any{
				"payload_size_bytes": len(payload),
				"max_size_bytes":     maxWritePayloadBytes,
				"events_count":       len(events),
				"suggestion":         "Reduce number of events or use BatchUploadEvents for larger payloads",
			},
		)
		return nil, err
	}

	response, responseBody, err := c.call(ctx, opWriteEvents, c.endpoints.httpAPI, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromResponse(response.StatusCode, response.Header.Get("Retry-After"), opWriteEvents.errContext, responseBody)
		return nil, err
	}

	return decodeUploadResult(opWriteEvents, responseBody)
}

func (c amplitudeClient) BatchUploadEvents(ctx context.Context, events []Event) (*UploadResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, opBatchUpload.name,
		trace.WithAttributes(attribute.String(TraceAttributeRegion, c.region)),
		trace.WithAttributes(attribute.Int(TraceAttributeEventCount, len(events))),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if len(events) == 0 {
		err = errors.NewValidationError(
			"events must be a non-empty list",
			map[string]any{"suggestion": "Provide at least one event"},
		)
		return nil, err
	}

	// the count cap is checked before serialization so an oversized batch
	// fails on count no matter how small its events are
	if len(events) > MaxBatchEventCount {
		err = errors.NewValidationError(
			fmt.Sprintf("Batch exceeds 2,000 event limit (%d events)", len(events)),
			map[string]any{
				"events_count": len(events),
				"max_events":   MaxBatchEventCount,
				"suggestion":   "Split into multiple BatchUploadEvents calls",
			},
		)
		return nil, err
	}

	payload, err := json.Marshal(uploadRequest{APIKey: c.apiKey, Events: events})
	if err != nil {
		err = fmt.Errorf("failed to serialize events: %s (%w)", err.Error(), errors.ErrDriver)
		return nil, err
	}

	if len(payload) > maxBatchPayloadBytes {
		err = errors.NewPayloadTooLargeError(
			fmt.Sprintf("Payload exceeds 20MB limit (%d bytes)", len(payload)),
			map[string]any{
				"payload_size_bytes": len(payload),
				"max_size_bytes":     maxBatchPayloadBytes,
				"events_count":       len(events),
				"suggestion":         "Reduce number of events",
			},
		)
		return nil, err
	}

	response, responseBody, err := c.call(ctx, opBatchUpload, c.endpoints.batch, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromResponse(response.StatusCode, response.Header.Get("Retry-After"), opBatchUpload.errContext, responseBody)
		return nil, err
	}

	return decodeUploadResult(opBatchUpload, responseBody)
}

func (c amplitudeClient) UpdateUserProperties(ctx context.Context, identifications []Identification) (*IdentifyResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, opIdentify.name,
		trace.WithAttributes(attribute.String(TraceAttributeRegion, c.region)),
		trace.WithAttributes(attribute.Int(TraceAttributeEventCount, len(identifications))),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if len(identifications) == 0 {
		err = errors.NewValidationError(
			"identification must be a non-empty list",
			map[string]any{"suggestion": "Provide at least one identification record"},
		)
		return nil, err
	}

	serialized, err := json.Marshal(identifications)
	if err != nil {
		err = fmt.Errorf("failed to serialize identification records: %s (%w)", err.Error(), errors.ErrDriver)
		return nil, err
	}

	form := url.Values{}
	form.Set("api_key", c.apiKey)
	form.Set("identification", string(serialized))

	response, responseBody, err := c.call(ctx, opIdentify, c.endpoints.identify, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromResponse(response.StatusCode, response.Header.Get("Retry-After"), opIdentify.errContext, responseBody)
		return nil, err
	}

	// the identify endpoint returns no body, so the result is synthesized
	// from the status code
	return &IdentifyResult{Success: true, StatusCode: response.StatusCode}, nil
}

func (c amplitudeClient) ExportEvents(ctx context.Context, start, end string) (*ExportResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, opExport.name,
		trace.WithAttributes(attribute.String(TraceAttributeRegion, c.region)),
		trace.WithAttributes(attribute.String("export-start", start)),
		trace.WithAttributes(attribute.String("export-end", end)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if c.apiKey == "" || c.secretKey == "" {
		err = errors.NewAuthenticationError(
			"Export API requires both API key and secret key. Set AMPLITUDE_API_KEY and AMPLITUDE_SECRET_KEY.",
			map[string]any{
				"api_key_set":    c.apiKey != "",
				"secret_key_set": c.secretKey != "",
			},
		)
		return nil, err
	}

	for _, window := range []struct{ label, value string }{{"start", start}, {"end", end}} {
		if !validExportTime(window.value) {
			err = errors.NewValidationError(
				fmt.Sprintf("Invalid %s time format. Expected YYYYMMDDTHH (e.g., 20250101T00)", window.label),
				map[string]any{"provided": window.value, "expected_format": "YYYYMMDDTHH"},
			)
			return nil, err
		}
	}

	endpoint := c.endpoints.export + "?" + url.Values{"start": {start}, "end": {end}}.Encode()

	response, responseBody, err := c.call(ctx, opExport, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromResponse(response.StatusCode, response.Header.Get("Retry-After"), opExport.errContext, responseBody)
		return nil, err
	}

	result, err := decodeExportArchive(ctx, response.Header.Get("Content-Type"), responseBody)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c amplitudeClient) ReadUserProfile(ctx context.Context, userID, deviceID string, parameters ...RequestDecoratorFunc) (*UserProfileResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, opProfile.name,
		trace.WithAttributes(attribute.String(TraceAttributeRegion, c.region)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if userID == "" && deviceID == "" {
		err = errors.NewValidationError(
			"user_id or device_id is required",
			map[string]any{"suggestion": "Provide at least user_id or device_id"},
		)
		return nil, err
	}

	params := make([]string, 0, 5)
	if userID != "" {
		params = append(params, "user_id="+url.QueryEscape(userID))
	}
	if deviceID != "" {
		params = append(params, "device_id="+url.QueryEscape(deviceID))
	}

	for _, rdf := range parameters {
		params = rdf(params)
	}

	response, responseBody, err := c.call(ctx, opProfile, c.endpoints.profile+"?"+strings.Join(params, "&"), nil)
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromResponse(response.StatusCode, response.Header.Get("Retry-After"), opProfile.errContext, responseBody)
		return nil, err
	}

	result := &UserProfileResult{}
	err = json.Unmarshal(responseBody, result)
	if err != nil {
		err = errors.NewConnectionError(
			fmt.Sprintf("%s returned invalid JSON", opProfile.api),
			map[string]any{"error": err.Error()},
		)
		return nil, err
	}

	return result, nil
}

// Read exists to satisfy the driver contract. The APIs expose no query
// language, so it always fails with a query syntax error pointing callers
// to ExportEvents and ReadUserProfile.
func (c amplitudeClient) Read(ctx context.Context, query string) ([]EventRecord, error) {
	return nil, errors.NewQuerySyntaxError(
		"Amplitude doesn't use query language. Use ExportEvents() or ReadUserProfile() instead.",
		map[string]any{"query": query},
	)
}

func (c amplitudeClient) Close() {
	c.httpClient.CloseIdleConnections()
}

func decodeUploadResult(op operation, body []byte) (*UploadResult, error) {
	result := &UploadResult{}

	err := json.Unmarshal(body, result)
	if err != nil {
		return nil, errors.NewConnectionError(
			fmt.Sprintf("%s returned invalid JSON", op.api),
			map[string]any{"error": err.Error()},
		)
	}

	return result, nil
}

func (c amplitudeClient) call(ctx context.Context, op operation, endpoint string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, op.method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrDriver)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	if op.contentType != "" {
		req.Header.Set("Content-Type", op.contentType)
	}

	// an api key takes precedence over an access token when both are set
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	}

	if op.auth == authBasic {
		req.SetBasicAuth(c.apiKey, c.secretKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if uerr, ok := err.(*url.Error); ok && uerr.Timeout() {
			details := map[string]any{"timeout": int(c.timeout.Seconds())}
			if op.timeoutHint != "" {
				details["suggestion"] = op.timeoutHint
			}
			return nil, nil, errors.NewTimeoutError(op.timeoutMsg, details)
		}

		return nil, nil, errors.NewConnectionError(
			fmt.Sprintf("failed to send request: %s", err.Error()),
			map[string]any{"context": op.errContext},
		)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.NewConnectionError(
			fmt.Sprintf("failed to read response body: %s", err.Error()),
			map[string]any{"context": op.errContext},
		)
	}

	if c.debug {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		if resp.StatusCode >= http.StatusBadRequest {
			log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
		} else {
			log.Debug("request completed", "request", string(reqbytes), "response", string(respbytes))
		}
	}

	return resp, respBody, nil
}

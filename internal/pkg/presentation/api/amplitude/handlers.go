package amplitude

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/eventlake/amplitude-connector/internal/pkg/application/eventstore"
	"github.com/eventlake/amplitude-connector/internal/pkg/presentation/api/amplitude/auth"
	apierrors "github.com/eventlake/amplitude-connector/internal/pkg/presentation/api/amplitude/errors"
	driver "github.com/eventlake/amplitude-connector/pkg/amplitude"
	amperrors "github.com/eventlake/amplitude-connector/pkg/amplitude/errors"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxWriteBodyBytes int64 = 1 * 1024 * 1024
	maxBatchBodyBytes int64 = 20 * 1024 * 1024

	exportTimeLayout = "20060102T15"
)

var tracer = otel.Tracer("amplitude-mock/api")

// RegisterHandlers hooks the five emulated endpoints into the router, using
// the same paths as the hosted service so that clients only need a base URL
// override to talk to this server instead.
func RegisterHandlers(ctx context.Context, r *chi.Mux, policies io.Reader, app eventstore.EventStore, accepted auth.Credentials) error {
	authenticator, err := auth.NewAuthenticator(ctx, policies, accepted)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	log := logging.GetFromContext(ctx)
	r.Use(Logger(log))

	r.Post("/2/httpapi", NewWriteEventsHandler(app, authenticator))
	r.Post("/batch", NewBatchUploadHandler(app, authenticator))
	r.Post("/identify", NewIdentifyHandler(app, authenticator))
	r.Get("/api/2/export", NewExportHandler(app, authenticator))
	r.Get("/v1/userprofile", NewUserProfileHandler(app, authenticator))

	return nil
}

// Logger stores a logger with the current trace id in the request context
// before passing the request on to the next handler.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type uploadRequest struct {
	APIKey string         `json:"api_key"`
	Events []driver.Event `json:"events"`
}

type uploadResponse struct {
	Code             int   `json:"code"`
	EventsIngested   int   `json:"events_ingested"`
	PayloadSizeBytes int   `json:"payload_size_bytes"`
	ServerUploadTime int64 `json:"server_upload_time"`
}

// NewWriteEventsHandler handles POST requests to the HTTP V2 ingestion
// endpoint.
func NewWriteEventsHandler(app eventstore.EventStore, authenticator auth.Enticator) http.HandlerFunc {
	return newIngestHandler(app, authenticator, "write-events", maxWriteBodyBytes, 0)
}

// NewBatchUploadHandler handles POST requests to the batch endpoint, which
// trades a larger payload ceiling for a hard cap on the event count.
func NewBatchUploadHandler(app eventstore.EventStore, authenticator auth.Enticator) http.HandlerFunc {
	return newIngestHandler(app, authenticator, "batch-upload-events", maxBatchBodyBytes, driver.MaxBatchEventCount)
}

func newIngestHandler(app eventstore.EventStore, authenticator auth.Enticator, spanName string, maxBytes int64, maxEvents int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), spanName)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
		if err != nil {
			apierrors.ReportInternalError(w, "failed to read request body")
			return
		}

		if int64(len(body)) > maxBytes {
			apierrors.ReportPayloadTooLarge(w, fmt.Sprintf("Payload exceeds %dMB limit", maxBytes/(1024*1024)))
			return
		}

		upload := &uploadRequest{}
		if err = json.Unmarshal(body, upload); err != nil {
			apierrors.ReportInvalidRequest(w, fmt.Sprintf("unable to decode request payload: %s", err.Error()))
			return
		}

		if err = authenticator.CheckAccess(ctx, r, auth.Credentials{APIKey: upload.APIKey}); err != nil {
			apierrors.ReportInvalidAPIKey(w)
			return
		}

		if len(upload.Events) == 0 {
			apierrors.ReportInvalidRequest(w, "events must be a non-empty list")
			return
		}

		if maxEvents > 0 && len(upload.Events) > maxEvents {
			apierrors.ReportInvalidRequest(w, fmt.Sprintf("Batch exceeds %d event limit (%d events)", maxEvents, len(upload.Events)))
			return
		}

		result, err := app.Ingest(ctx, upload.Events)
		if err != nil {
			reportStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, uploadResponse{
			Code:             http.StatusOK,
			EventsIngested:   result.EventsIngested,
			PayloadSizeBytes: len(body),
			ServerUploadTime: time.Now().UnixMilli(),
		})
	}
}

// NewIdentifyHandler handles form encoded POST requests to the identify
// endpoint. A successful update returns an empty 200 response, matching the
// hosted endpoint which signals success through the status alone.
func NewIdentifyHandler(app eventstore.EventStore, authenticator auth.Enticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "update-user-properties")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = r.ParseForm(); err != nil {
			apierrors.ReportInvalidRequest(w, fmt.Sprintf("unable to parse form data: %s", err.Error()))
			return
		}

		if err = authenticator.CheckAccess(ctx, r, auth.Credentials{APIKey: r.PostFormValue("api_key")}); err != nil {
			apierrors.ReportInvalidAPIKey(w)
			return
		}

		identifications := []driver.Identification{}
		if err = json.Unmarshal([]byte(r.PostFormValue("identification")), &identifications); err != nil {
			apierrors.ReportInvalidRequest(w, fmt.Sprintf("identification is not a valid JSON array: %s", err.Error()))
			return
		}

		if len(identifications) == 0 {
			apierrors.ReportInvalidRequest(w, "identification must be a non-empty list")
			return
		}

		if err = app.Identify(ctx, identifications); err != nil {
			reportStoreError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// NewExportHandler handles GET requests for raw event archives. The window
// bounds arrive as YYYYMMDDTHH strings and both edges are inclusive. The
// archive is compressed a second time on the way out when the client says
// that it accepts gzip.
func NewExportHandler(app eventstore.EventStore, authenticator auth.Enticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "export-events")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		apiKey, secretKey, ok := r.BasicAuth()
		if !ok {
			err = errors.New("missing basic auth credentials")
			apierrors.ReportInvalidAPIKey(w)
			return
		}

		if err = authenticator.CheckAccess(ctx, r, auth.Credentials{APIKey: apiKey, SecretKey: secretKey}); err != nil {
			apierrors.ReportInvalidAPIKey(w)
			return
		}

		start, err := time.Parse(exportTimeLayout, r.URL.Query().Get("start"))
		if err != nil {
			apierrors.ReportInvalidRequest(w, "Invalid start time format. Expected YYYYMMDDTHH (e.g., 20250101T00)")
			return
		}

		end, err := time.Parse(exportTimeLayout, r.URL.Query().Get("end"))
		if err != nil {
			apierrors.ReportInvalidRequest(w, "Invalid end time format. Expected YYYYMMDDTHH (e.g., 20250101T00)")
			return
		}

		archive, err := app.Export(ctx, start, end)
		if err != nil {
			reportStoreError(w, err)
			return
		}

		w.Header().Add("Content-Type", "application/zip")

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			w.Header().Add("Content-Encoding", "gzip")
			w.WriteHeader(http.StatusOK)

			gz := gzip.NewWriter(w)
			gz.Write(archive)
			gz.Close()
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write(archive)
	}
}

// NewUserProfileHandler handles GET requests for a single user profile.
// Optional profile sections are included only when the matching query flag
// is set to true.
func NewUserProfileHandler(app eventstore.EventStore, authenticator auth.Enticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "read-user-profile")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = authenticator.CheckAccess(ctx, r, credentialsFromHeader(r.Header.Get("Authorization"))); err != nil {
			apierrors.ReportInvalidAPIKey(w)
			return
		}

		query := r.URL.Query()

		userData, err := app.Profile(ctx, eventstore.ProfileQuery{
			UserID:          query.Get("user_id"),
			DeviceID:        query.Get("device_id"),
			AmpProps:        query.Get("get_amp_props") == "true",
			Recommendations: query.Get("get_recs") == "true",
			CohortIDs:       query.Get("get_cohort_ids") == "true",
		})
		if err != nil {
			reportStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, driver.UserProfileResult{UserData: *userData})
	}
}

// credentialsFromHeader splits an Authorization header on its scheme prefix.
// Bearer tokens and api keys share the header, so the scheme decides which
// credential was presented.
func credentialsFromHeader(authorization string) auth.Credentials {
	if key, ok := strings.CutPrefix(authorization, "Api-Key "); ok {
		return auth.Credentials{APIKey: key}
	}

	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return auth.Credentials{AccessToken: token}
	}

	return auth.Credentials{}
}

func reportStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, amperrors.ErrValidation):
		apierrors.ReportInvalidRequest(w, err.Error())
	case errors.Is(err, amperrors.ErrObjectNotFound):
		apierrors.ReportNotFound(w, err.Error())
	default:
		apierrors.ReportInternalError(w, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)

	b, err := json.Marshal(body)
	if err == nil {
		w.Write(b)
	}
}

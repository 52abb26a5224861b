package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/open-policy-agent/opa/rego"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("amplitude-mock/authz")

// Credentials carries the secrets a request presented, or the set the server
// accepts. Each endpoint transports them in a different part of the request,
// so the handlers extract them before asking for an access check.
type Credentials struct {
	APIKey      string
	SecretKey   string
	AccessToken string
}

type Enticator interface {
	CheckAccess(ctx context.Context, r *http.Request, credentials Credentials) error
}

func NewAuthenticator(ctx context.Context, policies io.Reader, accepted Credentials) (Enticator, error) {
	module, err := io.ReadAll(policies)
	if err != nil {
		return nil, fmt.Errorf("unable to read authz policies: %s", err.Error())
	}

	query, err := rego.New(
		rego.Query("x = data.amplitude.authz.allow"),
		rego.Module("amplitude.rego", string(module)),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}

	return &enticatorImpl{preparedQuery: query, accepted: accepted}, nil
}

type enticatorImpl struct {
	preparedQuery rego.PreparedEvalQuery
	accepted      Credentials
}

func (e *enticatorImpl) CheckAccess(ctx context.Context, r *http.Request, credentials Credentials) error {
	var err error
	ctx, span := tracer.Start(ctx, "check-access")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	input := map[string]any{
		"method":                r.Method,
		"path":                  strings.Split(r.URL.Path, "/")[1:],
		"api_key":               credentials.APIKey,
		"secret_key":            credentials.SecretKey,
		"access_token":          credentials.AccessToken,
		"accepted_api_key":      e.accepted.APIKey,
		"accepted_secret_key":   e.accepted.SecretKey,
		"accepted_access_token": e.accepted.AccessToken,
	}

	results, err := e.preparedQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		err = fmt.Errorf("opa eval failed: %w", err)
		return err
	}

	if len(results) == 0 {
		err = errors.New("auth failed: opa query could not be satisfied")
		return err
	}

	binding := results[0].Bindings["x"]

	// If authz fails we will get back a single bool. Check for that first.
	allowed, ok := binding.(bool)
	if ok && !allowed {
		err = errors.New("authorization failed")
		return err
	}

	// If authz succeeds we should expect a result object naming the
	// credential that matched
	result, ok := binding.(map[string]any)
	if !ok {
		err = fmt.Errorf("opa error: unexpected result type %T", binding)
		return err
	}

	if credential, ok := result["credential"].(string); ok {
		span.SetAttributes(attribute.String("credential", credential))
	}

	return nil
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/eventlake/amplitude-connector/internal/pkg/application/eventstore"
	"github.com/eventlake/amplitude-connector/internal/pkg/infrastructure/router"
	api "github.com/eventlake/amplitude-connector/internal/pkg/presentation/api/amplitude"
	"github.com/eventlake/amplitude-connector/internal/pkg/presentation/api/amplitude/auth"
)

const appName string = "amplitude-mock"

// defaultAuthzPolicy admits requests whose credentials match the configured
// ones. The export endpoint needs both keys, every other endpoint accepts
// the api key or a bearer token.
const defaultAuthzPolicy string = `
package amplitude.authz

default allow := false

allow = response {
	not requires_secret_key
	input.api_key != ""
	input.api_key == input.accepted_api_key

	response := {
		"credential": "api_key",
	}
}

allow = response {
	not requires_secret_key
	input.api_key == ""
	input.access_token != ""
	input.access_token == input.accepted_access_token

	response := {
		"credential": "access_token",
	}
}

allow = response {
	requires_secret_key
	input.api_key != ""
	input.api_key == input.accepted_api_key
	input.secret_key == input.accepted_secret_key

	response := {
		"credential": "secret_key",
	}
}

requires_secret_key {
	input.path[0] == "api"
	input.path[2] == "export"
}
`

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	policies, err := authzPolicies(ctx)
	if err != nil {
		log.Error("failed to load authz policies", "err", err.Error())
		os.Exit(1)
	}

	accepted := auth.Credentials{
		APIKey:      env.GetVariableOrDefault(ctx, "MOCK_API_KEY", "test-api-key"),
		SecretKey:   env.GetVariableOrDefault(ctx, "MOCK_SECRET_KEY", "test-secret-key"),
		AccessToken: env.GetVariableOrDefault(ctx, "MOCK_ACCESS_TOKEN", "test-access-token"),
	}

	routerOptions := []router.Option{}

	origins := env.GetVariableOrDefault(ctx, "CORS_ALLOWED_ORIGINS", "")
	if origins != "" {
		routerOptions = append(routerOptions, router.WithAllowedOrigins(strings.Split(origins, ",")))
	}

	r := router.New(appName, routerOptions...)

	err = api.RegisterHandlers(ctx, r, policies, eventstore.New(), accepted)
	if err != nil {
		log.Error("failed to register handlers", "err", err.Error())
		os.Exit(1)
	}

	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080")
	log.Info("starting to listen for connections", "port", port)

	err = http.ListenAndServe(":"+port, r)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}

// authzPolicies returns the policy module the authenticator should be
// prepared with, either from the file AUTHZ_POLICY_PATH points at or the
// built in default.
func authzPolicies(ctx context.Context) (io.Reader, error) {
	path := env.GetVariableOrDefault(ctx, "AUTHZ_POLICY_PATH", "")
	if path == "" {
		return strings.NewReader(defaultAuthzPolicy), nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read policy file %s: %s", path, err.Error())
	}

	return bytes.NewReader(body), nil
}

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eventlake/amplitude-connector/internal/pkg/application/eventstore"
	"github.com/eventlake/amplitude-connector/internal/pkg/infrastructure/router"
	api "github.com/eventlake/amplitude-connector/internal/pkg/presentation/api/amplitude"
	"github.com/eventlake/amplitude-connector/internal/pkg/presentation/api/amplitude/auth"
	"github.com/matryer/is"
)

func TestThatTheServerStartsWithTheBuiltInPolicy(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	r := router.New(appName, router.WithConciseLogging())
	err := api.RegisterHandlers(ctx, r, strings.NewReader(defaultAuthzPolicy), eventstore.New(), auth.Credentials{
		APIKey:      "test-api-key",
		SecretKey:   "test-secret-key",
		AccessToken: "test-access-token",
	})
	is.NoErr(err)

	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/2/httpapi", "application/json",
		strings.NewReader(`{"api_key":"test-api-key","events":[{"user_id":"user-00001","event_type":"Smoke Test"}]}`),
	)
	is.NoErr(err)
	resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusOK)
}

func TestThatAPolicyFileOverridesTheBuiltInPolicy(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "authz.rego")
	err := os.WriteFile(path, []byte("package amplitude.authz\n\ndefault allow := false\n"), 0o600)
	is.NoErr(err)

	t.Setenv("AUTHZ_POLICY_PATH", path)

	policies, err := authzPolicies(context.Background())
	is.NoErr(err)

	body, err := io.ReadAll(policies)
	is.NoErr(err)
	is.True(strings.Contains(string(body), "default allow := false"))
}

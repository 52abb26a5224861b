package amplitude

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/eventlake/amplitude-connector/internal/pkg/application/eventstore"
	"github.com/eventlake/amplitude-connector/internal/pkg/presentation/api/amplitude/auth"
	driver "github.com/eventlake/amplitude-connector/pkg/amplitude"
	"github.com/go-chi/chi/v5"
	"github.com/matryer/is"
)

const opaModule string = `
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

func TestThatEventsCanBeWritten(t *testing.T) {
	is, ts, _ := setupTest(t)

	resp, body := newPostRequest(is, ts, "application/json", "/2/httpapi",
		strings.NewReader(`{"api_key":"test-api-key","events":[{"user_id":"user-00001","event_type":"Sign Up"}]}`),
	)

	is.Equal(resp.StatusCode, http.StatusOK)

	result := struct {
		EventsIngested int `json:"events_ingested"`
	}{}
	is.NoErr(json.Unmarshal([]byte(body), &result))
	is.Equal(result.EventsIngested, 1)
}

func TestThatABadAPIKeyIsRejected(t *testing.T) {
	is, ts, _ := setupTest(t)

	resp, body := newPostRequest(is, ts, "application/json", "/2/httpapi",
		strings.NewReader(`{"api_key":"wrong-key","events":[{"user_id":"user-00001","event_type":"Sign Up"}]}`),
	)

	is.Equal(resp.StatusCode, http.StatusUnauthorized)
	is.True(strings.Contains(body, "Invalid API key"))
}

func TestThatAnEmptyEventListIsRejected(t *testing.T) {
	is, ts, _ := setupTest(t)

	resp, _ := newPostRequest(is, ts, "application/json", "/2/httpapi",
		strings.NewReader(`{"api_key":"test-api-key","events":[]}`),
	)

	is.Equal(resp.StatusCode, http.StatusBadRequest)
}

func TestThatBatchUploadsAboveTheEventCapAreRejected(t *testing.T) {
	is, ts, _ := setupTest(t)

	events := make([]driver.Event, driver.MaxBatchEventCount+1)
	for i := range events {
		events[i] = driver.NewEvent("Ping", driver.User(fmt.Sprintf("user-%05d", i)))
	}

	payload, err := json.Marshal(map[string]any{"api_key": "test-api-key", "events": events})
	is.NoErr(err)

	resp, body := newPostRequest(is, ts, "application/json", "/batch", bytes.NewReader(payload))

	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.True(strings.Contains(body, "Batch exceeds"))
}

func TestThatOversizedUploadsAreRejected(t *testing.T) {
	is, ts, _ := setupTest(t)

	blob := strings.Repeat("x", int(maxWriteBodyBytes))
	payload := fmt.Sprintf(
		`{"api_key":"test-api-key","events":[{"user_id":"user-00001","event_type":"Blob","event_properties":{"blob":%q}}]}`,
		blob,
	)

	resp, body := newPostRequest(is, ts, "application/json", "/2/httpapi", strings.NewReader(payload))

	is.Equal(resp.StatusCode, http.StatusRequestEntityTooLarge)
	is.True(strings.Contains(body, "Payload exceeds 1MB limit"))
}

func TestThatIdentifySucceedsWithAnEmptyBody(t *testing.T) {
	is, ts, _ := setupTest(t)

	form := url.Values{}
	form.Set("api_key", "test-api-key")
	form.Set("identification", `[{"user_id":"user-00001","user_properties":{"$set":{"plan":"pro"}}}]`)

	resp, body := newPostRequest(is, ts, "application/x-www-form-urlencoded", "/identify",
		strings.NewReader(form.Encode()),
	)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, "")
}

func TestThatExportRequiresTheSecretKey(t *testing.T) {
	is, ts, _ := setupTest(t)

	req, err := http.NewRequest("GET", ts.URL+"/api/2/export?start=20250101T00&end=20250101T23", nil)
	is.NoErr(err)

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusUnauthorized)

	req.SetBasicAuth("test-api-key", "not-the-secret")
	resp, err = http.DefaultClient.Do(req)
	is.NoErr(err)
	resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusUnauthorized)
}

func TestThatMalformedExportWindowsAreRejected(t *testing.T) {
	is, ts, _ := setupTest(t)

	req, err := http.NewRequest("GET", ts.URL+"/api/2/export?start=2025-01-01&end=20250101T23", nil)
	is.NoErr(err)
	req.SetBasicAuth("test-api-key", "test-secret-key")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	is.NoErr(err)

	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.True(strings.Contains(string(body), "Invalid start time format"))
}

func TestThatExportsAreCompressedWhenRequested(t *testing.T) {
	is, ts, _ := setupTest(t)

	req, err := http.NewRequest("GET", ts.URL+"/api/2/export?start=20250101T00&end=20250101T23", nil)
	is.NoErr(err)
	req.SetBasicAuth("test-api-key", "test-secret-key")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Encoding"), "gzip")

	gz, err := gzip.NewReader(resp.Body)
	is.NoErr(err)

	archive, err := io.ReadAll(gz)
	is.NoErr(err)

	_, err = zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	is.NoErr(err)
}

func TestThatProfilesAcceptBearerTokens(t *testing.T) {
	is, ts, app := setupTest(t)

	_, err := app.Ingest(context.Background(), []driver.Event{
		driver.NewEvent("Sign Up", driver.User("user-00007")),
	})
	is.NoErr(err)

	req, err := http.NewRequest("GET", ts.URL+"/v1/userprofile?user_id=user-00007", nil)
	is.NoErr(err)
	req.Header.Set("Authorization", "Bearer test-access-token")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusOK)

	req.Header.Set("Authorization", "Bearer not-the-token")
	resp, err = http.DefaultClient.Do(req)
	is.NoErr(err)
	resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusUnauthorized)
}

func TestThatUnknownProfilesReturnNotFound(t *testing.T) {
	is, ts, _ := setupTest(t)

	req, err := http.NewRequest("GET", ts.URL+"/v1/userprofile?user_id=user-99999", nil)
	is.NoErr(err)
	req.Header.Set("Authorization", "Api-Key test-api-key")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestTheFullEventRoundTrip(t *testing.T) {
	is, ts, _ := setupTest(t)
	ctx := context.Background()

	client, err := driver.NewClient(
		driver.APIKey("test-api-key"),
		driver.SecretKey("test-secret-key"),
		driver.Endpoints(ts.URL),
	)
	is.NoErr(err)
	defer client.Close()

	when := time.Date(2025, 3, 10, 14, 5, 0, 0, time.UTC)

	uploaded, err := client.WriteEvents(ctx, []driver.Event{
		driver.NewEvent("Sign Up",
			driver.User("user-00042"), driver.Device("device-0042"), driver.At(when), driver.Country("SE")),
		driver.NewEvent("Purchase",
			driver.User("user-00042"), driver.At(when.Add(10*time.Minute)), driver.Revenue("prod-001", 2, 10)),
	})
	is.NoErr(err)
	is.Equal(uploaded.EventsIngested, 2)

	exported, err := client.ExportEvents(ctx, "20250310T14", "20250310T14")
	is.NoErr(err)
	is.Equal(len(exported.Events), 2)
	is.Equal(exported.Events[0].StringField("event_type"), "Sign Up")

	_, err = client.UpdateUserProperties(ctx, []driver.Identification{
		{UserID: "user-00042", UserProperties: map[string]any{"$set": map[string]any{"plan": "premium"}}},
	})
	is.NoErr(err)

	profile, err := client.ReadUserProfile(ctx, "user-00042", "",
		driver.AmplitudeProperties(), driver.CohortIDs())
	is.NoErr(err)
	is.Equal(profile.UserData.UserID, "user-00042")
	is.Equal(profile.UserData.AmpProps["plan"], "premium")
	is.True(slices.Contains(profile.UserData.CohortIDs, "purchasers"))
}

func setupTest(t *testing.T) (*is.I, *httptest.Server, eventstore.EventStore) {
	is := is.New(t)

	ctx := context.Background()
	app := eventstore.New()

	r := chi.NewRouter()
	err := RegisterHandlers(ctx, r, bytes.NewBufferString(opaModule), app, auth.Credentials{
		APIKey:      "test-api-key",
		SecretKey:   "test-secret-key",
		AccessToken: "test-access-token",
	})
	is.NoErr(err)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return is, ts, app
}

func newPostRequest(is *is.I, ts *httptest.Server, contentType, path string, body io.Reader) (*http.Response, string) {
	req, err := http.NewRequest("POST", ts.URL+path, body)
	is.NoErr(err)

	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	is.NoErr(err)

	return resp, string(respBody)
}

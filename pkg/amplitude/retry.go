package amplitude

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

var retryableMethod = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// retryRoundTripper retries throttled and failed requests with exponential
// backoff below the error mapping layer, so callers only see a rate limit
// or server error once the retry budget is spent.
type retryRoundTripper struct {
	proxied    http.RoundTripper
	maxRetries int

	// backoff returns the wait before retry number attempt+1
	backoff func(attempt int) time.Duration
}

func (rt *retryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	backoff := rt.backoff
	if backoff == nil {
		backoff = func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		}
	}

	resp, err := rt.proxied.RoundTrip(req)

	if !retryableMethod[req.Method] {
		return resp, err
	}

	for attempt := 0; attempt < rt.maxRetries && err == nil && retryableStatus[resp.StatusCode]; attempt++ {
		if req.Body != nil && req.GetBody == nil {
			break
		}

		wait := backoff(attempt)
		if resp.StatusCode == http.StatusTooManyRequests {
			if after, aerr := strconv.Atoi(resp.Header.Get("Retry-After")); aerr == nil && after >= 0 {
				wait = time.Duration(after) * time.Second
			}
		}

		// a wait that cannot finish before the request deadline would end in
		// a mid-sleep cancellation, so hand the response back instead and let
		// the status mapping name the failure
		if deadline, ok := req.Context().Deadline(); ok && time.Until(deadline) < wait {
			break
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(wait):
		}

		retry := req.Clone(req.Context())
		if req.GetBody != nil {
			body, berr := req.GetBody()
			if berr != nil {
				return nil, berr
			}
			retry.Body = body
		}

		resp, err = rt.proxied.RoundTrip(retry)
	}

	return resp, err
}

package amplitude

import "net/http"

const (
	RegionStandard string = "standard"
	RegionEU       string = "eu"
)

type endpoints struct {
	httpAPI  string
	batch    string
	identify string
	export   string
	profile  string
}

var standardEndpoints = endpoints{
	httpAPI:  "https://api2.amplitude.com/2/httpapi",
	batch:    "https://api2.amplitude.com/batch",
	identify: "https://api2.amplitude.com/identify",
	export:   "https://amplitude.com/api/2/export",
	profile:  "https://profile-api.amplitude.com/v1/userprofile",
}

var euEndpoints = endpoints{
	httpAPI:  "https://api.eu.amplitude.com/2/httpapi",
	batch:    "https://api.eu.amplitude.com/batch",
	identify: "https://api.eu.amplitude.com/identify",
	export:   "https://analytics.eu.amplitude.com/api/2/export",
	profile:  "https://profile-api.amplitude.com/v1/userprofile",
}

func endpointsForRegion(region string) endpoints {
	if region == RegionEU {
		return euEndpoints
	}

	return standardEndpoints
}

// endpointsForBase redirects all five endpoints to a single host, which is
// how tests and local development point the client at a stand in server.
func endpointsForBase(base string) endpoints {
	return endpoints{
		httpAPI:  base + "/2/httpapi",
		batch:    base + "/batch",
		identify: base + "/identify",
		export:   base + "/api/2/export",
		profile:  base + "/v1/userprofile",
	}
}

type authPlacement int

const (
	authAPIKeyInBody authPlacement = iota
	authAPIKeyInForm
	authBasic
	authAPIKeyHeader
)

// operation describes the fixed request shape of one of the five API
// endpoints. Each endpoint differs in method, content type and where the
// credentials go, so the dispatch data lives in one place instead of being
// spread over the call sites.
type operation struct {
	name        string
	api         string
	method      string
	contentType string
	auth        authPlacement
	errContext  string
	timeoutMsg  string
	timeoutHint string
}

var (
	opWriteEvents = operation{
		name:        "write-events",
		api:         "HTTP V2 API",
		method:      http.MethodPost,
		contentType: "application/json",
		auth:        authAPIKeyInBody,
		errContext:  "writing events to HTTP V2 API",
		timeoutMsg:  "HTTP V2 API request timed out",
	}
	opBatchUpload = operation{
		name:        "batch-upload-events",
		api:         "Batch Upload API",
		method:      http.MethodPost,
		contentType: "application/json",
		auth:        authAPIKeyInBody,
		errContext:  "uploading events to Batch API",
		timeoutMsg:  "Batch Upload API request timed out",
	}
	opIdentify = operation{
		name:        "update-user-properties",
		api:         "Identify API",
		method:      http.MethodPost,
		contentType: "application/x-www-form-urlencoded",
		auth:        authAPIKeyInForm,
		errContext:  "updating user properties via Identify API",
		timeoutMsg:  "Identify API request timed out",
	}
	opExport = operation{
		name:        "export-events",
		api:         "Export API",
		method:      http.MethodGet,
		auth:        authBasic,
		errContext:  "reading events from Export API",
		timeoutMsg:  "Export API request timed out. Try with smaller time range.",
		timeoutHint: "Increase timeout or reduce time range",
	}
	opProfile = operation{
		name:       "read-user-profile",
		api:        "User Profile API",
		method:     http.MethodGet,
		auth:       authAPIKeyHeader,
		errContext: "reading user profile",
		timeoutMsg: "User Profile API request timed out",
	}
)

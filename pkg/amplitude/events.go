package amplitude

import (
	"fmt"

	"github.com/eventlake/amplitude-connector/pkg/amplitude/errors"
)

const minIdentityLength = 5

// Event is a single analytics event in the shape the ingestion endpoints
// accept. EventType is required, as is at least one of UserID and DeviceID.
// Time is in milliseconds since the Unix epoch.
type Event struct {
	UserID          string         `json:"user_id,omitempty"`
	DeviceID        string         `json:"device_id,omitempty"`
	EventType       string         `json:"event_type"`
	Time            int64          `json:"time,omitempty"`
	EventProperties map[string]any `json:"event_properties,omitempty"`
	UserProperties  map[string]any `json:"user_properties,omitempty"`
	Groups          map[string]any `json:"groups,omitempty"`
	AppVersion      string         `json:"app_version,omitempty"`
	Platform        string         `json:"platform,omitempty"`
	OSName          string         `json:"os_name,omitempty"`
	OSVersion       string         `json:"os_version,omitempty"`
	DeviceModel     string         `json:"device_model,omitempty"`
	Country         string         `json:"country,omitempty"`
	City            string         `json:"city,omitempty"`
	Language        string         `json:"language,omitempty"`
	Price           float64        `json:"price,omitempty"`
	Quantity        int            `json:"quantity,omitempty"`
	Revenue         float64        `json:"revenue,omitempty"`
	ProductID       string         `json:"productId,omitempty"`
	IP              string         `json:"ip,omitempty"`
	SessionID       int64          `json:"session_id,omitempty"`
	InsertID        string         `json:"insert_id,omitempty"`
}

// Validate checks the field requirements the ingestion endpoints enforce.
// The write paths defer these checks to the server, but callers that want
// to fail before spending a request can use it themselves.
func (e Event) Validate() error {
	if e.EventType == "" {
		return errors.NewValidationError(
			"event_type is required",
			map[string]any{"field": "event_type"},
		)
	}

	if e.UserID == "" && e.DeviceID == "" {
		return errors.NewValidationError(
			"user_id or device_id is required",
			map[string]any{"event_type": e.EventType},
		)
	}

	if e.UserID != "" && len(e.UserID) < minIdentityLength {
		return errors.NewValidationError(
			fmt.Sprintf("user_id must be at least %d characters", minIdentityLength),
			map[string]any{"field": "user_id", "provided": e.UserID},
		)
	}

	if e.DeviceID != "" && len(e.DeviceID) < minIdentityLength {
		return errors.NewValidationError(
			fmt.Sprintf("device_id must be at least %d characters", minIdentityLength),
			map[string]any{"field": "device_id", "provided": e.DeviceID},
		)
	}

	return nil
}

// Identification is one user property update instruction for the identify
// endpoint. UserProperties supports the server side operation keys such as
// $set, $add and $append.
type Identification struct {
	UserID         string         `json:"user_id,omitempty"`
	DeviceID       string         `json:"device_id,omitempty"`
	UserProperties map[string]any `json:"user_properties,omitempty"`
	Groups         map[string]any `json:"groups,omitempty"`
}

package amplitude

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type UploadResult struct {
	Code             int   `json:"code"`
	EventsIngested   int   `json:"events_ingested"`
	PayloadSizeBytes int   `json:"payload_size_bytes"`
	ServerUploadTime int64 `json:"server_upload_time"`
}

// IdentifyResult is synthesized by the client since the identify endpoint
// signals success through the HTTP status alone.
type IdentifyResult struct {
	Success    bool `json:"success"`
	StatusCode int  `json:"status_code"`
}

// EventRecord is one event parsed from an export archive. The export schema
// is wide and unversioned, so records stay generic.
type EventRecord map[string]any

// StringField returns the named field coerced to a string, or the empty
// string when the field is absent or null.
func (r EventRecord) StringField(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}

	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// PropertiesJSON returns the named field serialized back to a JSON string,
// or an empty object when the field is absent.
func (r EventRecord) PropertiesJSON(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return "{}"
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}

	return string(b)
}

type ExportResult struct {
	Events       []EventRecord
	SkippedLines int
}

type UserProfileResult struct {
	UserData UserProfile `json:"userData"`
}

type UserProfile struct {
	UserID          string           `json:"user_id,omitempty"`
	DeviceID        string           `json:"device_id,omitempty"`
	AmpProps        map[string]any   `json:"amp_props,omitempty"`
	CohortIDs       []string         `json:"cohort_ids,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Propensities    []Propensity     `json:"propensities,omitempty"`
}

type Recommendation struct {
	RecID                string   `json:"rec_id"`
	Items                []string `json:"items"`
	IsControl            bool     `json:"is_control"`
	RecommendationSource string   `json:"recommendation_source"`
	LastUpdated          string   `json:"last_updated"`
}

type Propensity struct {
	Prop     float64 `json:"prop"`
	PredID   string  `json:"pred_id"`
	PropType string  `json:"prop_type"`
}

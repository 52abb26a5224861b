package amplitude

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eventlake/amplitude-connector/pkg/amplitude/errors"
)

type PaginationStyle string

const (
	PaginationNone   PaginationStyle = "none"
	PaginationOffset PaginationStyle = "offset"
	PaginationCursor PaginationStyle = "cursor"
	PaginationPage   PaginationStyle = "page"
)

// DriverCapabilities is a static description of what the driver supports.
// It has no backing state and is the same for every client instance.
type DriverCapabilities struct {
	Read                  bool            `json:"read"`
	Write                 bool            `json:"write"`
	Update                bool            `json:"update"`
	Delete                bool            `json:"delete"`
	BatchOperations       bool            `json:"batch_operations"`
	Streaming             bool            `json:"streaming"`
	Pagination            PaginationStyle `json:"pagination"`
	QueryLanguage         string          `json:"query_language,omitempty"`
	MaxPageSize           int             `json:"max_page_size"`
	SupportsTransactions  bool            `json:"supports_transactions"`
	SupportsRelationships bool            `json:"supports_relationships"`
}

type FieldSchema struct {
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Nullable    bool   `json:"nullable"`
	Description string `json:"description"`
}

var objectSchemas = map[string]map[string]FieldSchema{
	"events": {
		"user_id": {
			Type:        "string",
			Description: "Unique user identifier (minimum 5 characters)",
		},
		"device_id": {
			Type:        "string",
			Description: "Unique device identifier (minimum 5 characters)",
		},
		"event_type": {
			Type:        "string",
			Required:    true,
			Description: "Event type name",
		},
		"time": {
			Type:        "integer",
			Nullable:    true,
			Description: "Event time in milliseconds since epoch",
		},
		"event_properties": {
			Type:        "object",
			Nullable:    true,
			Description: "Event properties (max 40 layers deep)",
		},
		"user_properties": {
			Type:        "object",
			Nullable:    true,
			Description: "User properties",
		},
	},
	"users": {
		"user_id": {
			Type:        "string",
			Required:    true,
			Description: "Unique user identifier",
		},
		"device_id": {
			Type:        "string",
			Nullable:    true,
			Description: "Device identifier",
		},
		"user_properties": {
			Type:        "object",
			Nullable:    true,
			Description: "User properties with support for $set, $add, $append operations",
		},
	},
}

func (c amplitudeClient) Capabilities() DriverCapabilities {
	return DriverCapabilities{
		Read:            true,
		Write:           true,
		Update:          true,
		BatchOperations: true,
		Pagination:      PaginationNone,
		MaxPageSize:     100,
	}
}

func (c amplitudeClient) ListObjects() []string {
	return []string{"events", "users", "cohorts", "user_profile", "recommendations"}
}

func (c amplitudeClient) Fields(objectName string) (map[string]FieldSchema, error) {
	schema, ok := objectSchemas[objectName]
	if !ok {
		available := make([]string, 0, len(objectSchemas))
		for name := range objectSchemas {
			available = append(available, name)
		}
		sort.Strings(available)

		return nil, errors.NewObjectNotFoundError(
			fmt.Sprintf("Object '%s' not found. Available objects: %s", objectName, strings.Join(available, ", ")),
			map[string]any{
				"requested": objectName,
				"available": available,
			},
		)
	}

	return schema, nil
}

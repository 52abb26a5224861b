package eventstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/eventlake/amplitude-connector/pkg/amplitude"
	"github.com/eventlake/amplitude-connector/pkg/amplitude/errors"
)

// EventStore is the contract the API handlers program against. It accepts
// the payloads of the ingestion endpoints and answers the read endpoints
// from what was ingested.
type EventStore interface {
	Ingest(ctx context.Context, events []amplitude.Event) (*IngestResult, error)
	Identify(ctx context.Context, identifications []amplitude.Identification) error
	Export(ctx context.Context, start, end time.Time) ([]byte, error)
	Profile(ctx context.Context, query ProfileQuery) (*amplitude.UserProfile, error)
}

type IngestResult struct {
	EventsIngested int
}

// ProfileQuery selects which optional profile sections the caller asked for.
type ProfileQuery struct {
	UserID          string
	DeviceID        string
	AmpProps        bool
	Recommendations bool
	CohortIDs       bool
}

func New() EventStore {
	return &inMemoryStore{
		profiles:     map[string]*profile{},
		devices:      map[string]string{},
		amplitudeIDs: map[string]int64{},
		seenInserts:  map[string]struct{}{},

		lastAmplitudeID: 1000000,
	}
}

type storedEvent struct {
	amplitude.Event

	eventID     int64
	amplitudeID int64
	serverTime  time.Time
}

type profile struct {
	properties map[string]any
}

type inMemoryStore struct {
	mu sync.RWMutex

	events   []storedEvent
	profiles map[string]*profile

	// devices remembers which user a device was last seen with, so device
	// only lookups resolve to the same profile as user id lookups
	devices map[string]string

	amplitudeIDs    map[string]int64
	lastAmplitudeID int64

	seenInserts map[string]struct{}
	lastEventID int64
}

func (s *inMemoryStore) Ingest(ctx context.Context, events []amplitude.Event) (*IngestResult, error) {
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := 0

	for _, e := range events {
		if e.InsertID != "" {
			insertKey := identityOf(e) + "\x00" + e.InsertID
			if _, seen := s.seenInserts[insertKey]; seen {
				continue
			}
			s.seenInserts[insertKey] = struct{}{}
		}

		if e.Time == 0 {
			e.Time = time.Now().UnixMilli()
		}

		s.lastEventID++
		s.events = append(s.events, storedEvent{
			Event:       e,
			eventID:     s.lastEventID,
			amplitudeID: s.amplitudeIDFor(identityOf(e)),
			serverTime:  time.Now().UTC(),
		})

		if e.UserID != "" && e.DeviceID != "" {
			s.devices[e.DeviceID] = e.UserID
		}

		stored++
	}

	log := logging.GetFromContext(ctx)
	log.Debug("ingested events", "received", len(events), "stored", stored)

	return &IngestResult{EventsIngested: len(events)}, nil
}

func (s *inMemoryStore) Identify(ctx context.Context, identifications []amplitude.Identification) error {
	for idx, id := range identifications {
		if id.UserID == "" && id.DeviceID == "" {
			return errors.NewValidationError(
				fmt.Sprintf("identification %d has neither user_id nor device_id", idx),
				map[string]any{"index": idx},
			)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range identifications {
		p := s.profileFor(id.UserID, id.DeviceID)
		applyUserProperties(p.properties, id.UserProperties)
	}

	return nil
}

func (s *inMemoryStore) Profile(ctx context.Context, query ProfileQuery) (*amplitude.UserProfile, error) {
	if query.UserID == "" && query.DeviceID == "" {
		return nil, errors.NewValidationError(
			"user_id or device_id is required",
			map[string]any{"suggestion": "Provide at least user_id or device_id"},
		)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := s.resolveIdentity(query.UserID, query.DeviceID)

	p, hasProfile := s.profiles[key]
	events := s.eventsFor(key)

	if !hasProfile && len(events) == 0 {
		return nil, errors.NewObjectNotFoundError(
			fmt.Sprintf("user %s has not been seen before", key),
			map[string]any{"user_id": query.UserID, "device_id": query.DeviceID},
		)
	}

	result := &amplitude.UserProfile{UserID: key, DeviceID: query.DeviceID}
	if result.DeviceID == "" && len(events) > 0 {
		result.DeviceID = events[len(events)-1].DeviceID
	}

	if query.AmpProps {
		props := map[string]any{}

		if len(events) > 0 {
			latest := events[len(events)-1]
			for name, value := range map[string]string{
				"platform": latest.Platform,
				"os_name":  latest.OSName,
				"city":     latest.City,
				"country":  latest.Country,
			} {
				if value != "" {
					props[name] = value
				}
			}
		}

		if hasProfile {
			for k, v := range p.properties {
				props[k] = v
			}
		}

		result.AmpProps = props
	}

	if query.CohortIDs {
		result.CohortIDs = cohortsFor(events)
	}

	if query.Recommendations {
		if items := purchasedProducts(events); len(items) > 0 {
			result.Recommendations = []amplitude.Recommendation{{
				RecID:                "rec-repeat-purchase",
				Items:                items,
				RecommendationSource: "model",
				LastUpdated:          events[len(events)-1].serverTime.Format(time.RFC3339),
			}}
		}
	}

	return result, nil
}

func identityOf(e amplitude.Event) string {
	if e.UserID != "" {
		return e.UserID
	}

	return e.DeviceID
}

// resolveIdentity and the helpers below read shared state, so callers hold
// at least a read lock on s.mu.
func (s *inMemoryStore) resolveIdentity(userID, deviceID string) string {
	if userID != "" {
		return userID
	}

	if mapped, ok := s.devices[deviceID]; ok {
		return mapped
	}

	return deviceID
}

func (s *inMemoryStore) amplitudeIDFor(identity string) int64 {
	if assigned, ok := s.amplitudeIDs[identity]; ok {
		return assigned
	}

	s.lastAmplitudeID++
	s.amplitudeIDs[identity] = s.lastAmplitudeID

	return s.lastAmplitudeID
}

func (s *inMemoryStore) eventsFor(identity string) []storedEvent {
	matches := make([]storedEvent, 0, 16)

	for _, ev := range s.events {
		if ev.UserID == identity || (ev.UserID == "" && ev.DeviceID == identity) {
			matches = append(matches, ev)
		}
	}

	return matches
}

func (s *inMemoryStore) profileFor(userID, deviceID string) *profile {
	key := s.resolveIdentity(userID, deviceID)

	p, ok := s.profiles[key]
	if !ok {
		p = &profile{properties: map[string]any{}}
		s.profiles[key] = p
	}

	return p
}

// applyUserProperties merges one identify instruction into the stored
// properties. Operation keys follow the Identify API: $set overwrites,
// $setOnce only fills gaps, $add sums numeric values, $unset removes keys
// and keys without an operation prefix behave like $set.
func applyUserProperties(stored map[string]any, update map[string]any) {
	for key, value := range update {
		switch key {
		case "$set":
			for k, v := range asMap(value) {
				stored[k] = v
			}
		case "$setOnce":
			for k, v := range asMap(value) {
				if _, exists := stored[k]; !exists {
					stored[k] = v
				}
			}
		case "$add":
			for k, v := range asMap(value) {
				stored[k] = numericValue(stored[k]) + numericValue(v)
			}
		case "$unset":
			for k := range asMap(value) {
				delete(stored, k)
			}
		default:
			if !strings.HasPrefix(key, "$") {
				stored[key] = value
			}
		}
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func numericValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}

	return 0
}

// cohortsFor derives cohort membership from observed behaviour, so repeated
// lookups for the same user agree.
func cohortsFor(events []storedEvent) []string {
	cohorts := make([]string, 0, 2)

	if len(events) > 0 {
		cohorts = append(cohorts, "active-users")
	}

	for _, ev := range events {
		if ev.Revenue > 0 {
			cohorts = append(cohorts, "purchasers")
			break
		}
	}

	return cohorts
}

func purchasedProducts(events []storedEvent) []string {
	seen := map[string]struct{}{}
	items := make([]string, 0, 3)

	for i := len(events) - 1; i >= 0 && len(items) < 3; i-- {
		productID := events[i].ProductID
		if productID == "" {
			continue
		}

		if _, dup := seen[productID]; dup {
			continue
		}

		seen[productID] = struct{}{}
		items = append(items, productID)
	}

	return items
}

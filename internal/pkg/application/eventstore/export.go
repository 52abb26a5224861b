package eventstore

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Export renders every event inside the window the way the export endpoint
// delivers them: a ZIP archive holding one gzip compressed member of JSON
// lines per hour of data. Hours without events produce no member, so an
// empty window yields an archive with no members at all. Both window edges
// are inclusive.
func (s *inMemoryStore) Export(ctx context.Context, start, end time.Time) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := map[time.Time][]storedEvent{}

	for _, ev := range s.events {
		hour := time.UnixMilli(ev.Time).UTC().Truncate(time.Hour)
		if hour.Before(start) || hour.After(end) {
			continue
		}

		buckets[hour] = append(buckets[hour], ev)
	}

	hours := make([]time.Time, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	buf := &bytes.Buffer{}
	archive := zip.NewWriter(buf)

	for _, hour := range hours {
		member, err := archive.Create(fmt.Sprintf("export/%s#0.json.gz", hour.Format("2006-01-02_15")))
		if err != nil {
			return nil, err
		}

		gz := gzip.NewWriter(member)

		for _, ev := range buckets[hour] {
			line, err := json.Marshal(exportRecord(ev))
			if err != nil {
				return nil, err
			}

			if _, err := gz.Write(append(line, '\n')); err != nil {
				return nil, err
			}
		}

		if err := gz.Close(); err != nil {
			return nil, err
		}
	}

	if err := archive.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// exportRecord reshapes a stored event into the wide export schema, with
// event_time rendered at microsecond precision.
func exportRecord(ev storedEvent) map[string]any {
	record := map[string]any{
		"event_id":           ev.eventID,
		"user_id":            ev.UserID,
		"device_id":          ev.DeviceID,
		"event_type":         ev.EventType,
		"event_time":         time.UnixMilli(ev.Time).UTC().Format("2006-01-02 15:04:05.000000"),
		"amplitude_id":       ev.amplitudeID,
		"platform":           ev.Platform,
		"os_name":            ev.OSName,
		"city":               ev.City,
		"country":            ev.Country,
		"server_upload_time": ev.serverTime.Format("2006-01-02 15:04:05.000000"),
	}

	properties := ev.EventProperties
	if properties == nil {
		properties = map[string]any{}
	}
	record["event_properties"] = properties

	userProperties := ev.UserProperties
	if userProperties == nil {
		userProperties = map[string]any{}
	}
	record["user_properties"] = userProperties

	if ev.SessionID != 0 {
		record["session_id"] = ev.SessionID
	}

	if ev.InsertID != "" {
		record["insert_id"] = ev.InsertID
	}

	return record
}

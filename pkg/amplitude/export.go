package amplitude

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/eventlake/amplitude-connector/pkg/amplitude/errors"
)

// validExportTime reports whether ts is a well formed export window bound:
// exactly YYYYMMDDTHH with a real calendar date and an hour in [0,23].
func validExportTime(ts string) bool {
	if len(ts) != 11 || ts[8] != 'T' {
		return false
	}

	if _, err := time.Parse("20060102", ts[:8]); err != nil {
		return false
	}

	hour, err := strconv.Atoi(ts[9:])
	if err != nil || hour < 0 || hour > 23 {
		return false
	}

	return true
}

// gunzipIfNeeded unwraps one layer of gzip when the two byte magic number
// is present and returns the content untouched otherwise. The export format
// applies gzip both around the archive and inside its members, so the same
// check runs at both layers.
func gunzipIfNeeded(content []byte) ([]byte, error) {
	if len(content) < 2 || content[0] != 0x1f || content[1] != 0x8b {
		return content, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}

// decodeExportArchive turns an export response body into the ordered event
// records it contains. Lines that fail to parse are skipped and counted,
// never fatal.
func decodeExportArchive(ctx context.Context, contentType string, body []byte) (*ExportResult, error) {
	log := logging.GetFromContext(ctx)

	content, err := gunzipIfNeeded(body)
	if err != nil {
		return nil, errors.NewConnectionError(
			"Export API returned invalid gzip data",
			map[string]any{"content_type": contentType, "error": err.Error()},
		)
	}

	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, errors.NewConnectionError(
			"Export API returned invalid ZIP archive",
			map[string]any{"content_type": contentType},
		)
	}

	result := &ExportResult{Events: make([]EventRecord, 0, 256)}

	for _, file := range archive.File {
		rc, err := file.Open()
		if err != nil {
			return nil, errors.NewConnectionError(
				"failed to open file in export archive",
				map[string]any{"file": file.Name, "error": err.Error()},
			)
		}

		fileContent, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.NewConnectionError(
				"failed to read file in export archive",
				map[string]any{"file": file.Name, "error": err.Error()},
			)
		}

		fileContent, err = gunzipIfNeeded(fileContent)
		if err != nil {
			return nil, errors.NewConnectionError(
				"Export API returned invalid gzip data in archive member",
				map[string]any{"file": file.Name, "error": err.Error()},
			)
		}

		for _, line := range bytes.Split(fileContent, []byte("\n")) {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}

			record := EventRecord{}
			if err := json.Unmarshal(line, &record); err != nil {
				result.SkippedLines++
				log.Debug("skipping unparsable export line", "file", file.Name, "err", err.Error())
				continue
			}

			result.Events = append(result.Events, record)
		}
	}

	return result, nil
}

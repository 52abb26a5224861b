package extractor

import (
	"bytes"
	"testing"

	"github.com/matryer/is"
)

func TestLoadConfig(t *testing.T) {
	is, config := setupConfigTest(t)

	is.True(config.Export != nil) // should have an export section
	is.True(config.Import != nil) // should have an import section
}

func TestLoadExportConfig(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(config.Export.Start, "20250101T00")
	is.Equal(config.Export.End, "20250102T00")
	is.Equal(config.Export.Table, "events")
	is.Equal(config.Export.Destination, "out.c-amplitude.events")
}

func TestLoadImportConfig(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(config.Import.Table, "users")
	is.Equal(config.Import.UserIDColumn, "user_id")
	is.Equal(len(config.Import.Properties), 2) // should find two property mappings
	is.Equal(config.Import.Properties[0].Column, "plan")
	is.Equal(config.Import.Properties[0].Property, "subscription_plan")
	is.Equal(config.Import.ChunkSize, 500)
	is.Equal(config.Import.PauseSeconds, 2)
}

func TestThatExportDefaultsAreApplied(t *testing.T) {
	is := is.New(t)

	config, err := LoadConfiguration(bytes.NewBufferString("export:\n  start: 20250101T00\n  end: 20250102T00\n"))
	is.NoErr(err)

	is.Equal(config.Export.Table, "events")
	is.Equal(config.Export.Destination, "out.c-amplitude.events")
}

func setupConfigTest(t *testing.T) (*is.I, *Config) {
	is := is.New(t)
	cfgData := bytes.NewBuffer([]byte(configFile))
	config, err := LoadConfiguration(cfgData)
	is.NoErr(err)

	return is, config
}

var configFile string = `
export:
  start: 20250101T00
  end: 20250102T00
  table: events
  destination: out.c-amplitude.events
import:
  table: users
  userIdColumn: user_id
  chunkSize: 500
  pauseSeconds: 2
  properties:
  - column: plan
    property: subscription_plan
  - column: city
    property: home_city
`

package extractor

import (
	"io"

	yaml "gopkg.in/yaml.v2"
)

type ExportConfig struct {
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	Table       string `yaml:"table"`
	Destination string `yaml:"destination"`
}

type PropertyMapping struct {
	Column   string `yaml:"column"`
	Property string `yaml:"property"`
}

type ImportConfig struct {
	Table          string            `yaml:"table"`
	UserIDColumn   string            `yaml:"userIdColumn"`
	DeviceIDColumn string            `yaml:"deviceIdColumn"`
	Properties     []PropertyMapping `yaml:"properties"`
	ChunkSize      int               `yaml:"chunkSize"`
	PauseSeconds   int               `yaml:"pauseSeconds"`
}

type Config struct {
	Export *ExportConfig `yaml:"export"`
	Import *ImportConfig `yaml:"import"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Export != nil {
		if cfg.Export.Table == "" {
			cfg.Export.Table = "events"
		}
		if cfg.Export.Destination == "" {
			cfg.Export.Destination = "out.c-amplitude.events"
		}
	}

	return cfg, nil
}

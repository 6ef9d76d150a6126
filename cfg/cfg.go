package cfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"overlay/db"
	"overlay/internal/app/api"
	"overlay/internal/app/ingest"
	"overlay/internal/app/processor"
	"overlay/pkg/twitch"
)

type Config struct {
	Api api.Config `yaml:"api"`

	Pipeline processor.Config `yaml:"pipeline"`

	Twitch twitch.Config `yaml:"twitch"`
	Ingest ingest.Config `yaml:"ingest"`

	DB db.Config `yaml:"db"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}

	return &cfg, nil
}

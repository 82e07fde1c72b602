package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/simonvc/leaveledger/internal/logging"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no --config flag is given.
const EnvPath = "LEAVELEDGER_CONFIG"

type ServerSection struct {
	Addr string `yaml:"addr"`
}

type DatabaseSection struct {
	Path string `yaml:"path"`
}

type LogSection struct {
	Environment string `yaml:"environment"`
	Level       string `yaml:"level"`
}

type CalendarSection struct {
	// Weekend lists non-working weekday names, e.g. ["saturday", "sunday"].
	Weekend []string `yaml:"weekend"`
}

// FileConfig is the on-disk shape of leaveledger.yaml.
type FileConfig struct {
	Server   ServerSection   `yaml:"server"`
	Database DatabaseSection `yaml:"database"`
	Log      LogSection      `yaml:"log"`
	Calendar CalendarSection `yaml:"calendar"`
}

func Default() FileConfig {
	return FileConfig{
		Server:   ServerSection{Addr: ":8888"},
		Database: DatabaseSection{Path: "leaveledger.db"},
		Log:      LogSection{Environment: string(logging.EnvironmentProduction), Level: "info"},
		Calendar: CalendarSection{Weekend: []string{"saturday", "sunday"}},
	}
}

// Load returns the defaults overlaid with the file at path. An empty path
// falls back to $LEAVELEDGER_CONFIG; if that is unset too, the defaults are
// returned unchanged.
func Load(path string) (FileConfig, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c FileConfig) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if c.Database.Path == "" {
		return errors.New("database.path must be set")
	}
	if err := c.Logging().Validate(); err != nil {
		return fmt.Errorf("log.environment: %w", err)
	}
	if _, err := c.Weekend(); err != nil {
		return err
	}
	return nil
}

func (c FileConfig) Logging() logging.Config {
	return logging.Config{
		Environment: logging.Environment(c.Log.Environment),
		Level:       c.Log.Level,
	}
}

// Weekend parses calendar.weekend. An empty list keeps Saturday and Sunday.
func (c FileConfig) Weekend() ([]time.Weekday, error) {
	if len(c.Calendar.Weekend) == 0 {
		return leave.DefaultWeekend, nil
	}
	days := make([]time.Weekday, 0, len(c.Calendar.Weekend))
	for _, name := range c.Calendar.Weekend {
		wd, err := leave.ParseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("calendar.weekend: %w", err)
		}
		days = append(days, wd)
	}
	return days, nil
}

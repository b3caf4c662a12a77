// Package conf loads and validates udpgate's YAML configuration, the way
// the teacher's internal/conf package loads paqet's: a struct tree with
// raw string fields for user input, setDefaults()/validate() passes that
// populate derived, typed fields, and accumulated (not fail-fast) errors.
package conf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"udpgate/internal/flog"
)

// Conf is the top-level configuration.
type Conf struct {
	Local     Local        `yaml:"local"`
	Endpoints []Endpoint   `yaml:"endpoints"`
	Filters   []FilterSpec `yaml:"filters"`
	Session   Session      `yaml:"session"`
	Log       Log          `yaml:"log"`
}

// Local describes the listen socket.
type Local struct {
	Port uint16 `yaml:"port"`
}

// Session describes the registry's idle-expiration policy.
type Session struct {
	IdleTimeout_   string `yaml:"idleTimeout"`
	SweepInterval_ string `yaml:"sweepInterval"`

	IdleTimeout   time.Duration `yaml:"-"`
	SweepInterval time.Duration `yaml:"-"`
}

// Log describes the logger's configured level.
type Log struct {
	Level string `yaml:"level"`
}

// LoadFromFile reads, unmarshals, defaults, and validates a config file.
func LoadFromFile(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Conf
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}

	c.setDefaults()
	if err := c.validate(); err != nil {
		return &c, err
	}
	return &c, nil
}

func (c *Conf) setDefaults() {
	if c.Local.Port == 0 {
		c.Local.Port = 7000
	}
	c.Session.setDefaults()
	c.Log.setDefaults()
	for i := range c.Endpoints {
		c.Endpoints[i].setDefaults()
	}
	for i := range c.Filters {
		c.Filters[i].setDefaults()
	}
}

func (s *Session) setDefaults() {
	if s.IdleTimeout_ == "" {
		s.IdleTimeout_ = "5m"
	}
	if s.SweepInterval_ == "" {
		s.SweepInterval_ = "30s"
	}
}

func (l *Log) setDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
}

func (c *Conf) validate() error {
	var errs []error

	if len(c.Endpoints) == 0 {
		errs = append(errs, fmt.Errorf("at least one endpoint must be configured"))
	}
	for i := range c.Endpoints {
		if err := c.Endpoints[i].validate(); err != nil {
			errs = append(errs, fmt.Errorf("endpoints[%d]: %w", i, err))
		}
	}
	for i := range c.Filters {
		if err := c.Filters[i].validate(); err != nil {
			errs = append(errs, fmt.Errorf("filters[%d]: %w", i, err))
		}
	}

	idle, err := time.ParseDuration(c.Session.IdleTimeout_)
	if err != nil {
		errs = append(errs, fmt.Errorf("session.idleTimeout: %w", err))
	}
	c.Session.IdleTimeout = idle

	sweep, err := time.ParseDuration(c.Session.SweepInterval_)
	if err != nil {
		errs = append(errs, fmt.Errorf("session.sweepInterval: %w", err))
	}
	c.Session.SweepInterval = sweep

	if !validLogLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	return joinErrors(errs)
}

func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error", "none":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var messages []string
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	flog.Errorf("config validation failed with %d error(s)", len(errs))
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}

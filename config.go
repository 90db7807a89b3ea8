package keycycle

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the selection policy of a single pool.
type Config struct {
	// ResetInterval, when positive, clears every key's usage counter and
	// failed flag once that much time has passed since the last reset.
	// Zero means failed keys never recover on their own.
	ResetInterval time.Duration `yaml:"reset_interval"`
	// Ceiling, when positive, caps how many times a key is handed out
	// between resets. Zero means usage is tracked but never gates selection.
	Ceiling int64 `yaml:"ceiling"`
}

// exhaustedErr is the sentinel Select reports when no key is usable.
func (c Config) exhaustedErr() error {
	if c.Ceiling > 0 {
		return ErrRateLimited
	}
	return ErrExhausted
}

func (c Config) validate() error {
	if c.ResetInterval < 0 {
		return fmt.Errorf("keycycle: negative reset interval %s", c.ResetInterval)
	}
	if c.Ceiling < 0 {
		return fmt.Errorf("keycycle: negative ceiling %d", c.Ceiling)
	}
	return nil
}

// EnvMode names the environment variable that switches a registry loaded
// through LoadSettings into production mode when set to "production".
const EnvMode = "KEYCYCLE_ENV"

// Settings is the file form of a registry configuration.
//
//	production: false
//	pools:
//	  openai:
//	    reset_interval: 1m
//	    ceiling: 5
//	    keys: [sk-1, sk-2]
//
// The keys entries are read by source.File, not by LoadSettings.
type Settings struct {
	Production bool              `yaml:"production"`
	Pools      map[string]Config `yaml:"pools"`
}

// LoadSettings reads a YAML settings file. Pool names are normalized the same
// way the registry normalizes them.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keycycle: read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes settings from YAML bytes.
func ParseSettings(data []byte) (*Settings, error) {
	var raw Settings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("keycycle: parse settings: %w", err)
	}

	s := &Settings{
		Production: raw.Production,
		Pools:      make(map[string]Config, len(raw.Pools)),
	}
	for name, cfg := range raw.Pools {
		canon, err := CanonicalName(name)
		if err != nil {
			return nil, err
		}
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("keycycle: pool %s: %w", canon, err)
		}
		s.Pools[canon] = cfg
	}

	if strings.EqualFold(os.Getenv(EnvMode), "production") {
		s.Production = true
	}
	return s, nil
}

// CanonicalName returns the registry key for a pool name: trimmed and
// lower-cased. Sources derive their own lookup keys from this form, so
// "OpenAI", " openai " and "OPENAI" all address the same pool.
func CanonicalName(name string) (string, error) {
	canon := strings.ToLower(strings.TrimSpace(name))
	if canon == "" {
		return "", ErrInvalidPoolName
	}
	return canon, nil
}

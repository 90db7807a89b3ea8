package keycycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "openai", want: "openai"},
		{in: "OpenAI", want: "openai"},
		{in: "  ElevenLabs ", want: "elevenlabs"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CanonicalName(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPoolName) {
					t.Fatalf("err = %v, want ErrInvalidPoolName", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("CanonicalName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

const testSettings = `
production: false
pools:
  OpenAI:
    reset_interval: 90s
    ceiling: 5
    keys: [sk-1, sk-2]
  speech:
    reset_interval: 1h
`

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keycycle.yaml")
	if err := os.WriteFile(path, []byte(testSettings), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Production {
		t.Error("production = true, want false")
	}

	openai, ok := s.Pools["openai"]
	if !ok {
		t.Fatalf("pools = %v, want openai", s.Pools)
	}
	if openai.ResetInterval != 90*time.Second || openai.Ceiling != 5 {
		t.Errorf("openai = %+v", openai)
	}
	if speech := s.Pools["speech"]; speech.ResetInterval != time.Hour || speech.Ceiling != 0 {
		t.Errorf("speech = %+v", speech)
	}
}

func TestParseSettingsProductionFromEnv(t *testing.T) {
	t.Setenv(EnvMode, "Production")

	s, err := ParseSettings([]byte("pools: {}"))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Production {
		t.Error("production = false, want true from environment")
	}
}

func TestParseSettingsRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"negative ceiling": "pools:\n  a:\n    ceiling: -1\n",
		"bad duration":     "pools:\n  a:\n    reset_interval: soon\n",
		"empty name":       "pools:\n  \"\":\n    ceiling: 1\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSettings([]byte(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestWithSettings(t *testing.T) {
	s, err := ParseSettings([]byte(testSettings))
	if err != nil {
		t.Fatal(err)
	}
	s.Production = true

	r := newTestRegistry(t, WithSettings(s))
	if _, err := r.DebugState("openai"); !errors.Is(err, ErrDebugUnavailable) {
		t.Fatalf("err = %v, want ErrDebugUnavailable", err)
	}
	if cfg := r.configs["openai"]; cfg.Ceiling != 5 {
		t.Errorf("openai config = %+v", cfg)
	}
}

func TestPoolErrorWait(t *testing.T) {
	e := &PoolError{Pool: "p", Err: ErrExhausted}
	if err := e.Wait(t.Context()); err != nil {
		t.Fatalf("no reset scheduled: %v", err)
	}

	e.ResetAt = time.Now().Add(-time.Second)
	if err := e.Wait(t.Context()); err != nil {
		t.Fatalf("reset in the past: %v", err)
	}

	e.ResetAt = time.Now().Add(time.Hour)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := e.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

package source

import (
	"context"
	"reflect"
	"testing"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		pool string
		want string
	}{
		{pool: "openai", want: "ENV_OPENAI_KEY"},
		{pool: "open-ai", want: "ENV_OPEN_AI_KEY"},
		{pool: "eleven labs", want: "ENV_ELEVEN_LABS_KEY"},
		{pool: "v2", want: "ENV_V2_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.pool, func(t *testing.T) {
			if got := Prefix(tt.pool); got != tt.want {
				t.Errorf("Prefix(%q) = %q, want %q", tt.pool, got, tt.want)
			}
		})
	}
}

func TestMapKeysOrderedByIndex(t *testing.T) {
	m := Map{
		"ENV_FAKEAPI_KEY10": "k10",
		"ENV_FAKEAPI_KEY2":  "k2",
		"ENV_FAKEAPI_KEY1":  "k1",
		"ENV_FAKEAPI_KEY3":  "k3",
	}

	got, err := m.Keys(context.Background(), "fakeapi")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"k1", "k2", "k3", "k10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestMapKeysIgnoresForeignEntries(t *testing.T) {
	m := Map{
		"ENV_FAKEAPI_KEY1":  "k1",
		"ENV_FAKEAPI_KEY":   "no-index",
		"ENV_FAKEAPI_KEY0":  "zero",
		"ENV_FAKEAPI_KEY02": "leading-zero",
		"ENV_FAKEAPI_KEYX":  "not-a-number",
		"ENV_FAKEAPI_KEY4":  "",
		"ENV_OTHER_KEY1":    "other",
		"ENV_FAKEAPI2_KEY1": "similar-name",
		"PATH":              "/usr/bin",
	}

	got, err := m.Keys(context.Background(), "fakeapi")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"k1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestMapKeysEmpty(t *testing.T) {
	got, err := Map{}.Keys(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("keys = %v, want none", got)
	}
}

func TestEnvKeys(t *testing.T) {
	t.Setenv("ENV_ENVTEST_KEY1", "first")
	t.Setenv("ENV_ENVTEST_KEY2", "second")

	got, err := Env{}.Keys(context.Background(), "envtest")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

package source

import (
	"context"
	"reflect"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteKeysOrderedByName(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for _, row := range [][2]string{{"key-b", "b"}, {"key-a", "a"}, {"key-c", "c"}} {
		if err := s.Put(ctx, "openai", row[0], row[1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Put(ctx, "other", "key-a", "x"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Keys(ctx, "openai")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestSQLitePutReplaces(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	s.Put(ctx, "openai", "key-a", "old")
	s.Put(ctx, "openai", "key-a", "new")

	got, _ := s.Keys(ctx, "openai")
	if want := []string{"new"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestSQLiteSkipsEmptyValues(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	s.Put(ctx, "openai", "key-a", "")
	s.Put(ctx, "openai", "key-b", "b")

	got, _ := s.Keys(ctx, "openai")
	if want := []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestSQLiteDelete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	s.Put(ctx, "openai", "key-a", "a")
	if err := s.Delete(ctx, "openai"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Keys(ctx, "openai")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("after delete: keys = %v, want none", got)
	}
}

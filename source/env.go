package source

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Compile-time interface checks.
var (
	_ Source = Map(nil)
	_ Source = Env{}
)

// Prefix returns the entry-name prefix for a pool: "ENV_", the pool name
// upper-cased with every character outside [A-Z0-9] replaced by '_', then
// "_KEY". The pool "open-ai" maps to "ENV_OPEN_AI_KEY".
func Prefix(pool string) string {
	var b strings.Builder
	b.WriteString("ENV_")
	for _, r := range strings.ToUpper(pool) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteString("_KEY")
	return b.String()
}

// Map is a Source over named entries, typically environment variables.
// Entries named Prefix(pool) followed by a positive decimal index belong to
// the pool; they are ordered by index, so KEY2 precedes KEY10 and gaps in the
// numbering are allowed. Entries with empty values are skipped.
type Map map[string]string

// Keys returns the values of the pool's entries in index order.
func (m Map) Keys(_ context.Context, pool string) ([]string, error) {
	prefix := Prefix(pool)

	type entry struct {
		idx   int
		value string
	}
	var entries []entry
	for name, value := range m {
		suffix, ok := strings.CutPrefix(name, prefix)
		if !ok || value == "" {
			continue
		}
		idx, err := strconv.Atoi(suffix)
		if err != nil || idx <= 0 || strconv.Itoa(idx) != suffix {
			continue
		}
		entries = append(entries, entry{idx: idx, value: value})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out, nil
}

// Env reads keys from the process environment at the time Keys is called,
// using the same naming rules as Map.
type Env struct{}

// Keys scans os.Environ for the pool's entries.
func (Env) Keys(ctx context.Context, pool string) ([]string, error) {
	m := make(Map)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if ok {
			m[name] = value
		}
	}
	return m.Keys(ctx, pool)
}

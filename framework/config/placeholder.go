package config

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	PlaceholderPrefix = "${"
	PlaceholderSuffix = "}"
)

// ResolvePlaceholders replaces every ${key} in value whose key lookup knows,
// scanning left to right. Replacement text is not scanned again. Unknown keys
// and an unterminated ${ are left as they are.
//
//	config.ResolvePlaceholders("Hello ${user}", values.Lookup) // "Hello Ada"
func ResolvePlaceholders(value string, lookup func(key string) (string, bool)) string {
	if !strings.Contains(value, PlaceholderPrefix) {
		return value
	}

	var b strings.Builder
	rest := value
	for {
		start := strings.Index(rest, PlaceholderPrefix)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(PlaceholderPrefix):], PlaceholderSuffix)
		if end < 0 {
			break
		}
		end += start + len(PlaceholderPrefix)

		b.WriteString(rest[:start])
		key := rest[start+len(PlaceholderPrefix) : end]
		if v, ok := lookup(key); ok {
			b.WriteString(v)
		} else {
			b.WriteString(rest[start : end+len(PlaceholderSuffix)])
		}
		rest = rest[end+len(PlaceholderSuffix):]
	}
	b.WriteString(rest)
	return b.String()
}

// Values is a placeholder value source.
type Values map[string]string

// LoadValues reads KEY=VALUE files with godotenv. Later files override
// earlier ones.
func LoadValues(files ...string) (Values, error) {
	out := make(Values)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("config: could not load placeholder values from %s: %w", f, err)
		}
		maps.Copy(out, m)
	}
	return out, nil
}

// Lookup returns the value for key.
func (v Values) Lookup(key string) (string, bool) {
	s, ok := v[key]
	return s, ok
}

// Resolve runs ResolvePlaceholders against v.
func (v Values) Resolve(s string) string {
	return ResolvePlaceholders(s, v.Lookup)
}

// WithEnvironment returns a lookup that tries v first, then the process
// environment.
func (v Values) WithEnvironment() func(string) (string, bool) {
	return func(key string) (string, bool) {
		if s, ok := v[key]; ok {
			return s, true
		}
		return os.LookupEnv(key)
	}
}

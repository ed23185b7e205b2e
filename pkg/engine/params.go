package engine

import (
	"time"

	"github.com/spf13/cast"
)

// Params carries loosely-typed task arguments. The typed getters
// coerce whatever the caller stored into the requested type, falling
// back to the given default when the key is absent or unconvertible.
type Params map[string]any

// String returns the value at key as a string.
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok {
		return def
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return def
}

// Int returns the value at key as an int.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	if n, err := cast.ToIntE(v); err == nil {
		return n
	}
	return def
}

// Bool returns the value at key as a bool.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok {
		return def
	}
	if b, err := cast.ToBoolE(v); err == nil {
		return b
	}
	return def
}

// Duration returns the value at key as a time.Duration. String values
// like "30s" are parsed.
func (p Params) Duration(key string, def time.Duration) time.Duration {
	v, ok := p[key]
	if !ok {
		return def
	}
	if d, err := cast.ToDurationE(v); err == nil {
		return d
	}
	return def
}

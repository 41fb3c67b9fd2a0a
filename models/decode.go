package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

// DecodeError is returned when a wire object lacks a field the model requires
type DecodeError struct {
	Entity string
	Field  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s: missing required field %q", e.Entity, e.Field)
}

type requiredField struct {
	name    string
	present bool
}

func requireFields(entity string, fields ...requiredField) error {
	for _, f := range fields {
		if !f.present {
			return &DecodeError{Entity: entity, Field: f.name}
		}
	}
	return nil
}

func optionOf[T any](v *T) mo.Option[T] {
	if v == nil {
		return mo.None[T]()
	}
	return mo.Some(*v)
}

func valueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
}

// parseTimestamp accepts the ISO 8601 variants the backend emits. Anything else,
// including non-string JSON values, is treated as absent.
func parseTimestamp(raw json.RawMessage) mo.Option[time.Time] {
	if len(raw) == 0 {
		return mo.None[time.Time]()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return mo.None[time.Time]()
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return mo.None[time.Time]()
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return mo.Some(t)
		}
	}
	return mo.None[time.Time]()
}

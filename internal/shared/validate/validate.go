// Package validate provides field-keyed validation errors and the shared
// format checks used by domain parameter structs. All fields of an input are
// checked before returning so callers always see the full error set.
package validate

import (
	"math"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Errors maps a field name to an ordered list of human-readable messages.
type Errors map[string][]string

// Add appends a message for a field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Merge copies all messages from other into e.
func (e Errors) Merge(other Errors) {
	for field, messages := range other {
		e[field] = append(e[field], messages...)
	}
}

// HasErrors reports whether any field has a message.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// HexColor reports whether s is a #RGB or #RRGGBB color.
func HexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// UUID reports whether s is a well-formed UUID.
func UUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Amount reports whether v is a positive value with at most two decimal
// places.
func Amount(v float64) bool {
	if v <= 0 {
		return false
	}
	return math.Round(v*100)/100 == v
}

// NotFuture reports whether t is at or before now.
func NotFuture(t, now time.Time) bool {
	return !t.After(now)
}

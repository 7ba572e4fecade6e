// Package validator collects field-level input errors in request order.
package validator

import (
	"net/mail"
	"strings"
	"time"

	"github.com/ayush/devconnector/internal/apperr"
)

// dateLayouts are accepted for date inputs, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// Checker accumulates failed checks.
type Checker struct {
	fields []apperr.FieldError
}

func (c *Checker) Add(param, msg string) {
	c.fields = append(c.fields, apperr.FieldError{Param: param, Msg: msg})
}

func (c *Checker) HasErrors() bool {
	return len(c.fields) > 0
}

// Err returns a validation error, or nil when every check passed.
func (c *Checker) Err() error {
	if !c.HasErrors() {
		return nil
	}
	return apperr.Validation(c.fields...)
}

// Required fails when value is blank.
func (c *Checker) Required(param, value, msg string) bool {
	if strings.TrimSpace(value) == "" {
		c.Add(param, msg)
		return false
	}
	return true
}

// Email fails when value is not a bare address.
func (c *Checker) Email(param, value, msg string) bool {
	value = strings.TrimSpace(value)
	addr, err := mail.ParseAddress(value)
	if value == "" || err != nil || addr.Address != value {
		c.Add(param, msg)
		return false
	}
	return true
}

// MinLen fails when value has fewer than n characters.
func (c *Checker) MinLen(param, value string, n int, msg string) bool {
	if len([]rune(value)) < n {
		c.Add(param, msg)
		return false
	}
	return true
}

// MaxBytes fails when value is longer than n bytes.
func (c *Checker) MaxBytes(param, value string, n int, msg string) bool {
	if len(value) > n {
		c.Add(param, msg)
		return false
	}
	return true
}

// Date parses value as a date. Blank values are left to Required; an
// unparseable value fails with msg.
func (c *Checker) Date(param, value, msg string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := ParseDate(value)
	if err != nil {
		c.Add(param, msg)
		return time.Time{}, false
	}
	return t, true
}

// ParseDate accepts RFC 3339 timestamps and YYYY-MM-DD dates.
func ParseDate(value string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// SplitList splits a comma-separated list, trimming items and dropping
// empty ones.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SPDX-License-Identifier: MIT

// Package validate collects configuration problems so they can be reported
// together instead of one per restart.
package validate

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// FieldError is one rejected setting.
type FieldError struct {
	Field   string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError carries every FieldError found in one pass.
type ValidationError struct {
	errs []FieldError
}

func (e ValidationError) Errors() []FieldError { return slices.Clone(e.errs) }

func (e ValidationError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, fe := range e.errs {
		msgs[i] = fe.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Validator accumulates FieldErrors. The zero value is ready to use.
type Validator struct {
	errs []FieldError
}

func New() *Validator { return &Validator{} }

// Addf records a problem with field.
func (v *Validator) Addf(field string, value any, format string, args ...any) {
	v.errs = append(v.errs, FieldError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Check records message for field unless ok.
func (v *Validator) Check(ok bool, field string, value any, message string) {
	if !ok {
		v.Addf(field, value, "%s", message)
	}
}

func (v *Validator) IsValid() bool { return len(v.errs) == 0 }

func (v *Validator) Errors() []FieldError { return slices.Clone(v.errs) }

// Err returns a ValidationError, or nil when nothing was recorded.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return ValidationError{errs: slices.Clone(v.errs)}
}

// NotEmpty rejects empty and whitespace-only strings.
func (v *Validator) NotEmpty(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, value, "must not be empty")
}

func (v *Validator) OneOf(field, value string, allowed ...string) {
	if !slices.Contains(allowed, value) {
		v.Addf(field, value, "must be one of %s, got %q", strings.Join(allowed, "|"), value)
	}
}

// LogLevel accepts the levels the daemon exposes in its config.
func (v *Validator) LogLevel(field, level string) {
	v.OneOf(field, level, "debug", "info", "warn", "error")
}

// URL requires an absolute URL with a host and, when schemes are given, one
// of those schemes.
func (v *Validator) URL(field, raw string, schemes ...string) {
	if raw == "" {
		v.Addf(field, raw, "must not be empty")
		return
	}
	u, err := url.Parse(raw)
	switch {
	case err != nil:
		v.Addf(field, raw, "invalid URL: %v", err)
	case u.Host == "":
		v.Addf(field, raw, "URL has no host")
	case len(schemes) > 0 && !slices.Contains(schemes, u.Scheme):
		v.Addf(field, raw, "scheme %q not allowed (want %s)", u.Scheme, strings.Join(schemes, "|"))
	}
}

// ListenAddr requires host:port with a numeric port. The host may be empty
// and port 0 lets the kernel choose.
func (v *Validator) ListenAddr(field, addr string) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		v.Addf(field, addr, "invalid listen address: %v", err)
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		v.Addf(field, addr, "port must be a number in 0..65535, got %q", portStr)
	}
}

// Number covers the setting types the config uses, time.Duration included.
type Number interface {
	~int | ~int64 | ~float64
}

// Positive requires value > 0. NaN fails every comparison and is rejected.
func Positive[T Number](v *Validator, field string, value T) {
	if !(value > 0) {
		v.Addf(field, value, "must be positive, got %v", value)
	}
}

// NonNegative requires value >= 0.
func NonNegative[T Number](v *Validator, field string, value T) {
	if !(value >= 0) {
		v.Addf(field, value, "must not be negative, got %v", value)
	}
}

// Between requires lo <= value <= hi.
func Between[T Number](v *Validator, field string, value, lo, hi T) {
	if !(value >= lo && value <= hi) {
		v.Addf(field, value, "must be within [%v, %v], got %v", lo, hi, value)
	}
}

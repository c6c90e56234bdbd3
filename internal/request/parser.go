// Package request turns raw HTTP input into typed values. Every rejection is
// reported as a field/reason pair so clients can highlight the offending input.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "fest-backend/pkg/errors"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// Field rejection reasons.
const (
	ReasonRequired     = "required"
	ReasonInvalidUUID  = "invalid_uuid"
	ReasonInvalidEmail = "invalid_email"
	ReasonTooLong      = "too_long"
	ReasonOutOfRange   = "out_of_range"
	ReasonInvalidValue = "invalid_value"
	ReasonDuplicate    = "duplicate"
	ReasonAmbiguous    = "exactly_one_of_user_id_team_id"
)

// FieldError is a single rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Parser accumulates field errors while converting values.
type Parser struct {
	errs []FieldError
}

func (p *Parser) Fail(field, reason string) {
	p.errs = append(p.errs, FieldError{Field: field, Reason: reason})
}

// Errors returns the accumulated field errors.
func (p *Parser) Errors() []FieldError {
	return p.errs
}

// Err returns a validation AppError listing every field error, or nil.
func (p *Parser) Err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return apperrors.NewValidationError("invalid_request", "Request validation failed", map[string]interface{}{
		"fields": p.errs,
	})
}

// UUID parses a required canonical uuid.
func (p *Parser) UUID(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		p.Fail(field, ReasonRequired)
		return ""
	}
	id, err := uuid.Parse(value)
	if err != nil {
		p.Fail(field, ReasonInvalidUUID)
		return ""
	}
	return id.String()
}

// OptionalUUID parses a uuid when present.
func (p *Parser) OptionalUUID(field string, value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	id := p.UUID(field, *value)
	if id == "" {
		return nil
	}
	return &id
}

// Email trims, lowercases and syntax-checks an address.
func (p *Parser) Email(field, value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		p.Fail(field, ReasonRequired)
		return ""
	}
	if err := checkmail.ValidateFormat(value); err != nil {
		p.Fail(field, ReasonInvalidEmail)
		return ""
	}
	return value
}

// Text requires a non-blank string of at most max runes.
func (p *Parser) Text(field, value string, max int) string {
	value = strings.TrimSpace(value)
	if value == "" {
		p.Fail(field, ReasonRequired)
		return ""
	}
	if len([]rune(value)) > max {
		p.Fail(field, ReasonTooLong)
		return ""
	}
	return value
}

// IntRange requires min <= v <= max.
func (p *Parser) IntRange(field string, v, min, max int) int {
	if v < min || v > max {
		p.Fail(field, ReasonOutOfRange)
	}
	return v
}

// QueryInt reads an optional integer query parameter.
func (p *Parser) QueryInt(r *http.Request, name string, def, min, max int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.Fail(name, ReasonInvalidValue)
		return def
	}
	if v < min || v > max {
		p.Fail(name, ReasonOutOfRange)
		return def
	}
	return v
}

// PathInt parses a positive integer path segment.
func (p *Parser) PathInt(field, raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		p.Fail(field, ReasonInvalidValue)
		return 0
	}
	return v
}

// DecodeJSON reads a bounded JSON body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperrors.NewValidationError("invalid_body", "Request body is required", nil)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("invalid_body", "Request body is required", nil)
		}
		return apperrors.NewValidationError("invalid_body", fmt.Sprintf("Malformed JSON body: %v", err), nil)
	}
	return nil
}

func indexed(field string, i int, sub string) string {
	if sub == "" {
		return fmt.Sprintf("%s[%d]", field, i)
	}
	return fmt.Sprintf("%s[%d].%s", field, i, sub)
}

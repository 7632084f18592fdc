package form

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/routes"
)

// Operations a form is built for.
const (
	OpAdd     = "add"
	OpEdit    = "edit"
	OpDefault = "default"
	OpDelete  = "delete"
)

// State carries one form build or submission. Values hold the submitted
// input and are mutated in place by form handlers.
type State struct {
	Operation string
	Langcode  string
	Account   *models.User
	Values    map[string]any

	// SourceLangcode is set when a translation is created from another one.
	SourceLangcode string
	// Recipient receives the status messages produced while submitting.
	Recipient string

	redirect *routes.Redirect
	errors   map[string]string
}

// NewState returns a state with no submitted values.
func NewState(op, langcode string, account *models.User) *State {
	return &State{
		Operation: op,
		Langcode:  langcode,
		Account:   account,
		Values:    map[string]any{},
		errors:    map[string]string{},
	}
}

// HasValue reports whether a non-nil value was submitted for key.
func (s *State) HasValue(key string) bool {
	v, ok := s.Values[key]
	return ok && v != nil
}

// Value returns the raw submitted value.
func (s *State) Value(key string) any {
	return s.Values[key]
}

// SetValue replaces a submitted value.
func (s *State) SetValue(key string, v any) {
	if s.Values == nil {
		s.Values = map[string]any{}
	}
	s.Values[key] = v
}

// String returns the value as a trimmed string.
func (s *State) String(key string) string {
	switch v := s.Values[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Int returns the value as an integer. The second result is false when the
// value is missing or not numeric.
func (s *State) Int(key string) (int64, bool) {
	return toInt(s.Values[key])
}

// Bool returns the value as a boolean; "1", "true", "on" and non-zero
// numbers are true.
func (s *State) Bool(key string) bool {
	return toBool(s.Values[key])
}

// ValueMap returns the nested map stored under key. Changes to the returned
// map are visible through the state.
func (s *State) ValueMap(key string) (map[string]any, bool) {
	m, ok := s.Values[key].(map[string]any)
	return m, ok
}

// SetRedirect points the response at a route.
func (s *State) SetRedirect(route string, params map[string]string) error {
	r, err := routes.NewRedirect(route, params)
	if err != nil {
		return err
	}
	s.redirect = r
	return nil
}

// Redirect returns the redirect set by a submit handler, or nil.
func (s *State) Redirect() *routes.Redirect {
	return s.redirect
}

// SetError records a validation error against a field.
func (s *State) SetError(field, message string) {
	if s.errors == nil {
		s.errors = map[string]string{}
	}
	s.errors[field] = message
}

// Errors returns the validation errors by field.
func (s *State) Errors() map[string]string {
	return s.errors
}

// HasErrors reports whether validation failed.
func (s *State) HasErrors() bool {
	return len(s.errors) > 0
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return toInt(uint64(x))
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		// JSON numbers decode to float64; only whole values in range count.
		if x != math.Trunc(x) || x < math.MinInt64 || x >= 1<<63 {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		i, err := x.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// ToInt converts a submitted scalar to an integer.
func ToInt(v any) (int64, bool) { return toInt(v) }

func toBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "on", "yes":
			return true
		}
		return false
	default:
		i, ok := toInt(v)
		return ok && i != 0
	}
}

// ToBool converts a submitted scalar to a boolean.
func ToBool(v any) bool { return toBool(v) }

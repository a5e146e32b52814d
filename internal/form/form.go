// Package form parses submitted HTML forms into domain values.  Each form is
// bound by echo, checked with validator tags and only then converted, so
// handlers never build an entity from unchecked input.  Venue and artist
// values are kept exactly as submitted; blank-only required fields are
// rejected rather than trimmed.
package form

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// SeekingChecked is the value an HTML checkbox submits for the seeking flag.
const SeekingChecked = "y"

// GenreChoices are the genres offered by the venue and artist forms.
var GenreChoices = []string{
	"Alternative", "Blues", "Classical", "Country", "Electronic", "Folk", "Funk",
	"Hip-Hop", "Heavy Metal", "Instrumental", "Jazz", "Musical Theatre", "Pop",
	"Punk", "R&B", "Reggae", "Rock n Roll", "Soul", "Swing", "Other",
}

// StateChoices are the two-letter state codes offered by the forms.
var StateChoices = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL", "GA", "HI", "ID",
	"IL", "IN", "IA", "KS", "KY", "LA", "ME", "MT", "NE", "NV", "NH", "NJ", "NM",
	"NY", "NC", "ND", "OH", "OK", "OR", "MD", "MA", "MI", "MN", "MS", "MO", "PA",
	"RI", "SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report errors under the submitted field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "genre", oneOfFunc(GenreChoices))
	mustRegister(v, "us_state", oneOfFunc(StateChoices))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("form: register %s: %v", tag, err))
	}
}

func oneOfFunc(choices []string) validator.Func {
	set := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		set[c] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}

// ValidationError lists the rejected fields of a submission, keyed by form
// field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// check runs the validator tags of s and collects failures.
func check(s any) *ValidationError {
	verr := &ValidationError{}
	err := validate.Struct(s)
	if err == nil {
		return verr
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.add("form", err.Error())
		return verr
	}
	for _, fe := range ves {
		verr.add(fieldName(fe), message(fe))
	}
	return verr
}

// fieldName strips the index from slice elements ("genres[2]" -> "genres").
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "genre":
		return fmt.Sprintf("has an unknown genre %q", fe.Value())
	case "us_state":
		return "must be a valid state"
	case "number", "numeric":
		return "must be a number"
	}
	return "is invalid"
}

// trimAll trims the given fields in place.
func trimAll(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// seeking reports whether a checkbox value means "ticked".
func seeking(v string) bool { return v == SeekingChecked }

// checkbox is the inverse of seeking, used to pre-fill edit forms.
func checkbox(b bool) string {
	if b {
		return SeekingChecked
	}
	return ""
}

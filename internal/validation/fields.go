// Package validation checks user-entered form fields before they reach the API.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
)

// ErrRequired is returned for blank required fields.
var ErrRequired = errors.New("value is required")

// Validator checks a single field value.
type Validator interface {
	Validate(value string) error
}

// Func adapts a function to Validator.
type Func func(value string) error

// Validate calls f.
func (f Func) Validate(value string) error { return f(value) }

// Chain runs validators in order and returns the first failure.
func Chain(vs ...Validator) Validator {
	return Func(func(value string) error {
		for _, v := range vs {
			if err := v.Validate(value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Required rejects blank values.
func Required() Validator {
	return Func(func(value string) error {
		if strings.TrimSpace(value) == "" {
			return ErrRequired
		}
		return nil
	})
}

// MaxLength rejects values longer than n characters.
func MaxLength(n int) Validator {
	return Func(func(value string) error {
		if l := utf8.RuneCountInString(value); l > n {
			return fmt.Errorf("value is %d characters long, maximum is %d", l, n)
		}
		return nil
	})
}

// NoControlChars rejects null bytes and other control characters.
func NoControlChars() Validator {
	return Func(func(value string) error {
		for _, r := range value {
			if unicode.IsControl(r) {
				return fmt.Errorf("value contains control character %U", r)
			}
		}
		return nil
	})
}

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// Phone accepts mainland mobile numbers, the login identifier of the platform.
func Phone() Validator {
	return Func(func(value string) error {
		if !phonePattern.MatchString(strings.TrimSpace(value)) {
			return fmt.Errorf("invalid phone number: %q", value)
		}
		return nil
	})
}

// SearchQuery is the validator for search boxes. Blank is allowed and clears the search.
func SearchQuery() Validator {
	return Chain(NoControlChars(), MaxLength(constants.MaxSearchQueryLength))
}

package binder

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	dateOnlyLayout = "2006-01-02"

	upperRE   = regexp.MustCompile(`[A-Z]`)
	lowerRE   = regexp.MustCompile(`[a-z]`)
	digitRE   = regexp.MustCompile(`\d`)
	specialRE = regexp.MustCompile(`[!@#$%^&*]`)
)

// ParseISO8601 accepts either a full RFC 3339 timestamp or a YYYY-MM-DD date.
func ParseISO8601(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(dateOnlyLayout, value)
}

// iso8601Validator ensures the value can be parsed by ParseISO8601. The empty
// string is left to the required tag.
func iso8601Validator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := ParseISO8601(value)
	return err == nil
}

// passwordValidator requires at least one uppercase letter, one lowercase
// letter, one digit and one of !@#$%^&*.
func passwordValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return upperRE.MatchString(value) &&
		lowerRE.MatchString(value) &&
		digitRE.MatchString(value) &&
		specialRE.MatchString(value)
}

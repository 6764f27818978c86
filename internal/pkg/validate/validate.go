package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Any custom type registrations
// must happen in init() before the first call to Struct.
var v = validator.New()

// Struct validates a struct against its validate tags. Failures come back as
// one error naming each bad field in the casing the API contract uses
// (firstName, dateOfBirth), so the message can be returned to clients as-is.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s fails %s", contractName(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// contractName lowercases the first letter of a Go field name, matching the
// camelCase the JSON contract exposes.
func contractName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

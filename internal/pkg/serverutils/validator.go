package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"saraswati-be/internal/apperror"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts the failures
// into a single validation_error carrying per-field messages.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Validation(err.Error())
	}

	messages := make([]string, 0, len(invalid))
	for _, fieldErr := range invalid {
		messages = append(messages, fmt.Sprintf("%s failed on %s", strings.ToLower(fieldErr.Field()), fieldErr.Tag()))
	}
	return apperror.Validation(strings.Join(messages, "; "))
}

package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/internal/apperror"
)

// validationError converts validator failures into one validation error
// naming every failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Wrap(apperror.KindValidation, err, "invalid input")
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	sort.Strings(messages)
	return apperror.Invalid("validation failed: %s", strings.Join(messages, "; "))
}

func requireSuperuser(isSuperuser bool) error {
	if !isSuperuser {
		return apperror.Forbidden("admin privileges required")
	}
	return nil
}

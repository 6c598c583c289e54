package handlers

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperror"
)

// Guards are the middlewares handlers attach to their routes.
type Guards struct {
	Authenticated fiber.Handler
	Optional      fiber.Handler
	Admin         fiber.Handler
}

var statusByKind = map[apperror.Kind]int{
	apperror.KindNotFound:          fiber.StatusNotFound,
	apperror.KindAuthorization:     fiber.StatusForbidden,
	apperror.KindUnauthenticated:   fiber.StatusUnauthorized,
	apperror.KindValidation:        fiber.StatusBadRequest,
	apperror.KindEmptyCart:         fiber.StatusBadRequest,
	apperror.KindConflict:          fiber.StatusConflict,
	apperror.KindInvalidTransition: fiber.StatusConflict,
	apperror.KindAlreadyPaid:       fiber.StatusConflict,
	apperror.KindAlreadyCancelled:  fiber.StatusConflict,
	apperror.KindCheckoutFailed:    fiber.StatusInternalServerError,
}

// StatusOf maps an error to its HTTP status code.
func StatusOf(err error) int {
	if status, ok := statusByKind[apperror.KindOf(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// fail writes err as {"message": ..., "error": kind}.
func fail(c *fiber.Ctx, action string, err error) error {
	status := StatusOf(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("Error %s: %v", action, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": apperror.MessageOf(err),
		"error":   apperror.KindOf(err),
	})
}

// parseBody decodes the JSON body into dst and validates it.
func parseBody(c *fiber.Ctx, validate *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return apperror.Wrap(apperror.KindValidation, err, "Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperror.Wrap(apperror.KindValidation, err, "Validation failed")
		}
		messages := make([]string, 0, len(fieldErrs))
		for _, e := range fieldErrs {
			messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
		sort.Strings(messages)
		return apperror.Invalid("Validation failed: %s", strings.Join(messages, "; "))
	}
	return nil
}

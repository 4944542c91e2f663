package main

import (
	"errors"
	"strings"

	"github.com/bsthun/gut"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/flowchart"
)

type ErrorResponse struct {
	Success *bool   `json:"success"`
	Message *string `json:"message,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// errorHandler maps errors returned by route handlers to a status and an
// ErrorResponse body.
func (h *handler) errorHandler(c fiber.Ctx, err error) error {
	// * case of `*fiber.Error`
	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return c.Status(fiberError.Code).JSON(&ErrorResponse{
			Success: gut.Ptr(false),
			Message: &fiberError.Message,
		})
	}

	// * case of `validator.ValidationErrors`
	var validatorErr validator.ValidationErrors
	if errors.As(err, &validatorErr) {
		var lists []string
		for _, err := range validatorErr {
			lists = append(lists, err.Field()+" ("+err.Tag()+")")
		}

		return c.Status(fiber.StatusBadRequest).JSON(&ErrorResponse{
			Success: gut.Ptr(false),
			Message: gut.Ptr("validation failed on " + strings.Join(lists, ", ")),
			Error:   gut.Ptr(validatorErr.Error()),
		})
	}

	// * domain errors
	switch {
	case errors.Is(err, flowchart.ErrProcedureNotFound):
		return fail(c, fiber.StatusNotFound, "procedure not found", err)
	case errors.Is(err, flowchart.ErrPageNotFound):
		return fail(c, fiber.StatusNotFound, "page not found", err)
	case errors.Is(err, flowchart.ErrElementNotFound):
		return fail(c, fiber.StatusNotFound, "element not found", err)
	case errors.Is(err, flowchart.ErrShowIfNotFound):
		return fail(c, fiber.StatusNotFound, "show-if not found", err)
	case errors.Is(err, flowchart.ErrConceptNotFound):
		return fail(c, fiber.StatusNotFound, "concept not found", err)
	case errors.Is(err, flowchart.ErrUnresolvedRef):
		return fail(c, fiber.StatusBadRequest, "unresolved criteria_ref", err)
	case errors.Is(err, flowchart.ErrMalformedConditionTree):
		return fail(c, fiber.StatusUnprocessableEntity, "malformed condition tree", err)
	}

	h.logger.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return fail(c, fiber.StatusInternalServerError, "unknown server error", err)
}

func fail(c fiber.Ctx, status int, message string, err error) error {
	return c.Status(status).JSON(&ErrorResponse{
		Success: gut.Ptr(false),
		Message: gut.Ptr(message),
		Error:   gut.Ptr(err.Error()),
	})
}

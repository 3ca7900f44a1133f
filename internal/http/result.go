package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ecowatch/emission-monitor/internal/domain"
	"github.com/ecowatch/emission-monitor/internal/repository"
	"github.com/ecowatch/emission-monitor/internal/service"
)

// Result is the response envelope. Kind tags failures with the error
// taxonomy so clients do not have to parse message text.
type Result struct {
	Success bool        `json:"success"`
	Kind    string      `json:"kind,omitempty"` // validation | not_found | conflict | internal
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

func ok(c *fiber.Ctx, payload interface{}) error {
	return c.JSON(Result{Success: true, Result: payload})
}

// fail maps an error to its taxonomy kind and HTTP status.
func fail(c *fiber.Ctx, err error) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(Result{
			Success: false, Kind: "validation", Message: vErr.Msg,
		})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(Result{
			Success: false, Kind: "not_found", Message: "not found",
		})
	case errors.Is(err, domain.ErrIllegalTransition):
		return c.Status(fiber.StatusConflict).JSON(Result{
			Success: false, Kind: "conflict", Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(Result{
			Success: false, Kind: "internal", Message: err.Error(),
		})
	}
}

package middleware

import (
	"errors"

	"skill-staffing/internal/domain"
	"skill-staffing/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type AllocationExceededData struct {
	Current   int    `json:"current"`
	Requested int    `json:"requested"`
	Resulting int    `json:"resulting"`
	AsOf      string `json:"as_of,omitempty"`
}

// FromDomainError maps the domain error taxonomy onto HTTP statuses. The
// message carries the wrapped detail for client errors.
func FromDomainError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var exceeded *domain.AllocationExceededError
	if errors.As(err, &exceeded) {
		data := AllocationExceededData{
			Current:   exceeded.Current,
			Requested: exceeded.Requested,
			Resulting: exceeded.Resulting,
		}
		if !exceeded.AsOf.IsZero() {
			data.AsOf = exceeded.AsOf.Format(domain.DateLayout)
		}
		return NewAppError(fiber.StatusConflict, exceeded.Error(), data, err)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return NewAppError(fiber.StatusNotFound, err.Error(), nil, err)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidStateTransition):
		return NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, domain.ErrForbidden):
		return NewAppError(fiber.StatusForbidden, err.Error(), nil, err)
	case errors.Is(err, domain.ErrDuplicatePendingRequest),
		errors.Is(err, domain.ErrDuplicateAssignment),
		errors.Is(err, domain.ErrDuplicateEndorsement):
		return NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	default:
		return NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

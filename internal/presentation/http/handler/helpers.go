package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint/internal/application/register"
	"github.com/sangkips/tillpoint/internal/domain/cart"
	"github.com/sangkips/tillpoint/internal/domain/pricing"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/internal/presentation/http/middleware"
	"github.com/sangkips/tillpoint/pkg/apperror"
)

// GetTerminalID extracts the authenticated terminal from the Gin context
func GetTerminalID(c *gin.Context) string {
	return middleware.GetTerminalID(c)
}

// toAppError maps register and domain errors onto HTTP statuses. Errors
// that already carry a status pass through.
func toAppError(err error) error {
	if apperror.IsAppError(err) {
		return err
	}

	switch {
	case settlement.IsValidation(err):
		return apperror.NewUnprocessableError(err.Error())
	case errors.Is(err, register.ErrCheckoutFailed):
		return apperror.NewBadGatewayError(err.Error())
	case errors.Is(err, register.ErrTerminalDecline):
		return apperror.NewAppError(http.StatusPaymentRequired, err.Error())
	case errors.Is(err, register.ErrUnknownItem),
		errors.Is(err, cart.ErrLineNotFound):
		return apperror.NewAppError(http.StatusNotFound, err.Error())
	case errors.Is(err, register.ErrEmptyToken),
		errors.Is(err, register.ErrNoCustomer),
		errors.Is(err, cart.ErrNameRequired),
		errors.Is(err, cart.ErrNegativePrice),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrProductRequired),
		errors.Is(err, pricing.ErrInvalidAmount),
		errors.Is(err, pricing.ErrNegativeAmount):
		return apperror.NewBadRequestError(err.Error())
	default:
		return apperror.NewBadGatewayError(err.Error())
	}
}

package controllers

import (
	"errors"

	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
)

// errorResponseFor maps engine errors onto the client-facing error catalog.
func errorResponseFor(err error) *responses.ErrorResponse {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return &responses.UnauthorizedError
	case errors.Is(err, service.ErrInvalidState):
		return &responses.InvalidStateError
	case errors.Is(err, service.ErrInvalidPayment):
		return &responses.InvalidPaymentError
	case errors.Is(err, service.ErrInvalidTerms):
		return &responses.InvalidTermsError
	case errors.Is(err, service.ErrNotEnoughBalance):
		return &responses.NotEnoughBalanceError
	case errors.Is(err, service.ErrInvoiceNotFound):
		return &responses.InvoiceNotFoundError
	default:
		return &responses.GeneralServerError
	}
}

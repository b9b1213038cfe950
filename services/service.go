package services

import (
	"errors"

	"ringwin/gateway"
	"ringwin/storage"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrValidation            = errors.New("invalid request")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientPoints    = errors.New("insufficient ringtone points")
	ErrSoldOut               = errors.New("competition is sold out")
	ErrInsufficientInventory = errors.New("not enough tickets remaining")
	ErrOrderNotPending       = errors.New("order is no longer pending")
	ErrNotCompleted          = errors.New("payment is not completed yet")
	ErrInvalidMetadata       = errors.New("payment metadata is missing or malformed")
	ErrPurchaseFailed        = errors.New("purchase could not be completed")
)

// Service wires the ledger store and the payment gateway client together.
// The gateway is injected so tests can run against a double.
type Service struct {
	store storage.Ledger
	gw    gateway.PaymentClient
}

func New(store storage.Ledger, gw gateway.PaymentClient) *Service {
	return &Service{store: store, gw: gw}
}

// HTTPError maps a service failure to an HTTP status and a user-facing
// message. Provider internals never reach the response.
func HTTPError(err error) (int, string) {
	var gwErr *gateway.Error
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &gwErr):
		return fiber.StatusBadGateway, "PAYMENT_PROVIDER_ERROR"
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrInsufficientPoints),
		errors.Is(err, ErrSoldOut),
		errors.Is(err, ErrInsufficientInventory),
		errors.Is(err, ErrOrderNotPending),
		errors.Is(err, ErrNotCompleted),
		errors.Is(err, ErrInvalidMetadata),
		errors.Is(err, ErrPurchaseFailed):
		return fiber.StatusBadRequest, err.Error()
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

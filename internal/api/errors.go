package api

import (
	"errors"
	"net/http"

	"github.com/minbank/ledger-service/internal/models"
)

// kindOf maps the service's typed failures to a status, a stable code
// and a human-readable denial message. Every kind stays distinct so a
// caller can render them differently.
func kindOf(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount", "amount must be a positive whole number"
	case errors.Is(err, models.ErrSelfTransfer):
		return http.StatusBadRequest, "self_transfer", "you cannot transfer funds to yourself"
	case errors.Is(err, models.ErrInvalidUsername):
		return http.StatusBadRequest, "invalid_username", "username must be at least 3 characters"
	case errors.Is(err, models.ErrSenderNotFound):
		return http.StatusNotFound, "sender_not_found", "your account could not be found"
	case errors.Is(err, models.ErrReceiverNotFound):
		return http.StatusNotFound, "receiver_not_found", "the receiving account could not be found"
	case errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound, "account_not_found", "account not found"
	case errors.Is(err, models.ErrTransactionNotFound):
		return http.StatusNotFound, "transaction_not_found", "transaction not found"
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient_funds", "your balance does not cover this transfer"
	case errors.Is(err, models.ErrAccountExists):
		return http.StatusConflict, "account_exists", "that username is already taken"
	case errors.Is(err, models.ErrTransactionAborted):
		return http.StatusConflict, "transaction_aborted", "the transfer could not be completed, please retry"
	}
	return http.StatusInternalServerError, "internal_error", "internal error"
}

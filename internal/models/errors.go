package models

import "errors"

var (
	// ErrInvalidAmount rejects non-numeric, non-integer, zero and
	// negative transfer amounts.
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrSelfTransfer rejects transfers where the receiver is missing or
	// equals the sender.
	ErrSelfTransfer = errors.New("cannot transfer to self")

	// ErrSenderNotFound / ErrReceiverNotFound mark an absent account end.
	ErrSenderNotFound   = errors.New("sender account not found")
	ErrReceiverNotFound = errors.New("receiver account not found")

	// ErrInsufficientFunds means a standard sender lacks balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTransactionAborted means the atomic commit failed (lock wait
	// exceeded, store fault). The caller may retry; no mutation happened.
	ErrTransactionAborted = errors.New("transaction aborted")

	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidUsername = errors.New("username too short")

	// ErrTransactionNotFound marks a history lookup for an id that was
	// never committed, as opposed to a store fault.
	ErrTransactionNotFound = errors.New("transaction not found")
)

package repository

import "errors"

var (
	// ErrAccountNotFound is returned when a credit account does not exist
	ErrAccountNotFound = errors.New("credit account not found")
	// ErrInsufficientBalance is returned when a payment exceeds the balance owed
	ErrInsufficientBalance = errors.New("payment exceeds outstanding balance")
)

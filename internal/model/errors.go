package model

import "errors"

var (
	// User related errors
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already in use")
	ErrWrongPassword = errors.New("wrong password")

	// Category related errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrSiblingNameTaken = errors.New("category name already exists at this level")

	// Expense event related errors
	ErrEventNotFound = errors.New("expense event not found")

	// Document related errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrFileTooLarge     = errors.New("file too large")

	// Generic errors
	ErrUnauthorized = errors.New("unauthorized")
)

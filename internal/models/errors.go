package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound         = errors.New("resource not found") // General not found
	ErrScenarioNotFound = errors.New("scenario not found")

	// User & Authentication Errors
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden    = errors.New("forbidden")    // Authenticated, but lacks permission

	// Scenario Lifecycle Errors
	ErrInvalidState      = errors.New("operation is not valid for the scenario's current status")
	ErrGenerationFailed  = errors.New("alternative path generation failed")
	ErrPersistenceFailed = errors.New("failed to persist scenario state")

	// General Request/Server Errors
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidInput = errors.New("invalid input data")
)

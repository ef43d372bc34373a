package services

import "github.com/asyncrace/asyncrace/internal/errors"

// Service errors. Each carries the error kind the presentation layer
// maps to a response; permission denials share one generic message so
// callers cannot probe why they were refused.
var (
	ErrRaceNotActive = &errors.Error{
		Kind:    errors.ErrPreconditionFailed,
		Message: "race is not active",
	}
	ErrNotAssigned = &errors.Error{
		Kind:    errors.ErrPermissionDenied,
		Message: "you do not have permission to do that",
	}
	ErrMissingRequiredTime = &errors.Error{
		Kind:    errors.ErrValidation,
		Message: "the required finish time is missing",
	}
	ErrEditNotAllowed = &errors.Error{
		Kind:    errors.ErrPreconditionFailed,
		Message: "race cannot be edited: it is active or already has submissions",
	}
	ErrHasSubmissions = &errors.Error{
		Kind:    errors.ErrPreconditionFailed,
		Message: "race has submissions and cannot be removed",
	}
	ErrNotAssignedRace = &errors.Error{
		Kind:    errors.ErrPreconditionFailed,
		Message: "race has no roster assignments",
	}
	ErrPermissionDenied = &errors.Error{
		Kind:    errors.ErrPermissionDenied,
		Message: "you do not have permission to do that",
	}
)

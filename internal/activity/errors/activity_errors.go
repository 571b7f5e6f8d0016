package activityerrors

import (
	"net/http"

	"leavedesk/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidTimeFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid time format, expected HH:MM",
		http.StatusBadRequest,
	)
	ErrInvalidTimeRange = apperror.New(
		apperror.CodeInvalidInput,
		"start time must be before end time",
		http.StatusBadRequest,
	)
	ErrInvalidClockRange = apperror.New(
		apperror.CodeInvalidInput,
		"clock_in must be before clock_out",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"activity request not found",
		http.StatusNotFound,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending requests can be decided",
		http.StatusBadRequest,
	)
	ErrSubmitForOthersForbidden = apperror.New(
		apperror.CodeForbidden,
		"submitting a request for another employee requires an elevated role",
		http.StatusForbidden,
	)
)

package leaveerrors

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
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrHalfDayRange = apperror.New(
		apperror.CodeInvalidInput,
		"a half-day request must start and end on the same date",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can change status",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason of at least 10 characters is required when rejecting",
		http.StatusBadRequest,
	)
	ErrApprovalForbidden = apperror.New(
		apperror.CodeForbidden,
		"approving or rejecting leave requires an elevated role",
		http.StatusForbidden,
	)
	ErrCancelForbidden = apperror.New(
		apperror.CodeForbidden,
		"only the request owner or an elevated role may cancel",
		http.StatusForbidden,
	)
	ErrCreateForOthersForbidden = apperror.New(
		apperror.CodeForbidden,
		"filing leave for another employee requires an elevated role",
		http.StatusForbidden,
	)
	ErrQuotaRace = apperror.New(
		apperror.CodeConflict,
		"the paid leave balance changed while processing this request; please retry",
		http.StatusConflict,
	)
)

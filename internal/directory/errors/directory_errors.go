package directoryerrors

import (
	"net/http"

	"go-hris-leave/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrReviewerNotConfigured = apperror.New(
		apperror.CodeInvalidInput,
		"Reviewing manager info not configured for this employee",
		http.StatusBadRequest,
	)
)

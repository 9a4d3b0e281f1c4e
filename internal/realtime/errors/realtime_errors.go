package realtimeerrors

import (
	"net/http"

	"go-hris-leave/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrEmployeeMismatch = apperror.New(
		apperror.CodeForbidden,
		"you can only subscribe to your own notifications",
		http.StatusForbidden,
	)
)

package notificationerrors

import (
	"net/http"

	"go-hris-leave/internal/shared/apperror"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Notification not found",
		http.StatusNotFound,
	)
	ErrInvalidNotificationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid notification id",
		http.StatusBadRequest,
	)
	ErrDuplicateRecipient = apperror.New(
		apperror.CodeConflict,
		"notification already exists for this recipient",
		http.StatusConflict,
	)
)

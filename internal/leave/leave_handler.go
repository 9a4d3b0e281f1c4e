package leave

import (
	"net/http"
	"strconv"

	leaveerrors "go-hris-leave/internal/leave/errors"
	"go-hris-leave/internal/middleware"
	"go-hris-leave/internal/shared/apperror"
	"go-hris-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Submit(c *gin.Context) {
	actorID := middleware.EmployeeID(c)
	h.logger.Debug("http submit leave", zap.Int64("employee_id", actorID))

	var req SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http submit leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListMine(c *gin.Context) {
	resp, err := h.service.ListMine(c.Request.Context(), middleware.EmployeeID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.leaveID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetByID(c.Request.Context(), middleware.EmployeeID(c), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Monthly(c *gin.Context) {
	year, errY := strconv.Atoi(c.Param("year"))
	month, errM := strconv.Atoi(c.Param("month"))
	if errY != nil || errM != nil {
		h.writeServiceError(c, leaveerrors.ErrInvalidPeriod)
		return
	}
	resp, err := h.service.Monthly(c.Request.Context(), middleware.EmployeeID(c), year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Summary(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		h.writeServiceError(c, leaveerrors.ErrInvalidPeriod)
		return
	}
	resp, err := h.service.Summary(c.Request.Context(), middleware.EmployeeID(c), year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) HandleAction(c *gin.Context) {
	id, ok := h.leaveID(c)
	if !ok {
		return
	}
	var req LeaveActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, leaveerrors.ErrInvalidAction)
		return
	}
	resp, err := h.service.HandleAction(c.Request.Context(), middleware.EmployeeID(c), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	h.review(c, ActionApprove)
}

func (h *Handler) Reject(c *gin.Context) {
	h.review(c, ActionReject)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.leaveID(c)
	if !ok {
		return
	}
	resp, err := h.service.Cancel(c.Request.Context(), middleware.EmployeeID(c), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) review(c *gin.Context, action string) {
	id, ok := h.leaveID(c)
	if !ok {
		return
	}

	// An empty body is a review without comment.
	var req CommentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeServiceError(c, apperror.MapValidationError(err))
			return
		}
	}

	ctx := c.Request.Context()
	actorID := middleware.EmployeeID(c)
	var (
		resp ActionResponse
		err  error
	)
	if action == ActionApprove {
		resp, err = h.service.Approve(ctx, actorID, id, req.Comment)
	} else {
		resp, err = h.service.Reject(ctx, actorID, id, req.Comment)
	}
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) leaveID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeServiceError(c, leaveerrors.ErrInvalidLeaveID)
		return 0, false
	}
	return id, true
}

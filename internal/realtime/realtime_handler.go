package realtime

import (
	"net/http"
	"strconv"

	"go-hris-leave/internal/middleware"
	"go-hris-leave/internal/notification"
	realtimeerrors "go-hris-leave/internal/realtime/errors"
	"go-hris-leave/internal/shared/apperror"
	"go-hris-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub      *Hub
	service  notification.Service
	opts     Options
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler builds the gateway endpoint. An empty allowedOrigins accepts
// any origin.
func NewHandler(hub *Hub, service notification.Service, opts Options, allowedOrigins []string, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("realtime.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("realtime.handler")
	}
	opts = opts.withDefaults()
	return &Handler{
		hub:     hub,
		service: service,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: l,
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("websocket connect rejected",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Connect upgrades GET /ws/leave-notifications/:employee_id.
func (h *Handler) Connect(c *gin.Context) {
	employeeID, err := strconv.ParseInt(c.Param("employee_id"), 10, 64)
	if err != nil || employeeID <= 0 {
		h.writeError(c, realtimeerrors.ErrInvalidEmployeeID)
		return
	}
	if middleware.EmployeeID(c) != employeeID {
		h.writeError(c, realtimeerrors.ErrEmployeeMismatch)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already answered the client.
		h.logger.Warn("websocket upgrade failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, employeeID, h.service, h.opts, h.logger)
	client.enqueueJSON(ConnectedMessage{Type: TypeConnected, EmployeeID: employeeID})
	h.hub.Join(client)

	go client.writePump()
	go client.readPump()

	h.logger.Info("websocket connected",
		zap.Int64("employee_id", employeeID),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

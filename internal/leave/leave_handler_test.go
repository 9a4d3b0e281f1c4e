package leave_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-hris-leave/internal/leave"
	leaveerrors "go-hris-leave/internal/leave/errors"
	"go-hris-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

type fakeLeaveService struct {
	leave.Service

	submitFn  func(ctx context.Context, actorID int64, req leave.SubmitLeaveRequest) (leave.ActionResponse, error)
	monthlyFn func(ctx context.Context, actorID int64, year, month int) (leave.MonthlyLeavesResponse, error)
	actionFn  func(ctx context.Context, actorID, id int64, req leave.LeaveActionRequest) (leave.ActionResponse, error)
	approveFn func(ctx context.Context, actorID, id int64, comment string) (leave.ActionResponse, error)
	cancelFn  func(ctx context.Context, actorID, id int64) (leave.ActionResponse, error)
}

func (f *fakeLeaveService) Submit(ctx context.Context, actorID int64, req leave.SubmitLeaveRequest) (leave.ActionResponse, error) {
	return f.submitFn(ctx, actorID, req)
}
func (f *fakeLeaveService) Monthly(ctx context.Context, actorID int64, year, month int) (leave.MonthlyLeavesResponse, error) {
	return f.monthlyFn(ctx, actorID, year, month)
}
func (f *fakeLeaveService) HandleAction(ctx context.Context, actorID, id int64, req leave.LeaveActionRequest) (leave.ActionResponse, error) {
	return f.actionFn(ctx, actorID, id, req)
}
func (f *fakeLeaveService) Approve(ctx context.Context, actorID, id int64, comment string) (leave.ActionResponse, error) {
	return f.approveFn(ctx, actorID, id, comment)
}
func (f *fakeLeaveService) Cancel(ctx context.Context, actorID, id int64) (leave.ActionResponse, error) {
	return f.cancelFn(ctx, actorID, id)
}

func newRouter(h *leave.Handler, employeeID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextEmployeeID, employeeID)
		c.Next()
	})
	r.POST("/leaves", h.Submit)
	r.GET("/leaves/monthly/:year/:month", h.Monthly)
	r.POST("/leaves/:id/action", h.HandleAction)
	r.POST("/leaves/:id/approve", h.Approve)
	r.POST("/leaves/:id/cancel", h.Cancel)
	return r
}

func doJSON(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLeaveHandler_Submit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(ctx context.Context, actorID int64, req leave.SubmitLeaveRequest) (leave.ActionResponse, error) {
				assert.Equal(t, employeeID, actorID)
				assert.Equal(t, "SICK", req.LeaveType)
				return leave.ActionResponse{Message: leave.MsgSubmitted, Leave: leave.LeaveResponse{ID: 11}}, nil
			},
		}
		r := newRouter(leave.NewHandler(svc), employeeID)

		w := doJSON(r, http.MethodPost, "/leaves", map[string]any{
			"employee_id": employeeID,
			"leave_type":  "SICK",
			"start_date":  "2025-09-15",
			"end_date":    "2025-09-15",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var data leave.ActionResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, int64(11), data.Leave.ID)
		assert.Equal(t, leave.MsgSubmitted, data.Message)
	})

	t.Run("negative - unknown leave type fails binding", func(t *testing.T) {
		r := newRouter(leave.NewHandler(&fakeLeaveService{}), employeeID)

		w := doJSON(r, http.MethodPost, "/leaves", map[string]any{
			"employee_id": employeeID,
			"leave_type":  "SABBATICAL",
			"start_date":  "2025-09-15",
			"end_date":    "2025-09-15",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})
}

func TestLeaveHandler_Monthly(t *testing.T) {
	t.Run("negative - non numeric month", func(t *testing.T) {
		r := newRouter(leave.NewHandler(&fakeLeaveService{}), employeeID)

		w := doJSON(r, http.MethodGet, "/leaves/monthly/2025/sep", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := &fakeLeaveService{
			monthlyFn: func(ctx context.Context, actorID int64, year, month int) (leave.MonthlyLeavesResponse, error) {
				assert.Equal(t, 2025, year)
				assert.Equal(t, 9, month)
				return leave.MonthlyLeavesResponse{Month: "2025-09", Results: []leave.LeaveResponse{}}, nil
			},
		}
		r := newRouter(leave.NewHandler(svc), employeeID)

		w := doJSON(r, http.MethodGet, "/leaves/monthly/2025/9", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLeaveHandler_Action(t *testing.T) {
	t.Run("negative - stale state maps to conflict", func(t *testing.T) {
		svc := &fakeLeaveService{
			actionFn: func(ctx context.Context, actorID, id int64, req leave.LeaveActionRequest) (leave.ActionResponse, error) {
				assert.Equal(t, int64(4), id)
				assert.Equal(t, "approve", req.Action)
				return leave.ActionResponse{}, leaveerrors.ErrStaleState
			},
		}
		r := newRouter(leave.NewHandler(svc), managerID)

		w := doJSON(r, http.MethodPost, "/leaves/4/action", map[string]string{"action": "approve"})

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	t.Run("negative - invalid id", func(t *testing.T) {
		r := newRouter(leave.NewHandler(&fakeLeaveService{}), managerID)

		w := doJSON(r, http.MethodPost, "/leaves/abc/action", map[string]string{"action": "approve"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success - approve without body", func(t *testing.T) {
		svc := &fakeLeaveService{
			approveFn: func(ctx context.Context, actorID, id int64, comment string) (leave.ActionResponse, error) {
				assert.Equal(t, managerID, actorID)
				assert.Empty(t, comment)
				return leave.ActionResponse{Message: leave.MsgApproved}, nil
			},
		}
		r := newRouter(leave.NewHandler(svc), managerID)

		req := httptest.NewRequest(http.MethodPost, "/leaves/4/approve", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative - forbidden cancel", func(t *testing.T) {
		svc := &fakeLeaveService{
			cancelFn: func(ctx context.Context, actorID, id int64) (leave.ActionResponse, error) {
				return leave.ActionResponse{}, leaveerrors.ErrNotOwner
			},
		}
		r := newRouter(leave.NewHandler(svc), managerID)

		w := doJSON(r, http.MethodPost, "/leaves/4/cancel", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

package leave_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"leavedesk/internal/leave"
	leaveerrors "leavedesk/internal/leave/errors"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeLeaveService struct {
	createFn       func(ctx context.Context, actorID string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error)
	getAllFn       func(ctx context.Context, actorID string) ([]leave.LeaveResponse, error)
	getByIDFn      func(ctx context.Context, actorID, id string) (leave.LeaveResponse, error)
	updateStatusFn func(ctx context.Context, actorID, id string, req leave.UpdateLeaveStatusRequest) (leave.LeaveResponse, error)
	getBalanceFn   func(ctx context.Context, employeeID string) (leave.BalanceResponse, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, actorID string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	return f.createFn(ctx, actorID, req)
}
func (f *fakeLeaveService) GetAll(ctx context.Context, actorID string) ([]leave.LeaveResponse, error) {
	return f.getAllFn(ctx, actorID)
}
func (f *fakeLeaveService) GetByID(ctx context.Context, actorID, id string) (leave.LeaveResponse, error) {
	return f.getByIDFn(ctx, actorID, id)
}
func (f *fakeLeaveService) UpdateStatus(ctx context.Context, actorID, id string, req leave.UpdateLeaveStatusRequest) (leave.LeaveResponse, error) {
	return f.updateStatusFn(ctx, actorID, id, req)
}
func (f *fakeLeaveService) GetBalance(ctx context.Context, employeeID string) (leave.BalanceResponse, error) {
	return f.getBalanceFn(ctx, employeeID)
}

func newTestContext(t *testing.T, method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestLeaveHandler_Create(t *testing.T) {
	t.Run("success returns 201 with warning as message", func(t *testing.T) {
		actorID := uuid.New().String()

		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, aid string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, actorID, aid)
				assert.Equal(t, "birthday", req.LeaveType)
				return leave.LeaveResponse{
					ID:         uuid.New().String(),
					EmployeeID: aid,
					LeaveType:  req.LeaveType,
					Status:     leave.StatusPending,
					Warning:    "the requested birthday leave falls on a weekend; the yearly quota will still be consumed",
				}, nil
			},
		}

		h := leave.NewHandler(svc)
		body := `{"leave_type":"birthday","start_date":"2026-06-20","end_date":"2026-06-20","reason":"birthday"}`
		c, w := newTestContext(t, http.MethodPost, "/leaves", body)
		c.Set("employee_id", actorID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Success)
		assert.Contains(t, env.Message, "weekend")

		var got leave.LeaveResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, leave.StatusPending, got.Status)
	})

	t.Run("uses user_id_validated when employee_id is absent", func(t *testing.T) {
		actorID := uuid.New().String()

		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, aid string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, actorID, aid)
				return leave.LeaveResponse{Status: leave.StatusPending}, nil
			},
		}

		h := leave.NewHandler(svc)
		body := `{"leave_type":"vacation","start_date":"2026-07-01","end_date":"2026-07-02","reason":"trip"}`
		c, w := newTestContext(t, http.MethodPost, "/leaves", body)
		c.Set("user_id_validated", actorID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("binding failure returns 400 with error field", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		c, w := newTestContext(t, http.MethodPost, "/leaves", `{}`)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Error)
	})

	t.Run("policy violation surfaces the rule message with 400", func(t *testing.T) {
		policyErr := leaveerrors.ErrQuotaRace
		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, aid string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, policyErr
			},
		}

		h := leave.NewHandler(svc)
		body := `{"leave_type":"vacation","start_date":"2026-07-01","end_date":"2026-07-02","reason":"trip"}`
		c, w := newTestContext(t, http.MethodPost, "/leaves", body)
		c.Set("employee_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Success)
		assert.Equal(t, policyErr.Message, env.Error)
	})

	t.Run("unknown error collapses to 500 with a generic message", func(t *testing.T) {
		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, aid string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, errors.New("pq: connection refused")
			},
		}

		h := leave.NewHandler(svc)
		body := `{"leave_type":"vacation","start_date":"2026-07-01","end_date":"2026-07-02","reason":"trip"}`
		c, w := newTestContext(t, http.MethodPost, "/leaves", body)
		c.Set("employee_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Success)
		assert.NotContains(t, env.Error, "pq:")
	})
}

func TestLeaveHandler_UpdateStatus(t *testing.T) {
	t.Run("forbidden transition returns 403", func(t *testing.T) {
		svc := &fakeLeaveService{
			updateStatusFn: func(ctx context.Context, aid, id string, req leave.UpdateLeaveStatusRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrApprovalForbidden
			},
		}

		h := leave.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPut, "/leaves/some-id", `{"status":"approved"}`)
		c.Set("employee_id", uuid.New().String())
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.UpdateStatus(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Success)
	})

	t.Run("missing request returns 404", func(t *testing.T) {
		svc := &fakeLeaveService{
			updateStatusFn: func(ctx context.Context, aid, id string, req leave.UpdateLeaveStatusRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrLeaveNotFound
			},
		}

		h := leave.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPut, "/leaves/some-id", `{"status":"cancelled"}`)
		c.Set("employee_id", uuid.New().String())
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.UpdateStatus(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success includes the new status in the message", func(t *testing.T) {
		svc := &fakeLeaveService{
			updateStatusFn: func(ctx context.Context, aid, id string, req leave.UpdateLeaveStatusRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{ID: id, Status: req.Status}, nil
			},
		}

		h := leave.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPut, "/leaves/some-id", `{"status":"approved"}`)
		c.Set("employee_id", uuid.New().String())
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.UpdateStatus(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Success)
		assert.Equal(t, "leave request approved", env.Message)
	})

	t.Run("invalid status value fails binding", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		c, w := newTestContext(t, http.MethodPut, "/leaves/some-id", `{"status":"maybe"}`)

		h.UpdateStatus(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLeaveHandler_GetBalance(t *testing.T) {
	employeeID := uuid.New().String()

	svc := &fakeLeaveService{
		getBalanceFn: func(ctx context.Context, empID string) (leave.BalanceResponse, error) {
			assert.Equal(t, employeeID, empID)
			return leave.BalanceResponse{
				EmployeeID:         empID,
				Year:               2026,
				PaidLeaveQuota:     "15",
				PaidLeaveUsed:      "4",
				PaidLeaveRemaining: "11",
			}, nil
		},
	}

	h := leave.NewHandler(svc)
	c, w := newTestContext(t, http.MethodGet, "/leaves/balance", "")
	c.Set("employee_id", employeeID)

	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Success)

	var got leave.BalanceResponse
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "11", got.PaidLeaveRemaining)
}

package leave

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"leavedesk/internal/shared/apperror"
	"leavedesk/internal/shared/response"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	return NewHandlerWithRedis(service, nil, logger...)
}

func NewHandlerWithRedis(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("employee_id")
	if actorID == "" {
		actorID = c.GetString("user_id_validated")
	}
	return actorID
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	status, message := apperror.ToHTTP(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("leave request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	} else {
		h.logger.Warn("leave request refused",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.String("message", message),
		)
	}
	response.Error(c, status, message)
}

func (h *Handler) Create(c *gin.Context) {
	actorID := getActorID(c)

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create leave validation failed", zap.Error(err))
		_, message := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, http.StatusBadRequest, message)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.storeIdempotentResult(c, resp)
	response.Success(c, http.StatusCreated, resp, resp.Warning)
}

// storeIdempotentResult caches the created resource under the request's
// Idempotency-Key and releases the in-flight lock taken by the middleware.
func (h *Handler) storeIdempotentResult(c *gin.Context, resp LeaveResponse) {
	if h.rdb == nil {
		return
	}
	cacheKey := c.GetString("idempotency_cache_key")
	lockKey := c.GetString("idempotency_lock_key")
	if cacheKey == "" {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	ctx := c.Request.Context()
	if err := h.rdb.Set(ctx, cacheKey, payload, 24*time.Hour).Err(); err != nil {
		h.logger.Warn("idempotency cache set failed", zap.Error(err))
	}
	if lockKey != "" {
		_ = h.rdb.Del(ctx, lockKey).Err()
	}
}

func (h *Handler) GetAll(c *gin.Context) {
	ctx := c.Request.Context()
	actorID := getActorID(c)

	resp, err := h.service.GetAll(ctx, actorID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.SuccessList(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()
	actorID := getActorID(c)
	id := c.Param("id")

	resp, err := h.service.GetByID(ctx, actorID, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, "")
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()
	actorID := getActorID(c)
	id := c.Param("id")

	var req UpdateLeaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http update leave status validation failed", zap.Error(err))
		_, message := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, http.StatusBadRequest, message)
		return
	}

	resp, err := h.service.UpdateStatus(ctx, actorID, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, "leave request "+resp.Status)
}

func (h *Handler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()
	actorID := getActorID(c)

	resp, err := h.service.GetBalance(ctx, actorID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, "")
}

package activity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leavedesk/internal/shared/apperror"
	"leavedesk/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("activity.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("activity.handler")
	}
	return &Handler{service: service, logger: l}
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
		h.logger.Error("activity request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	} else {
		h.logger.Warn("activity request refused",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.String("message", message),
		)
	}
	response.Error(c, status, message)
}

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Warn("http activity validation failed", zap.Error(err))
		_, message := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func (h *Handler) SubmitWorkFromHome(c *gin.Context) {
	var req WorkFromHomeSubmission
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.SubmitWorkFromHome(c.Request.Context(), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, "")
}

func (h *Handler) SubmitPartialDay(c *gin.Context) {
	var req PartialDaySubmission
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.SubmitPartialDay(c.Request.Context(), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, "")
}

func (h *Handler) SubmitRegularization(c *gin.Context) {
	var req RegularizationSubmission
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.SubmitRegularization(c.Request.Context(), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, "")
}

func (h *Handler) Decide(c *gin.Context) {
	var req DecideRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Decide(c.Request.Context(), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, "request "+resp.Status)
}

func (h *Handler) GetOwnRequests(c *gin.Context) {
	resp, err := h.service.GetOwnRequests(c.Request.Context(), getActorID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, "")
}

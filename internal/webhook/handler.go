package webhook

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"elite_crm_backend/platform/httpkit"
	"elite_crm_backend/platform/validator"
)

const (
	defaultSessionLimit = 50
	defaultHistoryLimit = 100
)

type Handler struct {
	service *Service
	val     *validator.Validator
}

func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleInbound receives gateway webhook posts. Deliberately skipped traffic
// (echoes, groups, status broadcasts, other event types) is acked with 200 so
// the gateway does not retry it; a payload with no phone or body is malformed
// and gets a 400.
func (h *Handler) HandleInbound(c *gin.Context) {
	var payload GatewayPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid webhook payload", err.Error())
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), payload)
	if httpkit.HandleError(c, err) {
		return
	}

	if result.Skipped == SkipEmptyPhone || result.Skipped == SkipEmptyBody {
		httpkit.Error(c, http.StatusBadRequest, "payload missing phone or message", string(result.Skipped))
		return
	}

	httpkit.OK(c, result)
}

type SendMessageRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=4096"`
	SenderID string `json:"senderId" validate:"required"`
}

func (h *Handler) HandleSendMessage(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	msg, err := h.service.Send(c.Request.Context(), tenantID, sessionID, req.SenderID, req.Content)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, msg)
}

func (h *Handler) HandleListSessions(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	sessions, err := h.service.Sessions(c.Request.Context(), tenantID, queryLimit(c, defaultSessionLimit))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"sessions": sessions})
}

func (h *Handler) HandleSessionMessages(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	messages, err := h.service.SessionMessages(c.Request.Context(), tenantID, sessionID, queryLimit(c, defaultHistoryLimit))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"messages": messages})
}

func (h *Handler) HandleDeleteSession(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.service.DeleteSession(c.Request.Context(), tenantID, sessionID)) {
		return
	}

	httpkit.OK(c, gin.H{"deleted": sessionID})
}

func (h *Handler) HandleReanalyzeSession(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	taskID, err := h.service.Reanalyze(c.Request.Context(), tenantID, sessionID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"taskId": taskID})
}

func (h *Handler) tenantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader("X-Tenant-ID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "missing or invalid X-Tenant-ID header", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid session id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return false
	}
	return true
}

func queryLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}

package handler

import (
	"errors"
	"net/http"

	response "meetup-go-app/backend/internal/infra/common"
	unlocksvc "meetup-go-app/backend/internal/service/unlock"

	"github.com/gin-gonic/gin"
)

// UnlockHandler 负责联系方式解锁接口。
type UnlockHandler struct {
	service *unlocksvc.Service
}

// NewUnlockHandler 构造解锁 Handler。
func NewUnlockHandler(service *unlocksvc.Service) *UnlockHandler {
	return &UnlockHandler{service: service}
}

type unlockRequestPayload struct {
	TargetID uint `json:"target_id" binding:"required"`
}

// Request 向对方发起一次解锁请求。
func (h *UnlockHandler) Request(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	var req unlockRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid unlock payload", nil)
		return
	}

	r, err := h.service.Request(c.Request.Context(), memberID, req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, unlocksvc.ErrSelfUnlock):
			response.Fail(c, http.StatusBadRequest, response.ErrSelfTarget, err.Error(), nil)
		case errors.Is(err, unlocksvc.ErrDuplicateRequest):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyExists, err.Error(), nil)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "create unlock request failed", nil)
		}
		return
	}

	response.Created(c, r, nil)
}

type respondUnlockRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// Respond 同意或拒绝一条收到的解锁请求。
func (h *UnlockHandler) Respond(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	requestID, ok := parseIDParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid request id", nil)
		return
	}

	var req respondUnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid respond payload", nil)
		return
	}

	r, err := h.service.Respond(c.Request.Context(), requestID, memberID, *req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, unlocksvc.ErrRequestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
		case errors.Is(err, unlocksvc.ErrNotTarget):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden, err.Error(), nil)
		case errors.Is(err, unlocksvc.ErrAlreadyResponded):
			response.Fail(c, http.StatusConflict, response.ErrConflict, err.Error(), nil)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "respond unlock failed", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, r, nil)
}

// ListReceived 返回等待本人处理的解锁请求。
func (h *UnlockHandler) ListReceived(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	requests, err := h.service.ListReceived(c.Request.Context(), memberID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list unlock requests failed", nil)
		return
	}
	response.Success(c, http.StatusOK, requests, nil)
}

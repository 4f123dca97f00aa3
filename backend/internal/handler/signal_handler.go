package handler

import (
	"errors"
	"net/http"

	response "meetup-go-app/backend/internal/infra/common"
	signalsvc "meetup-go-app/backend/internal/service/signal"

	"github.com/gin-gonic/gin"
)

// SignalHandler 负责好感信号的发送与应答接口。
type SignalHandler struct {
	service *signalsvc.Service
}

// NewSignalHandler 构造信号 Handler。
func NewSignalHandler(service *signalsvc.Service) *SignalHandler {
	return &SignalHandler{service: service}
}

type sendSignalRequest struct {
	ReceiverID uint `json:"receiver_id" binding:"required"`
}

// Send 向另一位会员发送信号。
func (h *SignalHandler) Send(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	var req sendSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid signal payload", nil)
		return
	}

	sig, err := h.service.Send(c.Request.Context(), memberID, req.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, signalsvc.ErrSelfSignal):
			response.Fail(c, http.StatusBadRequest, response.ErrSelfTarget, err.Error(), nil)
		case errors.Is(err, signalsvc.ErrReceiverNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
		case errors.Is(err, signalsvc.ErrReceiverNotActive):
			response.Fail(c, http.StatusForbidden, response.ErrProfileNotApproved, err.Error(), nil)
		case errors.Is(err, signalsvc.ErrPairBlocked):
			response.Fail(c, http.StatusForbidden, response.ErrBlocked, err.Error(), nil)
		case errors.Is(err, signalsvc.ErrDuplicateSignal):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyExists, err.Error(), nil)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "send signal failed", nil)
		}
		return
	}

	response.Created(c, sig, nil)
}

type respondSignalRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// Respond 接受或婉拒一条收到的信号，接受时同时返回新开的聊天室。
func (h *SignalHandler) Respond(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	signalID, ok := parseIDParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid signal id", nil)
		return
	}

	var req respondSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid respond payload", nil)
		return
	}

	sig, room, err := h.service.Respond(c.Request.Context(), signalID, memberID, *req.Accept)
	if err != nil {
		switch {
		case errors.Is(err, signalsvc.ErrSignalNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
		case errors.Is(err, signalsvc.ErrNotReceiver):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden, err.Error(), nil)
		case errors.Is(err, signalsvc.ErrAlreadyResponded):
			response.Fail(c, http.StatusConflict, response.ErrConflict, err.Error(), nil)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "respond signal failed", nil)
		}
		return
	}

	payload := gin.H{"signal": sig}
	if room != nil {
		payload["chatroom"] = room
	}
	response.Success(c, http.StatusOK, payload, nil)
}

// ListReceived 返回等待本人应答的信号。
func (h *SignalHandler) ListReceived(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	signals, err := h.service.ListReceived(c.Request.Context(), memberID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list received signals failed", nil)
		return
	}
	response.Success(c, http.StatusOK, signals, nil)
}

// ListSent 返回本人发出过的信号。
func (h *SignalHandler) ListSent(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	signals, err := h.service.ListSent(c.Request.Context(), memberID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list sent signals failed", nil)
		return
	}
	response.Success(c, http.StatusOK, signals, nil)
}

package handler

import (
	"errors"
	"net/http"

	response "meetup-go-app/backend/internal/infra/common"
	chatsvc "meetup-go-app/backend/internal/service/chat"

	"github.com/gin-gonic/gin"
)

// ChatHandler 负责聊天室与消息接口。
type ChatHandler struct {
	service *chatsvc.Service
}

// NewChatHandler 构造聊天 Handler。
func NewChatHandler(service *chatsvc.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// ListRooms 返回本人参与的全部聊天室。
func (h *ChatHandler) ListRooms(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	rooms, err := h.service.ListRooms(c.Request.Context(), memberID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list rooms failed", nil)
		return
	}
	response.Success(c, http.StatusOK, rooms, nil)
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage 在聊天室里发一条消息。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	roomID, ok := parseIDParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid room id", nil)
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid message payload", nil)
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), roomID, memberID, req.Content)
	if err != nil {
		h.failRoomError(c, err, "send message failed")
		return
	}

	response.Created(c, msg, nil)
}

// ListMessages 返回聊天室的消息记录。
func (h *ChatHandler) ListMessages(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	roomID, ok := parseIDParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid room id", nil)
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), roomID, memberID)
	if err != nil {
		h.failRoomError(c, err, "list messages failed")
		return
	}
	response.Success(c, http.StatusOK, messages, nil)
}

// CloseRoom 结束一段对话。重复关闭直接返回当前状态。
func (h *ChatHandler) CloseRoom(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	roomID, ok := parseIDParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid room id", nil)
		return
	}

	room, err := h.service.CloseRoom(c.Request.Context(), roomID, memberID)
	if err != nil {
		h.failRoomError(c, err, "close room failed")
		return
	}
	response.Success(c, http.StatusOK, room, nil)
}

func (h *ChatHandler) failRoomError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, chatsvc.ErrRoomNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
	case errors.Is(err, chatsvc.ErrNotParticipant):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden, err.Error(), nil)
	case errors.Is(err, chatsvc.ErrRoomClosed):
		response.Fail(c, http.StatusConflict, response.ErrChatroomClosed, err.Error(), nil)
	case errors.Is(err, chatsvc.ErrEmptyMessage):
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, fallback, nil)
	}
}

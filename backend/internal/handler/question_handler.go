package handler

import (
	"errors"
	"net/http"

	response "meetup-go-app/backend/internal/infra/common"
	questionsvc "meetup-go-app/backend/internal/service/question"

	"github.com/gin-gonic/gin"
)

// QuestionHandler 负责破冰提问的推荐与管理接口。
type QuestionHandler struct {
	service *questionsvc.Service
}

// NewQuestionHandler 构造提问 Handler。
func NewQuestionHandler(service *questionsvc.Service) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// Recommend 为聊天室随机推荐一条提问并记录使用。
func (h *QuestionHandler) Recommend(c *gin.Context) {
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

	q, err := h.service.Recommend(c.Request.Context(), roomID, memberID)
	if err != nil {
		switch {
		case errors.Is(err, questionsvc.ErrRoomNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
		case errors.Is(err, questionsvc.ErrNotParticipant):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden, err.Error(), nil)
		case errors.Is(err, questionsvc.ErrNoActiveQuestions):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "recommend question failed", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, q, nil)
}

// ListRoomUsages 返回聊天室内已用过的提问记录。
func (h *QuestionHandler) ListRoomUsages(c *gin.Context) {
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

	usages, err := h.service.ListRoomUsages(c.Request.Context(), roomID, memberID)
	if err != nil {
		switch {
		case errors.Is(err, questionsvc.ErrRoomNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
		case errors.Is(err, questionsvc.ErrNotParticipant):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden, err.Error(), nil)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list usages failed", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, usages, nil)
}

type createQuestionRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create 新增一条提问，由管理员维护题库。
func (h *QuestionHandler) Create(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid question payload", nil)
		return
	}

	q, err := h.service.Create(c.Request.Context(), req.Content)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "create question failed", nil)
		return
	}
	response.Created(c, q, nil)
}

// Deactivate 将一条提问下线，不再参与推荐。
func (h *QuestionHandler) Deactivate(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid question id", nil)
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), questionID); err != nil {
		if errors.Is(err, questionsvc.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "deactivate question failed", nil)
		return
	}
	response.NoContent(c)
}

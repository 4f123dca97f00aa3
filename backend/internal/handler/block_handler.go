package handler

import (
	"errors"
	"net/http"

	response "meetup-go-app/backend/internal/infra/common"
	blocksvc "meetup-go-app/backend/internal/service/block"

	"github.com/gin-gonic/gin"
)

// BlockHandler 负责拉黑与举报接口。
type BlockHandler struct {
	service *blocksvc.Service
}

// NewBlockHandler 构造拉黑 Handler。
func NewBlockHandler(service *blocksvc.Service) *BlockHandler {
	return &BlockHandler{service: service}
}

type blockRequest struct {
	TargetID uint `json:"target_id" binding:"required"`
}

// Block 拉黑一位会员。
func (h *BlockHandler) Block(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid block payload", nil)
		return
	}

	b, err := h.service.Block(c.Request.Context(), memberID, req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, blocksvc.ErrSelfBlock):
			response.Fail(c, http.StatusBadRequest, response.ErrSelfTarget, err.Error(), nil)
		case errors.Is(err, blocksvc.ErrAlreadyBlocked):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyExists, err.Error(), nil)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "block member failed", nil)
		}
		return
	}

	response.Created(c, b, nil)
}

// Unblock 解除对某位会员的拉黑。
func (h *BlockHandler) Unblock(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid member id", nil)
		return
	}

	if err := h.service.Unblock(c.Request.Context(), memberID, targetID); err != nil {
		if errors.Is(err, blocksvc.ErrNotBlocked) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "unblock member failed", nil)
		return
	}
	response.NoContent(c)
}

// ListBlocked 返回本人当前拉黑的名单。
func (h *BlockHandler) ListBlocked(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	blocks, err := h.service.ListBlocked(c.Request.Context(), memberID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list blocked failed", nil)
		return
	}
	response.Success(c, http.StatusOK, blocks, nil)
}

type reportRequest struct {
	TargetID uint   `json:"target_id" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// Report 举报一位会员，生成唯一举报编号。
func (h *BlockHandler) Report(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid report payload", nil)
		return
	}

	r, err := h.service.Report(c.Request.Context(), memberID, req.TargetID, req.Reason)
	if err != nil {
		if errors.Is(err, blocksvc.ErrSelfBlock) {
			response.Fail(c, http.StatusBadRequest, response.ErrSelfTarget, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "report member failed", nil)
		return
	}

	response.Created(c, r, nil)
}

// ListReports 管理员查看全部举报。
func (h *BlockHandler) ListReports(c *gin.Context) {
	reports, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list reports failed", nil)
		return
	}
	response.Success(c, http.StatusOK, reports, nil)
}

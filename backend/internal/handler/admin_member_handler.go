package handler

import (
	"errors"
	"net/http"

	response "meetup-go-app/backend/internal/infra/common"
	membersvc "meetup-go-app/backend/internal/service/member"

	"github.com/gin-gonic/gin"
)

// AdminMemberHandler 负责管理员侧的资料审核接口。
type AdminMemberHandler struct {
	service *membersvc.Service
}

// NewAdminMemberHandler 构造管理员会员 Handler。
func NewAdminMemberHandler(service *membersvc.Service) *AdminMemberHandler {
	return &AdminMemberHandler{service: service}
}

// ListPending 返回排队等待人工审核的会员。
func (h *AdminMemberHandler) ListPending(c *gin.Context) {
	members, err := h.service.ListPendingProfiles(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list pending members failed", nil)
		return
	}
	response.Success(c, http.StatusOK, members, nil)
}

type reviewRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// ReviewProfile 通过或驳回一份会员资料。
func (h *AdminMemberHandler) ReviewProfile(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid member id", nil)
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid review payload", nil)
		return
	}

	if err := h.service.ReviewProfile(c.Request.Context(), memberID, *req.Approve); err != nil {
		if errors.Is(err, membersvc.ErrMemberNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "review profile failed", nil)
		return
	}

	response.NoContent(c)
}

// ReviewPhoto 通过或驳回一张照片。
func (h *AdminMemberHandler) ReviewPhoto(c *gin.Context) {
	photoID, ok := parseIDParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid photo id", nil)
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid review payload", nil)
		return
	}

	if err := h.service.ReviewPhoto(c.Request.Context(), photoID, *req.Approve); err != nil {
		if errors.Is(err, membersvc.ErrPhotoNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "review photo failed", nil)
		return
	}

	response.NoContent(c)
}

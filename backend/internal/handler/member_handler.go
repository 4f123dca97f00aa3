package handler

import (
	"errors"
	"net/http"

	response "meetup-go-app/backend/internal/infra/common"
	membersvc "meetup-go-app/backend/internal/service/member"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// MemberHandler 负责会员本人的资料接口。
type MemberHandler struct {
	service *membersvc.Service
}

// NewMemberHandler 构造会员 Handler。
func NewMemberHandler(service *membersvc.Service) *MemberHandler {
	return &MemberHandler{service: service}
}

// Me 返回当前会员的资料与照片。
func (h *MemberHandler) Me(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, membersvc.ErrMemberNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "load profile failed", nil)
		return
	}

	response.Success(c, http.StatusOK, profile, nil)
}

type updateProfileRequest struct {
	Nickname    string         `json:"nickname"`
	Region      string         `json:"region"`
	Bio         string         `json:"bio"`
	Preferences datatypes.JSON `json:"preferences"`
	PushToken   string         `json:"push_token"`
}

// UpdateMe 修改当前会员的资料。
func (h *MemberHandler) UpdateMe(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid profile payload", nil)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), memberID, membersvc.UpdateInput{
		Nickname:    req.Nickname,
		Region:      req.Region,
		Bio:         req.Bio,
		Preferences: req.Preferences,
		PushToken:   req.PushToken,
	})
	if err != nil {
		if errors.Is(err, membersvc.ErrMemberNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "update profile failed", nil)
		return
	}

	response.Success(c, http.StatusOK, profile, nil)
}

type addPhotoRequest struct {
	URL      string `json:"url" binding:"required"`
	Position int    `json:"position"`
}

// AddPhoto 上传一张待审核照片。
func (h *MemberHandler) AddPhoto(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	var req addPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid photo payload", nil)
		return
	}

	photo, err := h.service.AddPhoto(c.Request.Context(), memberID, req.URL, req.Position)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "add photo failed", nil)
		return
	}

	response.Created(c, photo, nil)
}

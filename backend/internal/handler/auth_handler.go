package handler

import (
	"errors"
	"net/http"

	response "meetup-go-app/backend/internal/infra/common"
	authsvc "meetup-go-app/backend/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责注册、登录与令牌相关接口。
type AuthHandler struct {
	service *authsvc.Service
}

// NewAuthHandler 构造鉴权 Handler。
func NewAuthHandler(service *authsvc.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Nickname string `json:"nickname" binding:"required"`
	Gender   string `json:"gender"`
	Region   string `json:"region"`
}

// Register 注册新会员，资料进入人工审核队列。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid register payload", nil)
		return
	}

	m, err := h.service.Register(c.Request.Context(), authsvc.RegisterInput{
		Phone:    req.Phone,
		Password: req.Password,
		Nickname: req.Nickname,
		Gender:   req.Gender,
		Region:   req.Region,
	})
	if err != nil {
		if errors.Is(err, authsvc.ErrPhoneTaken) {
			response.Fail(c, http.StatusConflict, response.ErrConflict, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "register failed", nil)
		return
	}

	response.Created(c, m, nil)
}

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验凭证并签发令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid login payload", nil)
		return
	}

	pair, m, err := h.service.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "login failed", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tokens": pair, "member": m}, nil)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh 轮换刷新令牌。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid refresh payload", nil)
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, authsvc.ErrRefreshTokenInvalid) {
			response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "refresh failed", nil)
		return
	}

	response.Success(c, http.StatusOK, pair, nil)
}

// Logout 吊销刷新令牌。
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid logout payload", nil)
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "logout failed", nil)
		return
	}
	response.NoContent(c)
}

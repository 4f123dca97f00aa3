package handler

import (
	"net/http"

	response "meetup-go-app/backend/internal/infra/common"
	notificationsvc "meetup-go-app/backend/internal/service/notification"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 负责会员的站内通知接口。
type NotificationHandler struct {
	service *notificationsvc.Service
}

// NewNotificationHandler 构造通知 Handler。
func NewNotificationHandler(service *notificationsvc.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListMine 返回本人的通知，按时间倒序。
func (h *NotificationHandler) ListMine(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "login required", nil)
		return
	}

	notifications, err := h.service.ListMine(c.Request.Context(), memberID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list notifications failed", nil)
		return
	}
	response.Success(c, http.StatusOK, notifications, nil)
}

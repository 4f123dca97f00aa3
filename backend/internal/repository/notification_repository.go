package repository

import (
	"context"

	"meetup-go-app/backend/internal/domain/notification"

	"gorm.io/gorm"
)

// NotificationRepository 封装通知记录的数据访问方法。
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储实例。
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 写入一条通知记录。
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByMember 列出某会员的通知，最新的在前。
func (r *NotificationRepository) ListByMember(ctx context.Context, memberID uint) ([]notification.Notification, error) {
	var items []notification.Notification
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("sent_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

package repository

import (
	"context"

	"meetup-go-app/backend/internal/domain/unlock"

	"gorm.io/gorm"
)

// UnlockRepository 封装资料解锁申请的数据访问方法。
type UnlockRepository struct {
	db *gorm.DB
}

// NewUnlockRepository 创建解锁申请仓储实例。
func NewUnlockRepository(db *gorm.DB) *UnlockRepository {
	return &UnlockRepository{db: db}
}

// Create 写入一条解锁申请。
func (r *UnlockRepository) Create(ctx context.Context, req *unlock.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// FindByID 根据主键查找申请。
func (r *UnlockRepository) FindByID(ctx context.Context, id uint) (*unlock.Request, error) {
	var req unlock.Request
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPendingByPair 查找某对会员之间尚未处理的申请。
func (r *UnlockRepository) FindPendingByPair(ctx context.Context, requesterID, targetID uint) (*unlock.Request, error) {
	var req unlock.Request
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, unlock.StatusRequested).
		First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Update 按主键更新申请状态。
func (r *UnlockRepository) Update(ctx context.Context, req *unlock.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// ListReceivedPending 列出某会员收到且待处理的申请。
func (r *UnlockRepository) ListReceivedPending(ctx context.Context, targetID uint) ([]unlock.Request, error) {
	var reqs []unlock.Request
	if err := r.db.WithContext(ctx).
		Where("target_id = ? AND status = ?", targetID, unlock.StatusRequested).
		Order("created_at ASC").
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

package repository

import (
	"context"

	"meetup-go-app/backend/internal/domain/signal"

	"gorm.io/gorm"
)

// SignalRepository 封装好感信号的数据访问方法。
type SignalRepository struct {
	db *gorm.DB
}

// NewSignalRepository 创建信号仓储实例。
func NewSignalRepository(db *gorm.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// Create 写入一条新信号。同一对会员重复发送会触发唯一索引冲突。
func (r *SignalRepository) Create(ctx context.Context, s *signal.Signal) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindByID 根据主键查找信号。
func (r *SignalRepository) FindByID(ctx context.Context, id uint) (*signal.Signal, error) {
	var s signal.Signal
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByPair 查找 sender 发给 receiver 的信号。
func (r *SignalRepository) FindByPair(ctx context.Context, senderID, receiverID uint) (*signal.Signal, error) {
	var s signal.Signal
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Update 按主键更新信号状态。
func (r *SignalRepository) Update(ctx context.Context, s *signal.Signal) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// ListReceivedPending 列出某会员收到且尚未回应的信号。
func (r *SignalRepository) ListReceivedPending(ctx context.Context, receiverID uint) ([]signal.Signal, error) {
	var signals []signal.Signal
	if err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, signal.StatusSent).
		Order("created_at DESC").
		Find(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}

// ListSent 列出某会员发出的全部信号。
func (r *SignalRepository) ListSent(ctx context.Context, senderID uint) ([]signal.Signal, error) {
	var signals []signal.Signal
	if err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}

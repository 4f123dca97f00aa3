package repository

import (
	"context"

	"meetup-go-app/backend/internal/domain/question"

	"gorm.io/gorm"
)

// QuestionRepository 封装推荐话题题库与使用记录的数据访问方法。
type QuestionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建话题仓储实例。
func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create 写入一条题库记录。
func (r *QuestionRepository) Create(ctx context.Context, q *question.Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

// FindByID 根据主键查找话题。
func (r *QuestionRepository) FindByID(ctx context.Context, id uint) (*question.Question, error) {
	var q question.Question
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// PickRandomActive 随机取一条启用中的话题。
// RANDOM() 在 MySQL 里写作 RAND()，这里按方言选择函数名。
func (r *QuestionRepository) PickRandomActive(ctx context.Context) (*question.Question, error) {
	orderExpr := "RAND()"
	if r.db.Dialector.Name() == "sqlite" {
		orderExpr = "RANDOM()"
	}

	var q question.Question
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order(orderExpr).
		First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// Deactivate 下线一条话题，不再进入推荐池。
func (r *QuestionRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&question.Question{}).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordUsage 记录某房间使用了一条推荐话题。
func (r *QuestionRepository) RecordUsage(ctx context.Context, u *question.Usage) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// ListUsagesByRoom 列出某房间的话题使用记录。
func (r *QuestionRepository) ListUsagesByRoom(ctx context.Context, roomID uint) ([]question.Usage, error) {
	var usages []question.Usage
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("used_at ASC").
		Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

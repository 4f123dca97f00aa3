package repository

import (
	"context"

	"meetup-go-app/backend/internal/domain/block"

	"gorm.io/gorm"
)

// BlockRepository 封装拉黑与举报的数据访问方法。
type BlockRepository struct {
	db *gorm.DB
}

// NewBlockRepository 创建拉黑仓储实例。
func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Create 写入一条拉黑关系。
func (r *BlockRepository) Create(ctx context.Context, b *block.Block) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// FindByPair 查找 blocker 对 blocked 的拉黑记录（无论状态）。
func (r *BlockRepository) FindByPair(ctx context.Context, blockerID, blockedID uint) (*block.Block, error) {
	var b block.Block
	if err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Update 按主键更新拉黑状态。
func (r *BlockRepository) Update(ctx context.Context, b *block.Block) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// ExistsActiveBetween 判断两名会员之间任一方向是否存在生效中的拉黑。
func (r *BlockRepository) ExistsActiveBetween(ctx context.Context, memberA, memberB uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&block.Block{}).
		Where("status = ?", block.StatusActive).
		Where(
			r.db.Where("blocker_id = ? AND blocked_id = ?", memberA, memberB).
				Or("blocker_id = ? AND blocked_id = ?", memberB, memberA),
		).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListActiveByBlocker 列出某会员生效中的拉黑记录。
func (r *BlockRepository) ListActiveByBlocker(ctx context.Context, blockerID uint) ([]block.Block, error) {
	var blocks []block.Block
	if err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND status = ?", blockerID, block.StatusActive).
		Order("created_at DESC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

// CreateReport 写入一条举报记录。
func (r *BlockRepository) CreateReport(ctx context.Context, report *block.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// ListReports 列出全部举报记录，供运营后台处理。
func (r *BlockRepository) ListReports(ctx context.Context) ([]block.Report, error) {
	var reports []block.Report
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

package repository

import (
	"context"

	"meetup-go-app/backend/internal/domain/member"

	"gorm.io/gorm"
)

// MemberRepository 封装会员相关的数据访问方法，基于 GORM 实现。
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建会员仓储实例，接收共享的 *gorm.DB。
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create 写入会员记录。
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByID 根据主键查找会员。
func (r *MemberRepository) FindByID(ctx context.Context, id uint) (*member.Member, error) {
	var m member.Member
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByPhone 通过手机号查找会员，若不存在返回 gorm.ErrRecordNotFound。
func (r *MemberRepository) FindByPhone(ctx context.Context, phone string) (*member.Member, error) {
	var m member.Member
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Update 按主键更新会员信息。
func (r *MemberRepository) Update(ctx context.Context, m *member.Member) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// UpdateProfileStatus 更新指定会员的审核状态。
func (r *MemberRepository) UpdateProfileStatus(ctx context.Context, memberID uint, status member.ProfileStatus) error {
	result := r.db.WithContext(ctx).
		Model(&member.Member{}).
		Where("id = ?", memberID).
		Update("profile_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByProfileStatus 按审核状态列出会员，供运营后台的审批队列使用。
func (r *MemberRepository) ListByProfileStatus(ctx context.Context, status member.ProfileStatus) ([]member.Member, error) {
	var members []member.Member
	if err := r.db.WithContext(ctx).
		Where("profile_status = ?", status).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// AddPhoto 新增一张待核验的资料照片。
func (r *MemberRepository) AddPhoto(ctx context.Context, p *member.Photo) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// ListPhotos 列出指定会员的资料照片，按展示顺序排序。
func (r *MemberRepository) ListPhotos(ctx context.Context, memberID uint) ([]member.Photo, error) {
	var photos []member.Photo
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("position ASC").
		Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

// UpdatePhotoStatus 更新照片核验状态。
func (r *MemberRepository) UpdatePhotoStatus(ctx context.Context, photoID uint, status member.PhotoStatus) error {
	result := r.db.WithContext(ctx).
		Model(&member.Photo{}).
		Where("id = ?", photoID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

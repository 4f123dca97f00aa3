package member

import (
	"time"

	"gorm.io/datatypes"
)

// ProfileStatus 表示资料审核状态，由运营后台人工审批流转。
type ProfileStatus string

const (
	ProfilePending  ProfileStatus = "PENDING"
	ProfileApproved ProfileStatus = "APPROVED"
	ProfileRejected ProfileStatus = "REJECTED"
)

// Role 区分普通会员与管理员。
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Member 映射 members 表的一行数据。
type Member struct {
	ID            uint           `gorm:"column:id;primaryKey" json:"id"`
	Phone         string         `gorm:"column:phone;size:32;uniqueIndex" json:"phone"`
	Nickname      string         `gorm:"column:nickname;size:64" json:"nickname"`
	Gender        string         `gorm:"column:gender;size:16" json:"gender"`
	BirthDate     *time.Time     `gorm:"column:birth_date;type:date" json:"birth_date,omitempty"`
	Region        string         `gorm:"column:region;size:64" json:"region"`
	Bio           string         `gorm:"column:bio;type:text" json:"bio"`
	PasswordHash  string         `gorm:"column:password_hash;size:128" json:"-"`
	ProfileStatus ProfileStatus  `gorm:"column:profile_status;size:16;default:PENDING" json:"profile_status"`
	Role          Role           `gorm:"column:role;size:16;default:USER" json:"role"`
	Preferences   datatypes.JSON `gorm:"column:preferences" json:"preferences,omitempty"`
	PushToken     string         `gorm:"column:push_token;size:255" json:"-"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

// TableName 返回对应的 MySQL 表名，避免 Gorm 使用默认命名。
func (Member) TableName() string {
	return "members"
}

// IsAdmin 判断该会员是否具备管理员角色。
func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// PhotoStatus 表示头像照片的人工核验状态。
type PhotoStatus string

const (
	PhotoPending  PhotoStatus = "PENDING"
	PhotoVerified PhotoStatus = "VERIFIED"
	PhotoRejected PhotoStatus = "REJECTED"
)

// Photo 映射 member_photos 表，保存会员的资料照片及核验状态。
type Photo struct {
	ID        uint        `gorm:"column:id;primaryKey" json:"id"`
	MemberID  uint        `gorm:"column:member_id;index" json:"member_id"`
	URL       string      `gorm:"column:url;size:512" json:"url"`
	Position  int         `gorm:"column:position" json:"position"`
	Status    PhotoStatus `gorm:"column:status;size:16;default:PENDING" json:"status"`
	CreatedAt time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

// TableName 返回照片表的名称。
func (Photo) TableName() string {
	return "member_photos"
}

package block

import "time"

// Status 表示拉黑关系的当前状态。解除后保留记录，便于再次拉黑时复用。
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReleased Status = "RELEASED"
)

// Block 映射 blocks 表的一条拉黑关系。
// (blocker_id, blocked_id) 唯一，重复拉黑通过状态流转而非新增记录实现。
type Block struct {
	ID         uint       `gorm:"column:id;primaryKey" json:"id"`
	BlockerID  uint       `gorm:"column:blocker_id;uniqueIndex:idx_block_pair" json:"blocker_id"`
	BlockedID  uint       `gorm:"column:blocked_id;uniqueIndex:idx_block_pair" json:"blocked_id"`
	Status     Status     `gorm:"column:status;size:16;default:ACTIVE" json:"status"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	ReleasedAt *time.Time `gorm:"column:released_at" json:"released_at,omitempty"`
}

// TableName 返回拉黑表的名称。
func (Block) TableName() string {
	return "blocks"
}

// Report 映射 reports 表的一条举报记录，report_no 供客服沟通时引用。
type Report struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	ReportNo   string    `gorm:"column:report_no;size:64;uniqueIndex" json:"report_no"`
	ReporterID uint      `gorm:"column:reporter_id;index" json:"reporter_id"`
	ReportedID uint      `gorm:"column:reported_id;index" json:"reported_id"`
	Reason     string    `gorm:"column:reason;type:text" json:"reason"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName 返回举报表的名称。
func (Report) TableName() string {
	return "reports"
}

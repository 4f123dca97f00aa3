package unlock

import "time"

// Status 表示解锁申请的流转状态。
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// Request 映射 unlock_requests 表，记录一次受限资料的解锁申请。
// 审批权在被申请方手里：同意后申请方可查看对方的受限资料。
type Request struct {
	ID          uint       `gorm:"column:id;primaryKey" json:"id"`
	RequesterID uint       `gorm:"column:requester_id;index" json:"requester_id"`
	TargetID    uint       `gorm:"column:target_id;index" json:"target_id"`
	Status      Status     `gorm:"column:status;size:16;default:REQUESTED" json:"status"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	RespondedAt *time.Time `gorm:"column:responded_at" json:"responded_at,omitempty"`
}

// TableName 返回解锁申请表的名称。
func (Request) TableName() string {
	return "unlock_requests"
}

package signal

import "time"

// Status 表示一条好感信号的流转状态。
type Status string

const (
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

// Signal 映射 signals 表，记录单向发出的好感信号。
// (sender_id, receiver_id) 上的唯一索引保证同一对会员之间最多一条记录。
type Signal struct {
	ID          uint       `gorm:"column:id;primaryKey" json:"id"`
	SenderID    uint       `gorm:"column:sender_id;uniqueIndex:idx_signal_pair" json:"sender_id"`
	ReceiverID  uint       `gorm:"column:receiver_id;uniqueIndex:idx_signal_pair" json:"receiver_id"`
	Status      Status     `gorm:"column:status;size:16;default:SENT" json:"status"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	RespondedAt *time.Time `gorm:"column:responded_at" json:"responded_at,omitempty"`
}

// TableName 返回信号表的名称。
func (Signal) TableName() string {
	return "signals"
}

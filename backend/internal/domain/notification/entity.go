package notification

import "time"

// Kind 区分推送通知的业务类型。
type Kind string

const (
	KindSignalReceived Kind = "SIGNAL_RECEIVED"
	KindSignalAccepted Kind = "SIGNAL_ACCEPTED"
	KindUnlockRequest  Kind = "UNLOCK_REQUEST"
	KindUnlockApproved Kind = "UNLOCK_APPROVED"
)

// Notification 映射 notifications 表，落库保存已经发出的推送。
// 真正的推送投递（FCM）由 infra/push 的 Sender 负责，这里只是事实记录。
type Notification struct {
	ID       uint      `gorm:"column:id;primaryKey" json:"id"`
	MemberID uint      `gorm:"column:member_id;index" json:"member_id"`
	Kind     Kind      `gorm:"column:kind;size:32" json:"kind"`
	Title    string    `gorm:"column:title;size:255" json:"title"`
	Body     string    `gorm:"column:body;type:text" json:"body"`
	SentAt   time.Time `gorm:"column:sent_at" json:"sent_at"`
}

// TableName 返回通知表的名称。
func (Notification) TableName() string {
	return "notifications"
}

package chat

import "time"

// RoomStatus 表示聊天室的开关状态。
type RoomStatus string

const (
	RoomOpen   RoomStatus = "OPEN"
	RoomClosed RoomStatus = "CLOSED"
)

// Room 映射 chat_rooms 表。双方信号互认后创建，双方任意一人可关闭。
type Room struct {
	ID        uint       `gorm:"column:id;primaryKey" json:"id"`
	MemberAID uint       `gorm:"column:member_a_id;index" json:"member_a_id"`
	MemberBID uint       `gorm:"column:member_b_id;index" json:"member_b_id"`
	Status    RoomStatus `gorm:"column:status;size:16;default:OPEN" json:"status"`
	OpenedAt  time.Time  `gorm:"column:opened_at" json:"opened_at"`
	ClosedAt  *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`
}

// TableName 返回聊天室表的名称。
func (Room) TableName() string {
	return "chat_rooms"
}

// HasParticipant 判断某会员是否属于该聊天室。
func (r *Room) HasParticipant(memberID uint) bool {
	return r != nil && (r.MemberAID == memberID || r.MemberBID == memberID)
}

// Message 映射 chat_messages 表的一条消息。
type Message struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	RoomID    uint      `gorm:"column:room_id;index" json:"room_id"`
	SenderID  uint      `gorm:"column:sender_id" json:"sender_id"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

// TableName 返回消息表的名称。
func (Message) TableName() string {
	return "chat_messages"
}

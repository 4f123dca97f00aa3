package question

import "time"

// Question 映射 questions 表，保存推荐话题的题库。
type Question struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	Active    bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName 返回题库表的名称。
func (Question) TableName() string {
	return "questions"
}

// Usage 映射 question_usages 表，表示某聊天室内使用过一条推荐话题。
type Usage struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	RoomID     uint      `gorm:"column:room_id;index" json:"room_id"`
	QuestionID uint      `gorm:"column:question_id;index" json:"question_id"`
	UsedAt     time.Time `gorm:"column:used_at;index" json:"used_at"`
}

// TableName 返回话题使用记录表的名称。
func (Usage) TableName() string {
	return "question_usages"
}

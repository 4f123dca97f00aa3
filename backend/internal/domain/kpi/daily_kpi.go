package kpi

import (
	"time"

	"meetup-go-app/backend/internal/infra/ratecalc"
)

// DailyKpi 映射 daily_kpis 表的一行数据，每个自然日至多一条记录。
// target_date 语义上固定使用业务时区的自然日，与存储时区无关。
// 三个派生比率不落库，读取时经由 ratecalc 现算。
type DailyKpi struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	TargetDate time.Time `gorm:"column:target_date;type:date;uniqueIndex" json:"target_date"`

	// 信号指标。
	SignalSentCount     int `gorm:"column:signal_sent_count" json:"signal_sent_count"`
	SignalAcceptedCount int `gorm:"column:signal_accepted_count" json:"signal_accepted_count"`

	// 聊天指标。
	OpenChatroomsCount        int     `gorm:"column:open_chatrooms_count" json:"open_chatrooms_count"`
	CurrentOpenChatroomsCount int     `gorm:"column:current_open_chatrooms_count" json:"current_open_chatrooms_count"`
	ActiveChatroomsCount      int     `gorm:"column:active_chatrooms_count" json:"active_chatrooms_count"`
	FirstMessageRate          float64 `gorm:"column:first_message_rate" json:"first_message_rate"`
	ThreeTurnRate             float64 `gorm:"column:three_turn_rate" json:"three_turn_rate"`
	ChatReturnRate            float64 `gorm:"column:chat_return_rate" json:"chat_return_rate"`
	AvgMessageCount           float64 `gorm:"column:avg_message_count" json:"avg_message_count"`

	// 推荐话题指标，按“当日新开房间是否用过推荐话题”分成两个队列。
	QuestionUsageCount            int     `gorm:"column:question_usage_count" json:"question_usage_count"`
	QuestionUsedRoomsCount        int     `gorm:"column:question_used_rooms_count" json:"question_used_rooms_count"`
	QuestionUsedAvgMessageCount   float64 `gorm:"column:question_used_avg_message_count" json:"question_used_avg_message_count"`
	QuestionUsedThreeTurnRate     float64 `gorm:"column:question_used_three_turn_rate" json:"question_used_three_turn_rate"`
	QuestionUnusedAvgMessageCount float64 `gorm:"column:question_unused_avg_message_count" json:"question_unused_avg_message_count"`
	QuestionUnusedThreeTurnRate   float64 `gorm:"column:question_unused_three_turn_rate" json:"question_unused_three_turn_rate"`

	// 资料解锁指标。
	UnlockRequestCount  int `gorm:"column:unlock_request_count" json:"unlock_request_count"`
	UnlockApprovedCount int `gorm:"column:unlock_approved_count" json:"unlock_approved_count"`

	// 关闭聊天室指标。
	ClosedChatroomsCount  int     `gorm:"column:closed_chatrooms_count" json:"closed_chatrooms_count"`
	AvgClosedChatDuration float64 `gorm:"column:avg_closed_chat_duration_days" json:"avg_closed_chat_duration_days"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName 返回 KPI 表的名称。
func (DailyKpi) TableName() string {
	return "daily_kpis"
}

// SignalAcceptRate 信号接受率：当日接受数 / 当日发出数 * 100。
func (k *DailyKpi) SignalAcceptRate() float64 {
	return ratecalc.Rate(int64(k.SignalAcceptedCount), int64(k.SignalSentCount))
}

// UnlockApproveRate 解锁通过率：当日通过数 / 当日申请数 * 100。
func (k *DailyKpi) UnlockApproveRate() float64 {
	return ratecalc.Rate(int64(k.UnlockApprovedCount), int64(k.UnlockRequestCount))
}

// ChatActiveRate 聊天活跃率：当日活跃房间数 / 当前仍开放房间数 * 100。
func (k *DailyKpi) ChatActiveRate() float64 {
	return ratecalc.Rate(int64(k.ActiveChatroomsCount), int64(k.CurrentOpenChatroomsCount))
}

package repository

import (
	"context"

	"meetup-go-app/backend/internal/domain/chat"

	"gorm.io/gorm"
)

// ChatRepository 封装聊天室与消息的数据访问方法。
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建聊天仓储实例。
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateRoom 写入一间新聊天室。
func (r *ChatRepository) CreateRoom(ctx context.Context, room *chat.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// FindRoomByID 根据主键查找聊天室。
func (r *ChatRepository) FindRoomByID(ctx context.Context, id uint) (*chat.Room, error) {
	var room chat.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateRoom 按主键更新聊天室。
func (r *ChatRepository) UpdateRoom(ctx context.Context, room *chat.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// ListRoomsByMember 列出某会员参与的全部聊天室，最近开启的在前。
func (r *ChatRepository) ListRoomsByMember(ctx context.Context, memberID uint) ([]chat.Room, error) {
	var rooms []chat.Room
	if err := r.db.WithContext(ctx).
		Where("member_a_id = ? OR member_b_id = ?", memberID, memberID).
		Order("opened_at DESC").
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateMessage 写入一条消息。
func (r *ChatRepository) CreateMessage(ctx context.Context, msg *chat.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListMessages 按时间顺序列出房间内的消息。
func (r *ChatRepository) ListMessages(ctx context.Context, roomID uint) ([]chat.Message, error) {
	var messages []chat.Message
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// CountMessages 统计房间内的消息数。
func (r *ChatRepository) CountMessages(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("room_id = ?", roomID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

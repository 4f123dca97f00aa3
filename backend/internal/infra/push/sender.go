package push

import (
	"context"

	appLogger "meetup-go-app/backend/internal/infra/logger"

	"go.uber.org/zap"
)

// Sender 抽象移动端推送的投递通道，形状对齐 FCM 的单设备推送接口。
// 生产环境注入真正的 FCM 实现；本仓库内只提供日志退化实现，
// 投递失败不影响通知记录落库。
type Sender interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}

// LogSender 将推送内容写入日志，用于本地开发与未配置推送凭证的环境。
type LogSender struct {
	logger *zap.SugaredLogger
}

// NewLogSender 创建日志推送器。
func NewLogSender() *LogSender {
	return &LogSender{logger: appLogger.S().With("component", "push.log")}
}

// Send 打印推送内容。设备令牌为空时直接跳过。
func (s *LogSender) Send(_ context.Context, deviceToken, title, body string) error {
	if deviceToken == "" {
		return nil
	}
	s.logger.Infow("push notification", "title", title, "body", body)
	return nil
}

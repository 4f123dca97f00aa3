package bootstrap

import (
	"fmt"

	blockdomain "meetup-go-app/backend/internal/domain/block"
	chatdomain "meetup-go-app/backend/internal/domain/chat"
	kpidomain "meetup-go-app/backend/internal/domain/kpi"
	memberdomain "meetup-go-app/backend/internal/domain/member"
	notificationdomain "meetup-go-app/backend/internal/domain/notification"
	questiondomain "meetup-go-app/backend/internal/domain/question"
	signaldomain "meetup-go-app/backend/internal/domain/signal"
	unlockdomain "meetup-go-app/backend/internal/domain/unlock"

	"gorm.io/gorm"
)

// Migrate 按实体声明同步表结构。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&memberdomain.Member{},
		&memberdomain.Photo{},
		&signaldomain.Signal{},
		&chatdomain.Room{},
		&chatdomain.Message{},
		&questiondomain.Question{},
		&questiondomain.Usage{},
		&unlockdomain.Request{},
		&blockdomain.Block{},
		&blockdomain.Report{},
		&notificationdomain.Notification{},
		&kpidomain.DailyKpi{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

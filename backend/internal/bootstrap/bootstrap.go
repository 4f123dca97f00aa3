package bootstrap

import (
	"context"
	"net/http"
	"os"
	"strings"

	"meetup-go-app/backend/internal/app"
	"meetup-go-app/backend/internal/config"
	"meetup-go-app/backend/internal/handler"
	"meetup-go-app/backend/internal/infra/metrics"
	"meetup-go-app/backend/internal/infra/push"
	"meetup-go-app/backend/internal/infra/token"
	"meetup-go-app/backend/internal/middleware"
	"meetup-go-app/backend/internal/repository"
	"meetup-go-app/backend/internal/server"
	authsvc "meetup-go-app/backend/internal/service/auth"
	blocksvc "meetup-go-app/backend/internal/service/block"
	chatsvc "meetup-go-app/backend/internal/service/chat"
	kpisvc "meetup-go-app/backend/internal/service/kpi"
	membersvc "meetup-go-app/backend/internal/service/member"
	notifsvc "meetup-go-app/backend/internal/service/notification"
	questionsvc "meetup-go-app/backend/internal/service/question"
	signalsvc "meetup-go-app/backend/internal/service/signal"
	unlocksvc "meetup-go-app/backend/internal/service/unlock"

	"go.uber.org/zap"
)

// Application 聚合装配完成的服务与路由，供入口启动。
type Application struct {
	Resources    *app.Resources
	KpiScheduler *kpisvc.Scheduler
	Router       http.Handler
}

// BuildApplication 按依赖顺序装配仓储、服务、Handler 与路由。
func BuildApplication(ctx context.Context, logger *zap.SugaredLogger, resources *app.Resources, cfg config.Runtime) (*Application, error) {
	metrics.MustRegister()

	db := resources.DB()

	memberRepo := repository.NewMemberRepository(db)
	signalRepo := repository.NewSignalRepository(db)
	chatRepo := repository.NewChatRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	unlockRepo := repository.NewUnlockRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	kpiRepo := repository.NewKpiRepository(db)
	kpiSourceRepo := repository.NewKpiSourceRepository(db)

	tokens := token.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	var refreshStore authsvc.RefreshTokenStore
	if resources.Redis != nil {
		refreshStore = token.NewRedisRefreshTokenStore(resources.Redis, "")
	} else {
		refreshStore = token.NewMemoryRefreshTokenStore()
		logger.Infow("using in-memory refresh token store; tokens won't persist across restarts")
	}

	notificationService := notifsvc.NewService(notificationRepo, memberRepo, push.NewLogSender())

	authService := authsvc.NewService(memberRepo, tokens, refreshStore)
	memberService := membersvc.NewService(memberRepo)
	signalService := signalsvc.NewService(signalRepo, memberRepo, blockRepo, chatRepo, notificationService)
	chatService := chatsvc.NewService(chatRepo)
	questionService := questionsvc.NewService(questionRepo, chatRepo)
	unlockService := unlocksvc.NewService(unlockRepo, notificationService)
	blockService := blocksvc.NewService(blockRepo)

	kpiService := kpisvc.NewService(kpiRepo, kpiSourceRepo, cfg.Timezone)
	kpiQueryService := kpisvc.NewQueryService(kpiRepo)
	kpiScheduler := kpisvc.NewScheduler(kpiService, cfg.KpiCronSpec, cfg.Timezone)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	rateLimit := middleware.NewRateLimitMiddleware(resources.Redis, middleware.RateLimitConfig{
		Enabled: rateLimitEnabled(),
	})

	router := server.NewRouter(server.RouterOptions{
		AuthHandler:         handler.NewAuthHandler(authService),
		MemberHandler:       handler.NewMemberHandler(memberService),
		AdminMemberHandler:  handler.NewAdminMemberHandler(memberService),
		SignalHandler:       handler.NewSignalHandler(signalService),
		ChatHandler:         handler.NewChatHandler(chatService),
		QuestionHandler:     handler.NewQuestionHandler(questionService),
		UnlockHandler:       handler.NewUnlockHandler(unlockService),
		BlockHandler:        handler.NewBlockHandler(blockService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		KpiHandler:          handler.NewKpiHandler(kpiService, kpiQueryService),
		AuthMW:              authMiddleware,
		RateLimit:           rateLimit,
		EnableDevAPI:        cfg.EnableDevAPI,
	})

	return &Application{
		Resources:    resources,
		KpiScheduler: kpiScheduler,
		Router:       router,
	}, nil
}

func rateLimitEnabled() bool {
	v := strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED"))
	return strings.EqualFold(v, "true") || v == "1"
}

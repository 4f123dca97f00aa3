package server

import (
	"fmt"
	"strings"
	"time"

	"meetup-go-app/backend/internal/handler"
	"meetup-go-app/backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	AuthHandler         *handler.AuthHandler
	MemberHandler       *handler.MemberHandler
	AdminMemberHandler  *handler.AdminMemberHandler
	SignalHandler       *handler.SignalHandler
	ChatHandler         *handler.ChatHandler
	QuestionHandler     *handler.QuestionHandler
	UnlockHandler       *handler.UnlockHandler
	BlockHandler        *handler.BlockHandler
	NotificationHandler *handler.NotificationHandler
	KpiHandler          *handler.KpiHandler
	AuthMW              middleware.Authenticator
	RateLimit           *middleware.RateLimitMiddleware
	EnableDevAPI        bool
}

// NewRouter 构建应用的 Gin Engine，汇总所有 REST 接口与公共中间件配置。
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 限流中间件挂在最前层，按 IP 拦下异常流量。
	if opts.RateLimit != nil {
		r.Use(opts.RateLimit.Handle())
	}

	// gin 中间件配置
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  false,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
		AllowOriginFunc: func(origin string) bool {
			if origin == "" {
				return false
			}
			if strings.HasPrefix(origin, "http://localhost:") {
				return true
			}
			if strings.HasPrefix(origin, "http://127.0.0.1:") {
				return true
			}
			return false
		},
	}))
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: gin.LogFormatter(func(params gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s\" %d %s\n",
				params.ClientIP,
				params.TimeStamp.Format(time.RFC3339),
				params.Method,
				params.Path,
				params.StatusCode,
				params.Latency,
			)
		}),
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		if opts.AuthHandler != nil {
			authGroup.POST("/register", opts.AuthHandler.Register)
			authGroup.POST("/login", opts.AuthHandler.Login)
			authGroup.POST("/refresh", opts.AuthHandler.Refresh)
			authGroup.POST("/logout", opts.AuthHandler.Logout)
		}

		// /api/members 下是会员本人操作，所以单独分组，再挂载 JWT 鉴权中间件。
		members := api.Group("/members")
		if opts.AuthMW != nil {
			members.Use(opts.AuthMW.Handle())
		}
		if opts.MemberHandler != nil {
			members.GET("/me", opts.MemberHandler.Me)
			members.PUT("/me", opts.MemberHandler.UpdateMe)
			members.POST("/me/photos", opts.MemberHandler.AddPhoto)
		}

		if opts.SignalHandler != nil {
			signals := api.Group("/signals")
			if opts.AuthMW != nil {
				signals.Use(opts.AuthMW.Handle())
			}
			signals.POST("", opts.SignalHandler.Send)
			signals.POST("/:id/respond", opts.SignalHandler.Respond)
			signals.GET("/received", opts.SignalHandler.ListReceived)
			signals.GET("/sent", opts.SignalHandler.ListSent)
		}

		if opts.ChatHandler != nil {
			chatrooms := api.Group("/chatrooms")
			if opts.AuthMW != nil {
				chatrooms.Use(opts.AuthMW.Handle())
			}
			chatrooms.GET("", opts.ChatHandler.ListRooms)
			chatrooms.POST("/:id/messages", opts.ChatHandler.SendMessage)
			chatrooms.GET("/:id/messages", opts.ChatHandler.ListMessages)
			chatrooms.POST("/:id/close", opts.ChatHandler.CloseRoom)
			if opts.QuestionHandler != nil {
				chatrooms.POST("/:id/questions/recommend", opts.QuestionHandler.Recommend)
				chatrooms.GET("/:id/questions", opts.QuestionHandler.ListRoomUsages)
			}
		}

		if opts.UnlockHandler != nil {
			unlocks := api.Group("/unlocks")
			if opts.AuthMW != nil {
				unlocks.Use(opts.AuthMW.Handle())
			}
			unlocks.POST("", opts.UnlockHandler.Request)
			unlocks.POST("/:id/respond", opts.UnlockHandler.Respond)
			unlocks.GET("/received", opts.UnlockHandler.ListReceived)
		}

		if opts.BlockHandler != nil {
			blocks := api.Group("/blocks")
			if opts.AuthMW != nil {
				blocks.Use(opts.AuthMW.Handle())
			}
			blocks.POST("", opts.BlockHandler.Block)
			blocks.DELETE("/:id", opts.BlockHandler.Unblock)
			blocks.GET("", opts.BlockHandler.ListBlocked)
			blocks.POST("/reports", opts.BlockHandler.Report)
		}

		if opts.NotificationHandler != nil {
			notifications := api.Group("/notifications")
			if opts.AuthMW != nil {
				notifications.Use(opts.AuthMW.Handle())
			}
			notifications.GET("", opts.NotificationHandler.ListMine)
		}

		// 管理端路由统一挂在 /api/admin 下，除登录外还要求管理员身份。
		admin := api.Group("/admin")
		if opts.AuthMW != nil {
			admin.Use(opts.AuthMW.Handle())
		}
		admin.Use(middleware.RequireAdmin())
		if opts.AdminMemberHandler != nil {
			admin.GET("/members/pending", opts.AdminMemberHandler.ListPending)
			admin.POST("/members/:id/review", opts.AdminMemberHandler.ReviewProfile)
			admin.POST("/photos/:id/review", opts.AdminMemberHandler.ReviewPhoto)
		}
		if opts.QuestionHandler != nil {
			admin.POST("/questions", opts.QuestionHandler.Create)
			admin.DELETE("/questions/:id", opts.QuestionHandler.Deactivate)
		}
		if opts.BlockHandler != nil {
			admin.GET("/reports", opts.BlockHandler.ListReports)
		}
		if opts.KpiHandler != nil {
			admin.GET("/kpi/daily/:date", opts.KpiHandler.Daily)
			admin.GET("/kpi/summary", opts.KpiHandler.Summary)
			admin.GET("/kpi/all", opts.KpiHandler.All)
			if opts.EnableDevAPI {
				// 开发环境允许手动补算某日数据，线上只靠定时任务。
				admin.POST("/kpi/aggregate/:date", opts.KpiHandler.Aggregate)
			}
		}
	}

	return r
}

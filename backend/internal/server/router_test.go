package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chatdomain "meetup-go-app/backend/internal/domain/chat"
	kpidomain "meetup-go-app/backend/internal/domain/kpi"
	memberdomain "meetup-go-app/backend/internal/domain/member"
	questiondomain "meetup-go-app/backend/internal/domain/question"
	signaldomain "meetup-go-app/backend/internal/domain/signal"
	unlockdomain "meetup-go-app/backend/internal/domain/unlock"
	"meetup-go-app/backend/internal/handler"
	"meetup-go-app/backend/internal/infra/token"
	"meetup-go-app/backend/internal/middleware"
	"meetup-go-app/backend/internal/repository"
	kpisvc "meetup-go-app/backend/internal/service/kpi"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupKpiRouter 构建带 KPI 接口与 JWT 鉴权的 Router，返回普通与管理员令牌。
func setupKpiRouter(t *testing.T, enableDevAPI bool) (*gin.Engine, string, string) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&signaldomain.Signal{},
		&chatdomain.Room{},
		&chatdomain.Message{},
		&questiondomain.Usage{},
		&unlockdomain.Request{},
		&kpidomain.DailyKpi{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	kpiRepo := repository.NewKpiRepository(db)
	record := kpidomain.DailyKpi{
		TargetDate:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		SignalSentCount:     10,
		SignalAcceptedCount: 5,
	}
	if err := kpiRepo.Upsert(context.Background(), &record); err != nil {
		t.Fatalf("seed kpi: %v", err)
	}

	kpiService := kpisvc.NewService(kpiRepo, repository.NewKpiSourceRepository(db), time.UTC)
	kpiQuery := kpisvc.NewQueryService(kpiRepo)

	secret := "test-secret"
	jwtManager := token.NewJWTManager(secret, time.Minute, time.Hour)

	adminPair, err := jwtManager.GenerateTokens(context.Background(), &memberdomain.Member{
		ID: 1, Nickname: "ops", Role: memberdomain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("generate admin token: %v", err)
	}
	userPair, err := jwtManager.GenerateTokens(context.Background(), &memberdomain.Member{
		ID: 2, Nickname: "sora", Role: memberdomain.RoleUser,
	})
	if err != nil {
		t.Fatalf("generate user token: %v", err)
	}

	router := NewRouter(RouterOptions{
		KpiHandler:   handler.NewKpiHandler(kpiService, kpiQuery),
		AuthMW:       middleware.NewAuthMiddleware(secret),
		EnableDevAPI: enableDevAPI,
	})
	return router, userPair.AccessToken, adminPair.AccessToken
}

func doRequest(router *gin.Engine, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestKpiRoutesRequireAdmin(t *testing.T) {
	router, userToken, adminToken := setupKpiRouter(t, false)

	if rec := doRequest(router, http.MethodGet, "/api/admin/kpi/daily/2026-03-10", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}
	if rec := doRequest(router, http.MethodGet, "/api/admin/kpi/daily/2026-03-10", userToken); rec.Code != http.StatusForbidden {
		t.Fatalf("user token: status = %d, want 403", rec.Code)
	}

	rec := doRequest(router, http.MethodGet, "/api/admin/kpi/daily/2026-03-10", adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin token: status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			SignalSentCount  int     `json:"signal_sent_count"`
			SignalAcceptRate float64 `json:"signal_accept_rate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success || payload.Data.SignalSentCount != 10 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if payload.Data.SignalAcceptRate != 50 {
		t.Fatalf("derived rate = %v, want 50", payload.Data.SignalAcceptRate)
	}
}

func TestKpiRouteValidation(t *testing.T) {
	router, _, adminToken := setupKpiRouter(t, false)

	if rec := doRequest(router, http.MethodGet, "/api/admin/kpi/daily/not-a-date", adminToken); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date: status = %d, want 400", rec.Code)
	}
	if rec := doRequest(router, http.MethodGet, "/api/admin/kpi/daily/2026-03-11", adminToken); rec.Code != http.StatusNotFound {
		t.Fatalf("missing date: status = %d, want 404", rec.Code)
	}
	if rec := doRequest(router, http.MethodGet,
		"/api/admin/kpi/summary?start_date=2026-03-12&end_date=2026-03-10", adminToken); rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted range: status = %d, want 400", rec.Code)
	}
	if rec := doRequest(router, http.MethodGet,
		"/api/admin/kpi/summary?start_date=2026-03-09&end_date=2026-03-11", adminToken); rec.Code != http.StatusOK {
		t.Fatalf("summary: status = %d, want 200", rec.Code)
	}
}

func TestManualAggregateOnlyInDevMode(t *testing.T) {
	prod, _, adminToken := setupKpiRouter(t, false)
	if rec := doRequest(prod, http.MethodPost, "/api/admin/kpi/aggregate/2026-03-10", adminToken); rec.Code != http.StatusNotFound {
		t.Fatalf("prod aggregate route: status = %d, want 404", rec.Code)
	}
}

func TestManualAggregateInDevMode(t *testing.T) {
	dev, _, adminToken := setupKpiRouter(t, true)

	if rec := doRequest(dev, http.MethodPost, "/api/admin/kpi/aggregate/2026-03-11", adminToken); rec.Code != http.StatusNoContent {
		t.Fatalf("dev aggregate: status = %d, want 204, body=%s", rec.Code, rec.Body.String())
	}
	// 手动触发后当日记录即可查询。
	if rec := doRequest(dev, http.MethodGet, "/api/admin/kpi/daily/2026-03-11", adminToken); rec.Code != http.StatusOK {
		t.Fatalf("daily after aggregate: status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

package kpi

import (
	"context"
	"fmt"
	"time"

	appLogger "meetup-go-app/backend/internal/infra/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 按固定的 cron 表达式（业务时区）每日触发一次前一日的 KPI 聚合。
// 这是一个 fire-and-forget 的后台任务：单日失败只记日志不重试，
// 也不会影响次日的正常触发；缺的那天由运营手动重跑补齐。
type Scheduler struct {
	svc    *Service
	spec   string
	loc    *time.Location
	cron   *cron.Cron
	logger *zap.SugaredLogger
}

// NewScheduler 构造 KPI 调度器。spec 为标准五段 cron 表达式。
func NewScheduler(svc *Service, spec string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = svc.Location()
	}
	return &Scheduler{
		svc:    svc,
		spec:   spec,
		loc:    loc,
		logger: appLogger.S().With("component", "service.kpi.scheduler"),
	}
}

// Start 注册 cron 任务并启动调度。重复调用返回错误。
func (s *Scheduler) Start() error {
	if s.cron != nil {
		return fmt.Errorf("kpi scheduler already started")
	}

	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("register kpi cron %q: %w", s.spec, err)
	}
	c.Start()
	s.cron = c

	s.logger.Infow("kpi scheduler started", "spec", s.spec, "timezone", s.loc.String())
	return nil
}

// Stop 停止调度，等待执行中的任务结束。
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Infow("kpi scheduler stopped")
}

// runOnce 是每次触发的入口：聚合昨天，失败在此边界吞掉。
func (s *Scheduler) runOnce() {
	target := Yesterday(time.Now(), s.loc)
	if err := s.svc.AggregateDaily(context.Background(), target); err != nil {
		s.logger.Errorw("daily kpi aggregation failed",
			"target_date", target.Format("2006-01-02"), "error", err)
	}
}

// Yesterday 在指定时区里计算 now 的前一个自然日零点。
// 始终先换算到业务时区再回退一天，与服务器进程时区无关。
func Yesterday(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return today.AddDate(0, 0, -1)
}

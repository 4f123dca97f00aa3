package kpi

import (
	"testing"
	"time"
)

func TestYesterdayUsesBusinessTimezone(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}

	cases := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want time.Time
	}{
		{
			name: "utc midday",
			now:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			// UTC 还是 3 月 10 日晚上，首尔已经进入 3 月 11 日。
			name: "seoul already next day",
			now:  time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
			loc:  seoul,
			want: time.Date(2026, 3, 10, 0, 0, 0, 0, seoul),
		},
		{
			// 首尔凌晨，UTC 仍是前一天下午。
			name: "seoul early morning",
			now:  time.Date(2026, 3, 11, 2, 30, 0, 0, seoul),
			loc:  seoul,
			want: time.Date(2026, 3, 10, 0, 0, 0, 0, seoul),
		},
		{
			name: "month boundary",
			now:  time.Date(2026, 3, 1, 4, 59, 0, 0, seoul),
			loc:  seoul,
			want: time.Date(2026, 2, 28, 0, 0, 0, 0, seoul),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Yesterday(tc.now, tc.loc)
			if !got.Equal(tc.want) {
				t.Fatalf("Yesterday(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestSchedulerRejectsDoubleStartAndBadSpec(t *testing.T) {
	svc, _, _ := newKpiTestService(t)

	bad := NewScheduler(svc, "not a cron spec", time.UTC)
	if err := bad.Start(); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}

	// 正常表达式可以启动，重复启动报错。
	sched := NewScheduler(svc, "0 5 * * *", time.UTC)
	if err := sched.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer sched.Stop()

	if err := sched.Start(); err == nil {
		t.Fatalf("expected error on double start")
	}
}

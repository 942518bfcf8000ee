package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/BerniceZTT/salesiq/charts"
	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/repository"
	"github.com/BerniceZTT/salesiq/utils"
)

const (
	reportJobTag = "weekly-sms-report"
	// reportTime 周报发送时间
	reportTime = "08:00"
)

// Notifier 周报发送通道
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// LogNotifier 只把周报写入日志，不真正发送短信
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, phone, message string) error {
	utils.Logger.Info().Str("phone", phone).Str("message", message).Msg("发送短信周报")
	return nil
}

// BuildWeeklyReport 按设置中选择的指标生成周报文本，指标取最近一个月
func BuildWeeklyReport(ctx context.Context, store repository.Store, settings models.NotificationSettings) (string, error) {
	monthly, err := store.MonthlyMetrics(ctx)
	if err != nil {
		return "", fmt.Errorf("读取月度指标失败: %w", err)
	}
	if len(monthly) == 0 {
		return "", fmt.Errorf("没有可用的月度指标")
	}
	last := monthly[len(monthly)-1]

	lines := []string{"SalesIQ veckorapport (" + last.Month + ")"}
	for _, metric := range settings.Metrics {
		label, ok := models.ReportMetrics[metric]
		if !ok {
			continue
		}
		var value string
		switch metric {
		case "revenue":
			value = charts.FormatValue(last.Sales, true)
		case "customers":
			value = charts.FormatValue(float64(last.Customers), false)
		case "orders":
			value = charts.FormatValue(float64(last.Orders), false)
		case "conversion":
			value = fmt.Sprintf("%.1f%%", conversionRate(last))
		case "aov":
			value = charts.FormatValue(averageOrderValue(last), true)
		}
		lines = append(lines, label+": "+value)
	}
	return strings.Join(lines, "\n"), nil
}

// ValidateNotificationSettings 校验短信周报设置
func ValidateNotificationSettings(settings models.NotificationSettings) error {
	if _, ok := models.ReportDays[models.ReportDay(strings.ToLower(string(settings.ReportDay)))]; !ok {
		return utils.CreateBadRequestError(fmt.Sprintf("无效的发送日: %s", settings.ReportDay))
	}
	for _, metric := range settings.Metrics {
		if _, ok := models.ReportMetrics[metric]; !ok {
			return utils.CreateBadRequestError(fmt.Sprintf("无效的指标: %s", metric))
		}
	}
	if settings.Enabled {
		if settings.Phone == "" || !utils.IsValidPhone(settings.Phone) {
			return utils.CreateBadRequestError("启用周报时必须填写有效的手机号")
		}
		if len(settings.Metrics) == 0 {
			return utils.CreateBadRequestError("请至少选择一个指标")
		}
	}
	return nil
}

// ReportScheduler 每周按设置发送短信周报
type ReportScheduler struct {
	mu        sync.Mutex
	scheduler *gocron.Scheduler
	store     repository.Store
	notifier  Notifier
}

// NewReportScheduler 创建周报调度器
func NewReportScheduler(store repository.Store, notifier Notifier, loc *time.Location) *ReportScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ReportScheduler{
		scheduler: gocron.NewScheduler(loc),
		store:     store,
		notifier:  notifier,
	}
}

// Start 按当前设置注册任务并启动调度
func (r *ReportScheduler) Start(ctx context.Context) error {
	settings, err := r.store.GetNotificationSettings(ctx)
	if err != nil {
		return err
	}
	if err := r.Reschedule(settings); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	utils.Logger.Info().Msg("短信周报调度器已启动")
	return nil
}

// Reschedule 设置变化后重新注册周报任务，未启用时只移除任务
func (r *ReportScheduler) Reschedule(settings models.NotificationSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_ = r.scheduler.RemoveByTag(reportJobTag)
	if !settings.Enabled {
		utils.Logger.Info().Msg("短信周报未启用")
		return nil
	}

	weekday, ok := models.ReportDays[models.ReportDay(strings.ToLower(string(settings.ReportDay)))]
	if !ok {
		return fmt.Errorf("无效的发送日: %s", settings.ReportDay)
	}

	_, err := r.scheduler.Every(1).Week().Weekday(weekday).At(reportTime).Tag(reportJobTag).Do(func() {
		if err := r.RunOnce(context.Background()); err != nil {
			utils.Logger.Error().Err(err).Msg("短信周报发送失败")
		}
	})
	if err != nil {
		return fmt.Errorf("注册周报任务失败: %w", err)
	}
	utils.Logger.Info().Str("day", string(settings.ReportDay)).Str("at", reportTime).Msg("已注册短信周报任务")
	return nil
}

// RunOnce 立即生成并发送一次周报
func (r *ReportScheduler) RunOnce(ctx context.Context) error {
	settings, err := r.store.GetNotificationSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		return nil
	}
	message, err := BuildWeeklyReport(ctx, r.store, settings)
	if err != nil {
		return err
	}
	return r.notifier.Send(ctx, settings.Phone, message)
}

// NextRun 下一次发送时间，没有任务时返回零值
func (r *ReportScheduler) NextRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.scheduler.Jobs() {
		for _, tag := range job.Tags() {
			if tag == reportJobTag {
				return job.NextRun()
			}
		}
	}
	return time.Time{}
}

// Stop 停止调度
func (r *ReportScheduler) Stop() {
	r.scheduler.Stop()
	utils.Logger.Info().Msg("短信周报调度器已停止")
}

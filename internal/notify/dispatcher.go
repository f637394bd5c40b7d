package notify

import (
	"context"

	"github.com/Texmexdex/MonitoringTexter/internal/config"
	"github.com/Texmexdex/MonitoringTexter/internal/models"

	"go.uber.org/zap"
)

// 通知渠道名称（SendAlert 返回的 map 键）
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPush  = "push"
)

// emailSender 邮件渠道接口（测试时可替换）
type emailSender interface {
	Send(ctx context.Context, subject, body string) error
	Test(ctx context.Context) (bool, string)
}

// pushSender 推送渠道接口（测试时可替换）
type pushSender interface {
	Send(ctx context.Context, payload PushPayload) error
	Test(ctx context.Context) (bool, string)
}

// Dispatcher 多渠道通知分发器
// 各渠道独立启用、独立尝试：单个渠道失败只记录为 false，
// 不会中断其余渠道，也不会向调用方抛错
type Dispatcher struct {
	cfg       config.NotifyConfig
	email     emailSender
	push      pushSender
	providers map[string]Provider
	logger    *zap.Logger
}

// NewDispatcher 创建通知分发器
func NewDispatcher(cfg config.NotifyConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		email:     NewEmailChannel(cfg.Email, logger),
		push:      NewPushChannel(cfg.Push, logger),
		providers: buildProviders(cfg.Providers, logger),
		logger:    logger,
	}
}

// SendAlert 向所有启用的渠道发送报警
// 返回的 map 恰好包含启用渠道的键，值为该渠道是否发送成功
func (d *Dispatcher) SendAlert(ctx context.Context, snap models.StationSnapshot) map[string]bool {
	results := map[string]bool{}

	subject, body := BuildAlertMessage(snap)

	if d.cfg.Email.Enabled {
		err := d.email.Send(ctx, subject, body)
		if err != nil {
			d.logger.Warn("Email alert failed",
				zap.String("station", snap.Name),
				zap.Error(err),
			)
		}
		results[ChannelEmail] = err == nil
	}

	if d.cfg.SMS.Enabled {
		results[ChannelSMS] = d.sendSMS(ctx, subject+"\n\n"+body)
	}

	if d.cfg.Push.Enabled {
		payload := PushPayload{
			Title:    subject,
			Message:  body,
			Station:  &snap,
			Priority: "high",
			Type:     "alert",
		}
		err := d.push.Send(ctx, payload)
		if err != nil {
			d.logger.Warn("Push alert failed",
				zap.String("station", snap.Name),
				zap.Error(err),
			)
		}
		results[ChannelPush] = err == nil
	}

	d.logger.Info("Alert dispatched",
		zap.String("station", snap.Name),
		zap.Float64("value", snap.Value),
		zap.Any("results", results),
	)

	return results
}

// sendSMS 路由到配置的短信服务商
func (d *Dispatcher) sendSMS(ctx context.Context, text string) bool {
	if len(d.cfg.SMS.ToNumbers) == 0 {
		d.logger.Warn("SMS channel enabled but no recipient numbers configured")
		return false
	}

	provider, ok := d.providers[d.cfg.SMS.Provider]
	if !ok {
		d.logger.Warn("Unknown SMS provider",
			zap.String("provider", d.cfg.SMS.Provider),
		)
		return false
	}

	return provider.Send(ctx, text, d.cfg.SMS.ToNumbers)
}

// TestEmail 用合成消息验证邮件渠道配置
func (d *Dispatcher) TestEmail(ctx context.Context) (bool, string) {
	return d.email.Test(ctx)
}

// TestSMS 验证短信渠道配置
func (d *Dispatcher) TestSMS(ctx context.Context) (bool, string) {
	if !d.cfg.SMS.Enabled {
		return false, "SMS notifications not enabled"
	}
	return false, "SMS testing not yet implemented"
}

// TestPush 用合成消息验证推送渠道配置
func (d *Dispatcher) TestPush(ctx context.Context) (bool, string) {
	return d.push.Test(ctx)
}

package notify

import (
	"context"

	"github.com/Texmexdex/MonitoringTexter/internal/config"

	"go.uber.org/zap"
)

// 支持的短信服务商名称
const (
	ProviderTwilio      = "twilio"
	ProviderVonage      = "vonage"
	ProviderAWSSNS      = "aws_sns"
	ProviderGoogleVoice = "google_voice"
	ProviderWebhook     = "webhook"
)

// Provider 短信服务商统一契约
// 实现方对每个号码独立发送，单个号码失败不影响其余号码；
// 至少一个号码发送成功即视为整体成功
type Provider interface {
	Name() string
	Send(ctx context.Context, message string, toNumbers []string) bool
}

// buildProviders 构建服务商注册表
// 新增服务商只需注册实现，不修改分发逻辑
func buildProviders(cfg config.SMSProvidersConfig, logger *zap.Logger) map[string]Provider {
	providers := map[string]Provider{}
	for _, p := range []Provider{
		NewTwilioProvider(cfg.Twilio, logger),
		NewVonageProvider(cfg.Vonage, logger),
		NewAWSSNSProvider(cfg.AWSSNS, logger),
		NewGoogleVoiceProvider(cfg.GoogleVoice, logger),
		NewWebhookProvider(cfg.Webhook, logger),
	} {
		providers[p.Name()] = p
	}
	return providers
}

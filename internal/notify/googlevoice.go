package notify

import (
	"context"

	"github.com/Texmexdex/MonitoringTexter/internal/config"
	"github.com/Texmexdex/MonitoringTexter/internal/voiceapi"

	"go.uber.org/zap"
)

// voiceSender 语音信箱发送接口（测试时可替换）
type voiceSender interface {
	Login(ctx context.Context) error
	SendSMS(ctx context.Context, to, text string) error
}

// GoogleVoiceProvider 通过语音信箱 Web 账号发送短信
type GoogleVoiceProvider struct {
	cfg    config.VoiceAccountConfig
	client voiceSender
	logger *zap.Logger
}

// NewGoogleVoiceProvider 创建语音信箱服务商
func NewGoogleVoiceProvider(cfg config.VoiceAccountConfig, logger *zap.Logger) *GoogleVoiceProvider {
	return &GoogleVoiceProvider{
		cfg:    cfg,
		client: voiceapi.NewClient(cfg.BaseURL, cfg.Email, cfg.Password, logger),
		logger: logger,
	}
}

// Name 服务商名称
func (p *GoogleVoiceProvider) Name() string {
	return ProviderGoogleVoice
}

// Send 登录后逐个号码发送，至少一个成功即整体成功
func (p *GoogleVoiceProvider) Send(ctx context.Context, message string, toNumbers []string) bool {
	if p.cfg.BaseURL == "" || p.cfg.Email == "" || p.cfg.Password == "" {
		p.logger.Warn("Voice account credentials are not configured")
		return false
	}

	if err := p.client.Login(ctx); err != nil {
		p.logger.Warn("Voice account login failed",
			zap.Error(err),
		)
		return false
	}

	successCount := 0
	for _, to := range toNumbers {
		if err := p.client.SendSMS(ctx, to, message); err != nil {
			p.logger.Warn("Voice account send failed",
				zap.String("to", to),
				zap.Error(err),
			)
			continue
		}
		successCount++
	}

	return successCount > 0
}

package notify

import (
	"context"

	"github.com/Texmexdex/MonitoringTexter/internal/config"

	"go.uber.org/zap"
)

// AWSSNSProvider AWS SNS 短信服务商
// 尚未接入：可注册、可选择，但发送一律报失败而非 panic
type AWSSNSProvider struct {
	cfg    config.AWSSNSConfig
	logger *zap.Logger
}

// NewAWSSNSProvider 创建 AWS SNS 服务商
func NewAWSSNSProvider(cfg config.AWSSNSConfig, logger *zap.Logger) *AWSSNSProvider {
	return &AWSSNSProvider{
		cfg:    cfg,
		logger: logger,
	}
}

// Name 服务商名称
func (p *AWSSNSProvider) Name() string {
	return ProviderAWSSNS
}

// Send 未实现，始终报失败
func (p *AWSSNSProvider) Send(ctx context.Context, message string, toNumbers []string) bool {
	if p.cfg.AccessKeyID == "" || p.cfg.SecretAccessKey == "" {
		p.logger.Warn("AWS SNS credentials are not configured")
		return false
	}

	p.logger.Warn("AWS SNS SMS provider is not implemented",
		zap.Int("recipients", len(toNumbers)),
		zap.String("region", p.cfg.Region),
	)
	return false
}

package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Texmexdex/MonitoringTexter/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TwilioProvider Twilio REST API 短信服务商
// 每个号码一次表单编码 POST，201 视为成功
type TwilioProvider struct {
	cfg        config.TwilioConfig
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewTwilioProvider 创建 Twilio 服务商
func NewTwilioProvider(cfg config.TwilioConfig, logger *zap.Logger) *TwilioProvider {
	httpClient := resty.New().
		SetTimeout(10 * time.Second)

	return &TwilioProvider{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Name 服务商名称
func (p *TwilioProvider) Name() string {
	return ProviderTwilio
}

// Send 逐个号码发送，至少一个成功即整体成功
func (p *TwilioProvider) Send(ctx context.Context, message string, toNumbers []string) bool {
	if p.cfg.AccountSID == "" || p.cfg.AuthToken == "" || p.cfg.FromNumber == "" {
		p.logger.Warn("Twilio credentials are not configured")
		return false
	}

	url := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.cfg.BaseURL, p.cfg.AccountSID)

	successCount := 0
	for _, to := range toNumbers {
		resp, err := p.httpClient.R().
			SetContext(ctx).
			SetBasicAuth(p.cfg.AccountSID, p.cfg.AuthToken).
			SetFormData(map[string]string{
				"From": p.cfg.FromNumber,
				"To":   to,
				"Body": message,
			}).
			Post(url)

		if err != nil {
			p.logger.Warn("Twilio send failed",
				zap.String("to", to),
				zap.Error(err),
			)
			continue
		}

		if resp.StatusCode() == http.StatusCreated {
			successCount++
		} else {
			p.logger.Warn("Twilio rejected message",
				zap.String("to", to),
				zap.Int("status_code", resp.StatusCode()),
			)
		}
	}

	return successCount > 0
}

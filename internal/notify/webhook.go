package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/Texmexdex/MonitoringTexter/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// webhookSMSPayload 自定义 webhook 的短信载荷
type webhookSMSPayload struct {
	ToNumbers []string `json:"to_numbers"`
	Message   string   `json:"message"`
	Type      string   `json:"type"`
}

// WebhookProvider 自定义 webhook 短信服务商
// 所有号码打包为一次 JSON POST，由 webhook 端自行分发
type WebhookProvider struct {
	cfg        config.WebhookSMSConfig
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewWebhookProvider 创建 webhook 服务商
func NewWebhookProvider(cfg config.WebhookSMSConfig, logger *zap.Logger) *WebhookProvider {
	httpClient := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookProvider{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Name 服务商名称
func (p *WebhookProvider) Name() string {
	return ProviderWebhook
}

// Send 单次 POST，200 视为成功
func (p *WebhookProvider) Send(ctx context.Context, message string, toNumbers []string) bool {
	if p.cfg.URL == "" {
		p.logger.Warn("SMS webhook URL is not configured")
		return false
	}

	req := p.httpClient.R().
		SetContext(ctx).
		SetBody(webhookSMSPayload{
			ToNumbers: toNumbers,
			Message:   message,
			Type:      "alert",
		})

	if p.cfg.APIKey != "" {
		req.SetAuthToken(p.cfg.APIKey)
	}

	resp, err := req.Post(p.cfg.URL)
	if err != nil {
		p.logger.Warn("SMS webhook send failed",
			zap.Error(err),
		)
		return false
	}

	if resp.StatusCode() != http.StatusOK {
		p.logger.Warn("SMS webhook rejected message",
			zap.Int("status_code", resp.StatusCode()),
		)
		return false
	}

	return true
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Texmexdex/MonitoringTexter/internal/config"
	"github.com/Texmexdex/MonitoringTexter/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrPushNotConfigured 推送 webhook 地址未配置
var ErrPushNotConfigured = errors.New("push webhook URL is not configured")

// PushPayload 推送 webhook 的 JSON 载荷
type PushPayload struct {
	Title    string                  `json:"title"`
	Message  string                  `json:"message"`
	Station  *models.StationSnapshot `json:"station,omitempty"`
	Priority string                  `json:"priority"`
	Type     string                  `json:"type"`
}

// PushChannel 推送通知渠道（单次 JSON POST 到配置的 webhook）
type PushChannel struct {
	cfg        config.PushNotifyConfig
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewPushChannel 创建推送渠道
func NewPushChannel(cfg config.PushNotifyConfig, logger *zap.Logger) *PushChannel {
	httpClient := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &PushChannel{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Send 发送推送通知，2xx 视为成功
func (p *PushChannel) Send(ctx context.Context, payload PushPayload) error {
	if p.cfg.WebhookURL == "" {
		return ErrPushNotConfigured
	}

	req := p.httpClient.R().
		SetContext(ctx).
		SetBody(payload)

	if p.cfg.APIKey != "" {
		req.SetAuthToken(p.cfg.APIKey)
	}

	resp, err := req.Post(p.cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("failed to post push notification: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("push webhook returned status %d", resp.StatusCode())
	}

	return nil
}

// Test 用合成消息验证推送配置，返回 (是否成功, 可读原因)
func (p *PushChannel) Test(ctx context.Context) (bool, string) {
	if p.cfg.WebhookURL == "" {
		return false, "Webhook URL not configured"
	}

	payload := PushPayload{
		Title:    "Test Notification",
		Message:  "This is a test from Station Monitoring System",
		Priority: "normal",
		Type:     "test",
	}

	if err := p.Send(ctx, payload); err != nil {
		return false, fmt.Sprintf("Test failed: %v", err)
	}

	return true, "Test notification sent successfully!"
}

package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/Texmexdex/MonitoringTexter/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// vonageResponse Vonage /sms/json 响应
// 成功与否嵌在 JSON 体内：messages[0].status == "0"
type vonageResponse struct {
	Messages []struct {
		Status    string `json:"status"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

// VonageProvider Vonage (Nexmo) REST API 短信服务商
type VonageProvider struct {
	cfg        config.VonageConfig
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewVonageProvider 创建 Vonage 服务商
func NewVonageProvider(cfg config.VonageConfig, logger *zap.Logger) *VonageProvider {
	httpClient := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &VonageProvider{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Name 服务商名称
func (p *VonageProvider) Name() string {
	return ProviderVonage
}

// Send 逐个号码发送，至少一个成功即整体成功
func (p *VonageProvider) Send(ctx context.Context, message string, toNumbers []string) bool {
	if p.cfg.APIKey == "" || p.cfg.APISecret == "" || p.cfg.FromNumber == "" {
		p.logger.Warn("Vonage credentials are not configured")
		return false
	}

	url := p.cfg.BaseURL + "/sms/json"

	successCount := 0
	for _, to := range toNumbers {
		var result vonageResponse
		resp, err := p.httpClient.R().
			SetContext(ctx).
			SetBody(map[string]string{
				"api_key":    p.cfg.APIKey,
				"api_secret": p.cfg.APISecret,
				"from":       p.cfg.FromNumber,
				"to":         to,
				"text":       message,
			}).
			SetResult(&result).
			Post(url)

		if err != nil {
			p.logger.Warn("Vonage send failed",
				zap.String("to", to),
				zap.Error(err),
			)
			continue
		}

		if resp.StatusCode() == http.StatusOK && len(result.Messages) > 0 && result.Messages[0].Status == "0" {
			successCount++
		} else {
			errorText := ""
			if len(result.Messages) > 0 {
				errorText = result.Messages[0].ErrorText
			}
			p.logger.Warn("Vonage rejected message",
				zap.String("to", to),
				zap.Int("status_code", resp.StatusCode()),
				zap.String("error_text", errorText),
			)
		}
	}

	return successCount > 0
}

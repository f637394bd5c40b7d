package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Texmexdex/MonitoringTexter/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrEmailNotConfigured 邮件渠道必填配置缺失
var ErrEmailNotConfigured = errors.New("email channel is not fully configured")

// EmailChannel SMTP 邮件通知渠道
// 每次发送建立独立会话：连接 → STARTTLS 升级并认证 → 发送 → 断开
type EmailChannel struct {
	cfg    config.EmailNotifyConfig
	logger *zap.Logger
}

// NewEmailChannel 创建邮件渠道
func NewEmailChannel(cfg config.EmailNotifyConfig, logger *zap.Logger) *EmailChannel {
	return &EmailChannel{
		cfg:    cfg,
		logger: logger,
	}
}

// configured 检查必填项（服务器、端口、发件人、凭据、收件人列表）
func (e *EmailChannel) configured() bool {
	return e.cfg.SMTPServer != "" &&
		e.cfg.SMTPPort > 0 &&
		e.cfg.FromEmail != "" &&
		e.cfg.Password != "" &&
		len(e.cfg.ToEmails) > 0
}

// Send 发送报警邮件
// 配置不全时直接报失败，不尝试建立连接
func (e *EmailChannel) Send(ctx context.Context, subject, body string) error {
	if !e.configured() {
		return ErrEmailNotConfigured
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.FromEmail)
	m.SetHeader("To", e.cfg.ToEmails...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewPlainDialer(e.cfg.SMTPServer, e.cfg.SMTPPort, e.cfg.FromEmail, e.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	e.logger.Info("Alert email sent",
		zap.Int("recipients", len(e.cfg.ToEmails)),
	)

	return nil
}

// Test 用合成消息验证邮件配置，返回 (是否成功, 可读原因)
func (e *EmailChannel) Test(ctx context.Context) (bool, string) {
	if !e.configured() {
		return false, "Missing required configuration"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.FromEmail)
	m.SetHeader("To", e.cfg.ToEmails...)
	m.SetHeader("Subject", "Test: Station Monitor Notification")
	m.SetBody("text/plain", "This is a test notification from Station Monitoring System.\n\nIf you received this, email notifications are working correctly!")

	d := gomail.NewPlainDialer(e.cfg.SMTPServer, e.cfg.SMTPPort, e.cfg.FromEmail, e.cfg.Password)

	conn, err := d.Dial()
	if err != nil {
		return false, fmt.Sprintf("Test failed: %v", err)
	}
	defer conn.Close()

	if err := gomail.Send(conn, m); err != nil {
		return false, fmt.Sprintf("Test failed: %v", err)
	}

	return true, "Test email sent successfully!"
}

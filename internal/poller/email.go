package poller

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// InboundEmail 邮箱中的一封未读邮件
type InboundEmail struct {
	UID  uint32
	From string
	Body string
}

// Mailbox 邮箱消息源（IMAP 实现见 imap.go，测试时可替换）
type Mailbox interface {
	FetchUnseen(ctx context.Context) ([]InboundEmail, error)
}

// EmailPoller 轮询 IMAP 邮箱的接收端
// 典型来源是运营商的"短信转邮件"网关：站号在发件人地址或正文里
type EmailPoller struct {
	*runner

	mailbox            Mailbox
	dedup              *Deduper
	handler            Handler
	defaultCountryCode string
	logger             *zap.Logger
}

// NewEmailPoller 创建邮箱轮询器
func NewEmailPoller(mailbox Mailbox, interval time.Duration, dedup *Deduper, handler Handler, defaultCountryCode string, logger *zap.Logger) *EmailPoller {
	if mailbox == nil {
		panic("mailbox is required")
	}
	if dedup == nil {
		panic("dedup is required")
	}
	if handler == nil {
		panic("handler is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	p := &EmailPoller{
		mailbox:            mailbox,
		dedup:              dedup,
		handler:            handler,
		defaultCountryCode: defaultCountryCode,
		logger:             logger,
	}
	p.runner = newRunner("email", interval, p.pollOnce, logger)
	return p
}

// pollOnce 拉取未读邮件并把能归属到号码的消息交给 handler
func (p *EmailPoller) pollOnce(ctx context.Context) error {
	emails, err := p.mailbox.FetchUnseen(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch unseen emails: %w", err)
	}

	for _, email := range emails {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p.dedup.Seen(ctx, "email", strconv.FormatUint(uint64(email.UID), 10)) {
			continue
		}

		phone := ExtractPhone(email.From+" "+email.Body, p.defaultCountryCode)
		if phone == "" || email.Body == "" {
			p.logger.Debug("Skipping email without phone number",
				zap.Uint32("uid", email.UID),
				zap.String("from", email.From),
			)
			continue
		}

		p.logger.Debug("Received forwarded message",
			zap.Uint32("uid", email.UID),
			zap.String("phone", phone),
		)
		p.handler(phone, email.Body)
	}
	return nil
}

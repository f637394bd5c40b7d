package poller

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Texmexdex/MonitoringTexter/internal/voiceapi"
)

// VoiceInbox 语音信箱消息源（测试时可替换真实 Web 客户端）
type VoiceInbox interface {
	Messages(ctx context.Context) ([]voiceapi.Message, error)
}

// VoicePoller 轮询语音信箱 Web 账号收件箱的接收端
type VoicePoller struct {
	*runner

	inbox   VoiceInbox
	dedup   *Deduper
	handler Handler
	logger  *zap.Logger
}

// NewVoicePoller 创建语音信箱轮询器
func NewVoicePoller(inbox VoiceInbox, interval time.Duration, dedup *Deduper, handler Handler, logger *zap.Logger) *VoicePoller {
	if inbox == nil {
		panic("inbox is required")
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

	p := &VoicePoller{
		inbox:   inbox,
		dedup:   dedup,
		handler: handler,
		logger:  logger,
	}
	p.runner = newRunner("voice", interval, p.pollOnce, logger)
	return p
}

// pollOnce 拉取收件箱并把未处理的消息交给 handler
func (p *VoicePoller) pollOnce(ctx context.Context) error {
	messages, err := p.inbox.Messages(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch voice inbox: %w", err)
	}

	for _, msg := range messages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if msg.ID == "" || msg.From == "" || msg.Text == "" {
			continue
		}
		if p.dedup.Seen(ctx, "voice", msg.ID) {
			continue
		}

		p.logger.Debug("Received voice inbox message",
			zap.String("message_id", msg.ID),
			zap.String("from", msg.From),
		)
		p.handler(msg.From, msg.Text)
	}
	return nil
}

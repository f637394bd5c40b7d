package receiver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Texmexdex/MonitoringTexter/internal/config"
	"github.com/Texmexdex/MonitoringTexter/internal/models"
	"github.com/Texmexdex/MonitoringTexter/internal/poller"
	"github.com/Texmexdex/MonitoringTexter/internal/voiceapi"
)

// Ingestor 入站消息摄入管道
type Ingestor interface {
	Ingest(ctx context.Context, phoneNumber, rawText string) (*models.Reading, error)
}

// ReadingCallback 每成功摄入一条读数后的回调
type ReadingCallback func(reading *models.Reading)

// pollerFactory 按接收方式构建轮询器（测试时可替换）
type pollerFactory func(method string, handler poller.Handler) (poller.Poller, error)

// Manager 接收端管理器
// 保证任意时刻至多一个后台轮询器在跑；切换接收方式时先停旧的再起新的
type Manager struct {
	cfg      *config.Config
	ingestor Ingestor
	dedup    *poller.Deduper
	logger   *zap.Logger

	factory pollerFactory

	mu      sync.Mutex
	current poller.Poller
}

// NewManager 创建接收端管理器
func NewManager(cfg *config.Config, ingestor Ingestor, dedup *poller.Deduper, logger *zap.Logger) *Manager {
	if cfg == nil {
		panic("cfg is required")
	}
	if ingestor == nil {
		panic("ingestor is required")
	}
	if dedup == nil {
		panic("dedup is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	m := &Manager{
		cfg:      cfg,
		ingestor: ingestor,
		dedup:    dedup,
		logger:   logger,
	}
	m.factory = m.buildPoller
	return m
}

// Start 启动指定接收方式的轮询器
// 先停掉已有轮询器；手动录入等非轮询方式只做停止，不起新轮询器
func (m *Manager) Start(method string, onReading ReadingCallback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()

	if !config.IsPollerMethod(method) {
		m.logger.Info("Reception method has no background poller",
			zap.String("method", method),
		)
		return nil
	}

	p, err := m.factory(method, m.ingestHandler(onReading))
	if err != nil {
		return err
	}

	p.Start()
	m.current = p

	m.logger.Info("Receiver started",
		zap.String("method", method),
	)
	return nil
}

// Stop 停止当前轮询器（若有）
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// IsRunning 当前是否有轮询器在跑
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && m.current.IsRunning()
}

func (m *Manager) stopLocked() {
	if m.current == nil {
		return
	}
	m.current.Stop()
	m.current = nil
	m.logger.Info("Receiver stopped")
}

// ingestHandler 把入站消息接到摄入管道上
// 未注册号码和无法解析的消息：丢弃并记录，轮询继续
func (m *Manager) ingestHandler(onReading ReadingCallback) poller.Handler {
	return func(senderID, text string) {
		reading, err := m.ingestor.Ingest(context.Background(), senderID, text)
		if err != nil {
			m.logger.Warn("Dropped inbound message",
				zap.String("sender", senderID),
				zap.Error(err),
			)
			return
		}
		if onReading != nil {
			onReading(reading)
		}
	}
}

// buildPoller 按接收方式构建真实轮询器
func (m *Manager) buildPoller(method string, handler poller.Handler) (poller.Poller, error) {
	interval := time.Duration(m.cfg.Receiver.CheckInterval) * time.Second

	switch method {
	case config.MethodGoogleVoice:
		voice := m.cfg.Receiver.Voice
		inbox := voiceapi.NewClient(voice.BaseURL, voice.Email, voice.Password, m.logger)
		return poller.NewVoicePoller(inbox, interval, m.dedup, handler, m.logger), nil

	case config.MethodEmail:
		imap := m.cfg.Receiver.IMAP
		mailbox := poller.NewIMAPMailbox(imap.Server, imap.Port, imap.EmailAddress, imap.Password, m.logger)
		return poller.NewEmailPoller(mailbox, interval, m.dedup, handler, imap.DefaultCountryCode, m.logger), nil

	default:
		return nil, fmt.Errorf("unknown reception method: %s", method)
	}
}

package poller

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Poller 后台轮询器统一契约
// 状态：Stopped → Running → Stopped
type Poller interface {
	// Start 启动后台轮询；已在运行时为空操作
	Start()
	// Stop 发出停止信号并在限定时间内等待循环退出
	Stop()
	// IsRunning 是否处于 Running 状态
	IsRunning() bool
}

// Handler 每条入站消息 (发送方号码, 文本) 的处理函数
type Handler func(senderID, text string)

// stopWait Stop 等待循环退出的上限
// 超时只意味着停止请求已发出，在途网络调用结束后循环会自行退出
const stopWait = 5 * time.Second

// runner 通用轮询循环
// 一个周期 = 执行一次 cycle + 休眠 interval；周期内的错误只记录，
// 视为本周期无消息，绝不终止循环；只有 Stop 能终止
type runner struct {
	name     string
	interval time.Duration
	cycle    func(ctx context.Context) error
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func newRunner(name string, interval time.Duration, cycle func(ctx context.Context) error, logger *zap.Logger) *runner {
	return &runner{
		name:     name,
		interval: interval,
		cycle:    cycle,
		logger:   logger,
	}
}

// Start 启动轮询循环；已在运行时为空操作
func (r *runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.loop(ctx, r.done)
}

func (r *runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	logger := r.logger.With(
		zap.String("poller", r.name),
		zap.String("run_id", uuid.New().String()),
	)
	logger.Info("Poller started",
		zap.Duration("interval", r.interval),
	)

	for {
		if err := r.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				logger.Info("Poller stopped")
				return
			}
			logger.Warn("Poll cycle failed",
				zap.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			logger.Info("Poller stopped")
			return
		case <-time.After(r.interval):
		}
	}
}

// Stop 发出协作式取消信号，等待循环退出（有界等待）
// 不打断在途的网络调用
func (r *runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-time.After(stopWait):
		r.logger.Warn("Poller did not exit within stop bound",
			zap.String("poller", r.name),
		)
	}
}

// IsRunning 是否处于 Running 状态
func (r *runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

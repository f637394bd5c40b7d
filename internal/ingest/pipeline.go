package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/Texmexdex/MonitoringTexter/internal/models"
	"github.com/Texmexdex/MonitoringTexter/internal/parser"
	"github.com/Texmexdex/MonitoringTexter/internal/repository"

	"go.uber.org/zap"
)

var (
	// ErrUnknownSender 发送方号码未注册任何站点
	ErrUnknownSender = errors.New("sender phone number is not registered to any station")

	// ErrUnparsableMessage 消息文本中解析不出数值
	ErrUnparsableMessage = errors.New("could not parse a value from message text")
)

// StationResolver 站点解析接口（由 StationRepository 实现）
type StationResolver interface {
	GetStation(ctx context.Context, stationID int64) (*models.Station, error)
	GetStationByPhone(ctx context.Context, phoneNumber string) (*models.Station, error)
}

// ReadingStore 读数写入接口（由 ReadingRepository 实现）
type ReadingStore interface {
	AddReading(ctx context.Context, stationID int64, value float64, rawMessage string) (*models.Reading, error)
}

// Notifier 报警分发接口（由 notify.Dispatcher 实现）
type Notifier interface {
	SendAlert(ctx context.Context, snap models.StationSnapshot) map[string]bool
}

// Pipeline 读数摄入管道
// 原始消息 → 站点归属 → 数值解析 → 原子持久化（读数+报警）→ 报警分发
type Pipeline struct {
	stations StationResolver
	readings ReadingStore
	notifier Notifier
	logger   *zap.Logger
}

// NewPipeline 创建摄入管道
func NewPipeline(stations StationResolver, readings ReadingStore, notifier Notifier, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		stations: stations,
		readings: readings,
		notifier: notifier,
		logger:   logger,
	}
}

// Ingest 处理一条原始入站消息（轮询路径）
// 未注册号码返回 ErrUnknownSender，解析失败返回 ErrUnparsableMessage，
// 由调用方决定丢弃记录还是向用户报错
func (p *Pipeline) Ingest(ctx context.Context, phoneNumber, rawText string) (*models.Reading, error) {
	station, err := p.stations.GetStationByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSender, phoneNumber)
		}
		return nil, fmt.Errorf("failed to resolve station: %w", err)
	}

	value := parser.ParseValue(rawText)
	if value == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnparsableMessage, rawText)
	}

	return p.ingest(ctx, station, *value, rawText)
}

// IngestValue 处理一条已解析的读数（手工录入路径）
func (p *Pipeline) IngestValue(ctx context.Context, stationID int64, value float64, rawText string) (*models.Reading, error) {
	station, err := p.stations.GetStation(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve station: %w", err)
	}

	return p.ingest(ctx, station, value, rawText)
}

// ingest 持久化读数并在超限时分发报警
// 分发失败只记日志，已提交的读数和报警不回滚
func (p *Pipeline) ingest(ctx context.Context, station *models.Station, value float64, rawText string) (*models.Reading, error) {
	reading, err := p.readings.AddReading(ctx, station.ID, value, rawText)
	if err != nil {
		return nil, fmt.Errorf("failed to persist reading: %w", err)
	}

	p.logger.Info("Reading ingested",
		zap.String("station", station.Name),
		zap.Float64("value", value),
		zap.Bool("is_alert", reading.IsAlert),
	)

	if reading.IsAlert {
		results := p.notifier.SendAlert(ctx, station.Snapshot(value))
		for channel, ok := range results {
			if !ok {
				p.logger.Warn("Alert notification channel failed",
					zap.String("channel", channel),
					zap.String("station", station.Name),
				)
			}
		}
	}

	return reading, nil
}

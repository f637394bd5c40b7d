package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Texmexdex/MonitoringTexter/internal/config"
	"github.com/Texmexdex/MonitoringTexter/internal/ingest"
	"github.com/Texmexdex/MonitoringTexter/internal/models"
	"github.com/Texmexdex/MonitoringTexter/internal/notify"
	"github.com/Texmexdex/MonitoringTexter/internal/poller"
	"github.com/Texmexdex/MonitoringTexter/internal/receiver"
	"github.com/Texmexdex/MonitoringTexter/internal/repository"
)

// MonitorService 站点监控服务（整合各层）
type MonitorService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger

	// 各层组件
	stationRepo *repository.StationRepository
	readingRepo *repository.ReadingRepository
	dispatcher  *notify.Dispatcher
	pipeline    *ingest.Pipeline
	receiver    *receiver.Manager
}

// NewMonitorService 创建监控服务
func NewMonitorService(cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	// 1. 连接数据库
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 2. 连接 Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. 创建 Repository 层
	stationRepo := repository.NewStationRepository(db, logger)
	readingRepo := repository.NewReadingRepository(db, logger)

	// 4. 创建通知分发器
	dispatcher := notify.NewDispatcher(cfg.Notify, logger)

	// 5. 创建摄入管道
	pipeline := ingest.NewPipeline(stationRepo, readingRepo, dispatcher, logger)

	// 6. 创建接收端管理器
	dedup := poller.NewDeduper(redisClient, time.Duration(cfg.Receiver.DedupTTL)*time.Second, logger)
	receiverManager := receiver.NewManager(cfg, pipeline, dedup, logger)

	return &MonitorService{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		stationRepo: stationRepo,
		readingRepo: readingRepo,
		dispatcher:  dispatcher,
		pipeline:    pipeline,
		receiver:    receiverManager,
	}, nil
}

// Start 启动服务：建表并按配置启动接收端
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("Starting monitor service",
		zap.String("receiver_method", s.config.Receiver.Method),
	)

	if err := repository.InitSchema(ctx, s.db); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}

	if err := s.receiver.Start(s.config.Receiver.Method, s.onReading); err != nil {
		return fmt.Errorf("failed to start receiver: %w", err)
	}

	return nil
}

// Stop 停止服务
func (s *MonitorService) Stop() error {
	s.logger.Info("Stopping monitor service")

	s.receiver.Stop()

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}
	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}
	return nil
}

// Stations 站点管理入口
func (s *MonitorService) Stations() *repository.StationRepository {
	return s.stationRepo
}

// Readings 读数与告警查询入口
func (s *MonitorService) Readings() *repository.ReadingRepository {
	return s.readingRepo
}

// SubmitReading 手动录入一条读数
func (s *MonitorService) SubmitReading(ctx context.Context, stationID int64, value float64) (*models.Reading, error) {
	return s.pipeline.IngestValue(ctx, stationID, value, fmt.Sprintf("manual entry: %.2f", value))
}

// SwitchReceiver 切换接收方式并重启对应轮询器
func (s *MonitorService) SwitchReceiver(method string) error {
	s.config.Receiver.Method = method
	return s.receiver.Start(method, s.onReading)
}

// TestNotifications 逐个通道发送测试通知，返回通道到结果说明的映射
func (s *MonitorService) TestNotifications(ctx context.Context) map[string]string {
	results := make(map[string]string)

	ok, reason := s.dispatcher.TestEmail(ctx)
	results[notify.ChannelEmail] = testResult(ok, reason)

	ok, reason = s.dispatcher.TestSMS(ctx)
	results[notify.ChannelSMS] = testResult(ok, reason)

	ok, reason = s.dispatcher.TestPush(ctx)
	results[notify.ChannelPush] = testResult(ok, reason)

	return results
}

func testResult(ok bool, reason string) string {
	if ok {
		return "OK: " + reason
	}
	return "FAILED: " + reason
}

// onReading 轮询器摄入成功后的回调
func (s *MonitorService) onReading(reading *models.Reading) {
	s.logger.Info("Reading ingested from receiver",
		zap.Int64("reading_id", reading.ID),
		zap.Int64("station_id", reading.StationID),
		zap.Float64("value", reading.Value),
		zap.Bool("is_alert", reading.IsAlert),
	)
}

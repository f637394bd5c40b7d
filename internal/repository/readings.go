package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Texmexdex/MonitoringTexter/internal/models"

	"go.uber.org/zap"
)

// ReadingRepository 读数/报警仓库
type ReadingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReadingRepository 创建读数仓库
func NewReadingRepository(db *sql.DB, logger *zap.Logger) *ReadingRepository {
	return &ReadingRepository{
		db:     db,
		logger: logger,
	}
}

// AddReading 写入读数
// is_alert 根据站点写入时刻的范围判定；超限时在同一事务内创建未确认报警，
// 保证并发读取方不会观察到缺失报警记录的超限读数
func (r *ReadingRepository) AddReading(ctx context.Context, stationID int64, value float64, rawMessage string) (*models.Reading, error) {
	if stationID <= 0 {
		return nil, fmt.Errorf("station_id is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 读取站点当前范围（写入时刻快照）
	var minValue, maxValue float64
	err = tx.QueryRowContext(ctx,
		`SELECT min_value, max_value FROM stations WHERE id = $1`,
		stationID,
	).Scan(&minValue, &maxValue)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStationNotFound
		}
		return nil, fmt.Errorf("failed to get station range: %w", err)
	}

	isAlert := value < minValue || value > maxValue

	reading := &models.Reading{
		StationID:  stationID,
		Value:      value,
		RawMessage: rawMessage,
		IsAlert:    isAlert,
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO readings (station_id, value, raw_message, is_alert)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, received_at`,
		stationID, value, rawMessage, isAlert,
	).Scan(&reading.ID, &reading.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reading: %w", err)
	}

	if isAlert {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO alerts (reading_id) VALUES ($1)`,
			reading.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert alert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reading: %w", err)
	}

	r.logger.Info("Reading recorded",
		zap.Int64("reading_id", reading.ID),
		zap.Int64("station_id", stationID),
		zap.Float64("value", value),
		zap.Bool("is_alert", isAlert),
	)

	return reading, nil
}

// GetLatestReadings 获取每个站点的最新读数（dashboard 视图）
func (r *ReadingRepository) GetLatestReadings(ctx context.Context) ([]*models.StationStatus, error) {
	query := `
		SELECT s.id AS station_id, s.name, s.phone_number, s.min_value, s.max_value, s.enabled,
		       r.value, r.is_alert, r.received_at
		FROM stations s
		LEFT JOIN readings r ON r.id = (
			SELECT MAX(id) FROM readings WHERE station_id = s.id
		)
		ORDER BY s.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest readings: %w", err)
	}
	defer rows.Close()

	statuses := []*models.StationStatus{}
	for rows.Next() {
		var status models.StationStatus
		var value sql.NullFloat64
		var isAlert sql.NullBool
		var receivedAt sql.NullTime

		err := rows.Scan(
			&status.StationID,
			&status.Name,
			&status.PhoneNumber,
			&status.MinValue,
			&status.MaxValue,
			&status.Enabled,
			&value,
			&isAlert,
			&receivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan station status: %w", err)
		}

		// 处理尚无读数的站点
		if value.Valid {
			status.Value = &value.Float64
		}
		if isAlert.Valid {
			status.IsAlert = &isAlert.Bool
		}
		if receivedAt.Valid {
			status.ReceivedAt = &receivedAt.Time
		}

		statuses = append(statuses, &status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate station statuses: %w", err)
	}

	return statuses, nil
}

// GetStationHistory 获取站点历史读数（含报警处理信息，按时间倒序）
func (r *ReadingRepository) GetStationHistory(ctx context.Context, stationID int64, limit int) ([]*models.ReadingHistory, error) {
	if stationID <= 0 {
		return nil, fmt.Errorf("station_id is required")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT r.id, r.station_id, r.value, r.raw_message, r.is_alert, r.received_at,
		       a.resolution_notes, a.resolved_by, a.acknowledged_at
		FROM readings r
		LEFT JOIN alerts a ON r.id = a.reading_id
		WHERE r.station_id = $1
		ORDER BY r.received_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, stationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query station history: %w", err)
	}
	defer rows.Close()

	history := []*models.ReadingHistory{}
	for rows.Next() {
		var item models.ReadingHistory
		var notes, resolvedBy sql.NullString
		var acknowledgedAt sql.NullTime

		err := rows.Scan(
			&item.ID,
			&item.StationID,
			&item.Value,
			&item.RawMessage,
			&item.IsAlert,
			&item.ReceivedAt,
			&notes,
			&resolvedBy,
			&acknowledgedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading history: %w", err)
		}

		if notes.Valid {
			item.ResolutionNotes = &notes.String
		}
		if resolvedBy.Valid {
			item.ResolvedBy = &resolvedBy.String
		}
		if acknowledgedAt.Valid {
			item.AcknowledgedAt = &acknowledgedAt.Time
		}

		history = append(history, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reading history: %w", err)
	}

	return history, nil
}

// GetActiveAlerts 获取所有未确认报警（按触发时间倒序）
func (r *ReadingRepository) GetActiveAlerts(ctx context.Context) ([]*models.ActiveAlert, error) {
	query := `
		SELECT a.id AS alert_id, s.name, s.phone_number, r.value,
		       s.min_value, s.max_value, r.received_at
		FROM alerts a
		JOIN readings r ON a.reading_id = r.id
		JOIN stations s ON r.station_id = s.id
		WHERE a.acknowledged = FALSE
		ORDER BY r.received_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*models.ActiveAlert{}
	for rows.Next() {
		var alert models.ActiveAlert
		err := rows.Scan(
			&alert.AlertID,
			&alert.Name,
			&alert.PhoneNumber,
			&alert.Value,
			&alert.MinValue,
			&alert.MaxValue,
			&alert.ReceivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active alert: %w", err)
		}
		alerts = append(alerts, &alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active alerts: %w", err)
	}

	return alerts, nil
}

// AcknowledgeAlert 确认报警（设置 acknowledged 和 acknowledged_at）
func (r *ReadingRepository) AcknowledgeAlert(ctx context.Context, alertID int64) error {
	if alertID <= 0 {
		return fmt.Errorf("alert_id is required")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE alerts
		 SET acknowledged = TRUE, acknowledged_at = CURRENT_TIMESTAMP
		 WHERE id = $1`,
		alertID,
	)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAlertNotFound
	}

	return nil
}

// AddResolutionNotes 为读数对应的报警附加处理备注
// 附加备注同时将报警置为已确认；重复调用以最新备注为准，acknowledged 保持 TRUE
func (r *ReadingRepository) AddResolutionNotes(ctx context.Context, readingID int64, notes, resolvedBy string) error {
	if readingID <= 0 {
		return fmt.Errorf("reading_id is required")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE alerts
		 SET resolution_notes = $1, resolved_by = $2,
		     acknowledged = TRUE, acknowledged_at = CURRENT_TIMESTAMP
		 WHERE reading_id = $3`,
		notes, resolvedBy, readingID,
	)
	if err != nil {
		return fmt.Errorf("failed to add resolution notes: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAlertNotFound
	}

	r.logger.Info("Alert resolved",
		zap.Int64("reading_id", readingID),
		zap.String("resolved_by", resolvedBy),
	)

	return nil
}

// GetReadingWithNotes 获取单条读数及其报警处理信息
func (r *ReadingRepository) GetReadingWithNotes(ctx context.Context, readingID int64) (*models.ReadingHistory, error) {
	if readingID <= 0 {
		return nil, fmt.Errorf("reading_id is required")
	}

	query := `
		SELECT r.id, r.station_id, r.value, r.raw_message, r.is_alert, r.received_at,
		       a.resolution_notes, a.resolved_by, a.acknowledged_at
		FROM readings r
		LEFT JOIN alerts a ON r.id = a.reading_id
		WHERE r.id = $1
	`

	var item models.ReadingHistory
	var notes, resolvedBy sql.NullString
	var acknowledgedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, readingID).Scan(
		&item.ID,
		&item.StationID,
		&item.Value,
		&item.RawMessage,
		&item.IsAlert,
		&item.ReceivedAt,
		&notes,
		&resolvedBy,
		&acknowledgedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}

	if notes.Valid {
		item.ResolutionNotes = &notes.String
	}
	if resolvedBy.Valid {
		item.ResolvedBy = &resolvedBy.String
	}
	if acknowledgedAt.Valid {
		item.AcknowledgedAt = &acknowledgedAt.Time
	}

	return &item, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Texmexdex/MonitoringTexter/internal/models"

	"go.uber.org/zap"
)

// StationRepository 站点仓库
type StationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStationRepository 创建站点仓库
func NewStationRepository(db *sql.DB, logger *zap.Logger) *StationRepository {
	return &StationRepository{
		db:     db,
		logger: logger,
	}
}

// AddStation 创建站点
// min_value 必须小于 max_value；phone_number 全局唯一，冲突返回 ErrDuplicateSender
func (r *StationRepository) AddStation(ctx context.Context, name, phoneNumber string, minValue, maxValue float64) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("name is required")
	}
	if phoneNumber == "" {
		return 0, fmt.Errorf("phone_number is required")
	}
	if minValue >= maxValue {
		return 0, ErrInvalidRange
	}

	query := `
		INSERT INTO stations (name, phone_number, min_value, max_value)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var stationID int64
	err := r.db.QueryRowContext(ctx, query, name, phoneNumber, minValue, maxValue).Scan(&stationID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateSender
		}
		return 0, fmt.Errorf("failed to add station: %w", err)
	}

	r.logger.Info("Station added",
		zap.Int64("station_id", stationID),
		zap.String("name", name),
		zap.String("phone_number", phoneNumber),
	)

	return stationID, nil
}

// UpdateStation 更新站点
func (r *StationRepository) UpdateStation(ctx context.Context, stationID int64, name, phoneNumber string, minValue, maxValue float64, enabled bool) error {
	if stationID <= 0 {
		return fmt.Errorf("station_id is required")
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if phoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	if minValue >= maxValue {
		return ErrInvalidRange
	}

	query := `
		UPDATE stations
		SET name = $1, phone_number = $2, min_value = $3, max_value = $4, enabled = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query, name, phoneNumber, minValue, maxValue, enabled, stationID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSender
		}
		return fmt.Errorf("failed to update station: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrStationNotFound
	}

	return nil
}

// DeleteStation 删除站点
// 不级联删除读数，历史读数仍可引用已删除站点（由展示层处理）
func (r *StationRepository) DeleteStation(ctx context.Context, stationID int64) error {
	if stationID <= 0 {
		return fmt.Errorf("station_id is required")
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, stationID)
	if err != nil {
		return fmt.Errorf("failed to delete station: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrStationNotFound
	}

	return nil
}

// GetAllStations 获取所有站点（按名称排序）
func (r *StationRepository) GetAllStations(ctx context.Context) ([]*models.Station, error) {
	query := `
		SELECT id, name, phone_number, min_value, max_value, enabled, created_at
		FROM stations
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	stations := []*models.Station{}
	for rows.Next() {
		var station models.Station
		err := rows.Scan(
			&station.ID,
			&station.Name,
			&station.PhoneNumber,
			&station.MinValue,
			&station.MaxValue,
			&station.Enabled,
			&station.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, &station)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stations: %w", err)
	}

	return stations, nil
}

// GetStation 根据 ID 获取站点
func (r *StationRepository) GetStation(ctx context.Context, stationID int64) (*models.Station, error) {
	if stationID <= 0 {
		return nil, fmt.Errorf("station_id is required")
	}

	query := `
		SELECT id, name, phone_number, min_value, max_value, enabled, created_at
		FROM stations
		WHERE id = $1
	`

	var station models.Station
	err := r.db.QueryRowContext(ctx, query, stationID).Scan(
		&station.ID,
		&station.Name,
		&station.PhoneNumber,
		&station.MinValue,
		&station.MaxValue,
		&station.Enabled,
		&station.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStationNotFound
		}
		return nil, fmt.Errorf("failed to get station: %w", err)
	}

	return &station, nil
}

// GetStationByPhone 根据发送方号码获取站点
// 入站消息归属站点的唯一依据
func (r *StationRepository) GetStationByPhone(ctx context.Context, phoneNumber string) (*models.Station, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("phone_number is required")
	}

	query := `
		SELECT id, name, phone_number, min_value, max_value, enabled, created_at
		FROM stations
		WHERE phone_number = $1
	`

	var station models.Station
	err := r.db.QueryRowContext(ctx, query, phoneNumber).Scan(
		&station.ID,
		&station.Name,
		&station.PhoneNumber,
		&station.MinValue,
		&station.MaxValue,
		&station.Enabled,
		&station.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStationNotFound
		}
		return nil, fmt.Errorf("failed to get station by phone: %w", err)
	}

	return &station, nil
}

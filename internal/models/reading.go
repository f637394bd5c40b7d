package models

import (
	"time"
)

// Reading 一次读数记录（对应 readings 表）
// IsAlert 在写入时根据站点当时的范围快照判定，后续范围修改不回溯重判
type Reading struct {
	ID         int64     `json:"id" db:"id"`
	StationID  int64     `json:"station_id" db:"station_id"`
	Value      float64   `json:"value" db:"value"`
	RawMessage string    `json:"raw_message" db:"raw_message"`
	IsAlert    bool      `json:"is_alert" db:"is_alert"`
	ReceivedAt time.Time `json:"received_at" db:"received_at"`
}

// Alert 报警记录（对应 alerts 表）
// 与 IsAlert=true 的 Reading 一一对应，原子创建
// 状态流转：Open（acknowledged=false）→ Resolved（acknowledged=true），Resolved 为终态
type Alert struct {
	ID              int64      `json:"id" db:"id"`
	ReadingID       int64      `json:"reading_id" db:"reading_id"`
	Acknowledged    bool       `json:"acknowledged" db:"acknowledged"`
	AcknowledgedAt  *time.Time `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty" db:"resolution_notes"`
	ResolvedBy      *string    `json:"resolved_by,omitempty" db:"resolved_by"`
}

// StationStatus 站点最新状态（dashboard 查询结果，stations LEFT JOIN 最新 reading）
type StationStatus struct {
	StationID   int64      `json:"station_id" db:"station_id"`
	Name        string     `json:"name" db:"name"`
	PhoneNumber string     `json:"phone_number" db:"phone_number"`
	MinValue    float64    `json:"min_value" db:"min_value"`
	MaxValue    float64    `json:"max_value" db:"max_value"`
	Enabled     bool       `json:"enabled" db:"enabled"`
	Value       *float64   `json:"value,omitempty" db:"value"`
	IsAlert     *bool      `json:"is_alert,omitempty" db:"is_alert"`
	ReceivedAt  *time.Time `json:"received_at,omitempty" db:"received_at"`
}

// ActiveAlert 未确认报警（alerts JOIN readings JOIN stations 查询结果）
type ActiveAlert struct {
	AlertID     int64     `json:"alert_id" db:"alert_id"`
	Name        string    `json:"name" db:"name"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Value       float64   `json:"value" db:"value"`
	MinValue    float64   `json:"min_value" db:"min_value"`
	MaxValue    float64   `json:"max_value" db:"max_value"`
	ReceivedAt  time.Time `json:"received_at" db:"received_at"`
}

// ReadingHistory 带报警处理信息的历史读数（readings LEFT JOIN alerts 查询结果）
type ReadingHistory struct {
	Reading
	ResolutionNotes *string    `json:"resolution_notes,omitempty" db:"resolution_notes"`
	ResolvedBy      *string    `json:"resolved_by,omitempty" db:"resolved_by"`
	AcknowledgedAt  *time.Time `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
}

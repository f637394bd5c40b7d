package models

import (
	"time"
)

// Station 监测站点（对应 stations 表）
// phone_number 全局唯一，是入站消息归属站点的唯一依据
type Station struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	MinValue    float64   `json:"min_value" db:"min_value"`
	MaxValue    float64   `json:"max_value" db:"max_value"`
	Enabled     bool      `json:"enabled" db:"enabled"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// InRange 判断读数是否在安全范围内
func (s *Station) InRange(value float64) bool {
	return value >= s.MinValue && value <= s.MaxValue
}

// Snapshot 生成通知用的站点快照（记录触发时的范围和读数值）
func (s *Station) Snapshot(value float64) StationSnapshot {
	return StationSnapshot{
		Name:        s.Name,
		PhoneNumber: s.PhoneNumber,
		MinValue:    s.MinValue,
		MaxValue:    s.MaxValue,
		Value:       value,
	}
}

// StationSnapshot 报警触发时的站点快照
// 通知渠道只依赖快照，后续站点范围修改不影响已发出的报警内容
type StationSnapshot struct {
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone"`
	MinValue    float64 `json:"min"`
	MaxValue    float64 `json:"max"`
	Value       float64 `json:"value"`
}

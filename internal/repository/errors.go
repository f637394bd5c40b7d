package repository

import (
	"errors"

	"github.com/lib/pq"
)

// 仓库层错误定义（调用方用 errors.Is 判别）
var (
	// ErrInvalidRange 站点安全范围非法（min >= max）
	ErrInvalidRange = errors.New("min_value must be less than max_value")

	// ErrDuplicateSender 发送方号码已被其他站点占用
	ErrDuplicateSender = errors.New("phone_number already registered to another station")

	// ErrStationNotFound 站点不存在
	ErrStationNotFound = errors.New("station not found")

	// ErrReadingNotFound 读数不存在
	ErrReadingNotFound = errors.New("reading not found")

	// ErrAlertNotFound 报警不存在
	ErrAlertNotFound = errors.New("alert not found")
)

// uniqueViolation PostgreSQL 唯一约束冲突错误码
const uniqueViolation = "23505"

// isUniqueViolation 判断错误是否为唯一约束冲突（重复 phone_number）
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

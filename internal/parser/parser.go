package parser

import (
	"regexp"
	"strconv"
)

// 按顺序尝试的数值模式：先小数后整数，取文本中第一个匹配
var valuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[-]?\d+\.\d+`),
	regexp.MustCompile(`[-]?\d+`),
}

// 站点标识模式（仅用于诊断，路由以 phone_number 为准）
var stationPattern = regexp.MustCompile(`(?i)station\s*([a-zA-Z0-9]+)`)

// ParseValue 从消息文本中提取数值
// 支持 "Station 1 - 56.893"、"56.893"、"Reading: 104.295"、"Value is 72.5" 等格式
// 未匹配到数值时返回 nil
func ParseValue(message string) *float64 {
	for _, pattern := range valuePatterns {
		match := pattern.FindString(message)
		if match == "" {
			continue
		}
		value, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}
		return &value
	}
	return nil
}

// ParseStationAndValue 同时提取站点标识和数值
// 站点标识仅用于日志诊断，消息归属仍以发送方号码为准
func ParseStationAndValue(message string) (string, *float64) {
	station := ""
	if m := stationPattern.FindStringSubmatch(message); m != nil {
		station = m[1]
	}
	return station, ParseValue(message)
}

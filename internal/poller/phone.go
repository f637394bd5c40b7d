package poller

import (
	"regexp"
	"strings"
)

// phonePatterns 按优先级排序的电话号码模式
// 国际格式优先，其后是常见的北美本地写法
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+\d{10,15}`),
	regexp.MustCompile(`\d{10}`),
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}-\d{4}`),
	regexp.MustCompile(`\d{3}-\d{3}-\d{4}`),
}

var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

// ExtractPhone 从自由文本中提取并归一化电话号码
// 取第一个命中模式的首个匹配，去掉分隔符后归一化为 +<国家码><号码>；
// 缺少国家码前缀时补 defaultCountryCode。找不到号码返回空串
func ExtractPhone(text, defaultCountryCode string) string {
	for _, pattern := range phonePatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}
		phone := nonPhoneChars.ReplaceAllString(match, "")
		if !strings.HasPrefix(phone, "+") {
			phone = defaultCountryCode + phone
		}
		return phone
	}
	return ""
}

package utils

import (
	"net/http"
	"sort"
	"strings"
)

// SensitiveKeywords 头部名称中出现这些关键字时,日志中的值会被脱敏
var SensitiveKeywords = []string{
	"authorization",
	"cookie",
	"session",
	"token",
	"key",
	"secret",
	"password",
	"credential",
}

// HeaderRedactor 日志输出前的请求头脱敏
//
// 접수대행 사이트(진학사、유웨이)的경쟁률页面有时要求带会话Cookie访问,
// Cookie按每个name=value分别脱敏,日志中仍能看出带了哪些Cookie。
type HeaderRedactor struct {
	keywords []string
}

// NewHeaderRedactor 创建头部脱敏器
func NewHeaderRedactor() *HeaderRedactor {
	return &HeaderRedactor{keywords: SensitiveKeywords}
}

// IsSensitiveHeader 按名称关键字判断 (不区分大小写)
func (hr *HeaderRedactor) IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range hr.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// RedactHeaderValue 脱敏单个头部值,非敏感头部原样返回
func (hr *HeaderRedactor) RedactHeaderValue(name, value string) string {
	if !hr.IsSensitiveHeader(name) {
		return value
	}

	switch lower := strings.ToLower(name); {
	case lower == "cookie":
		return redactCookies(value)
	case lower == "authorization" || lower == "proxy-authorization":
		// 保留认证方案 (Bearer/Basic)
		if scheme, _, ok := strings.Cut(value, " "); ok {
			return scheme + " ***"
		}
	}
	return maskSecret(value)
}

// redactCookies "JSESSIONID=abc; WMONID=xyz" → "JSESSIONID=***; WMONID=***"
func redactCookies(value string) string {
	pairs := strings.Split(value, ";")
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, _, ok := strings.Cut(pair, "=")
		if !ok {
			out = append(out, "***")
			continue
		}
		out = append(out, name+"=***")
	}
	return strings.Join(out, "; ")
}

// maskSecret 长值保留前后4位,短值完全隐藏
func maskSecret(value string) string {
	if len(value) > 8 {
		return value[:4] + "***" + value[len(value)-4:]
	}
	return "***"
}

// Redact 返回脱敏后的头部map,每个头部只取第一个值
func (hr *HeaderRedactor) Redact(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		result[name] = hr.RedactHeaderValue(name, values[0])
	}
	return result
}

// RedactToString 按名称排序输出 "Name1: value1, Name2: value2"
func (hr *HeaderRedactor) RedactToString(headers http.Header) string {
	redacted := hr.Redact(headers)
	names := make([]string, 0, len(redacted))
	for name := range redacted {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+redacted[name])
	}
	return strings.Join(parts, ", ")
}

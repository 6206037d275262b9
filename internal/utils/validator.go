package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

// MaxHeaderValueLength 头部值最大长度 (8KB)
const MaxHeaderValueLength = 8192

// ForbiddenHeaders 不允许在headers.yaml或-H中配置的头部及原因
var ForbiddenHeaders = map[string]string{
	"Host":              "由HTTP客户端按源URL自动设置",
	"Content-Length":    "由HTTP客户端自动管理",
	"Transfer-Encoding": "由HTTP客户端自动管理",
	"Connection":        "由HTTP客户端自动管理",
	"Range":             "服务器只会返回部分页面,경쟁률表格会被截断",
	"If-Modified-Since": "304响应没有响应体,页面无法解析",
	"If-None-Match":     "304响应没有响应体,页面无法解析",
}

// SupportedEncodings 页面获取器能够解压的Content-Encoding
var SupportedEncodings = []string{"gzip", "x-gzip", "deflate", "br", "identity", "*"}

var (
	headerNameRe  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	headerValueRe = regexp.MustCompile(`^[\x20-\x7E\t]*$`)
)

// HeaderValidator 检查请求头能否安全地发往경쟁률页面
//
// 除名称/值的字符检查外,还对少数头部做取值检查:
// Accept-Encoding只能声明获取器能解压的编码,
// Referer必须是完整的http(s) URL (진학사/유웨이的页面会校验来源)。
type HeaderValidator struct {
	forbidden   map[string]string
	valueChecks map[string]func(value string) (reason, suggestion string)
}

// NewHeaderValidator 创建验证器
func NewHeaderValidator() *HeaderValidator {
	forbidden := make(map[string]string, len(ForbiddenHeaders))
	for name, reason := range ForbiddenHeaders {
		forbidden[http.CanonicalHeaderKey(name)] = reason
	}

	return &HeaderValidator{
		forbidden: forbidden,
		valueChecks: map[string]func(string) (string, string){
			"Accept-Encoding": checkAcceptEncoding,
			"Referer":         checkReferer,
		},
	}
}

// ValidateName 检查头部名称只含字母、数字和连字符
func (hv *HeaderValidator) ValidateName(name string) error {
	switch {
	case name == "":
		return &models.ValidationError{Field: "name", HeaderName: name, Reason: "头部名称不能为空"}
	case !headerNameRe.MatchString(name):
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "头部名称包含非法字符",
			Suggestion: "只使用字母、数字和连字符,如 'Accept-Language'",
		}
	}
	return nil
}

// ValidateValue 检查头部值的长度和字符
// 韩文等非ASCII文本不能直接放进头部值,需要先做URL编码
func (hv *HeaderValidator) ValidateValue(name, value string) error {
	if len(value) > MaxHeaderValueLength {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     fmt.Sprintf("头部值过长: %d 字节 (最大 %d)", len(value), MaxHeaderValueLength),
		}
	}
	if !headerValueRe.MatchString(value) {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     "头部值只能包含可打印ASCII字符",
			Suggestion: "韩文等非ASCII内容请先URL编码",
		}
	}
	return nil
}

// ValidateHeader 依次检查禁止列表、名称、值和特定头部的取值
func (hv *HeaderValidator) ValidateHeader(name, value string) error {
	if reason, ok := hv.forbidden[http.CanonicalHeaderKey(name)]; ok {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "不允许配置此头部: " + reason,
			Suggestion: fmt.Sprintf("从headers.yaml或-H参数中移除 '%s'", name),
		}
	}
	if err := hv.ValidateName(name); err != nil {
		return err
	}
	if err := hv.ValidateValue(name, value); err != nil {
		return err
	}

	if check, ok := hv.valueChecks[http.CanonicalHeaderKey(name)]; ok {
		if reason, suggestion := check(value); reason != "" {
			return &models.ValidationError{Field: "value", HeaderName: name, Reason: reason, Suggestion: suggestion}
		}
	}
	return nil
}

// IsForbidden 检查头部是否被禁止 (不区分大小写)
func (hv *HeaderValidator) IsForbidden(name string) bool {
	_, ok := hv.forbidden[http.CanonicalHeaderKey(name)]
	return ok
}

// Validate 按头部名称排序检查,返回第一个ValidationError
func (hv *HeaderValidator) Validate(headers http.Header) error {
	for _, name := range sortedNames(headers) {
		for _, value := range headers[name] {
			if err := hv.ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateAll 返回全部错误,用于 --validate-config 一次性报告
func (hv *HeaderValidator) ValidateAll(headers http.Header) error {
	var errs []error
	for _, name := range sortedNames(headers) {
		for _, value := range headers[name] {
			if err := hv.ValidateHeader(name, value); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// checkAcceptEncoding 声明了无法解压的编码时,服务器返回的页面无法解析
func checkAcceptEncoding(value string) (string, string) {
	for _, part := range strings.Split(value, ",") {
		coding, _, _ := strings.Cut(part, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding == "" {
			continue
		}
		supported := false
		for _, s := range SupportedEncodings {
			if coding == s {
				supported = true
				break
			}
		}
		if !supported {
			return fmt.Sprintf("不支持的编码: %s", coding), "可用的编码: gzip, deflate, br"
		}
	}
	return "", ""
}

func checkReferer(value string) (string, string) {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "Referer必须是完整的http(s) URL", "如 'https://addon.jinhakapply.com/'"
	}
	return "", ""
}

func sortedNames(headers http.Header) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

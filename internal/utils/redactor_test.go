package utils

import (
	"net/http"
	"testing"
)

func TestHeaderRedactor_Redact(t *testing.T) {
	redactor := NewHeaderRedactor()

	headers := http.Header{
		"User-Agent":    {"Mozilla/5.0"},
		"Authorization": {"Bearer secret-token-12345"},
		"X-Api-Key":     {"api-key-67890"},
		"Cookie":        {"JSESSIONID=abc"},
	}

	safe := redactor.Redact(headers)

	if safe["User-Agent"] != "Mozilla/5.0" {
		t.Error("普通头部不应该被脱敏")
	}
	if safe["Authorization"] != "Bearer ***" {
		t.Errorf("Authorization = %q", safe["Authorization"])
	}
	if safe["X-Api-Key"] != "api-***7890" {
		t.Errorf("X-Api-Key = %q", safe["X-Api-Key"])
	}
	if safe["Cookie"] != "JSESSIONID=***" {
		t.Errorf("Cookie = %q", safe["Cookie"])
	}
}

func TestHeaderRedactor_RedactHeaderValue(t *testing.T) {
	redactor := NewHeaderRedactor()

	tests := []struct {
		name   string
		header string
		value  string
		want   string
	}{
		{"多个Cookie保留名称", "Cookie", "JSESSIONID=abc123; WMONID=xyz", "JSESSIONID=***; WMONID=***"},
		{"Cookie末尾分号", "Cookie", "ASP.NET_SessionId=q1w2e3;", "ASP.NET_SessionId=***"},
		{"Basic认证保留方案", "Authorization", "Basic dXNlcjpwYXNz", "Basic ***"},
		{"无方案的Authorization", "Authorization", "0123456789abcdef", "0123***cdef"},
		{"短令牌完全隐藏", "X-Session-Token", "abc", "***"},
		{"普通头部原样返回", "Referer", "https://addon.jinhakapply.com/", "https://addon.jinhakapply.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.RedactHeaderValue(tt.header, tt.value); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeaderRedactor_RedactToString(t *testing.T) {
	redactor := NewHeaderRedactor()

	headers := http.Header{
		"User-Agent": {"Mozilla/5.0"},
		"Accept":     {"*/*"},
		"X-Token":    {"short"},
	}

	want := "Accept: */*, User-Agent: Mozilla/5.0, X-Token: ***"
	if got := redactor.RedactToString(headers); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

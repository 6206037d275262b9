package core

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func tempHeadersFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "headers.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("写入配置失败: %v", err)
		}
	}
	return path
}

func TestHeaderManager_GetMergedHeaders(t *testing.T) {
	t.Run("默认头部存在", func(t *testing.T) {
		hm, err := NewHeaderManager(tempHeadersFile(t, ""), nil)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}

		headers := hm.GetMergedHeaders()
		if headers.Get("User-Agent") != DefaultUserAgent {
			t.Error("期望默认User-Agent存在")
		}
		if headers.Get("Accept-Language") != DefaultAcceptLanguage {
			t.Errorf("Accept-Language = %q", headers.Get("Accept-Language"))
		}
	})

	t.Run("命令行头部覆盖默认", func(t *testing.T) {
		hm, err := NewHeaderManager(tempHeadersFile(t, ""), []string{"User-Agent: CustomBot/1.0"})
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}

		if ua := hm.GetMergedHeaders().Get("User-Agent"); ua != "CustomBot/1.0" {
			t.Errorf("期望User-Agent='CustomBot/1.0', 实际='%s'", ua)
		}
	})
}

func TestHeaderManager_Priority(t *testing.T) {
	path := tempHeadersFile(t, `headers:
  User-Agent: "ConfigBot/1.0"
  Referer: "https://addon.jinhakapply.com/"
`)

	hm, err := NewHeaderManager(path, []string{"User-Agent: CliBot/2.0"})
	if err != nil {
		t.Fatalf("创建HeaderManager失败: %v", err)
	}

	headers, err := hm.GetHeaders()
	if err != nil {
		t.Fatalf("GetHeaders失败: %v", err)
	}

	// default < config < cli
	if headers.Get("User-Agent") != "CliBot/2.0" {
		t.Errorf("命令行应覆盖配置文件: %q", headers.Get("User-Agent"))
	}
	if headers.Get("Referer") != "https://addon.jinhakapply.com/" {
		t.Errorf("配置文件头部缺失: %q", headers.Get("Referer"))
	}
	if headers.Get("Accept-Encoding") != "gzip, deflate, br" {
		t.Errorf("默认头部缺失: %q", headers.Get("Accept-Encoding"))
	}
}

func TestHeaderManager_GetSafeHeaders(t *testing.T) {
	hm, err := NewHeaderManager(tempHeadersFile(t, ""), []string{
		"Authorization: Bearer secret-token-12345",
		"Cookie: JSESSIONID=0123456789",
	})
	if err != nil {
		t.Fatalf("创建HeaderManager失败: %v", err)
	}

	safe := hm.GetSafeHeaders()
	if safe["Authorization"] != "Bearer ***" {
		t.Errorf("Authorization = %q", safe["Authorization"])
	}
	if safe["Cookie"] == "JSESSIONID=0123456789" {
		t.Error("Cookie应该被脱敏")
	}
	if safe["User-Agent"] != DefaultUserAgent {
		t.Error("普通头部不应该被脱敏")
	}
}

func TestHeaderManager_GetHeaders(t *testing.T) {
	t.Run("非法命令行参数返回错误", func(t *testing.T) {
		if _, err := NewHeaderManager("", []string{"InvalidFormat"}); err == nil {
			t.Error("期望返回错误, 但成功了")
		}
	})

	t.Run("禁止头部返回验证错误", func(t *testing.T) {
		hm, err := NewHeaderManager(tempHeadersFile(t, ""), []string{"Host: example.com"})
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}
		if _, err := hm.GetHeaders(); err == nil {
			t.Error("期望返回验证错误, 但成功了")
		}
	})

	t.Run("配置文件中的非法头部", func(t *testing.T) {
		hm, err := NewHeaderManager(tempHeadersFile(t, "headers:\n  Range: \"bytes=0-10\"\n"), nil)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}
		if _, err := hm.GetHeaders(); err == nil {
			t.Error("期望返回验证错误, 但成功了")
		}
	})

	t.Run("不存在的配置文件自动生成模板", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "configs", "headers.yaml")
		hm, err := NewHeaderManager(path, nil)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}
		if _, err := hm.GetHeaders(); err != nil {
			t.Fatalf("GetHeaders失败: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("模板未生成: %v", err)
		}
	})

	t.Run("并发调用返回独立副本", func(t *testing.T) {
		hm, err := NewHeaderManager(tempHeadersFile(t, ""), nil)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				headers, err := hm.GetHeaders()
				if err != nil {
					t.Errorf("GetHeaders失败: %v", err)
					return
				}
				headers.Set("X-Mutated", "1")
			}()
		}
		wg.Wait()

		headers, _ := hm.GetHeaders()
		if headers.Get("X-Mutated") != "" {
			t.Error("调用方的修改不应影响缓存")
		}
	})
}

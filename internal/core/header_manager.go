package core

import (
	"net/http"
	"sync"

	"github.com/RecoveryAshes/ratecrawl/internal/config"
	"github.com/RecoveryAshes/ratecrawl/internal/models"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	// DefaultAcceptLanguage 韩国大学页面按Accept-Language返回韩文版本
	DefaultAcceptLanguage = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"
)

// HeaderManager 管理HTTP请求头部的生命周期
// 实现 models.HeaderProvider 接口,可被多个worker并发调用
type HeaderManager struct {
	// defaults 系统默认头部 (硬编码)
	defaults http.Header

	// config 从配置文件加载的头部
	config http.Header

	// cli 从命令行参数解析的头部
	cli http.Header

	validator    *utils.HeaderValidator
	redactor     *utils.HeaderRedactor
	configLoader *config.HeaderConfigLoader

	// 配置只加载并验证一次,结果缓存在merged/err中
	once   sync.Once
	merged http.Header
	err    error
}

// NewHeaderManager 创建头部管理器
// 参数:
//   - configFile: 请求头配置文件路径 (如为空则使用 configs/headers.yaml)
//   - cliHeaders: 命令行 --header 传递的头部字符串列表
//
// 返回:
//   - *HeaderManager: 头部管理器实例
//   - error: 如果命令行参数解析失败
func NewHeaderManager(configFile string, cliHeaders []string) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults:     getDefaultHeaders(),
		config:       make(http.Header),
		validator:    utils.NewHeaderValidator(),
		redactor:     utils.NewHeaderRedactor(),
		configLoader: config.NewHeaderConfigLoader(configFile),
	}

	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}
	hm.cli = cli

	return hm, nil
}

// getDefaultHeaders 返回系统默认头部
func getDefaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      []string{DefaultUserAgent},
		"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Accept-Language": []string{DefaultAcceptLanguage},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// LoadConfig 加载请求头配置文件
func (hm *HeaderManager) LoadConfig() error {
	headerConfig, err := hm.configLoader.LoadConfig()
	if err != nil {
		utils.Errorf("加载HTTP头部配置失败: %v", err)
		return err
	}

	hm.config = make(http.Header)
	for name, value := range headerConfig.Headers {
		hm.config.Set(name, value)
	}

	if len(hm.config) > 0 {
		utils.Debugf("成功加载%d个HTTP头部配置: %s", len(hm.config), hm.redactor.RedactToString(hm.config))
	}
	return nil
}

// Validate 验证所有头部的合法性
// 验证顺序: 默认 → 配置 → 命令行
func (hm *HeaderManager) Validate() error {
	if err := hm.validator.Validate(hm.defaults); err != nil {
		utils.Errorf("默认头部验证失败: %v", err)
		return err
	}

	if err := hm.validator.Validate(hm.config); err != nil {
		utils.Errorf("配置文件头部验证失败: %v", err)
		return err
	}

	if err := hm.validator.Validate(hm.cli); err != nil {
		utils.Errorf("命令行头部验证失败: %v", err)
		return err
	}

	utils.Debugf("所有HTTP头部验证通过")
	return nil
}

// GetMergedHeaders 按优先级合并头部 (default < config < cli)
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)

	for name, values := range hm.defaults {
		result[name] = values
	}
	for name, values := range hm.config {
		result[name] = values
	}
	for name, values := range hm.cli {
		result[name] = values
	}

	return result
}

// GetSafeHeaders 返回脱敏后的头部 (用于日志)
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
// 首次调用时加载并验证配置,之后返回缓存结果的副本
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	hm.once.Do(func() {
		if hm.err = hm.LoadConfig(); hm.err != nil {
			return
		}
		if hm.err = hm.Validate(); hm.err != nil {
			return
		}
		hm.merged = hm.GetMergedHeaders()
	})

	if hm.err != nil {
		return nil, hm.err
	}
	return hm.merged.Clone(), nil
}

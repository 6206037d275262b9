package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RecoveryAshes/ratecrawl/internal/config"
	"github.com/RecoveryAshes/ratecrawl/internal/core"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

// ValidateFlags 验证命令行标志,0/空值表示未指定
func ValidateFlags(workers, timeout int, format string) error {
	if workers < 0 || workers > 50 {
		return fmt.Errorf("并发数必须在1-50之间,当前值: %d", workers)
	}

	if timeout < 0 || timeout > 300 {
		return fmt.Errorf("超时时间必须在1-300秒之间,当前值: %d", timeout)
	}

	if format != "" {
		validFormats := map[string]bool{
			core.FormatXLSX:   true,
			core.FormatJSON:   true,
			core.FormatSQLite: true,
		}
		if !validFormats[strings.ToLower(format)] {
			return fmt.Errorf("无效的输出格式: %s (有效值: xlsx, json, sqlite)", format)
		}
	}

	return nil
}

// runValidateConfig 验证请求头和源配置,不发起任何请求
func runValidateConfig(cfg *core.Config, headerManager *core.HeaderManager) error {
	utils.Info("🔍 验证HTTP头部配置...")
	if err := headerManager.LoadConfig(); err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := headerManager.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	// 显示合并后的头部(脱敏)
	safeHeaders := headerManager.GetSafeHeaders()
	names := make([]string, 0, len(safeHeaders))
	for name := range safeHeaders {
		names = append(names, name)
	}
	sort.Strings(names)

	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for _, name := range names {
		utils.Infof("  %s: %s", name, safeHeaders[name])
	}

	utils.Infof("🔍 验证源配置: %s", cfg.Crawl.SourcesFile)
	sources, err := config.NewSourceConfigLoader(cfg.Crawl.SourcesFile).LoadSources()
	if err != nil {
		return fmt.Errorf("源配置验证失败: %w", err)
	}

	active, manual := 0, 0
	for _, src := range sources {
		if src.IsActive {
			active++
		}
		if len(src.Manual) > 0 {
			manual++
		}
	}
	utils.Infof("源: %d个 (活跃 %d, 手工 %d)", len(sources), active, manual)
	utils.Info("✅ 配置验证通过!")
	return nil
}

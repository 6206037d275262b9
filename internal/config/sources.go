package config

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

// DefaultSourcesFile 默认源列表文件路径
const DefaultSourcesFile = "configs/sources.yaml"

//go:embed sources_template.yaml
var defaultSourcesTemplate string

// SourceConfigLoader 源列表加载器
type SourceConfigLoader struct {
	file yamlFile
}

// NewSourceConfigLoader 创建源列表加载器
func NewSourceConfigLoader(configPath string) *SourceConfigLoader {
	if configPath == "" {
		configPath = DefaultSourcesFile
	}
	return &SourceConfigLoader{
		file: yamlFile{path: configPath, template: defaultSourcesTemplate},
	}
}

// LoadSources 加载源列表
//
// URL无效的项会被跳过并记录警告;ID重复的项只保留第一个。
// 没有任何有效源时返回ConfigError。
func (scl *SourceConfigLoader) LoadSources() ([]models.SourceDescriptor, error) {
	var config models.SourceConfig
	if err := scl.file.load(&config); err != nil {
		if errors.Is(err, errFileLocked) {
			return nil, &models.ConfigError{FilePath: scl.file.path, Cause: err}
		}
		return nil, err
	}

	sources := make([]models.SourceDescriptor, 0, len(config.Sources))
	seen := make(map[string]int)
	active := 0

	for i, entry := range config.Sources {
		src, err := models.NewSourceDescriptor(entry)
		if err != nil {
			utils.Warnf("跳过第%d个源: %v", i+1, err)
			continue
		}
		if src.DisplayName == "" {
			src.DisplayName = src.ID
		}

		if first, dup := seen[src.ID]; dup {
			utils.Warnf("跳过重复的源 [%s] (与第%d个源相同): %s", src.DisplayName, first, src.URL)
			continue
		}
		seen[src.ID] = i + 1

		if src.IsActive {
			active++
		}
		sources = append(sources, src)
	}

	if len(sources) == 0 {
		return nil, &models.ConfigError{
			FilePath: scl.file.path,
			Cause:    fmt.Errorf("没有有效的源"),
		}
	}

	utils.Infof("从 %s 加载了 %d 个源 (活跃 %d 个)", scl.file.path, len(sources), active)
	return sources, nil
}

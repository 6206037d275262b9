package config

import (
	_ "embed"
	"errors"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

// DefaultHeadersFile 默认请求头配置文件路径
const DefaultHeadersFile = "configs/headers.yaml"

//go:embed headers_template.yaml
var defaultHeaderTemplate string

// HeaderConfigLoader 请求头配置加载器
type HeaderConfigLoader struct {
	file yamlFile
}

// NewHeaderConfigLoader 创建请求头配置加载器
func NewHeaderConfigLoader(configPath string) *HeaderConfigLoader {
	if configPath == "" {
		configPath = DefaultHeadersFile
	}
	return &HeaderConfigLoader{
		file: yamlFile{path: configPath, template: defaultHeaderTemplate},
	}
}

// EnsureConfigExists 确保配置文件存在,如不存在则自动生成模板
func (hcl *HeaderConfigLoader) EnsureConfigExists() error {
	return hcl.file.ensureExists()
}

// LoadConfig 加载请求头配置
// 文件被其他进程锁定时降级为空配置,系统将使用默认头部
func (hcl *HeaderConfigLoader) LoadConfig() (*models.HeaderConfig, error) {
	var config models.HeaderConfig
	if err := hcl.file.load(&config); err != nil {
		if !errors.Is(err, errFileLocked) {
			return nil, err
		}
		utils.Warnf("配置文件被锁定 [%s], 使用默认请求头", hcl.file.path)
	}

	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}
	return &config, nil
}

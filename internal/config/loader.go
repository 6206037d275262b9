package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

// MaxConfigFileSize 配置文件最大大小 (1MB)
const MaxConfigFileSize = 1 * 1024 * 1024

// errFileLocked 配置文件被其他进程锁定
var errFileLocked = errors.New("配置文件被锁定")

// yamlFile 带内置模板的YAML配置文件
// 文件不存在时用模板生成,再通过viper读取
type yamlFile struct {
	path     string
	template string
}

// ensureExists 确保配置文件存在,如不存在则自动生成模板
func (f yamlFile) ensureExists() error {
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		dir := filepath.Dir(f.path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("无法创建配置目录 [%s]: %w", dir, err)
		}
		if err := os.WriteFile(f.path, []byte(f.template), 0644); err != nil {
			return fmt.Errorf("无法生成配置文件 [%s]: %w", f.path, err)
		}
	}
	return nil
}

// validateSize 验证配置文件大小是否在限制内
func (f yamlFile) validateSize() error {
	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("无法读取配置文件信息 [%s]: %w", f.path, err)
	}

	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: f.path,
			Cause: fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)",
				info.Size(), MaxConfigFileSize),
		}
	}
	return nil
}

// load 生成(如需要)、校验并解析配置文件到out
// 文件被锁定时返回errFileLocked,由调用方决定降级方式
func (f yamlFile) load(out interface{}) error {
	if err := f.ensureExists(); err != nil {
		return err
	}
	if err := f.validateSize(); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(f.path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
			return errFileLocked
		}
		return &models.ConfigError{FilePath: f.path, Cause: err}
	}

	if err := v.Unmarshal(out); err != nil {
		return &models.ConfigError{
			FilePath: f.path,
			Cause:    fmt.Errorf("配置绑定失败: %w", err),
		}
	}
	return nil
}

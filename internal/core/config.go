package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

// 输出格式
const (
	FormatXLSX   = "xlsx"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Config 应用程序配置
type Config struct {
	Crawl   CrawlSection  `mapstructure:"crawl"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// CrawlSection 爬取配置(页面获取参数 + 源/请求头文件位置)
type CrawlSection struct {
	models.CrawlConfig `mapstructure:",squash"`

	SourcesFile string `mapstructure:"sources_file"`
	HeadersFile string `mapstructure:"headers_file"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	NoColor  bool           `mapstructure:"no_color"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	Format   string `mapstructure:"format"`   // xlsx | json | sqlite
	Filename string `mapstructure:"filename"` // 不含扩展名
	Sort     bool   `mapstructure:"sort"`     // 导出前按 대학명 / 경쟁률 排序
	Report   bool   `mapstructure:"report"`   // 生成运行报告 reports/run_<时间戳>.json
	Progress bool   `mapstructure:"progress"` // 显示进度条
}

// LoadConfig 加载配置文件,文件不存在时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ratecrawl"))
		}
	}

	setDefaults(v)

	// RATECRAWL_CRAWL_WORKERS=5 之类的环境变量覆盖配置文件
	v.SetEnvPrefix("ratecrawl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &models.ConfigError{FilePath: configPath, Cause: fmt.Errorf("读取配置文件失败: %w", err)}
		}
		utils.Debugf("未找到配置文件,使用默认配置")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: fmt.Errorf("解析配置文件失败: %w", err)}
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 爬取配置默认值
	v.SetDefault("crawl.workers", 10)
	v.SetDefault("crawl.timeout", 30)
	v.SetDefault("crawl.delay_ms", 300)
	v.SetDefault("crawl.random_delay_ms", 300)
	v.SetDefault("crawl.max_body_size", 10*1024*1024)
	v.SetDefault("crawl.insecure_skip_tls", true)
	v.SetDefault("crawl.sources_file", "configs/sources.yaml")
	v.SetDefault("crawl.headers_file", "configs/headers.yaml")

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.no_color", false)
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 输出配置默认值
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.format", FormatXLSX)
	v.SetDefault("output.filename", "competition_rates")
	v.SetDefault("output.sort", true)
	v.SetDefault("output.report", true)
	v.SetDefault("output.progress", true)
}

// LogConfig 转换为日志系统配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
		NoColor:    c.Logging.NoColor,
	}
}

// CLIOverrides 命令行参数,零值表示未指定
type CLIOverrides struct {
	SourcesFile string
	OutputDir   string
	Format      string
	Workers     int
	Timeout     int
	LogLevel    string
	NoProgress  bool
}

// MergeCLIFlags 合并命令行参数到配置(命令行优先于配置文件)
func (c *Config) MergeCLIFlags(o CLIOverrides) {
	if o.SourcesFile != "" {
		c.Crawl.SourcesFile = o.SourcesFile
	}
	if o.OutputDir != "" {
		c.Output.Dir = o.OutputDir
	}
	if o.Format != "" {
		c.Output.Format = strings.ToLower(o.Format)
	}
	if o.Workers > 0 {
		c.Crawl.Workers = o.Workers
	}
	if o.Timeout > 0 {
		c.Crawl.Timeout = o.Timeout
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.NoProgress {
		c.Output.Progress = false
	}
}

// Validate 验证配置取值范围
func (c *Config) Validate() error {
	if c.Crawl.Workers < 1 || c.Crawl.Workers > 50 {
		return fmt.Errorf("并发数必须在1-50之间, 当前: %d", c.Crawl.Workers)
	}
	if c.Crawl.Timeout < 1 || c.Crawl.Timeout > 300 {
		return fmt.Errorf("超时时间必须在1-300秒之间, 当前: %d", c.Crawl.Timeout)
	}
	if c.Crawl.DelayMS < 0 || c.Crawl.RandomDelayMS < 0 {
		return fmt.Errorf("请求延迟不能为负数")
	}
	switch c.Output.Format {
	case FormatXLSX, FormatJSON, FormatSQLite:
	default:
		return fmt.Errorf("不支持的输出格式: %s (可选: xlsx, json, sqlite)", c.Output.Format)
	}
	if strings.TrimSpace(c.Output.Filename) == "" {
		return fmt.Errorf("输出文件名不能为空")
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/ratecrawl/internal/config"
	"github.com/RecoveryAshes/ratecrawl/internal/core"
	"github.com/RecoveryAshes/ratecrawl/internal/crawlers"
	"github.com/RecoveryAshes/ratecrawl/internal/export"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	logLevel   string

	// HTTP头部参数
	headers        []string // 自定义HTTP请求头
	validateConfig bool     // 验证配置文件

	// 爬取参数
	sourcesFile string
	outputDir   string
	format      string
	workers     int
	timeout     int
	noProgress  bool
)

// appConfig 在PersistentPreRunE中加载,RunE中使用
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "ratecrawl",
	Short: "韩国大学정시경쟁률爬取工具",
	Long: `ratecrawl - 韩国大学정시 모집 경쟁률 爬取与规范化工具

按 configs/sources.yaml 中的源逐个获取경쟁률页面,识别表格中的
모집단위/모집인원/지원인원/경쟁률 列,解析군(가/나/다)和전형名,
输出统一格式的记录:
  • xlsx (默认, 记录表 + 대학별汇总表)
  • json
  • sqlite

示例:
  # 使用默认配置
  ratecrawl

  # 指定源文件和输出格式
  ratecrawl -s configs/sources.yaml -f json -o output

  # 自定义HTTP头部
  ratecrawl -H "Referer: https://addon.jinhakapply.com/"

  # 验证配置文件
  ratecrawl --validate-config

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateFlags(workers, timeout, format); err != nil {
			return err
		}

		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 命令行参数覆盖配置文件
		cfg.MergeCLIFlags(core.CLIOverrides{
			SourcesFile: sourcesFile,
			OutputDir:   outputDir,
			Format:      format,
			Workers:     workers,
			Timeout:     timeout,
			LogLevel:    logLevel,
			NoProgress:  noProgress,
		})
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := utils.InitLogger(cfg.LogConfig()); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ctrl+C 取消所有尚未完成的源
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		headerManager, err := core.NewHeaderManager(appConfig.Crawl.HeadersFile, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		if validateConfig {
			return runValidateConfig(appConfig, headerManager)
		}

		return run(ctx, appConfig, headerManager)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	// 不加载配置和日志
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ratecrawl %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

// run 加载源 → 爬取 → 排序 → 导出 → 报告
func run(ctx context.Context, cfg *core.Config, headerManager *core.HeaderManager) error {
	sources, err := config.NewSourceConfigLoader(cfg.Crawl.SourcesFile).LoadSources()
	if err != nil {
		return fmt.Errorf("加载源配置失败: %w", err)
	}

	exporter, err := export.New(cfg.Output.Format)
	if err != nil {
		return err
	}

	// 请求头配置有误时在爬取前失败
	merged, err := headerManager.GetHeaders()
	if err != nil {
		return fmt.Errorf("加载HTTP头部失败: %w", err)
	}
	utils.Debugf("HTTP头部: %s", utils.NewHeaderRedactor().RedactToString(merged))

	fetcher := crawlers.NewPageFetcher(cfg.Crawl.CrawlConfig, headerManager)
	orchestrator := core.NewOrchestrator(cfg.Crawl.CrawlConfig, fetcher)
	orchestrator.SetProgress(cfg.Output.Progress)

	summary, records := orchestrator.Run(ctx, sources)

	if cfg.Output.Sort {
		export.SortRecords(records)
	}

	outputPath := export.OutputPath(cfg.Output.Dir, cfg.Output.Filename, exporter)
	if err := exporter.Export(outputPath, records); err != nil {
		return fmt.Errorf("导出失败: %w", err)
	}

	if cfg.Output.Report {
		if _, err := utils.NewReporter(cfg.Output.Dir).GenerateReport(summary); err != nil {
			utils.Warnf("生成运行报告失败: %v", err)
		}
	}

	fmt.Println(utils.FormatSummary(summary))

	if ctx.Err() != nil {
		return fmt.Errorf("运行被中断, 已导出完成的部分结果")
	}
	utils.Info("✨ 爬取任务完成!")
	return nil
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	// 爬取参数
	rootCmd.Flags().StringVarP(&sourcesFile, "sources", "s", "", "源配置文件路径 (默认 configs/sources.yaml)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录 (默认 output)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "输出格式 (xlsx|json|sqlite)")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "并发源数量 (1-50)")
	rootCmd.Flags().IntVarP(&timeout, "timeout", "t", 0, "单个源超时时间(秒, 1-300)")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "不显示进度条")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

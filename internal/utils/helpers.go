package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnsureParentDir 确保文件所在目录存在
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败 %s: %w", dir, err)
	}
	return nil
}

// TimestampedPath 生成带时间戳的文件路径
// 如 TimestampedPath("reports", "run", ".json", t) -> reports/run_20250105_093000.json
func TimestampedPath(dir, prefix, ext string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", prefix, t.Format("20060102_150405"), ext))
}

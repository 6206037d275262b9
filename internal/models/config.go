package models

import "time"

// CrawlConfig 页面获取配置
type CrawlConfig struct {
	Workers         int  `mapstructure:"workers"`         // 并发源数量(同时也是HTTP并发上限)
	Timeout         int  `mapstructure:"timeout"`         // 单个源的超时时间(秒)
	DelayMS         int  `mapstructure:"delay_ms"`        // 相邻请求之间的固定延迟(毫秒)
	RandomDelayMS   int  `mapstructure:"random_delay_ms"` // 额外的随机延迟上限(毫秒)
	MaxBodySize     int  `mapstructure:"max_body_size"`   // 响应体大小上限(字节)
	InsecureSkipTLS bool `mapstructure:"insecure_skip_tls"`
}

// TimeoutDuration 单个源的超时时间
func (c CrawlConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Delay 相邻请求之间的固定延迟
func (c CrawlConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// RandomDelay 额外随机延迟的上限
func (c CrawlConfig) RandomDelay() time.Duration {
	return time.Duration(c.RandomDelayMS) * time.Millisecond
}

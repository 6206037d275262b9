package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

const (
	// DefaultMaxBodySize 响应体大小上限 (10MB)
	DefaultMaxBodySize = 10 * 1024 * 1024

	// ctxContentType 在请求上下文中暂存服务器声明的原始Content-Type
	ctxContentType = "original_content_type"
)

// Fetcher 页面获取接口
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*models.FetchedPage, error)
}

// PageFetcher 基于Colly的页面获取器
// 返回未经字符集转换的原始字节,由parser.Decode决定如何解码
type PageFetcher struct {
	collector      *colly.Collector
	headerProvider models.HeaderProvider
}

// NewPageFetcher 创建页面获取器
// 所有Fetch共享同一个HTTP客户端和限速规则(Parallelism/Delay),对源服务器做礼貌限流
func NewPageFetcher(config models.CrawlConfig, headerProvider models.HeaderProvider) *PageFetcher {
	maxBody := config.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	parallelism := config.Workers
	if parallelism < 1 {
		parallelism = 1
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxBodySize(maxBody),
	)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
		Delay:       config.Delay(),
		RandomDelay: config.RandomDelay(),
	}); err != nil {
		utils.Warnf("设置限速规则失败: %v", err)
	}

	timeout := config.TimeoutDuration()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c.SetRequestTimeout(timeout)

	if config.InsecureSkipTLS {
		// 部分学校页面使用自签名或过期证书
		c.WithTransport(&http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
		utils.Debugf("页面获取器: TLS证书验证已禁用")
	}

	utils.Debugf("页面获取器: 并发=%d, 延迟=%v(+随机%v), 超时=%v", parallelism, config.Delay(), config.RandomDelay(), timeout)

	return &PageFetcher{
		collector:      c,
		headerProvider: headerProvider,
	}
}

// Fetch 获取页面原始字节
// 网络错误、非2xx响应、超时都返回*models.FetchError
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (*models.FetchedPage, error) {
	c := f.collector.Clone()
	c.Context = ctx

	var (
		page       *models.FetchedPage
		statusCode int
	)

	c.OnRequest(func(r *colly.Request) {
		if f.headerProvider == nil {
			return
		}
		headers, err := f.headerProvider.GetHeaders()
		if err != nil {
			utils.Warnf("获取HTTP头部失败: %v", err)
			return
		}
		for name, values := range headers {
			if len(values) > 0 {
				r.Headers.Set(name, values[0])
			}
		}
	})

	// Colly会按Content-Type中的charset自动转码响应体,
	// 这里先保存原值再去掉charset参数,使OnResponse拿到原始字节
	c.OnResponseHeaders(func(r *colly.Response) {
		contentType := r.Headers.Get("Content-Type")
		r.Ctx.Put(ctxContentType, contentType)
		if stripped := stripCharset(contentType); stripped != contentType {
			r.Headers.Set("Content-Type", stripped)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		page = &models.FetchedPage{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Ctx.Get(ctxContentType),
			Body:        decodeContentEncoding(r.Headers.Get("Content-Encoding"), r.Body),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		statusCode = r.StatusCode
	})

	done := make(chan error, 1)
	go func() {
		done <- c.Visit(pageURL)
	}()

	select {
	case <-ctx.Done():
		return nil, &models.FetchError{URL: pageURL, Cause: ctx.Err()}
	case err := <-done:
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return nil, &models.FetchError{URL: pageURL, StatusCode: statusCode, Cause: err}
		}
	}

	if page == nil {
		return nil, &models.FetchError{URL: pageURL, Cause: fmt.Errorf("未收到响应")}
	}
	return page, nil
}

// stripCharset 去掉Content-Type中的charset参数
func stripCharset(contentType string) string {
	if contentType == "" || !strings.Contains(strings.ToLower(contentType), "charset") {
		return contentType
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// 格式不规范时只保留分号前的媒体类型
		mediaType, _, _ = strings.Cut(contentType, ";")
		return strings.TrimSpace(mediaType)
	}
	delete(params, "charset")
	return mime.FormatMediaType(mediaType, params)
}

// decodeContentEncoding 根据Content-Encoding解压响应体
// 支持 gzip, deflate, br (Brotli); 解压失败时返回原始内容
//
// Colly已经自行处理了gzip但保留了Content-Encoding头部,
// 所以gzip需要先检查魔数
func decodeContentEncoding(contentEncoding string, body []byte) []byte {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	var (
		decoded []byte
		err     error
	)
	switch encoding {
	case "", "identity":
		return body

	case "gzip", "x-gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body
		}
		var reader *gzip.Reader
		if reader, err = gzip.NewReader(bytes.NewReader(body)); err == nil {
			defer reader.Close()
			decoded, err = io.ReadAll(reader)
		}

	case "deflate":
		// HTTP的deflate通常是zlib封装,少数服务器发送裸deflate流
		var reader io.ReadCloser
		if reader, err = zlib.NewReader(bytes.NewReader(body)); err != nil {
			reader = flate.NewReader(bytes.NewReader(body))
		}
		defer reader.Close()
		decoded, err = io.ReadAll(reader)

	case "br":
		decoded, err = io.ReadAll(brotli.NewReader(bytes.NewReader(body)))

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body
	}

	if err != nil {
		utils.Warnf("解压响应失败 (编码=%s): %v", encoding, err)
		return body
	}
	utils.Debugf("成功解压响应: 编码=%s, 原始=%d bytes, 解压后=%d bytes", encoding, len(body), len(decoded))
	return decoded
}

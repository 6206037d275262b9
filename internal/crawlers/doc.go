// Package crawlers 提供竞争率页面的获取功能
//
// # 概述
//
// crawlers包基于Colly实现单页面获取。与一般爬虫不同,这里不跟随链接,
// 每个源只请求一个页面,并且返回未经字符集转换的原始字节,
// 字符集由parser.Decode按声明的Content-Type和替换字符启发式决定。
//
// # PageFetcher
//
// 所有Fetch调用共享一个Collector(及其HTTP客户端和LimitRule),
// 每次Fetch克隆出独立的Collector挂载回调,因此可以被多个goroutine并发调用:
//
//	fetcher := NewPageFetcher(config.Crawl, headerManager)
//	page, err := fetcher.Fetch(ctx, "https://addon.jinhakapply.com/RatioV1/RatioH/Ratio10190231.html")
//	if err != nil {
//	    var fetchErr *models.FetchError
//	    errors.As(err, &fetchErr) // 网络错误/非2xx/超时
//	}
//	html := parser.Decode(page.Body, page.ContentType)
//
// 礼貌限流通过LimitRule实现:
//   - Parallelism: 同时进行的请求数上限(等于worker数)
//   - Delay/RandomDelay: 每个请求完成后的固定延迟和随机延迟
//
// 取消: ctx被取消或超时时Fetch立即返回*models.FetchError,
// 底层HTTP请求随ctx一起中止。
//
// # 响应处理
//
// 服务器声明的Content-Type原样保存在FetchedPage.ContentType中。
// Content-Encoding为br/deflate的响应体在这里解压;gzip由Colly自行解压。
package crawlers

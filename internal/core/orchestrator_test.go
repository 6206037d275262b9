package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/encoding/korean"

	"github.com/RecoveryAshes/ratecrawl/internal/crawlers"
	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

const ratePage = `<html><body>
<h3>가군 일반전형</h3>
<table>
  <tr><th>모집단위</th><th>모집인원</th><th>지원인원</th><th>경쟁률</th></tr>
  <tr><td>국어국문학과</td><td>10</td><td>25</td><td>2.50 : 1</td></tr>
  <tr><td>수학과</td><td>8</td><td>40</td><td>5.00 : 1</td></tr>
  <tr><td>합계</td><td>18</td><td>65</td><td>3.61 : 1</td></tr>
</table>
</body></html>`

// fakeFetcher 按URL返回预设结果
type fakeFetcher struct {
	calls     atomic.Int32
	responses map[string]func(ctx context.Context) (*models.FetchedPage, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageURL string) (*models.FetchedPage, error) {
	f.calls.Add(1)
	respond, ok := f.responses[pageURL]
	if !ok {
		return nil, &models.FetchError{URL: pageURL, StatusCode: http.StatusNotFound, Cause: errors.New("not found")}
	}
	return respond(ctx)
}

func htmlPage(body string) func(context.Context) (*models.FetchedPage, error) {
	return func(context.Context) (*models.FetchedPage, error) {
		return &models.FetchedPage{StatusCode: http.StatusOK, ContentType: "text/html; charset=utf-8", Body: []byte(body)}, nil
	}
}

func src(id, name string) models.SourceDescriptor {
	return models.SourceDescriptor{ID: id, DisplayName: name, URL: "https://example.com/" + id, IsActive: true}
}

func testCrawlConfig() models.CrawlConfig {
	return models.CrawlConfig{Workers: 4, Timeout: 1}
}

func TestOrchestrator_Run(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]func(context.Context) (*models.FetchedPage, error){
		"https://example.com/ok":    htmlPage(ratePage),
		"https://example.com/empty": htmlPage("<html><body><p>접수 준비중</p></body></html>"),
		"https://example.com/none": htmlPage(`<table><tr><th>모집단위</th><th>모집인원</th></tr>
			<tr><td>총계</td><td>0</td></tr></table>`),
	}}

	skipped := src("skip", "비활성대학교")
	skipped.IsActive = false

	sources := []models.SourceDescriptor{
		src("ok", "한국대학교 경쟁률"),
		src("missing", "없는대학교"),
		src("empty", "준비대학교"),
		src("none", "빈표대학교"),
		skipped,
	}

	summary, records := NewOrchestrator(testCrawlConfig(), fetcher).Run(context.Background(), sources)

	t.Run("汇总计数", func(t *testing.T) {
		if summary.Sources != 5 || summary.Succeeded != 1 || summary.Failed != 1 || summary.Empty != 2 || summary.Skipped != 1 {
			t.Errorf("汇总错误: %+v", summary)
		}
		if summary.Records != 2 || summary.PerGroup[models.GroupGa] != 2 {
			t.Errorf("记录计数错误: records=%d perGroup=%v", summary.Records, summary.PerGroup)
		}
		if summary.RunID == "" {
			t.Error("RunID不应为空")
		}
	})

	t.Run("单个源失败不影响其他源", func(t *testing.T) {
		if len(records) != 2 {
			t.Fatalf("期望2条记录, got %d", len(records))
		}
		if records[0].DepartmentName != "국어국문학과" || records[1].DepartmentName != "수학과" {
			t.Errorf("源内顺序错误: %+v", records)
		}
		if records[0].UniversityName != "한국대학교" || records[0].AdmissionType != "일반전형" {
			t.Errorf("记录上下文错误: %+v", records[0])
		}
	})

	t.Run("结果按输入顺序且带有状态", func(t *testing.T) {
		want := []models.SourceStatus{models.SourceSucceeded, models.SourceFailed, models.SourceEmpty, models.SourceEmpty, models.SourceSkipped}
		for i, result := range summary.Results {
			if result.SourceID != sources[i].ID || result.Status != want[i] {
				t.Errorf("结果[%d] = %s/%s, 期望 %s/%s", i, result.SourceID, result.Status, sources[i].ID, want[i])
			}
		}
		if failed := summary.Results[1]; !strings.Contains(failed.Error, "404") {
			t.Errorf("失败原因应包含状态码: %q", failed.Error)
		}
		if none := summary.Results[3]; none.Error != models.ErrNoRecords.Error() || none.TablesMatched != 1 {
			t.Errorf("无记录的源: %+v", none)
		}
	})

	t.Run("非活跃源不发起请求", func(t *testing.T) {
		if got := fetcher.calls.Load(); got != 4 {
			t.Errorf("请求次数 = %d, 期望 4", got)
		}
	})
}

func TestOrchestrator_ManualSource(t *testing.T) {
	fetcher := &fakeFetcher{}
	manual := src("manual", "수동대학교")
	manual.Manual = []models.ManualRecord{
		{AdmissionGroup: "나", AdmissionType: "실기전형", DepartmentName: "체육학과", Quota: 10, ApplicantCount: 35},
		{AdmissionGroup: "", DepartmentName: "음악과", Quota: 5, ApplicantCount: 5, Rate: 1.2},
	}

	summary, records := NewOrchestrator(testCrawlConfig(), fetcher).Run(context.Background(), []models.SourceDescriptor{manual})

	if fetcher.calls.Load() != 0 {
		t.Error("手工源不应发起请求")
	}
	if summary.Manual != 1 || len(records) != 2 {
		t.Fatalf("manual=%d records=%d", summary.Manual, len(records))
	}
	if r := records[0]; r.AdmissionGroup != models.GroupNa || r.CompetitionRate != 3.5 || r.CompetitionRateDisplay != "3.50:1" {
		t.Errorf("记录0 = %+v", r)
	}
	if r := records[1]; r.AdmissionGroup != models.GroupUnknown || r.AdmissionType != "정시" || r.CompetitionRate != 1.2 {
		t.Errorf("记录1 = %+v", r)
	}
}

func TestOrchestrator_Timeout(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]func(context.Context) (*models.FetchedPage, error){
		"https://example.com/slow": func(ctx context.Context) (*models.FetchedPage, error) {
			<-ctx.Done()
			return nil, &models.FetchError{URL: "https://example.com/slow", Cause: ctx.Err()}
		},
		"https://example.com/ok": htmlPage(ratePage),
	}}

	start := time.Now()
	summary, records := NewOrchestrator(testCrawlConfig(), fetcher).Run(context.Background(),
		[]models.SourceDescriptor{src("slow", "느린대학교"), src("ok", "한국대학교")})

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("超时源阻塞了运行: %v", elapsed)
	}
	if summary.Failed != 1 || summary.Succeeded != 1 || len(records) != 2 {
		t.Errorf("汇总错误: %+v", summary)
	}
	if !strings.Contains(summary.Results[0].Error, context.DeadlineExceeded.Error()) {
		t.Errorf("失败原因 = %q", summary.Results[0].Error)
	}
}

func TestOrchestrator_PanicIsolated(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]func(context.Context) (*models.FetchedPage, error){
		"https://example.com/boom": func(context.Context) (*models.FetchedPage, error) {
			panic("unexpected nil table")
		},
		"https://example.com/ok": htmlPage(ratePage),
	}}

	summary, records := NewOrchestrator(testCrawlConfig(), fetcher).Run(context.Background(),
		[]models.SourceDescriptor{src("boom", "폭발대학교"), src("ok", "한국대학교")})

	if summary.Failed != 1 || summary.Succeeded != 1 || len(records) != 2 {
		t.Errorf("汇总错误: %+v", summary)
	}
	if !strings.Contains(summary.Results[0].Error, "panic") {
		t.Errorf("失败原因 = %q", summary.Results[0].Error)
	}
}

func TestOrchestrator_WithPageFetcher(t *testing.T) {
	eucKR, err := korean.EUCKR.NewEncoder().String(ratePage)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Language") == "" {
			http.Error(w, "missing language", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		w.Write([]byte(eucKR))
	}))
	defer server.Close()

	headers, err := NewHeaderManager(t.TempDir()+"/headers.yaml", nil)
	if err != nil {
		t.Fatalf("创建HeaderManager失败: %v", err)
	}

	config := models.CrawlConfig{Workers: 2, Timeout: 5}
	orchestrator := NewOrchestrator(config, crawlers.NewPageFetcher(config, headers))

	source := models.SourceDescriptor{ID: "local/ratio", DisplayName: "부산대학교", URL: server.URL + "/ratio.html", IsActive: true}
	summary, records := orchestrator.Run(context.Background(), []models.SourceDescriptor{source})

	if summary.Succeeded != 1 || len(records) != 2 {
		t.Fatalf("汇总错误: %+v", summary.Results)
	}
	if records[1].DepartmentName != "수학과" || records[1].ApplicantCount != 40 || records[1].AdmissionGroup != models.GroupGa {
		t.Errorf("EUC-KR页面解析错误: %+v", records[1])
	}
}

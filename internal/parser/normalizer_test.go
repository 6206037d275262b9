package parser

import (
	"testing"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

func TestParseCount(t *testing.T) {
	tests := map[string]int{
		"10":     10,
		"1이내":    1,
		"1 이내":   1,
		"약간명":    0,
		"1,234":  1234,
		" 25 ":   25,
		"3명":     3,
		"12(3)":  12,
		"-":      0,
		"":       0,
		"약 5명내외": 5,
	}
	for in, want := range tests {
		if got := ParseCount(in); got != want {
			t.Errorf("ParseCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseRate(t *testing.T) {
	tests := map[string]float64{
		"2.50":     2.5,
		"3.50 : 1": 3.5,
		"12.3:1":   12.3,
		"1,234.5":  1234.5,
		"5대1":      5,
		"7":        7,
		"-":        0,
		"":         0,
		"미달":       0,
	}
	for in, want := range tests {
		if got := ParseRate(in); got != want {
			t.Errorf("ParseRate(%q) = %v, want %v", in, got, want)
		}
	}
}

func virtualRow(cells ...string) models.VirtualRow {
	return models.VirtualRow{Cells: cells, Inherited: make([]bool, len(cells))}
}

func TestNormalize(t *testing.T) {
	plan := Classify(rateHeaders)
	ctx := RecordContext{University: "서울대학교", AdmissionType: "일반전형"}

	t.Run("标准行", func(t *testing.T) {
		rec := Normalize(virtualRow("국어국문학과", "10", "25", "2.50"), plan, ctx)
		if rec == nil {
			t.Fatal("期望产出记录")
		}
		want := models.CompetitionRateRecord{
			UniversityName:         "서울대학교",
			AdmissionGroup:         models.GroupUnknown,
			AdmissionType:          "일반전형",
			DepartmentName:         "국어국문학과",
			Quota:                  10,
			ApplicantCount:         25,
			CompetitionRate:        2.5,
			CompetitionRateDisplay: "2.50:1",
		}
		if *rec != want {
			t.Errorf("got %+v, want %+v", *rec, want)
		}
	})

	t.Run("약간명且有지원인원时保留", func(t *testing.T) {
		rec := Normalize(virtualRow("의예과", "약간명", "3", "-"), plan, ctx)
		if rec == nil {
			t.Fatal("지원인원>0应保留")
		}
		if rec.Quota != 0 || rec.ApplicantCount != 3 || rec.CompetitionRateDisplay != "-" {
			t.Errorf("got %+v", *rec)
		}
	})

	t.Run("약간명且没有지원인원时丢弃", func(t *testing.T) {
		if rec := Normalize(virtualRow("의예과", "약간명", "0", "-"), plan, ctx); rec != nil {
			t.Errorf("应返回nil, got %+v", *rec)
		}
	})

	t.Run("汇总行返回nil", func(t *testing.T) {
		for _, label := range []string{"총계", "합계", "소계"} {
			if rec := Normalize(virtualRow(label, "100", "250", "2.50"), plan, ctx); rec != nil {
				t.Errorf("%s不应产出记录", label)
			}
		}
	})

	t.Run("未设置전형时使用默认值", func(t *testing.T) {
		rec := Normalize(virtualRow("사학과", "5", "10", "2.00"), plan, RecordContext{University: "a"})
		if rec == nil || rec.AdmissionType != DefaultAdmissionType {
			t.Errorf("got %+v", rec)
		}
	})
}

func TestNormalize_GroupPrecedence(t *testing.T) {
	plan := Classify([]string{"군", "모집단위", "모집인원", "지원인원", "경쟁률"})
	tableGa := RecordContext{University: "a", TableGroup: models.GroupGa}

	t.Run("显式군列优先于表格级군", func(t *testing.T) {
		rec := Normalize(virtualRow("나군", "경영학과", "10", "20", "2.00"), plan, tableGa)
		if rec == nil || rec.AdmissionGroup != models.GroupNa {
			t.Errorf("got %+v", rec)
		}
	})

	t.Run("학과文本中的군优先于表格级군", func(t *testing.T) {
		rec := Normalize(virtualRow("", "(다군) 경영학과", "10", "20", "2.00"), plan, tableGa)
		if rec == nil {
			t.Fatal("期望产出记录")
		}
		if rec.AdmissionGroup != models.GroupDa {
			t.Errorf("군 = %q, want 다군", rec.AdmissionGroup)
		}
		if rec.DepartmentName != "경영학과" {
			t.Errorf("学科名应去除군标记, got %q", rec.DepartmentName)
		}
	})

	t.Run("回退到表格级군", func(t *testing.T) {
		rec := Normalize(virtualRow("", "경영학과", "10", "20", "2.00"), plan, tableGa)
		if rec == nil || rec.AdmissionGroup != models.GroupGa {
			t.Errorf("got %+v", rec)
		}
	})

	t.Run("全部缺失时为unknown", func(t *testing.T) {
		rec := Normalize(virtualRow("", "경영학과", "10", "20", "2.00"), plan, RecordContext{University: "a"})
		if rec == nil || rec.AdmissionGroup != models.GroupUnknown {
			t.Errorf("got %+v", rec)
		}
	})

	t.Run("군列无法解析时继续向下回退", func(t *testing.T) {
		rec := Normalize(virtualRow("가/나", "경영학과", "10", "20", "2.00"), plan, tableGa)
		if rec == nil || rec.AdmissionGroup != models.GroupGa {
			t.Errorf("got %+v", rec)
		}
	})
}

func TestNormalize_TypeColumn(t *testing.T) {
	plan := Classify([]string{"전형명", "모집단위", "모집인원", "지원인원", "경쟁률"})
	rec := Normalize(virtualRow("가군 농어촌학생전형", "기계공학과", "3", "12", "4.00"), plan,
		RecordContext{University: "a", AdmissionType: "일반전형"})
	if rec == nil {
		t.Fatal("期望产出记录")
	}
	if rec.AdmissionType != "농어촌학생전형" {
		t.Errorf("전형 = %q", rec.AdmissionType)
	}
	if rec.AdmissionGroup != models.GroupGa {
		t.Errorf("首列文本中的군应生效, got %q", rec.AdmissionGroup)
	}
}

func TestNormalizeBlocks(t *testing.T) {
	plan := Classify([]string{
		"모집단위",
		"가군 모집인원", "가군 지원인원", "가군 경쟁률",
		"나군 모집인원", "나군 지원인원", "나군 경쟁률",
	})
	ctx := RecordContext{University: "대구대학교", AdmissionType: DefaultAdmissionType}

	t.Run("每个군块一条记录", func(t *testing.T) {
		recs := NormalizeBlocks(virtualRow("경영학과", "10", "30", "3.00", "5", "20", "4.00"), plan, ctx)
		if len(recs) != 2 {
			t.Fatalf("期望2条记录, got %d", len(recs))
		}
		if recs[0].AdmissionGroup != models.GroupGa || recs[0].Quota != 10 || recs[0].ApplicantCount != 30 {
			t.Errorf("가군记录错误: %+v", recs[0])
		}
		if recs[1].AdmissionGroup != models.GroupNa || recs[1].CompetitionRate != 4 {
			t.Errorf("나군记录错误: %+v", recs[1])
		}
		if recs[0].DepartmentName != recs[1].DepartmentName {
			t.Error("同一行的记录应共享学科名")
		}
	})

	t.Run("空군块不产出记录", func(t *testing.T) {
		recs := NormalizeBlocks(virtualRow("경영학과", "10", "30", "3.00", "", "-", "-"), plan, ctx)
		if len(recs) != 1 || recs[0].AdmissionGroup != models.GroupGa {
			t.Errorf("got %+v", recs)
		}
	})

	t.Run("汇总行", func(t *testing.T) {
		if recs := NormalizeBlocks(virtualRow("합계", "10", "30", "3.00", "5", "20", "4.00"), plan, ctx); len(recs) != 0 {
			t.Errorf("got %+v", recs)
		}
	})
}

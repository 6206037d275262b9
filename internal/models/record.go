package models

import (
	"fmt"
	"math"
	"strings"
)

// AdmissionGroup 모집군
type AdmissionGroup string

const (
	GroupGa      AdmissionGroup = "가군"
	GroupNa      AdmissionGroup = "나군"
	GroupDa      AdmissionGroup = "다군"
	GroupUnknown AdmissionGroup = "unknown"
)

// AllGroups 三个已知군,按固定顺序
var AllGroups = []AdmissionGroup{GroupGa, GroupNa, GroupDa}

// IsKnown 是否为已知군
func (g AdmissionGroup) IsKnown() bool {
	return g == GroupGa || g == GroupNa || g == GroupDa
}

// ParseGroup 将"가"/"가군"/"나 군"之类的文本解析为AdmissionGroup
func ParseGroup(s string) AdmissionGroup {
	s = strings.Join(strings.Fields(s), "")
	switch s {
	case "가", "가군":
		return GroupGa
	case "나", "나군":
		return GroupNa
	case "다", "다군":
		return GroupDa
	}
	return GroupUnknown
}

// CompetitionRateRecord 规范化的竞争率记录(输出单元)
type CompetitionRateRecord struct {
	UniversityName         string         `json:"universityName"`         // 대학명
	AdmissionGroup         AdmissionGroup `json:"admissionGroup"`         // 군
	AdmissionType          string         `json:"admissionType"`          // 전형명
	DepartmentName         string         `json:"departmentName"`         // 모집단위
	Quota                  int            `json:"quota"`                  // 모집인원
	ApplicantCount         int            `json:"applicantCount"`         // 지원인원
	CompetitionRate        float64        `json:"competitionRate"`        // 경쟁률
	CompetitionRateDisplay string         `json:"competitionRateDisplay"` // 경쟁률_문자열
}

// NewRecord 创建记录并计算显示字符串
func NewRecord(university string, group AdmissionGroup, admissionType, department string, quota, applicants int, rate float64) CompetitionRateRecord {
	if quota < 0 {
		quota = 0
	}
	if applicants < 0 {
		applicants = 0
	}
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 0
	}
	if group == "" {
		group = GroupUnknown
	}
	return CompetitionRateRecord{
		UniversityName:         university,
		AdmissionGroup:         group,
		AdmissionType:          admissionType,
		DepartmentName:         department,
		Quota:                  quota,
		ApplicantCount:         applicants,
		CompetitionRate:        rate,
		CompetitionRateDisplay: FormatRate(rate),
	}
}

// FormatRate 格式化竞争率: 3.5 -> "3.50:1", 0 -> "-"
func FormatRate(rate float64) string {
	if rate <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f:1", rate)
}

// DedupeKey 源内去重键 (대학명, 군, 모집단위)
func (r CompetitionRateRecord) DedupeKey() string {
	return r.UniversityName + "\x00" + string(r.AdmissionGroup) + "\x00" + r.DepartmentName
}

// ExportHeaders 导出时的列标题,顺序与ExportRow一致
var ExportHeaders = []string{"대학명", "군", "전형명", "모집단위", "모집인원", "지원인원", "경쟁률", "경쟁률_문자열"}

// ExportRow 按ExportHeaders顺序返回字段值
func (r CompetitionRateRecord) ExportRow() []interface{} {
	return []interface{}{
		r.UniversityName,
		string(r.AdmissionGroup),
		r.AdmissionType,
		r.DepartmentName,
		r.Quota,
		r.ApplicantCount,
		r.CompetitionRate,
		r.CompetitionRateDisplay,
	}
}

package parser

import (
	"regexp"
	"strings"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

// DefaultAdmissionType 无法提取전형名时的默认值
const DefaultAdmissionType = "정시"

// groupPattern 군识别规则,按优先级排列
type groupPattern struct {
	name string
	re   *regexp.Regexp
}

// 군识别规则(按顺序尝试,首个命中即返回)
// 最后一条"X군"兜底规则必须排在最后,否则会遮蔽前面更具体的规则
var groupPatterns = []groupPattern{
	{"bracketed", regexp.MustCompile(`[「\[(（]\s*([가나다])\s*(?:[」\])）]\s*군|군\s*[」\])）])`)},
	{"leading", regexp.MustCompile(`^([가나다])군\s`)},
	{"campus", regexp.MustCompile(`캠퍼스\s+([가나다])군`)},
	{"circled", regexp.MustCompile(`(?:정시\s)?([㉮㉯㉰])`)},
	{"double-space", regexp.MustCompile(`^\s*([가나다])군\s{2,}`)},
	{"exact", regexp.MustCompile(`^([가나다])군$`)},
	{"status", regexp.MustCompile(`^([가나다])군\s*[(\[]?\s*정원[내외]`)},
	{"bare", regexp.MustCompile(`([가나다])군`)},
}

// 旧编码中用带圈韩文字母表示가/나/다
var circledGroups = map[string]models.AdmissionGroup{
	"㉮": models.GroupGa,
	"㉯": models.GroupNa,
	"㉰": models.GroupDa,
}

var (
	// 混合군标记 "가/나/다군"、"가·나군"、"가,나,다 군"
	mixedGroupRe = regexp.MustCompile(`[가나다]\s*[/·ㆍ,]\s*[가나다](?:\s*[/·ㆍ,]\s*[가나다])?\s*군`)

	// 类型提取时需要剥离的군标记(全部出现位置)
	groupStripRes = []*regexp.Regexp{
		mixedGroupRe,
		regexp.MustCompile(`[「\[(（]\s*[가나다]\s*(?:[」\])）]\s*군|군\s*[」\])）])`),
		regexp.MustCompile(`(?:정시\s)?[㉮㉯㉰]\s*군?`),
		regexp.MustCompile(`[가나다]군`),
	}

	rateSuffixRe   = regexp.MustCompile(`\s*(?:경쟁률\s*현황|경쟁률|지원\s*현황)\s*$`)
	annotationRe   = regexp.MustCompile(`\s*[(\[［]\s*[※*＊].*$`)
	campusPrefixRe = regexp.MustCompile(`^\s*(?:\S*캠퍼스|본교|분교)\s*`)
	separatorRe    = regexp.MustCompile(`^[\s\-:|/·ㆍ,]+|[\s\-:|/·ㆍ,]+$`)
	emptyBracketRe = regexp.MustCompile(`[(\[（]\s*[)\]）]`)
	spacesRe       = regexp.MustCompile(`\s+`)
)

// 已知的캠퍼스名前缀
var campusPrefixes = []string{
	"서울캠퍼스", "국제캠퍼스", "글로벌캠퍼스", "세종캠퍼스", "에리카캠퍼스", "ERICA캠퍼스",
	"인문캠퍼스", "자연캠퍼스", "천안캠퍼스", "원주캠퍼스", "죽전캠퍼스", "안성캠퍼스",
	"서울", "세종", "에리카", "ERICA", "원주", "천안", "죽전", "글로컬", "미래",
}

// normalizeSpace 将不间断空格等替换为普通空格(不合并连续空白)
func normalizeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '　', '\t', '\n', '\r', '\f', '\v':
			return ' '
		}
		return r
	}, s)
}

// ExtractGroup 从任意文本片段中提取군
// 混合标记("가/나/다군")不会被解析为单个군,返回GroupUnknown,调用方应结合IsMixedGroup按列处理
func ExtractGroup(text string) models.AdmissionGroup {
	text = normalizeSpace(text)
	if strings.TrimSpace(text) == "" || IsMixedGroup(text) {
		return models.GroupUnknown
	}

	for _, p := range groupPatterns {
		candidate := text
		if p.name == "exact" {
			candidate = strings.TrimSpace(text)
		}
		m := p.re.FindStringSubmatch(candidate)
		if m == nil {
			continue
		}
		if g, ok := circledGroups[m[1]]; ok {
			return g
		}
		return models.ParseGroup(m[1])
	}
	return models.GroupUnknown
}

// IsMixedGroup 文本是否包含混合군标记
func IsMixedGroup(text string) bool {
	return mixedGroupRe.MatchString(normalizeSpace(text))
}

// ExtractAdmissionType 从文本中提取전형名(去除군标记和캠퍼스前缀)
func ExtractAdmissionType(text string) string {
	s := normalizeSpace(text)
	s = rateSuffixRe.ReplaceAllString(s, "")
	s = annotationRe.ReplaceAllString(s, "")
	for _, re := range groupStripRes {
		s = re.ReplaceAllString(s, " ")
	}
	s = emptyBracketRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = stripCampusPrefix(s)
	s = separatorRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if s == "" {
		return DefaultAdmissionType
	}
	return s
}

func stripCampusPrefix(s string) string {
	for _, prefix := range campusPrefixes {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			// 仅在前缀后紧跟空白或分隔符时剥离,避免误删"서울대학교"之类
			if rest == "" || strings.IndexAny(rest, " -:|/(") == 0 || strings.HasSuffix(prefix, "캠퍼스") {
				return strings.TrimSpace(rest)
			}
		}
	}
	return strings.TrimSpace(campusPrefixRe.ReplaceAllString(s, ""))
}

// 大学名中需要去除的后缀噪声
var universitySuffixRe = regexp.MustCompile(`\s*(?:\d{4}\s*학년도)?\s*(?:정시\s*)?(?:모집\s*)?(?:원서\s*접수\s*)?(?:경쟁률\s*현황|경쟁률|지원\s*현황|(?:원서\s*)?접수\s*현황)\s*$`)

// CleanUniversityName 去除大学名中的"경쟁률 현황"等后缀噪声
func CleanUniversityName(name string) string {
	s := spacesRe.ReplaceAllString(strings.TrimSpace(normalizeSpace(name)), " ")
	s = universitySuffixRe.ReplaceAllString(s, "")
	s = annotationRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

package document

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/ayush/science-tutor/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var fallbackTemplates = template.Must(
	template.New("fallback").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/*.html"),
)

var templateNames = map[models.DocumentKind]string{
	models.KindResearchPlan:     "research_plan.html",
	models.KindExperimentReport: "experiment_report.html",
}

// outlines are the h2 section headings every document of a kind must carry,
// in order. The generation prompt asks for the same structure.
var outlines = map[models.DocumentKind][]string{
	models.KindResearchPlan: {
		"🎯 실험 제목 및 목적",
		"🧪 준비물 및 역할",
		"📋 상세 실험 방법",
		"📊 관찰 데이터 및 기록법",
		"📈 예상 결과 및 해석",
		"⚠️ 안전 수칙",
		"🔍 더 알아보기",
		"💬 튜터에게 질문하기",
	},
	models.KindExperimentReport: {
		"🎯 1. 실험 목적 및 배경",
		"📋 2. 실험 가설",
		"🔬 3. 실험 재료 및 상세 방법",
		"📊 4. 실험 결과",
		"📈 5. 결과 분석 및 토의",
		"💡 6. 결론",
		"⚠️ 7. 오차 분석",
		"🚀 8. 개선점 및 후속 연구",
		"📚 9. 참고문헌",
		"💬 10. 튜터에게 질문하기",
	},
}

// Outline returns the section headings for kind.
func Outline(kind models.DocumentKind) []string {
	out := make([]string, len(outlines[kind]))
	copy(out, outlines[kind])
	return out
}

type material struct {
	Name string
	Role string
}

type step struct {
	Title  string
	Detail string
}

type resultRow struct {
	Condition string
	At5       string
	At15      string
	At30      string
	Change    string
}

type fallbackData struct {
	Topic       string
	Sections    []string
	Materials   []material
	Steps       []step
	Results     []resultRow
	SearchSites []string
}

var searchSites = []string{
	"구글 학술검색 (scholar.google.com)",
	"네이버 학술정보 (academic.naver.com)",
	"국가과학기술정보센터 (www.ndsl.kr)",
}

var planMaterials = []material{
	{"투명한 컵 3개", "실험군과 대조군 구분용"},
	{"증류수 300ml", "기본 용매로 사용"},
	{"A 재료 (실험용)", "주요 실험 변수"},
	{"B 재료 (비교용)", "대조군 설정용"},
	{"교반 막대", "균일한 혼합을 위해"},
	{"라벨지 및 펜", "시료 구분 표시용"},
	{"스마트폰/카메라", "변화 과정 기록용"},
	{"온도계", "환경 조건 모니터링"},
}

var planSteps = []step{
	{"사전 준비", "컵에 라벨 붙이기 (실험군1, 실험군2, 대조군), 실온 확인 및 기록"},
	{"기본 설정", "각 컵에 증류수 100ml씩 정확히 넣기, 초기 상태 사진 촬영"},
	{"실험 조건 설정", "실험군1: A재료 적정량, 실험군2: A재료 2배량, 대조군: B재료 또는 무첨가"},
	{"반응 시작", "각각 30초간 일정한 속도로 저어주기, 시작 시간 기록"},
	{"지속 관찰", "5분, 10분, 15분, 30분 간격으로 변화 관찰 및 사진 촬영"},
	{"데이터 정리", "관찰 내용을 표로 정리, 최종 상태 기록"},
}

var reportMaterials = []material{
	{"250ml 비커 3개", "실험군 1, 실험군 2, 대조군"},
	{"증류수 600ml", "용매"},
	{"전자저울 (0.01g)", "시료 계량"},
	{"디지털 온도계", "온도 기록"},
	{"타이머", "시간 측정"},
	{"보안경, 니트릴 장갑", "안전 장비"},
}

var reportSteps = []step{
	{"준비 단계 (5분)", "비커 세척 및 라벨링, 실온과 습도 기록"},
	{"1단계: 기본 설정 (5분)", "각 비커에 증류수 200ml를 넣고 초기 온도 측정"},
	{"2단계: 물질 첨가 (3분)", "실험군 1에 1.0g, 실험군 2에 2.0g 첨가, 대조군은 무첨가"},
	{"3단계: 관찰 및 측정 (30분)", "5분, 15분, 30분 시점에 상태를 측정하고 사진으로 기록"},
}

var reportResults = []resultRow{
	{"대조군", "0.8%", "2.3%", "4.1%", "4.1%"},
	{"실험군 1 (1.0g)", "18.4%", "41.7%", "62.3%", "62.3%"},
	{"실험군 2 (2.0g)", "35.2%", "71.9%", "95.7%", "95.7%"},
}

// Fallback renders the offline document for kind. It is deterministic in
// topic and never fails.
func Fallback(kind models.DocumentKind, topic string) string {
	data := fallbackData{Topic: topic, Sections: outlines[kind], SearchSites: searchSites}
	if kind == models.KindExperimentReport {
		data.Materials, data.Steps, data.Results = reportMaterials, reportSteps, reportResults
	} else {
		kind = models.KindResearchPlan
		data.Sections = outlines[kind]
		data.Materials, data.Steps = planMaterials, planSteps
	}

	var buf bytes.Buffer
	if err := fallbackTemplates.ExecuteTemplate(&buf, templateNames[kind], data); err != nil {
		// Templates are parsed at init; this only guards against a broken edit.
		return "<div><h1>" + template.HTMLEscapeString(topic) + "</h1></div>"
	}
	return buf.String()
}

package document

import (
	"fmt"

	"github.com/ayush/science-tutor/internal/models"
)

// DefaultTopic is used when the session has no topic yet.
const DefaultTopic = "과학 실험"

// HeadingSizes are the canonical h1/h2 font sizes in px for a kind.
type HeadingSizes struct {
	H1 int
	H2 int
}

var headingSizes = map[models.DocumentKind]HeadingSizes{
	models.KindResearchPlan:     {H1: 28, H2: 16},
	models.KindExperimentReport: {H1: 34, H2: 18},
}

// Headings returns the canonical heading sizes for kind.
func Headings(kind models.DocumentKind) HeadingSizes {
	if hs, ok := headingSizes[kind]; ok {
		return hs
	}
	return headingSizes[models.KindResearchPlan]
}

// Step is one entry of the synthetic progress schedule.
type Step struct {
	Percent int
	Message string
}

type schedule struct {
	start string
	steps []Step
	done  string
}

var schedules = map[models.DocumentKind]schedule{
	models.KindResearchPlan: {
		start: "🔬 연구계획서 생성을 시작합니다...",
		steps: []Step{
			{12, "📚 대화 맥락 분석 중..."},
			{25, "🎯 연구 목적 설정 중..."},
			{40, "🔬 실험 설계 구성 중..."},
			{55, "📊 데이터 분석 계획 수립 중..."},
			{70, "📝 문서 형식 정리 중..."},
			{85, "🔍 내용 검증 중..."},
			{92, "✨ 최종 검토 중..."},
		},
		done: "✅ 연구계획서 생성 완료!",
	},
	models.KindExperimentReport: {
		start: "📝 실험보고서 생성을 시작합니다...",
		steps: []Step{
			{12, "🎯 실험 목적 분석 중..."},
			{25, "🧪 실험 방법 구성 중..."},
			{40, "📊 가상 데이터 생성 중..."},
			{55, "📈 결과 분석 및 그래프 작성 중..."},
			{70, "💡 결론 및 토의 작성 중..."},
			{85, "📚 참고문헌 정리 중..."},
			{95, "🔍 최종 검토 및 형식 정리 중..."},
		},
		done: "✅ 실험보고서 생성 완료!",
	},
}

// Steps returns the progress schedule for kind, excluding the final 100%.
func Steps(kind models.DocumentKind) []Step {
	s := schedules[kind].steps
	out := make([]Step, len(s))
	copy(out, s)
	return out
}

// StartMessage is the progress message shown at 0%.
func StartMessage(kind models.DocumentKind) string {
	return schedules[kind].start
}

// DoneMessage is the progress message shown at 100%.
func DoneMessage(kind models.DocumentKind) string {
	return schedules[kind].done
}

// BuildPrompt renders the generation request for kind.
func BuildPrompt(kind models.DocumentKind, topic, recentContext string) string {
	if topic == "" {
		topic = DefaultTopic
	}
	hs := Headings(kind)

	if kind == models.KindExperimentReport {
		return fmt.Sprintf(`다음 주제로 고등학생이 이해하기 쉬운 상세한 실험보고서를 작성해줘: "%s"

대화 맥락: %s

자연스럽고 강의자료 대본처럼 작성해줘. 이야기는 자연스럽게 전개하되 보고서 형식은 유지해줘.

다음 구조로 매우 상세하고 실용적으로 작성해줘:
1. 실험 목적 및 배경 - 왜 이 실험을 했는지, 관련 이론과 연구 배경 상세히
2. 실험 가설 - 예상되는 결과와 그 근거
3. 실험 재료 및 상세 방법 - 누가 봐도 따라할 수 있을 정도로 매우 구체적으로
4. 실험 결과 - 가상의 실험 데이터와 관찰 내용, 그래프나 표 형태
5. 결과 분석 및 토의 - 데이터가 뭘 의미하는지, 가설과의 비교
6. 결론 - 실험에서 알게 된 점, 가설 검증 여부
7. 오차 분석 - 실험 과정에서 발생할 수 있는 오차 요인들
8. 개선점 및 후속 연구 - 더 나은 실험 방법과 추가 연구 아이디어
9. 참고문헌 - 샘플 형식 + 검색 키워드 가이드 (마지막에 위치)
10. 튜터 질문 가이드 - 이해 안 되는 부분 질문하는 방법

**실험 방법 섹션은 특히 상세하게:**
- 준비물의 정확한 규격과 수량
- 단계별 실험 과정을 【준비단계】【1단계】식으로 구분
- 각 단계마다 소요 시간과 주의사항 명시
- 측정 방법과 기록 방식 구체적으로 설명
- 안전 수칙도 별도로 강조

HTML 형식으로 답변하고, 3500자 내외로 매우 상세하면서도 과학적으로 작성해줘.
가상의 실험 데이터를 포함해서 실제 보고서처럼 만들어줘.
**중요: 메인 제목은 %dpx 크기로, 섹션 제목은 %dpx 크기로 만들어줘.**`, topic, recentContext, hs.H1, hs.H2)
	}

	return fmt.Sprintf(`다음 주제로 고등학생이 쉽게 따라할 수 있는 상세한 실험계획서를 작성해줘: "%s"

대화 맥락: %s

자연스럽고 강의자료 대본처럼 작성해줘. 이야기는 자연스럽게 전개하되 체계적인 구조는 유지해줘.

다음 구조로 상세하고 실용적으로 작성해줘:
1. 실험 제목 - 명확하고 간단하게
2. 실험 목적 및 가설 - 왜 이 실험을 하는지, 예상 결과
3. 준비물 - 실제 구할 수 있는 재료들 (7-10개 정도), 각각의 역할 설명
4. 실험 방법 - 단계별로 따라하기 쉽게 (7-10단계), 각 단계별 주의사항
5. 관찰할 데이터 - 뭘 측정하고 기록할지, 데이터 기록 방법
6. 예상 결과 및 해석 - 어떤 결과가 나올지, 그 의미는 무엇인지
7. 안전 수칙 - 실험시 주의할 점들
8. 더 알아보기 - 검색 키워드와 추가 질문들, 추천 검색 사이트
9. 튜터에게 질문하기 - 어떻게 질문하면 좋은지 가이드

**더 알아보기 섹션에는:**
- 배경지식 검색용 키워드들 제시
- 구글 학술검색, 네이버 학술정보 등 추천 사이트
- "이런 키워드로 더 깊이 공부해보세요" 안내

**튜터 질문 가이드 섹션에는:**
- 구체적인 질문 예시들 제공
- "이해 안 되는 부분은 언제든 물어보세요" 안내

HTML 형식으로 답변하고, 2500자 내외로 상세하면서도 실용적으로 작성해줘.
고등학생이 "이거 해볼 만하다!"라고 생각할 수 있는 수준으로 해줘.

**중요: 메인 제목은 %dpx 크기로, 섹션 제목은 %dpx 크기로 만들어줘.**`, topic, recentContext, hs.H1, hs.H2)
}

package conversation

import (
	"fmt"
	"strings"

	"github.com/ayush/science-tutor/internal/models"
)

// Greeting is the single message of a fresh conversation.
const Greeting = "안녕! 과학 실험이나 연구 아이디어 있으면 편하게 말해봐! 🧪\n\n어떤 분야에 관심있어? 화학, 생물, 물리, 환경과학... 뭐든 좋아!"

// CallToAction is the sentence the tutor appends when a reply should point
// the student at the research-plan action.
const CallToAction = "**🎯 왼쪽 연구계획 버튼 눌러봐!**"

const offTopicReply = `오늘은 어떤 과학적인 궁금증이 있어? 🧪

그냥 자연스럽게 얘기해봐! 사람들은 때로는 순서대로, 때로는 랜덤하게 이야기하잖아? 나도 그런 식으로 대화하는 걸 좋아해 😊

예를 들어:
• "아, 그러고 보니 물은 왜 100도에서 끓지?"
• "어? 식물이 햇빛으로 어떻게 에너지를 만들어?"
• "갑자기 궁금한데, 우리가 보는 색깔은 진짜 다 같은 색깔일까?"

이런 식으로 자연스럽게 과학적 호기심을 표현해봐! ✨`

const unsafeReply = `음, 그보다는 안전하면서도 재미있는 실험들을 해보는 게 어때? 🛡️

실제로 해볼 수 있는 안전한 것들이 훨씬 신기하고 배울 게 많거든!

• "집에 있는 재료로 뭔가 재미있는 반응 일으켜볼 수 있을까?"
• "아! 자석으로 전기 만드는 거 진짜 되나?"
• "식초랑 베이킹소다 섞으면 왜 거품이 막 생기지?"

이런 것들 말이야! 어떤 게 궁금해? 🔬`

func previewReply(topic string) string {
	return fmt.Sprintf(`오! %[1]s 실험하고 싶구나! 👍

간단히 말하면... 음, 사실 이런 걸 제대로 설명하려면 좀 복잡한데,
기본적으로는 이런 식으로 접근할 수 있어:

• 목적: %[1]s이 어떻게 작동하는지 알아보기
• 방법: 조건을 바꿔가면서 결과 관찰하기
• 결과: 원리를 이해하고 데이터 분석해보기

어 그런데, **🚀 더 자세한 실험설계는 왼쪽 "연구계획" 버튼을 눌러봐!** 완전 체계적으로 만들어줄게! 🔬`, topic)
}

// keywordReply is a canned chat reply for a well-known topic.
type keywordReply struct {
	keyword string
	topic   string
	reply   string
}

// keywordReplies are checked in order against the user's text.
var keywordReplies = []keywordReply{
	{
		keyword: "미세플라스틱",
		topic:   "미세플라스틱 분해",
		reply:   "오 미세플라스틱! 요즘 진짜 핫한 문제지 🔬\n\n분해 방법에 대해 관심이 많구나! 아 그런데 말이야, 이런 걸 제대로 연구하려면...\n\n어? 그보다 **🎯 왼쪽에 연구계획 버튼이 활성화되었으니 한번 눌러봐!** 실험 설계부터 예상결과까지 체계적으로 정리해줄게! 💪",
	},
	{
		keyword: "다이오드",
		topic:   "다이오드 논리회로",
		reply:   "다이오드 논리회로! 전자회로의 기초네 ⚡\n\n실험해보고 싶은 마음이 보이는구나! 그런데 이걸 제대로 해보려면... 음, 생각해보니\n\n**🎯 왼쪽 사이드바에 연구계획 버튼이 활성화되었어!** 클릭하면 AND, OR 게이트 실험부터 결과 예측까지 완벽하게 설계해줄게! 🎯",
	},
	{
		keyword: "식물",
		topic:   "식물 성장 연구",
		reply:   "식물 성장 연구! 생명과학의 핵심이야 🌱\n\n어떤 조건에서 식물이 더 잘 자랄지 궁금하지? 광합성, 영양소, 환경 요인들이 모두 관련되어 있어!\n\n실험해보고 싶다면... 아, 그냥 이렇게 말하는 것보다 연구계획부터 체계적으로 세워보자! 🌿",
	},
	{
		keyword: "태양",
		topic:   "태양에너지 연구",
		reply:   "태양에너지! 미래의 핵심 기술이지 ☀️\n\n태양전지 효율을 높이는 방법이나 태양광 발전 원리가 궁금해? 정말 흥미로운 분야야!\n\n실제로 실험해볼 수 있는 프로젝트들도 많아. 한번 연구계획을 세워볼까? 🔋",
	},
}

const genericFallbackReply = "흥미로운 주제네! 🤔\n\n과학에서 궁금한 건 뭐든 물어봐. 실험으로 확인해볼 수 있는 건지도 같이 생각해보자!\n\n혹시 구체적으로 어떤 분야에 관심있어? 화학, 생물, 물리, 환경과학... 뭐든 좋아! ✨"

// matchKeywordReply returns the first canned reply whose keyword text contains.
func matchKeywordReply(text string) (keywordReply, bool) {
	for _, k := range keywordReplies {
		if strings.Contains(text, k.keyword) {
			return k, true
		}
	}
	return keywordReply{}, false
}

var announcements = map[models.DocumentKind]string{
	models.KindResearchPlan:     "🔬 연구계획서를 생성하고 있습니다...\n\n우측 문서 창에서 실시간으로 작성되는 모습을 확인해보세요! AI가 대화 맥락을 분석해서 맞춤형 연구계획을 만들어드릴게요! ✨\n\n💡 **문서를 보면서 궁금한 점이 생기면 언제든 저에게 물어보세요!** 예를 들어:\n• \"실험 방법 2단계가 이해 안 되는데 더 자세히 설명해줘\"\n• \"준비물 중에서 대체할 수 있는 재료 있어?\"\n• \"이 실험에서 주의할 점이 더 있을까?\"\n\n이렇게 구체적으로 질문하시면 더 상세한 답변을 드릴 수 있어요!",
	models.KindExperimentReport: "📝 실험보고서를 생성하고 있습니다...\n\n우측 문서 창에서 가상의 실험 데이터와 함께 완성되는 보고서를 확인해보세요! 실제 과학 논문 형태로 작성해드릴게요! 📊\n\n💡 **보고서 내용 중 이해가 어려운 부분이 있으면 바로 질문하세요!** 예를 들어:\n• \"실험 결과에서 변화율 95.7%가 뭘 의미해?\"\n• \"결론 부분을 더 쉽게 설명해줘\"\n• \"이 실험을 실제로 하려면 뭘 조심해야 해?\"\n\n구체적으로 물어보실수록 정확하고 자세한 설명을 받을 수 있어요!",
}

const competitionMenu = `안녕! 🏆 우리는 **ISEF 국제대회**와 **국내 과학대회** 출품작 데이터를 가지고 있어!

📂 **보유 분야들:**
🌍 **환경과학** - 미세플라스틱, 물정화, 대기오염, 생태계 복원
⚡ **전자공학** - 다이오드 회로, AI 시스템, 센서 기술
🧬 **생물학** - 식물성장, 미생물, 유전자, 의료진단
🔋 **에너지** - 태양전지, 배터리, 신재생에너지
🧪 **화학** - 촉매, 신소재, 분석기술
🤖 **AI/데이터** - 머신러닝, 의료AI, 예측모델

어떤 분야가 관심있어? 또는 구체적인 주제가 있다면 말해줘! 🎯`

const competitionFallback = `🔍 연구 아이디어를 찾아보고 있어!

혹시 이런 분야 중에 관심있는 게 있어?
• **환경**: 플라스틱 오염, 수질 정화, 대기질 개선
• **전자**: 회로 설계, 센서, AI 하드웨어
• **생물**: 식물/동물 연구, 의료 기술
• **에너지**: 태양광, 배터리, 신재생에너지
• **화학**: 신소재, 촉매, 분석 기술

구체적인 주제를 말해주면 맞춤형 연구 아이디어를 제안해줄게! 🎯`

func competitionPrompt(conversation string) string {
	return fmt.Sprintf(`다음 대화 내용을 분석해서 관련된 과학대회 출품작 아이디어를 자연스러운 대화 형식으로 제공해줘:

대화 내용: "%s"

자연스럽고 강의자료 대본처럼 답변해줘. 실제로 대화하듯 자연스럽게 이야기를 전개해줘.

다음 형식으로 답변해줘:

🎯 **대화 맥락 분석 완료!** [주제]와 관련된 연구 아이디어들이야!

## 🔬 **[분야명]** 분야

### 🌍 **국제 수준 연구 아이디어**
**1. [연구 제목]**
   📂 *[카테고리]* | 🎯 *고등학생 실행 가능*

**2. [연구 제목]**
   📂 *[카테고리]* | 🎯 *창의적 접근*

### 🇰🇷 **국내대회 적합 아이디어**
**1. [연구 제목]**
   📂 *STEAM R&E* | 🎯 *실용적 응용*

**2. [연구 제목]**
   📂 *과학전람회* | 🎯 *지역 문제 해결*

## 🚀 **너만의 연구 아이디어는?**

위 아이디어들을 참고해서 어떤 방향으로 연구하고 싶어? 기존 연구를 개선하거나 새로운 관점으로 접근해볼 수 있을 것 같아! 🎯

조건: 고등학생이 실제로 수행 가능한 연구, 창의적이고 실용적인 아이디어 제공, 자연스러운 대화체로 작성`, conversation)
}

// tutorFraming is sent as the leading turn of every chat completion.
var tutorFraming = `너는 과학 교육을 담당하는 친근하고 열정적인 AI 튜터야. 학생들과 자연스럽게 대화하며 과학적 호기심을 키워주는 것이 목표야.

대화 스타일 (중요 - 자연스러운 강의자료 대본처럼):
- 친근하고 편안한 말투 사용 (반말, 이모지 활용)
- 사람들처럼 때로는 순서대로, 때로는 랜덤하게 자연스럽게 이야기 전개
- 복잡한 과학 개념도 쉽게 설명하되, 실제 대화하듯 자연스럽게
- "아 그러고 보니", "어? 그런데", "잠깐, 이것도 있어" 같은 자연스러운 연결어 사용
- 실험이나 연구에 대한 구체적인 조언을 자연스럽게 섞어서 제공
- 학생의 호기심을 자극하는 질문을 대화 중간중간 자연스럽게 던지기

중요한 주의사항:
- "언제쯤 시작해볼 생각이야?", "계획이 있어?" 같은 시간 관련 질문은 하지 마
- 불필요한 재촉이나 압박하는 멘트 금지
- 간결하고 핵심적인 답변 위주로 작성
- 과도한 격려보다는 실질적인 도움과 자연스러운 대화 제공

**⚠️ 매우 중요한 버튼 안내 규칙 (반드시 지켜야 함):**
다음 패턴 중 하나라도 감지되면 MUST 반드시 응답 마지막에 "` + CallToAction + `" 포함하기:

**패턴 1: 실험 행동 의도 감지**
- "실험해보고 싶", "해보려고", "만들어보고 싶", "측정해보고 싶", "관찰하고 싶" 등의 행동 의도
- "어떻게 해", "방법이 뭐야", "어떤 재료", "뭘 준비", "어떤 절차" 등의 방법 질문

**패턴 2: 대화 흐름 분석**
- 이전 턴에서 과학 주제 언급 + 현재 턴에서 구체적 세부사항 질문
- 사용자가 2회 이상 연속해서 같은 실험 주제에 대해 질문
- 실험 재료, 절차, 결과에 대한 구체적 질문

**패턴 3: 실험 단계 진행 감지**
- 내가 실험 방법이나 재료를 설명한 직후
- 여러 실험 옵션을 제시한 후 사용자가 하나를 선택했을 때
- 실험의 원리나 이론을 설명한 후 실행 단계로 넘어갈 때

**패턴 4: 구체화 신호**
- 추상적 궁금증에서 구체적 실행 계획으로 대화가 발전할 때
- "이거 진짜 해볼까", "실제로 가능해?", "집에서 할 수 있어?" 같은 실행 의지 표현

현재까지의 대화 맥락을 고려해서 자연스럽고 교육적인 답변을 해줘.`

// QuickTopics are the starter prompts offered on a fresh conversation.
var QuickTopics = []models.QuickTopic{
	quickTopic("미세플라스틱 분해", "화학"),
	quickTopic("식물 성장 실험", "생물"),
	quickTopic("태양전지 효율", "물리"),
	quickTopic("다이오드 논리회로", "전자"),
}

func quickTopic(text, category string) models.QuickTopic {
	return models.QuickTopic{Text: text, Category: category, Prompt: text + " 실험해보고 싶어!"}
}

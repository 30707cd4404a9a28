// Package classify decides whether an utterance is scientific, safe and
// experimentable, using the completion service with a keyword fallback.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ayush/science-tutor/internal/llm"
	"github.com/ayush/science-tutor/internal/logger"
	"github.com/ayush/science-tutor/internal/models"
)

const maxTokens = 300

var fenceRe = regexp.MustCompile("```(?:json)?\\s*")

// Result is one classification and how it was obtained.
type Result struct {
	Analysis models.TopicAnalysis
	// RemoteCalled is true when the request reached the completion service
	// and an answer came back, whether or not it parsed.
	RemoteCalled bool
	Fallback     bool
	Err          error
}

// Classifier classifies utterances in the context of the full conversation.
type Classifier struct {
	llm    llm.Completer
	logger *zap.Logger
}

// New returns a Classifier. A nil Completer makes every call use the heuristic.
func New(c llm.Completer, l *zap.Logger) *Classifier {
	return &Classifier{llm: c, logger: logger.Component(l, "classifier")}
}

// Classify never fails: any remote or parse error degrades to Heuristic.
func (c *Classifier) Classify(ctx context.Context, history []models.Message, utterance string) Result {
	if c.llm == nil {
		return Result{Analysis: Heuristic(utterance), Fallback: true}
	}

	text, err := c.llm.Complete(ctx, llm.Request{
		Turns:     []llm.Turn{{Role: llm.RoleUser, Content: BuildPrompt(history, utterance)}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		var statusErr *llm.StatusError
		reached := errors.As(err, &statusErr)
		c.logger.Warn("classification request failed, using keyword heuristic", zap.Error(err))
		return Result{Analysis: Heuristic(utterance), RemoteCalled: reached, Fallback: true, Err: err}
	}

	analysis, err := Parse(text)
	if err != nil {
		c.logger.Warn("classification reply unparseable, using keyword heuristic",
			zap.Error(err), zap.String("reply", truncate(text, 200)))
		return Result{Analysis: Heuristic(utterance), RemoteCalled: true, Fallback: true, Err: err}
	}

	c.logger.Debug("classified utterance",
		zap.Bool("scientific", analysis.IsScientific),
		zap.String("topic", analysis.Topic),
		zap.String("safety", string(analysis.SafetyLevel)))
	return Result{Analysis: analysis, RemoteCalled: true}
}

// Parse strips fenced-code markers and decodes a TopicAnalysis.
func Parse(text string) (models.TopicAnalysis, error) {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))

	var a models.TopicAnalysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return models.TopicAnalysis{}, fmt.Errorf("classify: decode: %w", err)
	}
	switch a.SafetyLevel {
	case models.SafetySafe, models.SafetyCaution, models.SafetyDangerous:
	default:
		return models.TopicAnalysis{}, fmt.Errorf("classify: unexpected safetyLevel %q", a.SafetyLevel)
	}
	switch a.EducationalValue {
	case models.ValueHigh, models.ValueMedium, models.ValueLow:
	default:
		return models.TopicAnalysis{}, fmt.Errorf("classify: unexpected educationalValue %q", a.EducationalValue)
	}
	if a.Field == "" {
		a.Field = models.FieldOther
	}
	a.Topic = strings.TrimSpace(a.Topic)
	return a, nil
}

// BuildPrompt renders the classification request: role-tagged history, the
// latest utterance, the JSON shape and the rubric.
func BuildPrompt(history []models.Message, utterance string) string {
	var lines []string
	for _, m := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}

	return fmt.Sprintf(`다음 전체 대화맥락을 고려해서 최신 사용자 메시지를 분석해줘:

전체 대화 히스토리:
%s

최신 사용자 메시지: "%s"

위 전체 맥락을 고려해서 과학적 타당성을 판단하고 JSON으로 답변해줘:

{
  "isScientific": true/false,
  "topic": "구체적 과학 주제명 (한국어)",
  "field": "물리/화학/생물/환경/전자/의학/지구과학/천체물리학/기타",
  "experimentable": true/false,
  "safetyLevel": "safe/caution/dangerous",
  "educationalValue": "high/medium/low",
  "reason": "판단 근거 (한 줄)"
}

판단 기준:
- isScientific: 과학적 원리나 현상과 관련된 내용이거나 이전 대화에서 과학적 맥락이 있는가?
- experimentable: 고등학생 수준에서 실험/연구 가능한가?
- safetyLevel: safe(안전), caution(주의필요), dangerous(위험)
- educationalValue: 교육적 가치 정도

안전한 과학 주제들 (항상 safe로 판정):
- 나노튜브, 그래핀, 나노소재, 반도체, 태양전지
- 식물성장, 미세플라스틱, 환경과학, 생물학 실험
- 물리 실험, 화학 실험 (일반적인 수준)
- CVD, SEM, AFM 등 일반적인 분석기법

DO NOT OUTPUT ANYTHING OTHER THAN VALID JSON.`, strings.Join(lines, "\n"), utterance)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

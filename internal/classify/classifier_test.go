package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayush/science-tutor/internal/llm"
	"github.com/ayush/science-tutor/internal/llm/llmtest"
	"github.com/ayush/science-tutor/internal/models"
)

const validReply = `{"isScientific": true, "topic": "탄소나노튜브 합성", "field": "화학",
"experimentable": true, "safetyLevel": "safe", "educationalValue": "high", "reason": "재료과학"}`

func TestClassify_RemoteSuccess(t *testing.T) {
	fake := llmtest.Reply(validReply)
	c := New(fake, zap.NewNop())

	history := []models.Message{
		{Role: models.RoleAssistant, Content: "안녕!"},
		{Role: models.RoleUser, Content: "탄소 이야기"},
	}
	res := c.Classify(context.Background(), history, "나노튜브는 어떻게 만들어?")

	assert.True(t, res.RemoteCalled)
	assert.False(t, res.Fallback)
	assert.NoError(t, res.Err)
	assert.True(t, res.Analysis.IsScientific)
	assert.Equal(t, "탄소나노튜브 합성", res.Analysis.Topic)
	assert.Equal(t, models.FieldChemistry, res.Analysis.Field)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Turns, 1)
	prompt := reqs[0].Turns[0].Content
	assert.Contains(t, prompt, "assistant: 안녕!")
	assert.Contains(t, prompt, "user: 탄소 이야기")
	assert.Contains(t, prompt, `최신 사용자 메시지: "나노튜브는 어떻게 만들어?"`)
	assert.Equal(t, maxTokens, reqs[0].MaxTokens)
}

func TestClassify_StripsCodeFence(t *testing.T) {
	c := New(llmtest.Reply("```json\n"+validReply+"\n```"), nil)
	res := c.Classify(context.Background(), nil, "질문")
	assert.False(t, res.Fallback)
	assert.Equal(t, models.SafetySafe, res.Analysis.SafetyLevel)
}

func TestClassify_ParseFailureFallsBackAndCountsCall(t *testing.T) {
	c := New(llmtest.Reply("I think this is science!"), nil)
	res := c.Classify(context.Background(), nil, "식물 키우기")

	assert.True(t, res.RemoteCalled)
	assert.True(t, res.Fallback)
	assert.Error(t, res.Err)
	assert.True(t, res.Analysis.IsScientific)
	assert.Equal(t, models.ValueHigh, res.Analysis.EducationalValue)
}

func TestClassify_TransportFailureDoesNotCountCall(t *testing.T) {
	c := New(llmtest.Fail(fmt.Errorf("llm /v1/messages: %w", errors.New("connection refused"))), nil)
	res := c.Classify(context.Background(), nil, "오늘 점심 뭐 먹을까")

	assert.False(t, res.RemoteCalled)
	assert.True(t, res.Fallback)
	assert.False(t, res.Analysis.IsScientific)
	assert.Equal(t, models.ValueLow, res.Analysis.EducationalValue)
}

func TestClassify_StatusErrorCountsCall(t *testing.T) {
	c := New(llmtest.Fail(&llm.StatusError{Path: "/v1/messages", Code: 500}), nil)
	res := c.Classify(context.Background(), nil, "실험")
	assert.True(t, res.RemoteCalled)
	assert.True(t, res.Fallback)
}

func TestClassify_NilCompleterUsesHeuristic(t *testing.T) {
	c := New(nil, nil)
	res := c.Classify(context.Background(), nil, "SEM 측정")
	assert.False(t, res.RemoteCalled)
	assert.True(t, res.Analysis.IsScientific)
}

func TestParse_RejectsUnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "hello"},
		{"bad safety", `{"isScientific":true,"safetyLevel":"maybe","educationalValue":"high"}`},
		{"missing value", `{"isScientific":true,"safetyLevel":"safe"}`},
		{"prose around", "Sure! " + validReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestParse_DefaultsField(t *testing.T) {
	a, err := Parse(`{"isScientific":false,"topic":"  점심 ","safetyLevel":"safe","educationalValue":"low"}`)
	require.NoError(t, err)
	assert.Equal(t, models.FieldOther, a.Field)
	assert.Equal(t, "점심", a.Topic)
}

func TestHeuristic(t *testing.T) {
	hit := Heuristic("태양전지 효율")
	assert.True(t, hit.IsScientific)
	assert.True(t, hit.Experimentable)
	assert.Equal(t, models.SafetySafe, hit.SafetyLevel)

	miss := Heuristic("cvd 장비")
	assert.False(t, miss.IsScientific, "keyword matching is case-sensitive")
	assert.Equal(t, models.ValueLow, miss.EducationalValue)
}

func TestConversationHasKeyword(t *testing.T) {
	history := []models.Message{{Role: models.RoleUser, Content: "미세플라스틱 얘기했었지"}}
	assert.True(t, ConversationHasKeyword(history, "그거 계속"))
	assert.True(t, ConversationHasKeyword(nil, "다이오드"))
	assert.False(t, ConversationHasKeyword(nil, "오늘 점심 뭐 먹을까"))
}

func TestConversationHasKeyword_IgnoresAssistantMessages(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleAssistant, Content: "안녕! 어떤 실험이나 연구를 해보고 싶어?"},
		{Role: models.RoleUser, Content: "음 글쎄"},
		{Role: models.RoleAssistant, Content: "식물 관찰 실험은 어때?"},
	}
	assert.False(t, ConversationHasKeyword(history, "오늘 점심 뭐 먹을까"))

	history = append(history, models.Message{Role: models.RoleUser, Content: "식물 좋아"})
	assert.True(t, ConversationHasKeyword(history, "그럼 물은 얼마나 줘?"))
}

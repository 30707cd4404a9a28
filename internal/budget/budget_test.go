package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"one char", "a", 1},
		{"seven chars", "abcdefg", 2},
		{"eight chars", "abcdefgh", 3},
		{"hangul counts runes not bytes", "시스템프롬프트", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(tt.text))
		})
	}
}

func TestCompute(t *testing.T) {
	b := New(1000)
	u := b.Compute([]string{"abcdefg", "abcdefg"}, Counters{APICallCount: 2, GeneratedDocuments: 10})

	assert.Equal(t, 4, u.ChatTokens)
	assert.Equal(t, 4, u.SystemTokens)
	assert.Equal(t, 10, u.DocumentTokens)
	assert.InDelta(t, 4.0, u.ContextOverhead, 1e-9)
	assert.InDelta(t, 22.0, u.Total(), 1e-9)
	assert.InDelta(t, 0.022, u.Ratio(), 1e-9)
	assert.Equal(t, 2, u.Percent())
	assert.False(t, u.Exhausted())
	assert.Equal(t, "low", u.Level())
	assert.Equal(t, "과학 주제로 대화해보세요", u.Hint())
}

func TestCompute_CapsRatioButNotTotal(t *testing.T) {
	b := New(10)
	u := b.Compute([]string{"0123456789012345678901234567890123456789"}, Counters{APICallCount: 1})

	assert.Greater(t, u.Total(), 10.0)
	assert.Equal(t, 1.0, u.Ratio())
	assert.Equal(t, 100, u.Percent())
	assert.True(t, u.Exhausted())
	assert.True(t, u.NearLimit())
	assert.Equal(t, "high", u.Level())
}

func TestCompute_MonotonicAsLogGrows(t *testing.T) {
	b := New(DefaultLimit)
	var msgs []string
	var c Counters
	prev := b.Compute(msgs, c).Ratio()

	for i := 0; i < 20; i++ {
		msgs = append(msgs, "나노튜브 합성 실험해보고 싶어")
		if i%2 == 0 {
			c.RecordCall()
		}
		if i%5 == 0 {
			c.RecordDocument("<h1>plan</h1>")
		}
		cur := b.Compute(msgs, c).Ratio()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestNew_DefaultsLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, New(0).Limit)
}

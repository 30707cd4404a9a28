// Package budget approximates how many model tokens a tutoring session has
// consumed. The numbers are coarse length-based estimates, not a tokenizer.
package budget

import (
	"math"
	"unicode/utf8"
)

// DefaultLimit is the per-session token ceiling.
const DefaultLimit = 20000

const charsPerToken = 3.5

// ExhaustedNotice is shown once the session reaches its limit.
const ExhaustedNotice = "토큰 한도에 도달했어요! 새 대화를 시작하려면 \"다시 시작하기\"를 눌러주세요 🔄"

// systemPromptTokens is the fixed per-call charge for the system framing.
var systemPromptTokens = Estimate("시스템프롬프트")

// Estimate returns ceil(characters / 3.5).
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / charsPerToken))
}

// Counters are the stored inputs of the estimate. Everything else is derived
// from the message log on demand.
type Counters struct {
	APICallCount       int
	GeneratedDocuments int
}

// RecordCall counts one request that reached the completion service.
func (c *Counters) RecordCall() {
	c.APICallCount++
}

// RecordDocument counts a remotely generated document.
func (c *Counters) RecordDocument(text string) {
	c.GeneratedDocuments += Estimate(text)
}

// Budget computes usage against a fixed limit.
type Budget struct {
	Limit int
}

func New(limit int) Budget {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Budget{Limit: limit}
}

// Usage is one evaluation of the estimate.
type Usage struct {
	ChatTokens      int
	SystemTokens    int
	DocumentTokens  int
	ContextOverhead float64
	APICallCount    int
	Limit           int
}

// Compute evaluates the estimate for the given message contents and counters.
// The context overhead models re-sending a growing history on every call.
func (b Budget) Compute(messages []string, c Counters) Usage {
	chat := 0
	for _, m := range messages {
		chat += Estimate(m)
	}
	return Usage{
		ChatTokens:      chat,
		SystemTokens:    systemPromptTokens * c.APICallCount,
		DocumentTokens:  c.GeneratedDocuments,
		ContextOverhead: float64(chat) * float64(c.APICallCount) * 0.5,
		APICallCount:    c.APICallCount,
		Limit:           b.Limit,
	}
}

// Total is the uncapped estimate.
func (u Usage) Total() float64 {
	return float64(u.ChatTokens+u.SystemTokens+u.DocumentTokens) + u.ContextOverhead
}

// Ratio is Total/Limit capped to [0,1] for display.
func (u Usage) Ratio() float64 {
	if u.Limit <= 0 {
		return 1
	}
	return math.Min(u.Total()/float64(u.Limit), 1)
}

// Percent is Ratio as a rounded percentage.
func (u Usage) Percent() int {
	return int(math.Round(u.Ratio() * 100))
}

// Exhausted reports whether input and actions must be disabled. It uses the
// uncapped total.
func (u Usage) Exhausted() bool {
	return u.Total() >= float64(u.Limit)
}

// NearLimit is true above 80%.
func (u Usage) NearLimit() bool {
	return u.Ratio() > 0.8
}

// Level buckets usage for the meter colour.
func (u Usage) Level() string {
	switch r := u.Ratio(); {
	case r < 0.5:
		return "low"
	case r < 0.8:
		return "medium"
	default:
		return "high"
	}
}

// Hint is the one-line encouragement shown under the meter.
func (u Usage) Hint() string {
	switch r := u.Ratio(); {
	case r < 0.2:
		return "과학 주제로 대화해보세요"
	case r < 0.6:
		return "연구 주제가 명확해지고 있어요"
	case r < 0.8:
		return "깊이 있는 대화가 진행중이에요!"
	default:
		return "토큰 한계에 가까워지고 있어요"
	}
}

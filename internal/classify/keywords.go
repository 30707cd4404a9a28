package classify

import (
	"strings"

	"github.com/ayush/science-tutor/internal/models"
)

// Keywords is the allow-list of substrings treated as strong evidence of
// benign scientific intent. Matching is case-sensitive.
var Keywords = []string{
	"나노튜브", "실험", "연구", "설계", "분석", "CVD", "SEM", "AFM",
	"합성", "측정", "관찰", "데이터", "미세플라스틱", "식물", "태양전지", "다이오드",
}

// HasKeyword reports whether text contains any allow-list keyword.
func HasKeyword(text string) bool {
	for _, k := range Keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// ConversationHasKeyword checks the current turn and the user's earlier
// turns. Assistant messages are skipped: the greeting and the canned replies
// contain allow-list words themselves.
func ConversationHasKeyword(history []models.Message, turn string) bool {
	if HasKeyword(turn) {
		return true
	}
	for _, m := range history {
		if m.Role == models.RoleUser && HasKeyword(m.Content) {
			return true
		}
	}
	return false
}

// Heuristic is the offline verdict used when the remote classifier is
// unavailable. It never fails.
func Heuristic(utterance string) models.TopicAnalysis {
	if HasKeyword(utterance) {
		return models.TopicAnalysis{
			IsScientific:     true,
			Topic:            "과학 연구",
			Field:            models.FieldOther,
			Experimentable:   true,
			SafetyLevel:      models.SafetySafe,
			EducationalValue: models.ValueHigh,
			Reason:           "로컬 키워드 분석 결과",
		}
	}
	return models.TopicAnalysis{
		IsScientific:     false,
		Topic:            "일반 대화",
		Field:            models.FieldOther,
		Experimentable:   false,
		SafetyLevel:      models.SafetySafe,
		EducationalValue: models.ValueLow,
		Reason:           "로컬 키워드 분석 결과",
	}
}

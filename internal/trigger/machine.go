// Package trigger gates the conversation: it turns a classifier verdict plus
// keyword evidence into one action per user turn and the next session state.
package trigger

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ayush/science-tutor/internal/classify"
	"github.com/ayush/science-tutor/internal/logger"
	"github.com/ayush/science-tutor/internal/models"
)

// Action is the single outcome of a turn.
type Action string

const (
	WarnOffTopic      Action = "warn-off-topic"
	WarnUnsafe        Action = "warn-unsafe"
	PreviewExperiment Action = "preview-experiment"
	Continue          Action = "continue"
)

// Terminal reports whether the turn ends without a chat completion.
func (a Action) Terminal() bool {
	return a != Continue
}

// DefaultTopic labels a session whose classifier gave no topic.
const DefaultTopic = "과학 실험 연구"

// ExperimentPhrases mark an explicit "I want to experiment / how do I" request.
var ExperimentPhrases = []string{"실험해보고 싶", "연구해보고 싶", "설계", "실험방법", "어떻게 해"}

// TopicClassifier is satisfied by *classify.Classifier.
type TopicClassifier interface {
	Classify(ctx context.Context, history []models.Message, utterance string) classify.Result
}

// Decision is the result of evaluating one turn.
type Decision struct {
	Action         Action
	Session        models.ResearchSession
	Classification classify.Result
	HasKeyword     bool
}

// Machine evaluates turns. It holds no session state of its own.
type Machine struct {
	classifier TopicClassifier
	logger     *zap.Logger
}

func New(c TopicClassifier, l *zap.Logger) *Machine {
	return &Machine{classifier: c, logger: logger.Component(l, "trigger")}
}

// Evaluate classifies turn against history and applies the transition table
// to a copy of session. Rules are checked in a fixed order: off-topic,
// unsafe, preview, continue. A keyword match always overrides a dangerous
// verdict.
func (m *Machine) Evaluate(ctx context.Context, session models.ResearchSession, history []models.Message, turn string) Decision {
	res := m.classifier.Classify(ctx, history, turn)
	a := res.Analysis
	kw := classify.ConversationHasKeyword(history, turn)
	s := session

	d := Decision{Classification: res, HasKeyword: kw}

	if kw || a.IsScientific {
		s.Unlock(models.GateFull)
		if s.CurrentTopic == "" {
			s.CurrentTopic = DefaultTopic
			if a.IsScientific {
				s.CurrentTopic = topicOrDefault(a.Topic)
			}
		}
	}

	switch {
	case !a.IsScientific && !kw:
		d.Action = WarnOffTopic
	case a.SafetyLevel == models.SafetyDangerous && !kw:
		d.Action = WarnUnsafe
	default:
		if a.IsScientific && a.Topic != "" {
			s.CurrentTopic = a.Topic
		}
		s.ConversationDepth++
		d.Action = Continue
		if a.Experimentable || kw {
			s.Unlock(models.GatePlanning)
			if a.EducationalValue == models.ValueHigh || kw {
				s.Unlock(models.GateFull)
			}
			if hasExperimentPhrase(turn) {
				d.Action = PreviewExperiment
			}
		}
	}

	d.Session = s
	m.logger.Debug("turn evaluated",
		zap.String("action", string(d.Action)),
		zap.Bool("keyword", kw),
		zap.String("gate", s.Gate.String()),
		zap.Int("depth", s.ConversationDepth))
	return d
}

func hasExperimentPhrase(turn string) bool {
	for _, p := range ExperimentPhrases {
		if strings.Contains(turn, p) {
			return true
		}
	}
	return false
}

func topicOrDefault(topic string) string {
	if t := strings.TrimSpace(topic); t != "" {
		return t
	}
	return DefaultTopic
}

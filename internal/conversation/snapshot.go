package conversation

import (
	"bytes"
	"math"
	"strings"

	"github.com/ayush/science-tutor/internal/budget"
	"github.com/ayush/science-tutor/internal/models"
)

const timestampLayout = "15:04:05"

// Snapshot returns a read-only copy of everything the rendering surface shows.
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	revIdx, shown, revealing := c.revealer.Progress()
	views := make([]models.MessageView, len(c.messages))
	for i, m := range c.messages {
		isRevealing := revealing && revIdx == i
		displayed := m.Content
		switch {
		case isRevealing:
			displayed = shown
		case !m.RevealComplete:
			displayed = ""
		}
		views[i] = models.MessageView{
			Role:           m.Role,
			Content:        m.Content,
			Displayed:      displayed,
			HTML:           c.render(displayed),
			Timestamp:      m.Timestamp.Format(timestampLayout),
			RevealComplete: m.RevealComplete,
			IsRevealing:    isRevealing,
		}
	}

	u := c.usageLocked()
	exhausted := u.Exhausted()
	usage := models.UsageView{
		EstimatedUsed: int(math.Round(u.Total())),
		Limit:         u.Limit,
		Ratio:         u.Ratio(),
		Percent:       u.Percent(),
		APICallCount:  u.APICallCount,
		Level:         u.Level(),
		Hint:          u.Hint(),
		NearLimit:     u.NearLimit(),
		Exhausted:     exhausted,
	}
	if exhausted {
		usage.Notice = budget.ExhaustedNotice
	}

	snap := models.Snapshot{
		Messages: views,
		Session: models.SessionView{
			CurrentTopic:      c.session.CurrentTopic,
			Stage:             c.session.Stage,
			StageLabel:        c.session.Stage.Label(),
			ConversationDepth: c.session.ConversationDepth,
			Gate:              c.session.Gate.String(),
			PlanningEnabled:   c.session.PlanningEnabled(),
			ReportEnabled:     c.session.ReportEnabled(),
		},
		Usage: usage,
		Actions: models.ActionsView{
			ResearchPlan:      !exhausted && c.documentEnabledLocked(models.KindResearchPlan),
			ExperimentReport:  !exhausted && c.documentEnabledLocked(models.KindExperimentReport),
			CompetitionSearch: !exhausted && !c.loading,
			Submit:            !exhausted && !c.loading,
			Reset:             true,
		},
		Loading: c.loading,
	}
	if c.doc != nil {
		d := *c.doc
		snap.Document = &d
	}
	if len(c.messages) <= 2 && c.doc == nil {
		snap.QuickTopics = append([]models.QuickTopic(nil), QuickTopics...)
	}
	return snap
}

func (c *Controller) render(text string) string {
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := c.markdown.Convert([]byte(text), &buf); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

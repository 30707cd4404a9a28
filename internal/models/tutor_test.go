package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResearchSession_GateOnlyMovesForward(t *testing.T) {
	s := NewResearchSession()
	assert.False(t, s.PlanningEnabled())
	assert.False(t, s.ReportEnabled())

	s.Unlock(GatePlanning)
	assert.True(t, s.PlanningEnabled())
	assert.False(t, s.ReportEnabled())

	s.Unlock(GateFull)
	s.Unlock(GateLocked)
	s.Unlock(GatePlanning)
	assert.Equal(t, GateFull, s.Gate)
	assert.True(t, s.PlanningEnabled())
	assert.True(t, s.ReportEnabled())
}

func TestResearchSession_StageOnlyMovesForward(t *testing.T) {
	s := NewResearchSession()
	assert.Equal(t, StageExploration, s.Stage)

	s.Advance(StageWriting)
	s.Advance(StagePlanning)
	assert.Equal(t, StageWriting, s.Stage)
	assert.Equal(t, "논문 작성", s.Stage.Label())
}

func TestDocumentKind_Valid(t *testing.T) {
	assert.True(t, KindResearchPlan.Valid())
	assert.True(t, KindExperimentReport.Valid())
	assert.False(t, DocumentKind("poster").Valid())
}

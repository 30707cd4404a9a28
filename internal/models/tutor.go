package models

import "time"

// Role tags a turn in the conversation log.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the append-only conversation log.
type Message struct {
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	RevealComplete bool      `json:"reveal_complete"`
}

// Field is the scientific domain reported by the classifier.
type Field string

const (
	FieldPhysics      Field = "물리"
	FieldChemistry    Field = "화학"
	FieldBiology      Field = "생물"
	FieldEnvironment  Field = "환경"
	FieldElectronics  Field = "전자"
	FieldMedicine     Field = "의학"
	FieldEarthScience Field = "지구과학"
	FieldAstrophysics Field = "천체물리학"
	FieldOther        Field = "기타"
)

type SafetyLevel string

const (
	SafetySafe      SafetyLevel = "safe"
	SafetyCaution   SafetyLevel = "caution"
	SafetyDangerous SafetyLevel = "dangerous"
)

type EducationalValue string

const (
	ValueHigh   EducationalValue = "high"
	ValueMedium EducationalValue = "medium"
	ValueLow    EducationalValue = "low"
)

// TopicAnalysis is the classifier verdict for a single utterance. The JSON
// names match what the completion service is instructed to emit.
type TopicAnalysis struct {
	IsScientific     bool             `json:"isScientific"`
	Topic            string           `json:"topic"`
	Field            Field            `json:"field"`
	Experimentable   bool             `json:"experimentable"`
	SafetyLevel      SafetyLevel      `json:"safetyLevel"`
	EducationalValue EducationalValue `json:"educationalValue"`
	Reason           string           `json:"reason"`
}

// Stage is the coarse research progress shown next to the topic.
type Stage string

const (
	StageExploration Stage = "exploration"
	StagePlanning    Stage = "planning"
	StageExecution   Stage = "execution"
	StageWriting     Stage = "writing"
)

var stageOrder = map[Stage]int{
	StageExploration: 0,
	StagePlanning:    1,
	StageExecution:   2,
	StageWriting:     3,
}

var stageLabels = map[Stage]string{
	StageExploration: "주제 탐색",
	StagePlanning:    "연구 설계",
	StageExecution:   "실험 진행",
	StageWriting:     "논문 작성",
}

// Label is the display name of the stage.
func (s Stage) Label() string {
	return stageLabels[s]
}

// Gate is the explicit trigger state. It only ever moves forward:
// Locked -> Planning -> Full, or Locked -> Full directly.
type Gate int

const (
	GateLocked   Gate = iota // no scientific turn yet
	GatePlanning             // research plan available
	GateFull                 // research plan and experiment report available
)

func (g Gate) String() string {
	switch g {
	case GatePlanning:
		return "planning"
	case GateFull:
		return "full"
	default:
		return "locked"
	}
}

// ResearchSession is the per-session gating and topic state.
type ResearchSession struct {
	CurrentTopic      string `json:"current_topic,omitempty"`
	Stage             Stage  `json:"stage"`
	ConversationDepth int    `json:"conversation_depth"`
	Gate              Gate   `json:"-"`
}

// NewResearchSession returns the initial session state.
func NewResearchSession() ResearchSession {
	return ResearchSession{Stage: StageExploration, Gate: GateLocked}
}

func (s ResearchSession) PlanningEnabled() bool { return s.Gate >= GatePlanning }
func (s ResearchSession) ReportEnabled() bool   { return s.Gate >= GateFull }

// Unlock moves the gate forward to g. Requests to move backwards are ignored.
func (s *ResearchSession) Unlock(g Gate) {
	if g > s.Gate {
		s.Gate = g
	}
}

// Advance moves the stage forward. Requests to move backwards are ignored.
func (s *ResearchSession) Advance(stage Stage) {
	if stageOrder[stage] > stageOrder[s.Stage] {
		s.Stage = stage
	}
}

// DocumentKind selects which artifact the pipeline produces.
type DocumentKind string

const (
	KindResearchPlan     DocumentKind = "research-plan"
	KindExperimentReport DocumentKind = "experiment-report"
)

// Valid reports whether k is one of the known document kinds.
func (k DocumentKind) Valid() bool {
	return k == KindResearchPlan || k == KindExperimentReport
}

type JobStatus string

const (
	JobIdle    JobStatus = "idle"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// DocumentSource records whether a document came from the completion
// service or from the offline templates.
type DocumentSource string

const (
	SourceRemote   DocumentSource = "remote"
	SourceFallback DocumentSource = "fallback"
)

// DocumentJob is one invocation of a document action.
type DocumentJob struct {
	ID              string         `json:"id"`
	Kind            DocumentKind   `json:"kind"`
	Status          JobStatus      `json:"status"`
	Progress        int            `json:"progress"`
	ProgressMessage string         `json:"progress_message"`
	ResultHTML      string         `json:"result_html,omitempty"`
	Source          DocumentSource `json:"source,omitempty"`
	Topic           string         `json:"topic"`
	StartedAt       time.Time      `json:"started_at"`
}

// SubmitTurnRequest is the JSON body for POST /api/tutor/session/messages.
type SubmitTurnRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

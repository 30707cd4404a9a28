package models

// MessageView is a read-only rendering of one Message.
type MessageView struct {
	Role           Role   `json:"role"`
	Content        string `json:"content"`
	Displayed      string `json:"displayed"`
	HTML           string `json:"html"`
	Timestamp      string `json:"timestamp"`
	RevealComplete bool   `json:"reveal_complete"`
	IsRevealing    bool   `json:"is_revealing"`
}

// SessionView summarizes ResearchSession for display.
type SessionView struct {
	CurrentTopic      string `json:"current_topic,omitempty"`
	Stage             Stage  `json:"stage"`
	StageLabel        string `json:"stage_label"`
	ConversationDepth int    `json:"conversation_depth"`
	Gate              string `json:"gate"`
	PlanningEnabled   bool   `json:"planning_enabled"`
	ReportEnabled     bool   `json:"report_enabled"`
}

// UsageView is the token budget as the rendering surface sees it.
type UsageView struct {
	EstimatedUsed int     `json:"estimated_used"`
	Limit         int     `json:"limit"`
	Ratio         float64 `json:"ratio"`
	Percent       int     `json:"percent"`
	APICallCount  int     `json:"api_call_count"`
	Level         string  `json:"level"`
	Hint          string  `json:"hint"`
	NearLimit     bool    `json:"near_limit"`
	Exhausted     bool    `json:"exhausted"`
	Notice        string  `json:"notice,omitempty"`
}

// ActionsView says which intents are currently invokable.
type ActionsView struct {
	ResearchPlan      bool `json:"research_plan"`
	ExperimentReport  bool `json:"experiment_report"`
	CompetitionSearch bool `json:"competition_search"`
	Submit            bool `json:"submit"`
	Reset             bool `json:"reset"`
}

// QuickTopic is a canned starter prompt offered on an empty conversation.
type QuickTopic struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Prompt   string `json:"prompt"`
}

// Snapshot is the complete read-only state handed to the rendering surface.
type Snapshot struct {
	Messages    []MessageView `json:"messages"`
	Session     SessionView   `json:"session"`
	Usage       UsageView     `json:"usage"`
	Actions     ActionsView   `json:"actions"`
	Loading     bool          `json:"loading"`
	Document    *DocumentJob  `json:"document,omitempty"`
	QuickTopics []QuickTopic  `json:"quick_topics,omitempty"`
}

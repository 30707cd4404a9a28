// Package conversation owns one tutoring session: the message log, the
// research session, the token budget counters and the open document. Every
// intent from the rendering surface goes through a Controller.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/ayush/science-tutor/internal/budget"
	"github.com/ayush/science-tutor/internal/classify"
	"github.com/ayush/science-tutor/internal/document"
	"github.com/ayush/science-tutor/internal/llm"
	"github.com/ayush/science-tutor/internal/logger"
	"github.com/ayush/science-tutor/internal/models"
	"github.com/ayush/science-tutor/internal/reveal"
	"github.com/ayush/science-tutor/internal/trigger"
)

var (
	ErrEmptyInput        = errors.New("conversation: empty input")
	ErrTurnInFlight      = errors.New("conversation: a turn is already in flight")
	ErrBudgetExhausted   = errors.New("conversation: token budget exhausted")
	ErrActionUnavailable = errors.New("conversation: action unavailable")
)

const (
	chatMaxTokens        = 1000
	competitionMaxTokens = 1000
	recentMessages       = 5
	competitionContext   = 1000
)

// OutcomeRecorder receives one entry per remote call telling whether its
// fallback was used.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, o models.Outcome) error
}

// Archiver receives every completed document that is still on screen.
type Archiver interface {
	ArchiveDocument(ctx context.Context, job models.DocumentJob) error
}

type Options struct {
	SessionID   string
	TokenLimit  int
	RevealTick  time.Duration
	RevealDelay time.Duration
	Document    document.Options
	Outcomes    OutcomeRecorder
	Archive     Archiver
}

func DefaultOptions() Options {
	return Options{
		TokenLimit:  budget.DefaultLimit,
		RevealTick:  30 * time.Millisecond,
		RevealDelay: 100 * time.Millisecond,
		Document:    document.DefaultOptions(),
	}
}

// Controller is safe for concurrent use. Intents validate synchronously and
// then run in the background; results are observed through Snapshot.
type Controller struct {
	llm      llm.Completer
	machine  *trigger.Machine
	pipeline *document.Pipeline
	revealer *reveal.Revealer
	budget   budget.Budget
	markdown goldmark.Markdown
	opts     Options
	logger   *zap.Logger
	wg       sync.WaitGroup

	mu       sync.Mutex
	epoch    uint64
	messages []models.Message
	session  models.ResearchSession
	counters budget.Counters
	loading  bool
	doc      *models.DocumentJob
	inflight map[models.DocumentKind]string
}

// New returns a Controller in its initial state. A nil Completer is allowed:
// every remote step then takes its fallback.
func New(c llm.Completer, opts Options, l *zap.Logger) *Controller {
	l = logger.Component(l, "conversation")
	if opts.SessionID != "" {
		l = l.With(zap.String("session_id", opts.SessionID))
	}
	ctrl := &Controller{
		llm:      c,
		machine:  trigger.New(classify.New(c, l), l),
		pipeline: document.NewPipeline(c, opts.Document, l),
		revealer: reveal.New(opts.RevealTick, opts.RevealDelay),
		budget:   budget.New(opts.TokenLimit),
		markdown: goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps())),
		opts:     opts,
		logger:   l,
	}
	ctrl.initLocked()
	return ctrl
}

// ---------------------------------------------------------------------------
// Intents
// ---------------------------------------------------------------------------

type turn struct {
	epoch   uint64
	text    string
	history []models.Message
	session models.ResearchSession
}

// SubmitUserTurn appends the user's message and evaluates it in the
// background. ctx must outlive the caller's request.
func (c *Controller) SubmitUserTurn(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrTurnInFlight
	}
	if c.usageLocked().Exhausted() {
		return ErrBudgetExhausted
	}

	t := turn{epoch: c.epoch, text: text, history: c.historyLocked(), session: c.session}
	c.messages = append(c.messages, models.Message{
		Role:           models.RoleUser,
		Content:        text,
		Timestamp:      time.Now(),
		RevealComplete: true,
	})
	c.loading = true
	c.goIntent(func() { c.runTurn(ctx, t) })
	return nil
}

// InvokeDocument starts a document job of kind.
func (c *Controller) InvokeDocument(ctx context.Context, kind models.DocumentKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown document kind %q", ErrActionUnavailable, kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.usageLocked().Exhausted() {
		return ErrBudgetExhausted
	}
	if !c.documentEnabledLocked(kind) {
		return fmt.Errorf("%w: %s", ErrActionUnavailable, kind)
	}

	topic := c.session.CurrentTopic
	if topic == "" {
		topic = document.DefaultTopic
	}
	job := models.DocumentJob{
		ID:              uuid.NewString(),
		Kind:            kind,
		Status:          models.JobRunning,
		ProgressMessage: document.StartMessage(kind),
		Topic:           topic,
		StartedAt:       time.Now(),
	}
	recent := c.recentContextLocked()
	c.doc = &job
	c.inflight[kind] = job.ID
	c.appendAssistantLocked(announcements[kind])

	epoch := c.epoch
	c.goIntent(func() { c.runDocument(ctx, epoch, job, recent) })
	return nil
}

// SearchCompetitions suggests competition-style research ideas from the
// conversation so far. A near-empty conversation gets a fixed menu instead.
func (c *Controller) SearchCompetitions(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrTurnInFlight
	}
	if c.usageLocked().Exhausted() {
		return ErrBudgetExhausted
	}

	if len(c.messages) <= 2 {
		c.appendAssistantLocked(competitionMenu)
		return nil
	}

	contents := make([]string, len(c.messages))
	for i, m := range c.messages {
		contents[i] = m.Content
	}
	prompt := competitionPrompt(lastRunes(strings.Join(contents, " "), competitionContext))

	c.loading = true
	epoch := c.epoch
	c.goIntent(func() { c.runCompetition(ctx, epoch, prompt) })
	return nil
}

// CloseDocument discards the open document. A job still generating is not
// cancelled; its result is dropped when it arrives.
func (c *Controller) CloseDocument() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return
	}
	if c.inflight[c.doc.Kind] == c.doc.ID {
		delete(c.inflight, c.doc.Kind)
	}
	c.doc = nil
}

// Reset returns every entity to its initial state. Results of calls started
// before the reset are ignored.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.revealer.Stop()
	c.initLocked()
	c.logger.Info("session reset")
}

// Close stops reveals and invalidates in-flight work. The Controller must
// not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()
	c.revealer.Stop()
}

// Wait blocks until every background intent has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// ---------------------------------------------------------------------------
// Background work
// ---------------------------------------------------------------------------

func (c *Controller) goIntent(f func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		f()
	}()
}

func (c *Controller) runTurn(ctx context.Context, t turn) {
	d := c.machine.Evaluate(ctx, t.session, t.history, t.text)
	c.recordOutcome(ctx, "classifier", "classify", d.Classification.Fallback, d.Classification.Err)

	c.mu.Lock()
	if c.epoch != t.epoch {
		c.mu.Unlock()
		return
	}
	if d.Classification.RemoteCalled {
		c.counters.RecordCall()
	}
	c.applySessionLocked(d.Session)
	if d.Action.Terminal() {
		c.appendAssistantLocked(terminalReply(d))
		c.loading = false
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	reply, err := c.complete(ctx, llm.Request{Turns: chatTurns(t.history, t.text), MaxTokens: chatMaxTokens})
	c.recordOutcome(ctx, "chat", "reply", err != nil, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != t.epoch {
		return
	}

	kw, matched := matchKeywordReply(t.text)
	if err != nil {
		c.logger.Warn("chat completion failed, using canned reply", zap.Error(err), zap.Bool("keyword", matched))
		reply = genericFallbackReply
		if matched {
			reply = kw.reply
			c.session.Unlock(models.GateFull)
		}
	} else {
		c.counters.RecordCall()
	}
	if matched {
		c.session.CurrentTopic = kw.topic
	}
	c.appendAssistantLocked(reply)
	c.loading = false
}

func (c *Controller) runDocument(ctx context.Context, epoch uint64, job models.DocumentJob, recent string) {
	res := c.pipeline.Generate(ctx, job.Kind, job.Topic, recent, func(percent int, message string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch == epoch && c.doc != nil && c.doc.ID == job.ID {
			c.doc.Progress = percent
			c.doc.ProgressMessage = message
		}
	})
	c.recordOutcome(ctx, "document", string(job.Kind), !res.Remote(), res.Err)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	if c.inflight[job.Kind] == job.ID {
		delete(c.inflight, job.Kind)
	}
	if res.Remote() {
		c.counters.RecordCall()
		c.counters.RecordDocument(res.HTML)
	}
	if job.Kind == models.KindResearchPlan {
		c.session.Unlock(models.GateFull)
		c.session.Advance(models.StagePlanning)
	} else {
		c.session.Advance(models.StageWriting)
	}

	job.Status = models.JobDone
	job.Progress = 100
	job.ProgressMessage = document.DoneMessage(job.Kind)
	job.ResultHTML = res.HTML
	job.Source = res.Source

	shown := c.doc != nil && c.doc.ID == job.ID
	if shown {
		done := job
		c.doc = &done
	}
	c.mu.Unlock()

	if !shown {
		c.logger.Debug("document closed before completion, result dropped", zap.String("job_id", job.ID))
		return
	}
	if c.opts.Archive != nil {
		if err := c.opts.Archive.ArchiveDocument(ctx, job); err != nil {
			c.logger.Warn("failed to archive document", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

func (c *Controller) runCompetition(ctx context.Context, epoch uint64, prompt string) {
	reply, err := c.complete(ctx, llm.Request{
		Turns:     []llm.Turn{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: competitionMaxTokens,
	})
	c.recordOutcome(ctx, "competition", "search", err != nil, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	if err != nil {
		c.logger.Warn("competition search failed, using canned reply", zap.Error(err))
		reply = competitionFallback
	} else {
		c.counters.RecordCall()
	}
	c.appendAssistantLocked(reply)
	c.loading = false
}

func (c *Controller) complete(ctx context.Context, req llm.Request) (string, error) {
	if c.llm == nil {
		return "", errors.New("conversation: no completion service configured")
	}
	return c.llm.Complete(ctx, req)
}

func (c *Controller) recordOutcome(ctx context.Context, component, operation string, fallback bool, cause error) {
	if c.opts.Outcomes == nil {
		return
	}
	o := models.Outcome{
		ID:        uuid.NewString(),
		SessionID: c.opts.SessionID,
		Component: component,
		Operation: operation,
		Fallback:  fallback,
		CreatedAt: time.Now(),
	}
	if cause != nil {
		o.Error = cause.Error()
	}
	if err := c.opts.Outcomes.RecordOutcome(ctx, o); err != nil {
		c.logger.Warn("failed to record outcome", zap.String("component", component), zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// State helpers; callers hold c.mu.
// ---------------------------------------------------------------------------

func (c *Controller) initLocked() {
	c.messages = []models.Message{{
		Role:           models.RoleAssistant,
		Content:        Greeting,
		Timestamp:      time.Now(),
		RevealComplete: true,
	}}
	c.session = models.NewResearchSession()
	c.counters = budget.Counters{}
	c.loading = false
	c.doc = nil
	c.inflight = make(map[models.DocumentKind]string)
}

// applySessionLocked merges a trigger decision computed from an earlier copy
// of the session. Gate and stage only move forward, so document jobs that
// finished meanwhile are not undone.
func (c *Controller) applySessionLocked(next models.ResearchSession) {
	c.session.CurrentTopic = next.CurrentTopic
	c.session.ConversationDepth = next.ConversationDepth
	c.session.Unlock(next.Gate)
	c.session.Advance(next.Stage)
}

func (c *Controller) appendAssistantLocked(content string) {
	idx := len(c.messages)
	c.messages = append(c.messages, models.Message{
		Role:      models.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	})
	epoch := c.epoch
	c.revealer.Reveal(idx, content, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch == epoch && idx < len(c.messages) {
			c.messages[idx].RevealComplete = true
		}
	})
}

func (c *Controller) historyLocked() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) recentContextLocked() string {
	start := len(c.messages) - recentMessages
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, recentMessages)
	for _, m := range c.messages[start:] {
		lines = append(lines, m.Content)
	}
	return strings.Join(lines, "\n")
}

func (c *Controller) usageLocked() budget.Usage {
	contents := make([]string, len(c.messages))
	for i, m := range c.messages {
		contents[i] = m.Content
	}
	return c.budget.Compute(contents, c.counters)
}

func (c *Controller) documentEnabledLocked(kind models.DocumentKind) bool {
	if c.inflight[kind] != "" {
		return false
	}
	if kind == models.KindExperimentReport {
		return c.session.ReportEnabled()
	}
	return c.session.PlanningEnabled()
}

func terminalReply(d trigger.Decision) string {
	switch d.Action {
	case trigger.WarnOffTopic:
		return offTopicReply
	case trigger.WarnUnsafe:
		return unsafeReply
	default:
		// a keyword-only preview has no classifier topic worth repeating
		topic := d.Session.CurrentTopic
		if a := d.Classification.Analysis; a.IsScientific && a.Topic != "" {
			topic = a.Topic
		}
		return previewReply(topic)
	}
}

// chatTurns is the framing, the prior log and the new user text, in order.
func chatTurns(history []models.Message, text string) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history)+2)
	turns = append(turns, llm.Turn{Role: llm.RoleUser, Content: tutorFraming})
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == models.RoleAssistant {
			role = llm.RoleAssistant
		}
		turns = append(turns, llm.Turn{Role: role, Content: m.Content})
	}
	return append(turns, llm.Turn{Role: llm.RoleUser, Content: text})
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

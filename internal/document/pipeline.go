// Package document generates the research plan and the experiment report:
// prompt construction, remote generation, normalization and an offline
// template fallback, with a synthetic progress schedule played alongside.
package document

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayush/science-tutor/internal/budget"
	"github.com/ayush/science-tutor/internal/llm"
	"github.com/ayush/science-tutor/internal/logger"
	"github.com/ayush/science-tutor/internal/models"
)

const maxTokens = 15000

// ProgressFunc receives every progress update of a job, in order.
type ProgressFunc func(percent int, message string)

// Options are the timings of the progress playback.
type Options struct {
	PlanTick     time.Duration
	ReportTick   time.Duration
	PlanSettle   time.Duration
	ReportSettle time.Duration
}

func DefaultOptions() Options {
	return Options{
		PlanTick:     600 * time.Millisecond,
		ReportTick:   700 * time.Millisecond,
		PlanSettle:   500 * time.Millisecond,
		ReportSettle: time.Second,
	}
}

func (o Options) timing(kind models.DocumentKind) (tick, settle time.Duration) {
	if kind == models.KindExperimentReport {
		return o.ReportTick, o.ReportSettle
	}
	return o.PlanTick, o.PlanSettle
}

// Result is a finished document. HTML is never empty.
type Result struct {
	HTML   string
	Source models.DocumentSource
	// Tokens is the estimated size of a remotely generated document and zero
	// for a fallback.
	Tokens int
	// Err is the remote failure that caused a fallback, for logging only.
	Err error
}

// Remote reports whether the completion service produced the document.
func (r Result) Remote() bool {
	return r.Source == models.SourceRemote
}

type Pipeline struct {
	llm    llm.Completer
	opts   Options
	logger *zap.Logger
}

// NewPipeline returns a Pipeline. A nil Completer always yields the fallback.
func NewPipeline(c llm.Completer, opts Options, l *zap.Logger) *Pipeline {
	return &Pipeline{llm: c, opts: opts, logger: logger.Component(l, "document")}
}

// Generate produces a document of kind. The progress schedule runs on its own
// timer until the remote call settles; then progress is forced to 100 exactly
// once and Generate waits the settle delay before returning. Remote failures
// are absorbed into the offline fallback.
func (p *Pipeline) Generate(ctx context.Context, kind models.DocumentKind, topic, recentContext string, progress ProgressFunc) Result {
	if topic == "" {
		topic = DefaultTopic
	}
	if progress == nil {
		progress = func(int, string) {}
	}
	tick, settle := p.opts.timing(kind)
	start := time.Now()

	progress(0, StartMessage(kind))

	var raw string
	var callErr error

	tickCtx, stopTicker := context.WithCancel(ctx)
	defer stopTicker()

	var g errgroup.Group
	g.Go(func() error {
		playSchedule(tickCtx, tick, Steps(kind), progress)
		return nil
	})
	g.Go(func() error {
		defer stopTicker()
		raw, callErr = p.complete(ctx, kind, topic, recentContext)
		return nil
	})
	_ = g.Wait()

	res := p.finish(kind, topic, raw, callErr)
	progress(100, DoneMessage(kind))

	p.logger.Info("document generated",
		zap.String("kind", string(kind)),
		zap.String("source", string(res.Source)),
		zap.Int("tokens", res.Tokens),
		zap.Duration("elapsed", time.Since(start)))

	sleep(ctx, settle)
	return res
}

func (p *Pipeline) complete(ctx context.Context, kind models.DocumentKind, topic, recentContext string) (string, error) {
	if p.llm == nil {
		return "", fmt.Errorf("document: no completion service configured")
	}
	return p.llm.Complete(ctx, llm.Request{
		Turns:     []llm.Turn{{Role: llm.RoleUser, Content: BuildPrompt(kind, topic, recentContext)}},
		MaxTokens: maxTokens,
	})
}

func (p *Pipeline) finish(kind models.DocumentKind, topic, raw string, callErr error) Result {
	if callErr == nil {
		html := Normalize(kind, raw)
		if html != "" {
			return Result{HTML: html, Source: models.SourceRemote, Tokens: budget.Estimate(html)}
		}
		callErr = llm.ErrEmptyCompletion
	}
	p.logger.Warn("document generation failed, using offline template",
		zap.String("kind", string(kind)), zap.Error(callErr))
	return Result{HTML: Fallback(kind, topic), Source: models.SourceFallback, Err: callErr}
}

// playSchedule emits steps one per tick until they run out or ctx ends.
func playSchedule(ctx context.Context, tick time.Duration, steps []Step, progress ProgressFunc) {
	if tick <= 0 {
		tick = time.Millisecond
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for _, s := range steps {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if ctx.Err() != nil {
			return
		}
		progress(s.Percent, s.Message)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

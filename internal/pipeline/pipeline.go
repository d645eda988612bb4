package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/autocommit/autocommit/internal/api"
	"github.com/autocommit/autocommit/internal/generator"
	"github.com/autocommit/autocommit/internal/gitrepo"
)

// Stage is a state of the commit pipeline.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageChecking    Stage = "checking"
	StageDiffing     Stage = "diffing"
	StageSummarizing Stage = "summarizing"
	StageCommitting  Stage = "committing"
	StageNoOp        Stage = "no-op"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// next is the pipeline transition function. dirty selects between the no-op
// and commit branches out of Checking; terminal states map to themselves.
func next(s Stage, dirty bool) Stage {
	switch s {
	case StageIdle:
		return StageChecking
	case StageChecking:
		if !dirty {
			return StageNoOp
		}
		return StageDiffing
	case StageDiffing:
		return StageSummarizing
	case StageSummarizing:
		return StageCommitting
	case StageCommitting:
		return StageDone
	default:
		return s
	}
}

// Inspector detects changes and produces the bounded diff.
type Inspector interface {
	Extract(path string) (*gitrepo.DiffSnapshot, error)
}

// Summarizer turns diff text into a commit message. It must always produce
// some message; service failures surface as the fallback branch.
type Summarizer interface {
	Generate(ctx context.Context, diff string) generator.Message
}

// Committer stages everything and records a commit.
type Committer interface {
	Commit(path, message string) (string, error)
}

// Result reports one pipeline run. Stage is the state the run ended in; on
// failure it names the stage that failed.
type Result struct {
	Outcome    api.Outcome
	Stage      Stage
	Message    generator.Message
	Truncated  bool
	CommitHash string
}

// Runner executes single commit cycles for a repository.
//
// Runs for the same repository must not overlap; the working tree is mutated
// without locking and concurrent cycles are unsupported. Runs for different
// repositories are independent.
type Runner struct {
	inspector  Inspector
	summarizer Summarizer
	committer  Committer
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Runner with the given capabilities.
func New(inspector Inspector, summarizer Summarizer, committer Committer, logger *slog.Logger) *Runner {
	return &Runner{
		inspector:  inspector,
		summarizer: summarizer,
		committer:  committer,
		logger:     logger,
		now:        time.Now,
	}
}

// NewDefault wires a Runner against the real git and summarization backends.
func NewDefault(gen *generator.Generator, logger *slog.Logger) *Runner {
	return New(gitrepo.Inspector{}, gen, gitrepo.Committer{}, logger)
}

// Run executes one commit cycle for the repository at path. A clean tree is
// a successful no-op. The returned error is non-nil only for Failed runs;
// the run log records every outcome either way.
func (r *Runner) Run(ctx context.Context, path string) (Result, error) {
	stage := next(StageIdle, false)

	snapshot, err := r.inspector.Extract(path)
	if err != nil {
		return r.fail(path, stage, err)
	}

	dirty := snapshot != nil
	stage = next(stage, dirty)

	if !dirty {
		r.logger.Info("no changes", "path", path)
		r.record(path, api.RunRecord{Timestamp: r.now(), Outcome: api.OutcomeNoOp})
		return Result{Outcome: api.OutcomeNoOp, Stage: stage}, nil
	}

	r.logger.Debug("diff extracted", "path", path, "length", snapshot.Length, "truncated", snapshot.Truncated)
	stage = next(stage, dirty)

	message := r.summarizer.Generate(ctx, snapshot.Text)
	if message.Source == generator.SourceFallback && message.FallbackReason != generator.ReasonNoCredential {
		r.logger.Warn("summarization fell back", "path", path, "reason", message.FallbackReason)
	}
	stage = next(stage, dirty)

	hash, err := r.committer.Commit(path, message.Text)
	if err != nil {
		return r.fail(path, stage, err)
	}
	stage = next(stage, dirty)

	r.logger.Info("changes committed", "path", path, "commit", hash, "message", message.Text)
	r.record(path, api.RunRecord{
		Timestamp: r.now(),
		Outcome:   api.OutcomeCommitted,
		Message:   message.Text,
		Truncated: snapshot.Truncated,
		Fallback:  message.FallbackReason,
	})

	return Result{
		Outcome:    api.OutcomeCommitted,
		Stage:      stage,
		Message:    message,
		Truncated:  snapshot.Truncated,
		CommitHash: hash,
	}, nil
}

// fail records the failure in the run log before propagating it, so the
// operational history survives failed cycles.
func (r *Runner) fail(path string, stage Stage, err error) (Result, error) {
	r.logger.Error("pipeline run failed", "path", path, "stage", string(stage), "error", err)
	r.record(path, api.RunRecord{Timestamp: r.now(), Outcome: api.OutcomeFailed, Error: err.Error()})
	return Result{Outcome: api.OutcomeFailed, Stage: StageFailed},
		fmt.Errorf("%s stage: %w", stage, err)
}

func (r *Runner) record(path string, rec api.RunRecord) {
	if err := appendRecord(path, rec); err != nil {
		r.logger.Warn("failed to append run log", "path", path, "error", err)
	}
}

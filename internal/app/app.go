// Package app wires scanning, prompting, validation and file generation
// into a single run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"setupwizard/internal/generate"
	"setupwizard/internal/history"
	"setupwizard/internal/llm"
	llmclient "setupwizard/internal/llm/client"
	"setupwizard/internal/prompt"
	"setupwizard/internal/response"
	"setupwizard/internal/safeio"
	"setupwizard/internal/scan"
	"setupwizard/internal/types"
)

// PhaseRecommend labels the recommendation request for hooks and logs.
const PhaseRecommend = "recommend"

// ErrNoInput is returned when the directory has no source files and no
// idea was given.
var ErrNoInput = errors.New("app: nothing to analyze; the directory has no source files and no idea was given")

// Service runs generations. Zero values are usable except for LLM.
type Service struct {
	LLM    llmclient.LLMClient
	Logger *log.Logger
	Policy response.Policy
	// History is optional; runs are not recorded when nil.
	History *history.Store
	// Provider and Model are recorded in history.
	Provider string
	Model    string
	// Scan overrides scan.DefaultOptions when set.
	Scan *scan.Options
}

// Request describes one run.
type Request struct {
	Dir   string
	Idea  string
	Focus string

	Force  bool
	DryRun bool
	// Regenerate asks the model once more when the first completion fails
	// validation.
	Regenerate bool
	// Confirm, when set, is called before anything is written. Returning
	// false ends the run without writing.
	Confirm func(cfg types.ProjectConfiguration, dryRun bool) bool
}

// Report is the outcome of a run.
type Report struct {
	RunID    uuid.UUID
	Summary  *scan.Summary
	Result   response.Result
	Attempts int
	Files    []generate.Written
	// Declined is set when Confirm returned false.
	Declined bool
}

// Run scans req.Dir, asks the model for recommendations, validates them and
// writes the configuration files. Nothing is written when validation fails.
func (s *Service) Run(ctx context.Context, req Request) (Report, error) {
	logger := s.logger()
	if s.LLM == nil {
		return Report{}, errors.New("app: no LLM client")
	}
	if req.Dir == "" {
		req.Dir = "."
	}
	fsys, err := safeio.NewSafeFS(req.Dir)
	if err != nil {
		return Report{}, fmt.Errorf("app: project directory: %w", err)
	}

	rep := Report{}
	opts := scan.DefaultOptions()
	if s.Scan != nil {
		opts = *s.Scan
	}
	sum, err := scan.Scan(fsys.Root(), opts)
	if err != nil {
		return rep, fmt.Errorf("app: scan: %w", err)
	}
	logger.Printf("scanned %d files (%s) in %s", sum.Files, sum.HumanSize(), fsys.Root())
	if !sum.Empty() {
		rep.Summary = &sum
	} else if req.Idea == "" {
		return rep, ErrNoInput
	}

	text, payload, err := prompt.Build(prompt.Input{
		Idea:      req.Idea,
		Summary:   rep.Summary,
		Focus:     req.Focus,
		MinAgents: s.Policy.MinAgents,
	})
	if err != nil {
		return rep, fmt.Errorf("app: build prompt: %w", err)
	}

	v := response.NewValidator(s.Policy)
	ctx = llm.WithPhase(ctx, PhaseRecommend)
	attempts := 1
	if req.Regenerate {
		attempts = 2
	}
	var res response.Result
	for i := 0; i < attempts; i++ {
		callCtx := ctx
		if i > 0 {
			logger.Printf("regenerating after: %v", err)
			callCtx = llm.WithoutCache(ctx)
		}
		rep.Attempts++
		var raw string
		raw, err = s.LLM.Complete(callCtx, text, payload)
		if err != nil {
			err = fmt.Errorf("app: completion: %w", err)
			s.record(ctx, &rep, fsys.Root(), history.OutcomeError, response.Result{}, err)
			return rep, err
		}
		res, err = v.Validate(raw)
		for _, d := range res.Diagnostics {
			logger.Print(d.String())
		}
		if err == nil || !retryable(err) {
			break
		}
	}
	rep.Result = res
	if err != nil {
		s.record(ctx, &rep, fsys.Root(), failureOutcome(err), res, err)
		return rep, err
	}
	logger.Printf("configuration %s (strategy %s, repaired %t)", res.Outcome, res.Candidate.Strategy, res.Candidate.Repaired)

	if req.Confirm != nil && !req.Confirm(res.Config, req.DryRun) {
		rep.Declined = true
		return rep, nil
	}

	w := &generate.Writer{FS: fsys, Force: req.Force, DryRun: req.DryRun}
	rep.Files, err = w.Write(res.Config)
	if err != nil {
		err = fmt.Errorf("app: write: %w", err)
		s.record(ctx, &rep, fsys.Root(), history.OutcomeError, res, err)
		return rep, err
	}
	if !req.DryRun {
		s.record(ctx, &rep, fsys.Root(), string(res.Outcome), res, nil)
	}
	return rep, nil
}

func (s *Service) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return s.Logger
}

func retryable(err error) bool {
	var qe *response.QualityError
	return errors.As(err, &qe) || errors.Is(err, response.ErrParse)
}

func failureOutcome(err error) string {
	var qe *response.QualityError
	switch {
	case errors.As(err, &qe):
		return history.OutcomeQualityFailed
	case errors.Is(err, response.ErrParse):
		return history.OutcomeParseFailed
	}
	return history.OutcomeError
}

// record stores the run in history. History failures are only logged.
func (s *Service) record(ctx context.Context, rep *Report, dir, outcome string, res response.Result, runErr error) {
	if s.History == nil {
		return
	}
	r := &history.Run{
		StartedAt: time.Now(),
		Dir:       dir,
		Provider:  s.Provider,
		Model:     s.Model,
		Outcome:   outcome,
		Strategy:  string(res.Candidate.Strategy),
		Repaired:  res.Candidate.Repaired,
	}
	var qe *response.QualityError
	if errors.As(runErr, &qe) {
		r.Failures = qe.Failures
	} else if runErr != nil {
		r.Failures = []string{runErr.Error()}
	}
	for _, f := range rep.Files {
		if !f.Skipped {
			r.Files = append(r.Files, f.Path)
		}
	}
	if err := s.History.Record(ctx, r); err != nil {
		s.logger().Printf("history: %v", err)
		return
	}
	rep.RunID = r.ID
}

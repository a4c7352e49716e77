// Package cli implements the setupwizard command line.
package cli

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"setupwizard/internal/config"
	"setupwizard/internal/llm"
	llmclient "setupwizard/internal/llm/client"
	"setupwizard/internal/response"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitUsage   = 2
	ExitQuality = 3
)

// UsageError marks errors caused by bad arguments or configuration.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// ClientFunc builds the LLM client for a run.
type ClientFunc func(ctx context.Context, provider, model string) (llmclient.LLMClient, llmclient.ModelRegistration, error)

// Env carries the process streams and collaborators commands use.
type Env struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Config is loaded with config.Load when nil.
	Config *config.Config
	// NewClient defaults to the built-in provider registry.
	NewClient ClientFunc
}

// DefaultEnv uses the process streams.
func DefaultEnv() *Env {
	return &Env{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

func (e *Env) config() (*config.Config, error) {
	if e.Config != nil {
		return e.Config, nil
	}
	c, err := config.Load()
	if err != nil {
		return nil, &UsageError{Err: err}
	}
	e.Config = c
	return c, nil
}

func (e *Env) logger(verbose bool) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(e.Err, "setupwizard: ", log.Ltime)
}

// NewRootCmd builds the command tree.
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "setupwizard",
		Short: "Generate AI coding assistant configuration for a project",
		Long: `setupwizard inspects a project (or a project idea), asks an LLM for
recommended agents, commands, hooks and rules, and writes them as
.claude/agents/*.md, .claude/commands/*.md, .claude/settings.json and CLAUDE.md.

Examples:
  setupwizard generate
  setupwizard generate ./service --strict --min-agents 3
  setupwizard generate --idea "a CLI that syncs dotfiles" --dry-run
  setupwizard history --limit 5
  setupwizard extract completion.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(env.In)
	root.SetOut(env.Out)
	root.SetErr(env.Err)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	root.AddCommand(newGenerateCmd(env))
	root.AddCommand(newHistoryCmd(env))
	root.AddCommand(newExtractCmd(env))
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, env *Env, args []string) int {
	root := NewRootCmd(env)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	renderError(env.Err, err)
	return ExitCode(err)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	var (
		usage *UsageError
		qe    *response.QualityError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage):
		return ExitUsage
	case errors.As(err, &qe), errors.Is(err, response.ErrParse):
		return ExitQuality
	case strings.HasPrefix(err.Error(), "unknown command"):
		return ExitUsage
	}
	return ExitError
}

// buildClient resolves provider and model and wraps the client with the
// standard middleware stack.
func (e *Env) buildClient(ctx context.Context, cfg *config.Config, logger *log.Logger) (llmclient.LLMClient, llmclient.ModelRegistration, error) {
	newClient := e.NewClient
	if newClient == nil {
		reg := llmclient.NewRegistry()
		if err := llmclient.RegisterDefaults(reg); err != nil {
			return nil, llmclient.ModelRegistration{}, err
		}
		newClient = reg.New
	}
	cli, spec, err := newClient(ctx, cfg.Provider, cfg.Model)
	if err != nil {
		return nil, spec, err
	}
	wrapped := llm.Wrap(cli,
		llm.Cache(cfg.CacheSize),
		llm.WithLogging(logger),
		llm.WithHooks(),
		llm.Retry(max(cfg.Retries, 1), 0),
		llm.RateLimitFromEnv(spec.RateLimit, "LLM", strings.ToUpper(spec.Provider)),
	)
	return wrapped, spec, nil
}

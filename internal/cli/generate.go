package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"setupwizard/internal/app"
	"setupwizard/internal/config"
	"setupwizard/internal/history"
	"setupwizard/internal/llm"
	"setupwizard/internal/response"
	"setupwizard/internal/types"
)

type generateOptions struct {
	idea       string
	focus      string
	strict     bool
	minAgents  int
	minCmds    int
	dryRun     bool
	force      bool
	yes        bool
	provider   string
	model      string
	regenerate bool
	verbose    bool
}

func newGenerateCmd(env *Env) *cobra.Command {
	var o generateOptions
	cmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Analyze a project and write assistant configuration files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runGenerate(cmd, env, dir, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.idea, "idea", "", "describe the project instead of (or in addition to) scanning it")
	f.StringVar(&o.focus, "focus", "", "area the recommendations should emphasize, e.g. security")
	f.BoolVar(&o.strict, "strict", false, "fail instead of filling gaps with defaults")
	f.IntVar(&o.minAgents, "min-agents", -1, "minimum number of agents required in strict mode")
	f.IntVar(&o.minCmds, "min-commands", -1, "minimum number of commands required in strict mode")
	f.BoolVar(&o.dryRun, "dry-run", false, "show what would be written without writing")
	f.BoolVar(&o.force, "force", false, "overwrite existing agent, command and rules files")
	f.BoolVarP(&o.yes, "yes", "y", false, "write without asking for confirmation")
	f.StringVar(&o.provider, "provider", "", "LLM provider (gemini, groq, anthropic, fake)")
	f.StringVar(&o.model, "model", "", "model name; defaults to the provider's default")
	f.BoolVar(&o.regenerate, "regenerate", false, "ask the model once more if the first answer fails validation")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log progress to stderr")
	return cmd
}

func runGenerate(cmd *cobra.Command, env *Env, dir string, o generateOptions) error {
	cfg, err := env.config()
	if err != nil {
		return err
	}
	if o.provider != "" {
		cfg.Provider = strings.ToLower(o.provider)
	}
	if o.model != "" {
		cfg.Model = o.model
	}
	if o.strict {
		cfg.Strict = true
	}
	if o.minAgents >= 0 {
		cfg.MinAgents = o.minAgents
	}
	if o.minCmds >= 0 {
		cfg.MinCommands = o.minCmds
	}
	if err := cfg.Validate(); err != nil {
		return &UsageError{Err: err}
	}

	ctx := cmd.Context()
	logger := env.logger(o.verbose)
	client, spec, err := env.buildClient(ctx, cfg, logger)
	if err != nil {
		return &UsageError{Err: err}
	}
	defer client.Close()

	svc := &app.Service{
		LLM:      client,
		Logger:   logger,
		Policy:   policyFrom(cfg),
		Provider: spec.Provider,
		Model:    spec.Model,
	}
	if !cfg.NoHistory && cfg.HistoryPath != "" {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			logger.Printf("history disabled: %v", err)
		} else {
			defer store.Close()
			svc.History = store
		}
	}

	in := newPrompter(env.In, env.Out)
	req := app.Request{
		Dir:        dir,
		Idea:       o.idea,
		Focus:      o.focus,
		Force:      o.force,
		DryRun:     o.dryRun,
		Regenerate: o.regenerate,
		Confirm: func(c types.ProjectConfiguration, dryRun bool) bool {
			renderPlan(env.Out, c)
			if dryRun || o.yes {
				return true
			}
			return in.confirm("Write these files?", true)
		},
	}

	ctx = llm.WithPromptHook(ctx, &statusHook{out: env.Err, model: spec.Provider + "/" + spec.Model})
	rep, err := svc.Run(ctx, req)
	if errors.Is(err, app.ErrNoInput) {
		idea := in.ask("No source files found. Describe the project you want to build:")
		if idea == "" {
			return &UsageError{Err: err}
		}
		req.Idea = idea
		rep, err = svc.Run(ctx, req)
	}
	if err != nil {
		return err
	}
	renderReport(env.Out, rep, o.dryRun)
	return nil
}

func policyFrom(cfg *config.Config) response.Policy {
	p := response.DefaultPolicy()
	p.Strict = cfg.Strict
	p.MinAgents = cfg.MinAgents
	p.MinCommands = cfg.MinCommands
	p.MinRuleCategories = cfg.MinRules
	return p
}

// statusHook prints a one-line status around the model request.
type statusHook struct {
	out   io.Writer
	model string
}

func (h *statusHook) Before(ctx context.Context, phase, prompt string, input any) {
	fmt.Fprintln(h.out, mutedStyle.Render(fmt.Sprintf("asking %s for recommendations...", h.model)))
}

func (h *statusHook) After(ctx context.Context, phase, completion string, err error) {
	if err != nil {
		return
	}
	fmt.Fprintln(h.out, mutedStyle.Render(fmt.Sprintf("received %d bytes", len(completion))))
}

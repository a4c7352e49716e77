package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"setupwizard/internal/app"
	"setupwizard/internal/history"
	"setupwizard/internal/response"
	"setupwizard/internal/types"
)

var (
	colorAccent  = lipgloss.Color("#7c3aed")
	colorOK      = lipgloss.Color("#16a34a")
	colorWarn    = lipgloss.Color("#d97706")
	colorError   = lipgloss.Color("#dc2626")
	colorMuted   = lipgloss.Color("#6b7280")
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	promptStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(colorOK)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	sectionStyle = lipgloss.NewStyle().MarginTop(1).Bold(true)
)

func renderPlan(w io.Writer, c types.ProjectConfiguration) {
	pa := c.ProjectAnalysis
	fmt.Fprintln(w, titleStyle.Render("Project analysis"))
	line := func(label, v string) {
		if v != "" {
			fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(label+":"), v)
		}
	}
	line("type", pa.ProjectType)
	line("languages", strings.Join(pa.MainLanguages, ", "))
	line("technologies", strings.Join(pa.Technologies, ", "))
	line("frameworks", strings.Join(pa.Frameworks, ", "))
	line("complexity", pa.Complexity)
	line("testing", pa.TestingMaturity)

	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Agents (%d)", len(c.RecommendedAgents))))
	for _, a := range c.RecommendedAgents {
		fmt.Fprintf(w, "  %s %s\n", okStyle.Render(a.Name), mutedStyle.Render(a.Description))
	}
	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Commands (%d)", len(c.RecommendedCommands))))
	for _, cmd := range c.RecommendedCommands {
		fmt.Fprintf(w, "  %s %s\n", okStyle.Render("/"+cmd.Name), mutedStyle.Render(cmd.Description))
	}
	if len(c.RecommendedHooks) > 0 {
		n := 0
		for _, hs := range c.RecommendedHooks {
			n += len(hs)
		}
		fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Hooks (%d)", n)))
		for _, trigger := range sortedKeys(c.RecommendedHooks) {
			for _, h := range c.RecommendedHooks[trigger] {
				fmt.Fprintf(w, "  %s %s\n", okStyle.Render(trigger), h.Command)
			}
		}
	}
	rules := 0
	for _, key := range types.RuleCategories {
		rules += len(c.ClaudeRules.Category(key))
	}
	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Rules (%d)", rules)))
	fmt.Fprintln(w)
}

func renderReport(w io.Writer, rep app.Report, dryRun bool) {
	if rep.Declined {
		fmt.Fprintln(w, warnStyle.Render("Nothing written."))
		return
	}
	switch rep.Result.Outcome {
	case response.OutcomeFallback:
		fmt.Fprintln(w, warnStyle.Render("The model answer was unusable; configuration was built from keywords and defaults."))
	case response.OutcomeDefaulted:
		fmt.Fprintln(w, warnStyle.Render("Some sections were missing and were filled with defaults."))
	}
	verb := "wrote"
	if dryRun {
		verb = "would write"
	}
	for _, f := range rep.Files {
		switch {
		case f.Skipped:
			fmt.Fprintf(w, "  %s %s %s\n", warnStyle.Render("skip"), f.Path, mutedStyle.Render("(exists; use --force)"))
		case f.Merged:
			fmt.Fprintf(w, "  %s %s\n", okStyle.Render("merge"), f.Path)
		default:
			fmt.Fprintf(w, "  %s %s %s\n", okStyle.Render(verb), f.Path, mutedStyle.Render(fmt.Sprintf("(%d bytes)", f.Bytes)))
		}
	}
	written := 0
	for _, f := range rep.Files {
		if !f.Skipped {
			written++
		}
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Done: %d file(s) %s.", written, verbPast(dryRun))))
}

func verbPast(dryRun bool) string {
	if dryRun {
		return "planned"
	}
	return "written"
}

func renderError(w io.Writer, err error) {
	var qe *response.QualityError
	if errors.As(err, &qe) {
		fmt.Fprintln(w, errorStyle.Render("The model answer did not meet the quality bar:"))
		for _, f := range qe.Failures {
			fmt.Fprintf(w, "  - %s\n", f)
		}
		fmt.Fprintln(w, mutedStyle.Render("Try --regenerate, a different --model, or drop --strict."))
		return
	}
	fmt.Fprintln(w, errorStyle.Render("error: ")+err.Error())
}

func renderRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No runs recorded."))
		return
	}
	for _, r := range runs {
		outcome := okStyle.Render(r.Outcome)
		switch r.Outcome {
		case history.OutcomeQualityFailed, history.OutcomeParseFailed, history.OutcomeError:
			outcome = errorStyle.Render(r.Outcome)
		case string(response.OutcomeFallback), string(response.OutcomeDefaulted):
			outcome = warnStyle.Render(r.Outcome)
		}
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			mutedStyle.Render(r.StartedAt.Local().Format("2006-01-02 15:04")),
			outcome,
			r.Dir,
			mutedStyle.Render(strings.Trim(r.Provider+"/"+r.Model, "/")),
		)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "    - %s\n", f)
		}
		if len(r.Files) > 0 {
			fmt.Fprintf(w, "    %s\n", mutedStyle.Render(fmt.Sprintf("%d file(s): %s", len(r.Files), strings.Join(r.Files, ", "))))
		}
	}
}

func sortedKeys(m map[string][]types.Hook) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

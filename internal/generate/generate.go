// Package generate writes a validated configuration into a project's
// assistant config files.
package generate

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"setupwizard/internal/safeio"
	t "setupwizard/internal/types"
)

// ErrExists is reported for files that are kept because they already exist.
var ErrExists = errors.New("generate: file already exists")

// Output locations relative to the project root.
const (
	ConfigDir    = ".claude"
	AgentsDir    = ".claude/agents"
	CommandsDir  = ".claude/commands"
	SettingsFile = ".claude/settings.json"
	RulesFile    = "CLAUDE.md"
)

// Kind names the type of a generated file.
type Kind string

const (
	KindAgent    Kind = "agent"
	KindCommand  Kind = "command"
	KindSettings Kind = "settings"
	KindRules    Kind = "rules"
)

// Written describes one file the Writer produced or would produce.
type Written struct {
	// Root-relative path using forward slashes.
	Path  string
	Kind  Kind
	Bytes int
	// Skipped is set when an existing file was left untouched.
	Skipped bool
	// Merged is set when an existing settings file was updated in place.
	Merged bool
}

// Writer renders configurations into files under FS's root.
type Writer struct {
	FS *safeio.SafeFS
	// Force overwrites existing agent, command and rules files.
	Force bool
	// DryRun renders everything but writes nothing.
	DryRun bool
}

// Write renders cfg. Files are written one at a time; on error the files
// already written stay in place and are returned along with the error.
func (w *Writer) Write(cfg t.ProjectConfiguration) ([]Written, error) {
	if w.FS == nil {
		return nil, errors.New("generate: no filesystem")
	}
	var out []Written

	agentSlugs := newSlugSet()
	for _, a := range cfg.RecommendedAgents {
		slug := agentSlugs.add(a.Name)
		body, err := renderAgent(a, slug)
		if err != nil {
			return out, fmt.Errorf("render agent %q: %w", a.Name, err)
		}
		wr, err := w.put(path.Join(AgentsDir, slug+".md"), KindAgent, body)
		if err != nil {
			return out, err
		}
		out = append(out, wr)
	}

	commandSlugs := newSlugSet()
	for _, c := range cfg.RecommendedCommands {
		slug := commandSlugs.add(c.Name)
		body, err := renderCommand(c)
		if err != nil {
			return out, fmt.Errorf("render command %q: %w", c.Name, err)
		}
		wr, err := w.put(path.Join(CommandsDir, slug+".md"), KindCommand, body)
		if err != nil {
			return out, err
		}
		out = append(out, wr)
	}

	if len(cfg.RecommendedHooks) > 0 {
		wr, err := w.writeSettings(cfg.RecommendedHooks)
		if err != nil {
			return out, err
		}
		out = append(out, wr)
	}

	wr, err := w.put(RulesFile, KindRules, renderRules(cfg))
	if err != nil {
		return out, err
	}
	out = append(out, wr)
	return out, nil
}

// put writes body unless the file exists and Force is off.
func (w *Writer) put(rel string, kind Kind, body []byte) (Written, error) {
	wr := Written{Path: rel, Kind: kind, Bytes: len(body)}
	if err := w.create(rel, body); err != nil {
		if errors.Is(err, ErrExists) {
			wr.Skipped = true
			return wr, nil
		}
		return wr, err
	}
	return wr, nil
}

func (w *Writer) create(rel string, body []byte) error {
	if !w.Force && w.FS.Exists(filepath.FromSlash(rel)) {
		return fmt.Errorf("%s: %w", rel, ErrExists)
	}
	if w.DryRun {
		return nil
	}
	if err := w.FS.SafeWriteFile(filepath.FromSlash(rel), body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

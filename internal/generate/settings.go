package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	t "setupwizard/internal/types"
	"setupwizard/internal/util/jsonutil"
)

type hookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

type hookGroup struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []hookCommand `json:"hooks"`
}

// writeSettings merges hooks into the settings file. Keys other than
// "hooks" are preserved, and so are hook entries already present.
func (w *Writer) writeSettings(hooks map[string][]t.Hook) (Written, error) {
	rel := filepath.FromSlash(SettingsFile)
	wr := Written{Path: SettingsFile, Kind: KindSettings}

	settings := map[string]any{}
	existing, err := w.FS.SafeReadFile(rel)
	switch {
	case err == nil:
		if err := json.Unmarshal(existing, &settings); err != nil {
			return wr, fmt.Errorf("parse %s: %w", SettingsFile, err)
		}
		if settings == nil {
			settings = map[string]any{}
		}
		wr.Merged = true
	case errors.Is(err, fs.ErrNotExist):
	default:
		return wr, fmt.Errorf("read %s: %w", SettingsFile, err)
	}

	merged, err := mergeHooks(settings["hooks"], hooks)
	if err != nil {
		return wr, fmt.Errorf("merge %s: %w", SettingsFile, err)
	}
	settings["hooks"] = merged

	body, err := jsonutil.MarshalNoEscapeIndent(settings, "", "  ")
	if err != nil {
		return wr, err
	}
	body = append(body, '\n')
	wr.Bytes = len(body)
	if w.DryRun {
		return wr, nil
	}
	if err := w.FS.SafeWriteFile(rel, body, 0o644); err != nil {
		return wr, fmt.Errorf("write %s: %w", SettingsFile, err)
	}
	return wr, nil
}

// mergeHooks converts the existing "hooks" value to typed groups and appends
// every recommended command that is not already bound to the same matcher.
func mergeHooks(existing any, add map[string][]t.Hook) (map[string][]hookGroup, error) {
	out := map[string][]hookGroup{}
	if existing != nil {
		raw, err := json.Marshal(existing)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("unexpected hooks layout: %w", err)
		}
	}

	triggers := make([]string, 0, len(add))
	for tr := range add {
		triggers = append(triggers, tr)
	}
	sort.Strings(triggers)

	for _, trigger := range triggers {
		groups := out[trigger]
		for _, h := range add[trigger] {
			if h.Command == "" {
				continue
			}
			i := findGroup(groups, h.Matcher)
			if i < 0 {
				groups = append(groups, hookGroup{Matcher: h.Matcher})
				i = len(groups) - 1
			}
			if hasCommand(groups[i].Hooks, h.Command) {
				continue
			}
			groups[i].Hooks = append(groups[i].Hooks, hookCommand{Type: "command", Command: h.Command})
		}
		if len(groups) > 0 {
			out[trigger] = groups
		}
	}
	return out, nil
}

func findGroup(groups []hookGroup, matcher string) int {
	for i, g := range groups {
		if g.Matcher == matcher {
			return i
		}
	}
	return -1
}

func hasCommand(cmds []hookCommand, command string) bool {
	for _, c := range cmds {
		if c.Command == command {
			return true
		}
	}
	return false
}

// internal/deck/presets.go
//
// Named deck presets.
//
// Initialization behavior (InitPresets):
//   1. The embedded presets.json ("standard", "small") is always loaded.
//   2. If a presets file path is given (DECK_PRESETS_FILE), its entries are
//      merged on top, replacing embedded presets of the same name.
//
// Every preset is validated; an invalid preset fails initialization.
// Initialization is run once (sync.Once).

package deck

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
)

// StandardPreset is the name of the default preset.
const StandardPreset = "standard"

//go:embed presets.json
var embeddedPresets string

var (
	presetsOnce sync.Once
	presets     map[string]Config
	presetsErr  error
)

// InitPresets loads presets exactly once. path may be empty.
func InitPresets(path string) error {
	presetsOnce.Do(func() {
		base, err := ParsePresets(strings.NewReader(embeddedPresets))
		if err != nil {
			presetsErr = err
			return
		}
		if path != "" {
			f, err := os.Open(path)
			if err != nil {
				presetsErr = fmt.Errorf("open presets: %w", err)
				return
			}
			defer f.Close()
			extra, err := ParsePresets(f)
			if err != nil {
				presetsErr = err
				return
			}
			for name, cfg := range extra {
				base[name] = cfg
			}
		}
		presets = base
	})
	return presetsErr
}

// ParsePresets decodes a JSON object of name -> Config and validates each entry.
func ParsePresets(r io.Reader) (map[string]Config, error) {
	raw := make(map[string]Config)
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	out := make(map[string]Config, len(raw))
	for name, cfg := range raw {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		out[strings.ToLower(strings.TrimSpace(name))] = cfg
	}
	return out, nil
}

// Preset returns the named preset. Falls back to the embedded defaults if
// InitPresets was never called.
func Preset(name string) (Config, bool) {
	_ = InitPresets("")
	cfg, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if ok {
		cfg.Colors = slices.Clone(cfg.Colors)
	}
	return cfg, ok
}

// PresetNames lists the loaded presets in name order.
func PresetNames() []string {
	_ = InitPresets("")
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

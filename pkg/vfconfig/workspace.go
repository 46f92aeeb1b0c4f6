package vfconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
	"github.com/gosimple/slug"
	"github.com/pelletier/go-toml/v2"
)

// fundFile is the on-disk TOML shape of a fund definition file, per
// spec.md §6's minimum field list.
type fundFile struct {
	Title   string           `toml:"title"`
	Tickers []string         `toml:"tickers"`
	Rules   []ruleFile       `toml:"rules"`
	Options fundOptionsFile  `toml:"options"`
	Search  *searchSpecFile  `toml:"search"`
}

type ruleFile struct {
	Name      string         `toml:"name"`
	Frequency string         `toml:"frequency"`
	Options   map[string]any `toml:"options"`
}

type fundOptionsFile struct {
	BufferRatio       float64 `toml:"buffer_ratio"`
	PositionTolerance float64 `toml:"position_tolerance"`
	SuspendMonths     []int   `toml:"suspend_months"`
}

type searchSpecFile struct {
	RuleFrequencies map[string][]string           `toml:"rule_frequencies"`
	RuleOptions     map[string]map[string][]any   `toml:"rule_options"`
}

// fofFile is the on-disk TOML shape of a FoF definition file.
type fofFile struct {
	Title     string             `toml:"title"`
	Weights   map[string]float64 `toml:"weights"`
	Frequency string             `toml:"frequency"`
}

// LoadFund parses a fund definition file at path into a
// backtest.FundDefinition with equal weights across its declared
// tickers (spec.md §6 names only a flat ticker list; per-ticker weights
// are a FundDefinition field the file format doesn't expose directly,
// so this spreads weight evenly — matching original_source's default
// when a fund file omits explicit per-ticker weights).
func LoadFund(path string) (*backtest.FundDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fundFile
	if err := toml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("vfconfig: parsing fund file %s: %w", path, err)
	}

	weights := make(map[ticker.Ticker]float64, len(f.Tickers))
	if len(f.Tickers) > 0 {
		w := 1.0 / float64(len(f.Tickers))
		for _, sym := range f.Tickers {
			t, err := ticker.New(sym, "", "")
			if err != nil {
				return nil, fmt.Errorf("vfconfig: %s: %w", path, err)
			}
			weights[t] = w
		}
	}

	rules := make([]backtest.RuleSpec, len(f.Rules))
	for i, r := range f.Rules {
		rules[i] = backtest.RuleSpec{Name: r.Name, Frequency: backtest.Frequency(r.Frequency), Options: r.Options}
	}

	suspend := make(map[int]struct{}, len(f.Options.SuspendMonths))
	for _, m := range f.Options.SuspendMonths {
		suspend[m] = struct{}{}
	}

	def := &backtest.FundDefinition{
		Title:   f.Title,
		Weights: weights,
		Rules:   rules,
		Options: backtest.FundOptions{
			SuspendMonths:     suspend,
			BufferRatio:       f.Options.BufferRatio,
			PositionTolerance: f.Options.PositionTolerance,
		},
	}
	if f.Search != nil {
		def.Search = convertSearchSpec(f.Search)
	}
	return def, nil
}

func convertSearchSpec(f *searchSpecFile) *backtest.SearchSpec {
	freqs := make(map[string][]backtest.Frequency, len(f.RuleFrequencies))
	for name, raw := range f.RuleFrequencies {
		choices := make([]backtest.Frequency, len(raw))
		for i, s := range raw {
			choices[i] = backtest.Frequency(s)
		}
		freqs[name] = choices
	}
	return &backtest.SearchSpec{RuleFrequencies: freqs, RuleOptions: f.RuleOptions}
}

// LoadFof parses a FoF definition file at path.
func LoadFof(path string) (*backtest.FofDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fofFile
	if err := toml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("vfconfig: parsing fof file %s: %w", path, err)
	}
	return &backtest.FofDefinition{
		Title:     f.Title,
		Weights:   f.Weights,
		Frequency: backtest.Frequency(f.Frequency),
	}, nil
}

// EntityFile names one definition file under a workspace directory,
// along with the sort key used to order it.
type EntityFile struct {
	Path string
	Name string // file base name without extension
}

// ListEntities lists the .toml files directly under dir, ordered by a
// slug-based comparator standing in for spec.md §6's "locale-aware
// phonetic comparator for Chinese titles" (documented as an
// approximation in DESIGN.md — gosimple/slug transliterates Chinese via
// pinyin-adjacent Unicode folding, giving a stable latin sort key, but
// it is not a true phonetic collator).
func ListEntities(dir string) ([]EntityFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]EntityFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".toml")
		out = append(out, EntityFile{Path: filepath.Join(dir, e.Name()), Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		return slug.Make(out[i].Name) < slug.Make(out[j].Name)
	})
	return out, nil
}

package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"dropcast/internal/dist"
	"dropcast/internal/engine"
)

// Loader serves presets: the shipped ones plus any *.yaml files in its
// directory. File presets shadow built-ins with the same name. Loaded
// files are cached until Invalidate.
type Loader struct {
	dir string

	mu    sync.RWMutex
	cache []Preset
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// All returns built-ins plus file presets, names unique, built-in order
// first and file extras alphabetical. A missing directory is not an
// error; a malformed preset file is.
func (l *Loader) All() ([]Preset, error) {
	fromFiles, err := l.fromFiles()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Preset, len(fromFiles))
	for _, p := range fromFiles {
		byName[p.Name] = p
	}

	out := make([]Preset, 0, len(fromFiles)+4)
	seen := make(map[string]bool)
	for _, b := range Builtins() {
		if f, ok := byName[b.Name]; ok {
			out = append(out, f)
		} else {
			out = append(out, b)
		}
		seen[b.Name] = true
	}

	extras := make([]Preset, 0, len(fromFiles))
	for _, p := range fromFiles {
		if !seen[p.Name] {
			extras = append(extras, p)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].Name < extras[j].Name })
	return append(out, extras...), nil
}

// Find returns the preset with the given name.
func (l *Loader) Find(name string) (Preset, error) {
	all, err := l.All()
	if err != nil {
		return Preset{}, err
	}
	for _, p := range all {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("presets: unknown preset %q", name)
}

// Invalidate drops the file cache. Call after preset files change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = nil
}

func (l *Loader) fromFiles() ([]Preset, error) {
	l.mu.RLock()
	if l.cache != nil {
		cached := l.cache
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	loaded, err := loadDir(l.dir)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache = loaded
	l.mu.Unlock()
	return loaded, nil
}

// loadDir reads every *.yaml / *.yml preset in dir. A missing directory
// yields an empty (non-nil) slice.
func loadDir(dir string) ([]Preset, error) {
	out := []Preset{}
	if dir == "" {
		return out, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("presets: read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		p, err := loadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func loadFile(path string) (Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("presets: read %s: %w", filepath.Base(path), err)
	}
	var f filePreset
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Preset{}, fmt.Errorf("presets: parse %s: %w", filepath.Base(path), err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	p, err := f.toPreset()
	if err != nil {
		return Preset{}, fmt.Errorf("presets: %s: %w", filepath.Base(path), err)
	}
	if errs := engine.Validate(p.Params); len(errs) > 0 {
		return Preset{}, fmt.Errorf("presets: %s: invalid parameters: %s", filepath.Base(path), errs[0].String())
	}
	return p, nil
}

// filePreset is the YAML wire shape: one flat params block covering all
// three variants, resolved by kind.
type filePreset struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Kind        string     `yaml:"kind"`
	Params      fileParams `yaml:"params"`
}

type fileParams struct {
	SupplyCount    float64     `yaml:"supplyCount"`
	NumSimulations int         `yaml:"numSimulations"`
	Seed           *uint32     `yaml:"seed,omitempty"`
	Fdv            *fileSide   `yaml:"fdv,omitempty"`
	Drop           *fileSide   `yaml:"drop,omitempty"`
	FdvRanges      []fileRange `yaml:"fdvRanges,omitempty"`
	DropRanges     []fileRange `yaml:"dropRanges,omitempty"`
	FdvMin         float64     `yaml:"fdvMin,omitempty"`
	FdvMax         float64     `yaml:"fdvMax,omitempty"`
	DropMinPct     float64     `yaml:"dropMinPct,omitempty"`
	DropMaxPct     float64     `yaml:"dropMaxPct,omitempty"`
}

type fileSide struct {
	Min   float64  `yaml:"min"`
	Max   float64  `yaml:"max"`
	Shape string   `yaml:"shape"`
	Mode  *float64 `yaml:"mode,omitempty"`
}

type fileRange struct {
	ID          string   `yaml:"id,omitempty"`
	Min         float64  `yaml:"min"`
	Max         float64  `yaml:"max"`
	Shape       string   `yaml:"shape"`
	Weight      *float64 `yaml:"weight,omitempty"`
	ExpectedMin float64  `yaml:"expectedMin,omitempty"`
	ExpectedMax float64  `yaml:"expectedMax,omitempty"`
}

func (f filePreset) toPreset() (Preset, error) {
	kind := engine.Kind(f.Kind)
	p := Preset{Name: f.Name, Description: f.Description, Kind: kind}
	switch kind {
	case engine.KindFixed:
		if f.Params.Fdv == nil || f.Params.Drop == nil {
			return Preset{}, errors.New("fixedFormula presets need fdv and drop blocks")
		}
		p.Params = engine.FixedParams{
			SupplyCount:    f.Params.SupplyCount,
			NumSimulations: f.Params.NumSimulations,
			Seed:           f.Params.Seed,
			Fdv:            f.Params.Fdv.toSide(),
			Drop:           f.Params.Drop.toSide(),
		}
	case engine.KindRanges:
		p.Params = engine.RangesParams{
			SupplyCount:    f.Params.SupplyCount,
			NumSimulations: f.Params.NumSimulations,
			Seed:           f.Params.Seed,
			FdvRanges:      toRanges(f.Params.FdvRanges),
			DropRanges:     toRanges(f.Params.DropRanges),
		}
	case engine.KindAuto:
		p.Params = engine.AutoParams{
			SupplyCount:    f.Params.SupplyCount,
			NumSimulations: f.Params.NumSimulations,
			Seed:           f.Params.Seed,
			FdvMin:         f.Params.FdvMin,
			FdvMax:         f.Params.FdvMax,
			DropMinPct:     f.Params.DropMinPct,
			DropMaxPct:     f.Params.DropMaxPct,
		}
	default:
		return Preset{}, fmt.Errorf("unknown kind %q", f.Kind)
	}
	return p, nil
}

func (s fileSide) toSide() engine.FixedSide {
	return engine.FixedSide{
		Min:   s.Min,
		Max:   s.Max,
		Shape: dist.Shape(s.Shape),
		Mode:  s.Mode,
	}
}

func toRanges(in []fileRange) []engine.Range {
	out := make([]engine.Range, len(in))
	for i, r := range in {
		out[i] = engine.Range{
			ID:          r.ID,
			Min:         r.Min,
			Max:         r.Max,
			Shape:       dist.Shape(r.Shape),
			Weight:      r.Weight,
			ExpectedMin: r.ExpectedMin,
			ExpectedMax: r.ExpectedMax,
		}
	}
	return out
}

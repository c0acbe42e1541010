package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Module identifies one of the five service categories a brief can request.
type Module string

const (
	Research       Module = "A"
	BrandDNA       Module = "B"
	Creation       Module = "C"
	Brandbook      Module = "D"
	Implementation Module = "E"
)

// Modules lists every module in evaluation order.
var Modules = []Module{Research, BrandDNA, Creation, Brandbook, Implementation}

// ErrUnknownModule is returned by ParseModule for identifiers outside A–E.
var ErrUnknownModule = errors.New("unknown module")

// ParseModule accepts "A".."E" in any case.
func ParseModule(s string) (Module, error) {
	m := Module(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Modules {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModule, s)
}

// Title is the human-readable module name used in quotes.
func (m Module) Title() string {
	switch m {
	case Research:
		return "Research"
	case BrandDNA:
		return "Brand DNA"
	case Creation:
		return "Creación"
	case Brandbook:
		return "Brandbook"
	case Implementation:
		return "Implementación"
	}
	return string(m)
}

// Weights of each detected level.
const (
	WeightResearch = 1.0

	WeightBrandLite = 0.65
	WeightBrandFull = 1.0

	WeightCreationRefresh    = 0.5
	WeightCreationRebranding = 0.8
	WeightCreationFull       = 1.0

	WeightBookLite = 0.6
	WeightBookFull = 1.0

	WeightImplLite = 0.6
	WeightImplFull = 1.0
	WeightImplPlus = 1.5
)

// Level names.
const (
	LevelBase       = "base"
	LevelLite       = "lite"
	LevelFull       = "full"
	LevelPlus       = "plus"
	LevelRefresh    = "refresh"
	LevelRebranding = "rebranding"
)

// Weights maps a module to its detected weight. A module is present only
// when its weight is strictly positive.
type Weights map[Module]float64

// Active returns the modules with a positive weight in A–E order.
func (w Weights) Active() []Module {
	out := make([]Module, 0, len(w))
	for m, v := range w {
		if v > 0 {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Levels maps every active module to its level name.
func (w Weights) Levels() map[Module]string {
	out := make(map[Module]string, len(w))
	for _, m := range w.Active() {
		out[m] = LevelFor(m, w[m])
	}
	return out
}

// levelTolerance is how far a weight may drift from a level's nominal value
// and still be recognised as that level.
const levelTolerance = 0.05

func nearly(x, target float64) bool {
	return math.Abs(x-target) <= levelTolerance
}

// LevelFor names the level a weight represents for module m. Weights that
// do not sit on a nominal level are bucketed by threshold.
func LevelFor(m Module, weight float64) string {
	switch m {
	case Research:
		return LevelBase
	case BrandDNA, Brandbook:
		if weight >= 0.9 {
			return LevelFull
		}
		return LevelLite
	case Creation:
		switch {
		case nearly(weight, WeightCreationFull):
			return LevelFull
		case nearly(weight, WeightCreationRebranding):
			return LevelRebranding
		case nearly(weight, WeightCreationRefresh):
			return LevelRefresh
		case weight > 0.8:
			return LevelFull
		case weight > 0.6:
			return LevelRebranding
		default:
			return LevelRefresh
		}
	case Implementation:
		switch {
		case nearly(weight, WeightImplPlus), weight >= 1.4:
			return LevelPlus
		case weight >= 0.9:
			return LevelFull
		default:
			return LevelLite
		}
	}
	return LevelFull
}

// LevelName is the label a quote shows for module m at weight, for example
// "Creación (rebranding)". Research has a single level and shows its title.
func LevelName(m Module, weight float64) string {
	if m == Research {
		return m.Title()
	}
	return fmt.Sprintf("%s (%s)", m.Title(), LevelFor(m, weight))
}

// Reasons is an ordered, duplicate-free list of explanations.
type Reasons []string

// Add appends msg unless it is empty or already present.
func (r *Reasons) Add(msg string) {
	if msg == "" {
		return
	}
	for _, have := range *r {
		if have == msg {
			return
		}
	}
	*r = append(*r, msg)
}

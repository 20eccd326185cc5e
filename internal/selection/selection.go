// Package selection builds planet predicates from declarative criteria.
//
// Two composition modes exist. When Criteria.Kinds is non-empty the
// predicate is the conjunction of exactly the listed kinds and every other
// kind is ignored. When Kinds is empty the four per-kind results are handed
// to Criteria.Formula, which lets a caller express arbitrary boolean
// combinations such as "(in campaigns and in files) or in quadrant".
package selection

import (
	"fmt"
	"strings"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/spatial"
)

type Kind int

const (
	KindAll Kind = iota
	KindCampaigns
	KindFiles
	KindQuadrants
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindCampaigns:
		return "campaigns"
	case KindFiles:
		return "files"
	case KindQuadrants:
		return "quadrants"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "all":
		return KindAll, nil
	case "campaigns":
		return KindCampaigns, nil
	case "files":
		return KindFiles, nil
	case "quadrants":
		return KindQuadrants, nil
	case "custom":
		return KindCustom, nil
	default:
		return 0, fmt.Errorf("unknown selection criterion %q", raw)
	}
}

func ParseKinds(raw []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(raw))
	for _, r := range raw {
		k, err := ParseKind(r)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

type Predicate func(*galaxy.Planet) bool

// CustomFunc is a caller-supplied criterion. It sees the whole repository.
type CustomFunc func(planet *galaxy.Planet, repo *galaxy.Repository) bool

// FormulaFunc combines the four per-kind results in formula mode.
type FormulaFunc func(inCampaigns, inFiles, inQuadrant, inCustom bool) bool

// DefaultFormula selects planets that are in the configured campaigns and
// files, or inside the configured area.
func DefaultFormula(inCampaigns, inFiles, inQuadrant, inCustom bool) bool {
	return inCampaigns && inFiles || inQuadrant
}

type Criteria struct {
	Kinds     []Kind
	Campaigns []string
	Files     []string
	Area      spatial.QuadrantSuperposition
	Custom    CustomFunc
	Formula   FormulaFunc
}

// Build returns the selection predicate for repo. Campaign and file names
// that do not exist in repo simply match nothing.
func Build(repo *galaxy.Repository, c Criteria) Predicate {
	campaigns := toSet(c.Campaigns)
	files := toSet(c.Files)

	byCampaign := func(p *galaxy.Planet) bool {
		for _, campaign := range repo.Campaigns {
			if _, ok := campaigns[campaign.Name]; ok && campaign.HasPlanet(p) {
				return true
			}
		}
		return false
	}

	byFile := func(p *galaxy.Planet) bool {
		_, ok := files[p.ContainingFile]
		return ok
	}

	byQuadrant := func(p *galaxy.Planet) bool {
		return c.Area.Contains(p.X, p.Y)
	}

	byCustom := func(p *galaxy.Planet) bool {
		if c.Custom == nil {
			return true
		}
		return c.Custom(p, repo)
	}

	if len(c.Kinds) > 0 {
		checks := make([]Predicate, 0, len(c.Kinds))
		for _, kind := range c.Kinds {
			switch kind {
			case KindAll:
				checks = append(checks, func(*galaxy.Planet) bool { return true })
			case KindCampaigns:
				checks = append(checks, byCampaign)
			case KindFiles:
				checks = append(checks, byFile)
			case KindQuadrants:
				checks = append(checks, byQuadrant)
			case KindCustom:
				checks = append(checks, byCustom)
			default:
				panic(fmt.Sprintf("selection: unhandled criterion %s", kind))
			}
		}

		return func(p *galaxy.Planet) bool {
			for _, check := range checks {
				if !check(p) {
					return false
				}
			}
			return true
		}
	}

	formula := c.Formula
	if formula == nil {
		formula = DefaultFormula
	}
	return func(p *galaxy.Planet) bool {
		return formula(byCampaign(p), byFile(p), byQuadrant(p), byCustom(p))
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

var namedFormulas = map[string]FormulaFunc{
	"default": DefaultFormula,
	"campaigns_and_files": func(c, f, q, x bool) bool {
		return c && f
	},
	"campaigns_or_quadrant": func(c, f, q, x bool) bool {
		return c || q
	},
	"files_or_quadrant": func(c, f, q, x bool) bool {
		return f || q
	},
	// any and all also read the custom result, which is true when no
	// custom function is set.
	"any": func(c, f, q, x bool) bool {
		return c || f || q || x
	},
	"all": func(c, f, q, x bool) bool {
		return c && f && q && x
	},
}

// ParseFormula resolves a named formula for configuration files, which
// cannot carry functions. The empty name resolves to DefaultFormula.
func ParseFormula(name string) (FormulaFunc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return DefaultFormula, nil
	}
	f, ok := namedFormulas[key]
	if !ok {
		return nil, fmt.Errorf("unknown selection formula %q", name)
	}
	return f, nil
}

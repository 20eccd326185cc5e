package gamedata

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/shared/errors"
)

type planetXML struct {
	Name      string `xml:"Name,attr"`
	Position  string `xml:"Galactic_Position"`
	VariantOf string `xml:"Variant_Of_Existing_Type"`
}

type tradeRouteXML struct {
	Name   string `xml:"Name,attr"`
	PointA string `xml:"Point_A"`
	PointB string `xml:"Point_B"`
}

type campaignXML struct {
	Name        string   `xml:"Name,attr"`
	Locations   []string `xml:"Locations"`
	TradeRoutes []string `xml:"Trade_Routes"`
}

// Loader builds repositories from the XML files below Root.
type Loader struct {
	Root   string
	logger *slog.Logger
}

func NewLoader(root string, logger *slog.Logger) *Loader {
	return &Loader{Root: root, logger: logger}
}

func (l *Loader) xmlPath() string {
	return filepath.Join(l.Root, xmlDir)
}

// Load reads planets, trade routes and campaigns into a fresh repository.
func (l *Loader) Load(ctx context.Context) (*galaxy.Repository, error) {
	logger := l.logger.With("component", "gamedata_loader", "operation", "load", "root", l.Root)

	repo := &galaxy.Repository{}

	if err := l.loadPlanets(ctx, repo); err != nil {
		logger.Error("Failed to load planets", "error", err)
		return nil, errors.WrapExternal("failed to load planets", err)
	}
	if err := l.loadTradeRoutes(ctx, repo, logger); err != nil {
		logger.Error("Failed to load trade routes", "error", err)
		return nil, errors.WrapExternal("failed to load trade routes", err)
	}
	if err := l.loadCampaigns(ctx, repo, logger); err != nil {
		logger.Error("Failed to load campaigns", "error", err)
		return nil, errors.WrapExternal("failed to load campaigns", err)
	}

	logger.Info("Game data loaded",
		"planets", len(repo.Planets),
		"trade_routes", len(repo.TradeRoutes),
		"campaigns", len(repo.Campaigns),
	)
	return repo, nil
}

func (l *Loader) loadPlanets(ctx context.Context, repo *galaxy.Repository) error {
	files, err := FindPlanetFilesAndRoots(filepath.Join(l.xmlPath(), GameObjectFilesXML))
	if err != nil {
		return err
	}

	var inherit []*galaxy.Planet
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := eachElement(file.Path, planetElement, func(dec *xml.Decoder, start *xml.StartElement) error {
			var raw planetXML
			if err := dec.DecodeElement(&raw, start); err != nil {
				return err
			}
			planet := &galaxy.Planet{
				Name:           strings.TrimSpace(raw.Name),
				ContainingFile: file.Name,
				VariantOf:      strings.TrimSpace(raw.VariantOf),
			}
			if strings.TrimSpace(raw.Position) == "" {
				inherit = append(inherit, planet)
			} else {
				pos, err := parsePosition(raw.Position)
				if err != nil {
					return fmt.Errorf("planet %s: %w", planet.Name, err)
				}
				planet.X, planet.Y = pos.x, pos.y
			}
			repo.Planets = append(repo.Planets, planet)
			return nil
		})
		if err != nil {
			return err
		}
	}

	// Variants without their own position sit on top of their base.
	for _, planet := range inherit {
		if base := repo.PlanetByName(planet.VariantOf); base != nil && base != planet {
			planet.X, planet.Y = base.X, base.Y
		}
	}
	return nil
}

func (l *Loader) loadTradeRoutes(ctx context.Context, repo *galaxy.Repository, logger *slog.Logger) error {
	paths, err := l.listed(TradeRouteFilesXML, logger)
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := eachElement(path, tradeRouteElement, func(dec *xml.Decoder, start *xml.StartElement) error {
			var raw tradeRouteXML
			if err := dec.DecodeElement(&raw, start); err != nil {
				return err
			}
			route := &galaxy.TradeRoute{
				Name:  strings.TrimSpace(raw.Name),
				Start: repo.PlanetByName(strings.TrimSpace(raw.PointA)),
				End:   repo.PlanetByName(strings.TrimSpace(raw.PointB)),
			}
			if route.Start == nil || route.End == nil {
				return errors.NotFoundf("trade route %s connects unknown planet (%q, %q)", route.Name, raw.PointA, raw.PointB)
			}
			repo.TradeRoutes = append(repo.TradeRoutes, route)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) loadCampaigns(ctx context.Context, repo *galaxy.Repository, logger *slog.Logger) error {
	paths, err := l.listed(CampaignFilesXML, logger)
	if err != nil {
		return err
	}

	routes := make(map[string]*galaxy.TradeRoute, len(repo.TradeRoutes))
	for _, r := range repo.TradeRoutes {
		routes[r.Name] = r
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := eachElement(path, campaignElement, func(dec *xml.Decoder, start *xml.StartElement) error {
			var raw campaignXML
			if err := dec.DecodeElement(&raw, start); err != nil {
				return err
			}
			campaign := &galaxy.Campaign{Name: strings.TrimSpace(raw.Name)}
			for _, name := range splitList(strings.Join(raw.Locations, ",")) {
				if p := repo.PlanetByName(name); p != nil {
					campaign.Planets = append(campaign.Planets, p)
				} else {
					logger.Warn("Campaign references unknown planet", "campaign", campaign.Name, "planet", name)
				}
			}
			for _, name := range splitList(strings.Join(raw.TradeRoutes, ",")) {
				if r, ok := routes[name]; ok {
					campaign.TradeRoutes = append(campaign.TradeRoutes, r)
				} else {
					logger.Warn("Campaign references unknown trade route", "campaign", campaign.Name, "trade_route", name)
				}
			}
			repo.Campaigns = append(repo.Campaigns, campaign)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// listed resolves the entries of an optional index file. A missing index
// yields no files.
func (l *Loader) listed(index string, logger *slog.Logger) ([]string, error) {
	indexPath := filepath.Join(l.xmlPath(), index)
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		logger.Debug("Index file not present", "index", index)
		return nil, nil
	}

	names, err := readIndex(indexPath)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path, err := resolve(l.xmlPath(), name)
		if err != nil {
			logger.Warn("Listed file is missing", "index", index, "file", name)
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// eachElement calls fn for every element named local directly below the
// document element of path.
func eachElement(path, local string, fn func(*xml.Decoder, *xml.StartElement) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := newDecoder(f)
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 1 && t.Name.Local == local {
				if err := fn(dec, &t); err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
}

type position struct {
	x, y float64
	// rest holds the untouched text after the y component, z included.
	rest string
}

// parsePosition reads "x, y[, z]".
func parsePosition(raw string) (position, error) {
	parts := strings.SplitN(raw, ",", 3)
	if len(parts) < 2 {
		return position{}, fmt.Errorf("invalid galactic position %q", strings.TrimSpace(raw))
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return position{}, fmt.Errorf("invalid galactic position %q: %w", strings.TrimSpace(raw), err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return position{}, fmt.Errorf("invalid galactic position %q: %w", strings.TrimSpace(raw), err)
	}
	pos := position{x: x, y: y}
	if len(parts) == 3 {
		pos.rest = parts[2]
	}
	return pos, nil
}

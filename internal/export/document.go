package export

import (
	"planets-galaxymap/internal/connectivity"
	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/luatable"
)

const (
	DefaultRootName  = "PlanetDataBase"
	ConnectedToBlock = "ConnectedTo"
)

type Config struct {
	// CampaignAliases maps campaign names to the table name used for them in
	// the output. Campaigns without an alias are left out. When the map is
	// empty the whole repository is exported directly under the root.
	CampaignAliases map[string]string
	Connectivity    connectivity.Config
	RootName        string
	Format          luatable.Format
}

func (c Config) rootName() string {
	if c.RootName == "" {
		return DefaultRootName
	}
	return c.RootName
}

// BuildDocument produces the connectivity table for repo, one table per
// aliased campaign. Without aliases it falls back to BuildGlobalDocument.
func BuildDocument(repo *galaxy.Repository, cfg Config) luatable.Block {
	if len(cfg.CampaignAliases) == 0 {
		return BuildGlobalDocument(repo, cfg)
	}

	resolver := connectivity.NewResolver(cfg.Connectivity)

	var campaigns []luatable.Node
	for _, campaign := range repo.Campaigns {
		alias, ok := cfg.CampaignAliases[campaign.Name]
		if !ok {
			continue
		}
		campaigns = append(campaigns, luatable.Block{
			Name:     alias,
			Children: planetBlocks(resolver, campaign.Planets, campaign.TradeRoutes),
		})
	}

	return luatable.Block{Name: cfg.rootName(), Children: campaigns}
}

// BuildGlobalDocument resolves every planet against the whole repository and
// puts the planet tables directly under the root.
func BuildGlobalDocument(repo *galaxy.Repository, cfg Config) luatable.Block {
	resolver := connectivity.NewResolver(cfg.Connectivity)
	return luatable.Block{
		Name:     cfg.rootName(),
		Children: planetBlocks(resolver, repo.Planets, repo.TradeRoutes),
	}
}

// planetBlocks resolves every non-ignored planet against its own campaign
// population and routes.
func planetBlocks(resolver *connectivity.Resolver, planets []*galaxy.Planet, routes []*galaxy.TradeRoute) []luatable.Node {
	blocks := make([]luatable.Node, 0, len(planets))
	for _, planet := range planets {
		if resolver.Ignored(planet) {
			continue
		}
		blocks = append(blocks, luatable.Block{
			Name: planet.Name,
			Children: []luatable.Node{
				luatable.List{
					Name:   ConnectedToBlock,
					Values: resolver.Neighbors(planet, planets, routes),
				},
			},
		})
	}
	return blocks
}

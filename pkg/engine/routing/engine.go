package routing

import (
	lru "github.com/hashicorp/golang-lru/v2"
	da "github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"go.uber.org/zap"
)

const unpackCacheSize = 1 << 16

// ChRoutingEngine answers shortest path queries on the contracted index of
// one profile.
type ChRoutingEngine struct {
	graph   *da.Graph
	cg      *da.ContractedGraph
	profile string
	logger  *zap.Logger
	puCache *lru.Cache[da.Index, []da.Index]
}

func NewChRoutingEngine(db *da.RouterDb, profile string, logger *zap.Logger) (*ChRoutingEngine, error) {
	cg := db.GetContracted(profile)
	if cg == nil {
		return nil, util.WrapErrorf(nil, util.ErrProfileUnsupported, "router db has no contracted index for profile %s", profile)
	}
	// shortcut id -> unpacked road edges
	puCache, err := lru.New[da.Index, []da.Index](unpackCacheSize)
	if err != nil {
		return nil, err
	}
	return &ChRoutingEngine{
		graph:   db.GetGraph(),
		cg:      cg,
		profile: profile,
		logger:  logger,
		puCache: puCache,
	}, nil
}

func (re *ChRoutingEngine) GetGraph() *da.Graph {
	return re.graph
}

func (re *ChRoutingEngine) GetProfile() string {
	return re.profile
}

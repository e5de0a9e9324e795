package preprocessor

import (
	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/profile"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"go.uber.org/zap"
)

const (
	// settled vertex limits of the witness searches
	priorityWitnessLimit = 50
	contractWitnessLimit = 500
)

// ContractionHierarchies builds the contracted index of a profile: vertices
// are contracted in order of increasing importance and shortcuts keep the
// distances between the remaining vertices intact.
type ContractionHierarchies struct {
	vehicle *profile.Vehicle
	logger  *zap.Logger
}

func NewContractionHierarchies(vehicle *profile.Vehicle, logger *zap.Logger) *ContractionHierarchies {
	return &ContractionHierarchies{
		vehicle: vehicle,
		logger:  logger,
	}
}

// Contract adds the contracted index of profileName to db.
func (ch *ContractionHierarchies) Contract(db *datastructure.RouterDb, profileName string) error {
	p, ok := ch.vehicle.GetProfile(profileName)
	if !ok || !db.SupportProfile(profileName) {
		return util.WrapErrorf(nil, util.ErrProfileUnsupported, "profile %s not supported by vehicle %s", profileName, db.GetVehicle())
	}

	g := db.GetGraph()
	c := newContraction(g.NumberOfVertices(), ch.logger)
	g.ForEdges(func(e *datastructure.Edge) {
		if e.GetTail() == e.GetHead() {
			return
		}
		weight := ch.vehicle.Weight(p, e.GetDist(), e.GetTravelTime(), g.GetRoadClass(e.GetEdgeId()))
		c.addEdge(datastructure.NewOriginalEdge(e.GetTail(), e.GetHead(), weight, e.GetEdgeId()))
	})

	ch.logger.Sugar().Infof("contracting %d vertices for profile %s...", g.NumberOfVertices(), profileName)
	cg := c.run()
	ch.logger.Sugar().Infof("contracted graph has %d edges (%d shortcuts)",
		cg.NumberOfEdges(), cg.NumberOfEdges()-g.NumberOfEdges())

	db.AddContracted(profileName, cg)
	return nil
}

type contraction struct {
	logger *zap.Logger

	edges      []datastructure.ShortcutEdge
	outAdj     [][]datastructure.Index
	inAdj      [][]datastructure.Index
	contracted []bool
	deleted    []int // number of contracted neighbours
	rank       []datastructure.Index

	// witness search state, reset between searches
	dist    map[datastructure.Index]float64
	witness *datastructure.MinHeap[datastructure.Index]
}

func newContraction(n int, logger *zap.Logger) *contraction {
	return &contraction{
		logger:     logger,
		edges:      make([]datastructure.ShortcutEdge, 0),
		outAdj:     make([][]datastructure.Index, n),
		inAdj:      make([][]datastructure.Index, n),
		contracted: make([]bool, n),
		deleted:    make([]int, n),
		rank:       make([]datastructure.Index, n),
		dist:       make(map[datastructure.Index]float64),
		witness:    datastructure.NewFourAryHeap[datastructure.Index](),
	}
}

func (c *contraction) addEdge(e datastructure.ShortcutEdge) {
	id := datastructure.Index(len(c.edges))
	c.edges = append(c.edges, e)
	c.outAdj[e.GetFrom()] = append(c.outAdj[e.GetFrom()], id)
	c.inAdj[e.GetTo()] = append(c.inAdj[e.GetTo()], id)
}

func (c *contraction) run() *datastructure.ContractedGraph {
	n := len(c.rank)
	pq := datastructure.NewFourAryHeap[datastructure.Index]()
	for v := 0; v < n; v++ {
		pq.Insert(datastructure.NewPriorityQueueNode(c.priority(datastructure.Index(v)), datastructure.Index(v)))
	}

	order := datastructure.Index(0)
	for !pq.IsEmpty() {
		top, _ := pq.ExtractMin()
		v := top.GetItem()

		// lazy update: the priority may have grown since v was queued
		prio := c.priority(v)
		if !pq.IsEmpty() && prio > pq.GetMinrank() {
			pq.Insert(datastructure.NewPriorityQueueNode(prio, v))
			continue
		}

		c.contract(v)
		c.rank[v] = order
		order++

		if n >= 10 && int(order)%(n/10) == 0 {
			c.logger.Sugar().Infof("contracted %d%% of vertices...", int(order)*100/n)
		}
	}

	return datastructure.NewContractedGraph(c.rank, c.edges)
}

type shortcut struct {
	from, to        datastructure.Index
	weight          float64
	inEdge, outEdge datastructure.Index
}

// shortcuts returns the edges needed to keep distances when v is removed.
func (c *contraction) shortcuts(v datastructure.Index, limit int) []shortcut {
	result := make([]shortcut, 0)
	for _, inId := range c.inAdj[v] {
		in := &c.edges[inId]
		u := in.GetFrom()
		if c.contracted[u] {
			continue
		}

		maxWeight := 0.0
		for _, outId := range c.outAdj[v] {
			out := &c.edges[outId]
			if !c.contracted[out.GetTo()] && out.GetTo() != u {
				maxWeight = max(maxWeight, in.GetWeight()+out.GetWeight())
			}
		}
		c.witnessSearch(u, v, maxWeight, limit)

		for _, outId := range c.outAdj[v] {
			out := &c.edges[outId]
			w := out.GetTo()
			if c.contracted[w] || w == u {
				continue
			}
			viaV := in.GetWeight() + out.GetWeight()
			if d, ok := c.dist[w]; ok && d <= viaV {
				continue
			}
			result = append(result, shortcut{from: u, to: w, weight: viaV, inEdge: inId, outEdge: outId})
		}
	}
	return result
}

// witnessSearch runs a dijkstra from s that avoids v and stops past maxWeight
// or after limit settled vertices.
func (c *contraction) witnessSearch(s, v datastructure.Index, maxWeight float64, limit int) {
	clear(c.dist)
	c.witness.Clear()

	c.dist[s] = 0
	c.witness.Insert(datastructure.NewPriorityQueueNode(0, s))
	settled := 0
	for !c.witness.IsEmpty() && settled < limit {
		top, _ := c.witness.ExtractMin()
		u := top.GetItem()
		if top.GetRank() > c.dist[u] {
			continue
		}
		if top.GetRank() > maxWeight {
			break
		}
		settled++

		for _, id := range c.outAdj[u] {
			e := &c.edges[id]
			w := e.GetTo()
			if w == v || c.contracted[w] {
				continue
			}
			nd := top.GetRank() + e.GetWeight()
			if d, ok := c.dist[w]; !ok || nd < d {
				c.dist[w] = nd
				c.witness.Insert(datastructure.NewPriorityQueueNode(nd, w))
			}
		}
	}
}

func (c *contraction) degree(v datastructure.Index) int {
	deg := 0
	for _, id := range c.inAdj[v] {
		if !c.contracted[c.edges[id].GetFrom()] {
			deg++
		}
	}
	for _, id := range c.outAdj[v] {
		if !c.contracted[c.edges[id].GetTo()] {
			deg++
		}
	}
	return deg
}

// priority. edge difference plus the number of contracted neighbours.
func (c *contraction) priority(v datastructure.Index) float64 {
	added := len(c.shortcuts(v, priorityWitnessLimit))
	return float64(added-c.degree(v)) + float64(c.deleted[v])
}

func (c *contraction) contract(v datastructure.Index) {
	for _, sc := range c.shortcuts(v, contractWitnessLimit) {
		c.addEdge(datastructure.NewShortcutEdge(sc.from, sc.to, sc.weight, sc.inEdge, sc.outEdge))
	}
	c.contracted[v] = true

	for _, id := range c.inAdj[v] {
		if u := c.edges[id].GetFrom(); !c.contracted[u] {
			c.deleted[u]++
		}
	}
	for _, id := range c.outAdj[v] {
		if w := c.edges[id].GetTo(); !c.contracted[w] {
			c.deleted[w]++
		}
	}
}

package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/geo"
	"github.com/lintang-b-s/streetscan/pkg/profile"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"github.com/paulmach/osm"
	"go.uber.org/zap"
)

type edgeKey struct {
	from datastructure.Index
	to   datastructure.Index
}

// OsmParser builds the road graph of one vehicle from an OSM file. A parser is
// single use.
type OsmParser struct {
	vehicle *profile.Vehicle
	logger  *zap.Logger

	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]NodeCoord
	barrierNodes    map[int64]bool
	nodeIDMap       map[int64]datastructure.Index
	maxNodeID       int64

	vertices    []datastructure.Vertex
	edges       []datastructure.Edge
	points      []geo.Coordinate
	roadClasses map[string]uint8
	classNames  []string
	edgeSet     map[edgeKey]struct{}
}

func NewOSMParser(vehicle *profile.Vehicle, logger *zap.Logger) *OsmParser {
	return &OsmParser{
		vehicle:         vehicle,
		logger:          logger,
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]NodeCoord),
		barrierNodes:    make(map[int64]bool),
		nodeIDMap:       make(map[int64]datastructure.Index),
		vertices:        make([]datastructure.Vertex, 0),
		edges:           make([]datastructure.Edge, 0),
		points:          make([]geo.Coordinate, 0),
		roadClasses:     make(map[string]uint8),
		classNames:      make([]string, 0),
		edgeSet:         make(map[edgeKey]struct{}),
	}
}

// Parse reads mapFile twice: the first pass finds the nodes shared between
// routable ways, the second collects node coordinates and splits every way
// into edges at those junctions.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*datastructure.Graph, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInputNotFound, "open osm file %s", mapFile)
	}
	defer f.Close()

	scanner := NewScanner(ctx, f, mapFile)
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if len(way.Nodes) < 2 {
			continue
		}
		if _, ok := p.vehicle.WayAttributes(way.Tags); !ok {
			continue
		}
		if (countWays+1)%50000 == 0 {
			p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for i, node := range way.Nodes {
			if _, ok := p.wayNodeMap[int64(node.ID)]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[int64(node.ID)] = END_NODE
				} else {
					p.wayNodeMap[int64(node.ID)] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[int64(node.ID)] = JUNCTION_NODE
			}
		}
	}
	err = scanner.Err()
	scanner.Close()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", mapFile, err)
	}

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	scanner = NewScanner(ctx, f, mapFile)
	defer scanner.Close()

	countWays = 0
	countNodes := 0
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if (countNodes+1)%500000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++

			p.maxNodeID = max(p.maxNodeID, int64(o.ID))
			if _, ok := p.wayNodeMap[int64(o.ID)]; ok {
				p.acceptedNodeMap[int64(o.ID)] = NewNodeCoord(o.Lat, o.Lon)
				if p.vehicle.IsBarrier(o.Tags) {
					p.barrierNodes[int64(o.ID)] = true
				}
			}
		case *osm.Way:
			if len(o.Nodes) < 2 {
				continue
			}
			attrs, ok := p.vehicle.WayAttributes(o.Tags)
			if !ok {
				continue
			}
			if (countWays+1)%100000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap ways: %d...", countWays+1)
			}
			countWays++
			p.processWay(o, attrs)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", mapFile, err)
	}

	graph := datastructure.NewGraph(p.vertices, p.edges, p.points, p.classNames)

	p.logger.Sugar().Infof("number of vertices: %v", graph.NumberOfVertices())
	p.logger.Sugar().Infof("number of edges: %v", graph.NumberOfEdges())
	return graph, nil
}

func (p *OsmParser) processWay(way *osm.Way, attrs profile.EdgeAttributes) {
	waySegment := []node{}
	for _, wayNode := range way.Nodes {
		coord, ok := p.acceptedNodeMap[int64(wayNode.ID)]
		if !ok {
			// node outside of the extract, the way continues after the gap
			p.processSegment(waySegment, attrs)
			waySegment = []node{}
			continue
		}
		nodeData := node{
			id:    int64(wayNode.ID),
			coord: coord,
		}
		if p.isJunctionNode(nodeData.id) && len(waySegment) > 0 {
			waySegment = append(waySegment, nodeData)
			p.processSegment(waySegment, attrs)
			waySegment = []node{}
		}
		waySegment = append(waySegment, nodeData)
	}
	p.processSegment(waySegment, attrs)
}

func (p *OsmParser) processSegment(segment []node, attrs profile.EdgeAttributes) {
	if len(segment) < 2 {
		return
	}
	if len(segment) == 2 && segment[0].id == segment[1].id {
		// skip
		return
	} else if len(segment) > 2 && segment[0].id == segment[len(segment)-1].id {
		// loop
		p.splitAtBarriers(segment[0:len(segment)-1], attrs)
		p.splitAtBarriers(segment[len(segment)-2:], attrs)
	} else {
		p.splitAtBarriers(segment, attrs)
	}
}

// splitAtBarriers ends the segment at every barrier node and continues from a
// copy of it, so the edges on both sides are not connected.
func (p *OsmParser) splitAtBarriers(segment []node, attrs profile.EdgeAttributes) {
	waySegment := []node{}
	for i := 0; i < len(segment); i++ {
		nodeData := segment[i]
		if _, ok := p.barrierNodes[nodeData.id]; ok {
			if len(waySegment) != 0 {
				waySegment = append(waySegment, nodeData)
				p.addEdge(waySegment, attrs)
				waySegment = []node{}
			}
			nodeData = p.copyNode(nodeData)
		}
		waySegment = append(waySegment, nodeData)
	}
	if len(waySegment) >= 2 {
		p.addEdge(waySegment, attrs)
	}
}

func (p *OsmParser) copyNode(n node) node {
	p.maxNodeID++
	return node{id: p.maxNodeID, coord: n.coord}
}

func (p *OsmParser) isJunctionNode(nodeID int64) bool {
	return p.wayNodeMap[nodeID] == JUNCTION_NODE
}

func (p *OsmParser) vertexOf(n node) datastructure.Index {
	if id, ok := p.nodeIDMap[n.id]; ok {
		return id
	}
	id := datastructure.Index(len(p.vertices))
	p.nodeIDMap[n.id] = id
	p.vertices = append(p.vertices, datastructure.NewVertex(n.coord.lat, n.coord.lon, id, n.id))
	return id
}

func (p *OsmParser) roadClassOf(highway string) uint8 {
	if rc, ok := p.roadClasses[highway]; ok {
		return rc
	}
	rc := uint8(len(p.classNames))
	p.roadClasses[highway] = rc
	p.classNames = append(p.classNames, highway)
	return rc
}

func (p *OsmParser) addEdge(segment []node, attrs profile.EdgeAttributes) {
	from := segment[0]
	to := segment[len(segment)-1]
	if from.id == to.id {
		return
	}

	edgePoints := make([]geo.Coordinate, len(segment))
	for i, n := range segment {
		edgePoints[i] = geo.NewCoordinate(n.coord.lat, n.coord.lon)
	}

	distanceInMeter := geo.PolylineLength(edgePoints)
	travelTime := distanceInMeter / (attrs.Speed / 3.6) // in seconds
	roadClass := p.roadClassOf(attrs.RoadClass)

	u := p.vertexOf(from)
	v := p.vertexOf(to)

	if attrs.Forward {
		p.appendEdge(u, v, distanceInMeter, travelTime, roadClass, edgePoints)
	}
	if attrs.Backward {
		p.appendEdge(v, u, distanceInMeter, travelTime, roadClass, util.ReverseG(edgePoints))
	}
}

func (p *OsmParser) appendEdge(u, v datastructure.Index, dist, travelTime float64, roadClass uint8,
	edgePoints []geo.Coordinate) {
	key := edgeKey{from: u, to: v}
	if _, ok := p.edgeSet[key]; ok {
		return
	}
	p.edgeSet[key] = struct{}{}

	startPointsIndex := datastructure.Index(len(p.points))
	p.points = append(p.points, edgePoints...)
	endPointsIndex := datastructure.Index(len(p.points))

	p.edges = append(p.edges, datastructure.NewEdge(u, v, dist, travelTime, roadClass,
		startPointsIndex, endPointsIndex))
}

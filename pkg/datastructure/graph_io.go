package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/streetscan/pkg/geo"
	"github.com/lintang-b-s/streetscan/pkg/util"
)

const (
	routerDbMagic   = "routerdb"
	routerDbVersion = 1
	routerDbTrailer = "end"
)

var ErrCorruptRouterDb = errors.New("corrupt router db")

// WriteRouterDbFile writes db bzip2 compressed to filename.
func (db *RouterDb) WriteRouterDbFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		f.Close()
		return err
	}

	if err := db.WriteRouterDb(bz); err != nil {
		bz.Close()
		f.Close()
		return err
	}
	if err := bz.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteRouterDb writes db in the line oriented text format read by ReadRouterDb.
func (db *RouterDb) WriteRouterDb(out io.Writer) error {
	w := bufio.NewWriter(out)
	g := db.graph

	fmt.Fprintf(w, "%s %d\n", routerDbMagic, routerDbVersion)
	fmt.Fprintf(w, "%s\n", strconv.Quote(db.vehicle))

	fmt.Fprintf(w, "%d\n", len(db.profiles))
	for _, p := range db.profiles {
		fmt.Fprintf(w, "%s\n", strconv.Quote(p))
	}

	fmt.Fprintf(w, "%d\n", len(g.roadClasses))
	for _, rc := range g.roadClasses {
		fmt.Fprintf(w, "%s\n", strconv.Quote(rc))
	}

	fmt.Fprintf(w, "%d %d %d\n", g.NumberOfVertices(), g.NumberOfEdges(), len(g.points))

	for vId := 0; vId < g.NumberOfVertices(); vId++ {
		v := g.vertices[vId]
		fmt.Fprintf(w, "%s %s %d\n", formatFloat(v.lat), formatFloat(v.lon), v.osmId)
	}

	for _, e := range g.edges {
		fmt.Fprintf(w, "%d %d %s %s %d %d %d\n",
			e.tail, e.head, formatFloat(e.dist), formatFloat(e.travelTime), e.roadClass,
			e.startPointsIndex, e.endPointsIndex)
	}

	for _, p := range g.points {
		fmt.Fprintf(w, "%s %s\n", formatFloat(p.Lat), formatFloat(p.Lon))
	}

	// contracted indexes are written in profile order so output is stable
	contracted := make([]string, 0, len(db.contracted))
	for _, p := range db.profiles {
		if db.HasContractedFor(p) {
			contracted = append(contracted, p)
		}
	}

	fmt.Fprintf(w, "%d\n", len(contracted))
	for _, p := range contracted {
		cg := db.contracted[p]
		fmt.Fprintf(w, "%s %d %d\n", strconv.Quote(p), len(cg.rank), len(cg.edges))

		for i, r := range cg.rank {
			fmt.Fprintf(w, "%d", r)
			if i < len(cg.rank)-1 {
				fmt.Fprintf(w, " ")
			}
		}
		fmt.Fprintf(w, "\n")

		for _, e := range cg.edges {
			fmt.Fprintf(w, "%d %d %s %d %d %d\n",
				e.from, e.to, formatFloat(e.weight), e.child1, e.child2, e.origEdge)
		}
	}

	fmt.Fprintf(w, "%s\n", routerDbTrailer)
	return w.Flush()
}

func fields(s string) []string {
	return strings.Fields(s)
}

func ParseIndex(s string) (Index, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return Index(v), nil
}

// ReadRouterDbFile reads a bzip2 compressed router db written by WriteRouterDbFile.
func ReadRouterDbFile(filename string) (*RouterDb, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	return ReadRouterDb(bz)
}

type routerDbReader struct {
	br *bufio.Reader
}

func (r *routerDbReader) line() (string, error) {
	line, err := util.ReadLine(r.br)
	if errors.Is(err, io.EOF) {
		return "", util.WrapErrorf(err, ErrCorruptRouterDb, "unexpected end of router db")
	}
	return line, err
}

func (r *routerDbReader) tokens(n int) ([]string, error) {
	line, err := r.line()
	if err != nil {
		return nil, err
	}
	tokens := fields(line)
	if len(tokens) != n {
		return nil, util.WrapErrorf(nil, ErrCorruptRouterDb, "expected %d fields, got %d: %q", n, len(tokens), line)
	}
	return tokens, nil
}

func (r *routerDbReader) count() (int, error) {
	tokens, err := r.tokens(1)
	if err != nil {
		return 0, err
	}
	c, err := strconv.Atoi(tokens[0])
	if err != nil || c < 0 {
		return 0, util.WrapErrorf(err, ErrCorruptRouterDb, "invalid count %q", tokens[0])
	}
	return c, nil
}

func (r *routerDbReader) quoted() (string, error) {
	line, err := r.line()
	if err != nil {
		return "", err
	}
	s, err := strconv.Unquote(line)
	if err != nil {
		return "", util.WrapErrorf(err, ErrCorruptRouterDb, "invalid name %q", line)
	}
	return s, nil
}

func (r *routerDbReader) names() ([]string, error) {
	n, err := r.count()
	if err != nil {
		return nil, err
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i], err = r.quoted()
		if err != nil {
			return nil, err
		}
	}
	return names, nil
}

// ReadRouterDb parses a router db. A truncated or malformed stream returns an
// error coded ErrCorruptRouterDb.
func ReadRouterDb(in io.Reader) (*RouterDb, error) {
	r := &routerDbReader{br: bufio.NewReader(in)}

	tokens, err := r.tokens(2)
	if err != nil {
		return nil, err
	}
	if tokens[0] != routerDbMagic || tokens[1] != strconv.Itoa(routerDbVersion) {
		return nil, util.WrapErrorf(nil, ErrCorruptRouterDb, "unsupported router db header %q %q", tokens[0], tokens[1])
	}

	vehicle, err := r.quoted()
	if err != nil {
		return nil, err
	}

	profiles, err := r.names()
	if err != nil {
		return nil, err
	}

	roadClasses, err := r.names()
	if err != nil {
		return nil, err
	}

	tokens, err = r.tokens(3)
	if err != nil {
		return nil, err
	}
	counts := make([]int, 3)
	for i, tok := range tokens {
		counts[i], err = strconv.Atoi(tok)
		if err != nil || counts[i] < 0 {
			return nil, util.WrapErrorf(err, ErrCorruptRouterDb, "invalid count %q", tok)
		}
	}
	numVertices, numEdges, numPoints := counts[0], counts[1], counts[2]

	vertices := make([]Vertex, numVertices)
	for i := 0; i < numVertices; i++ {
		tokens, err := r.tokens(3)
		if err != nil {
			return nil, err
		}
		vertices[i], err = parseVertex(tokens, Index(i))
		if err != nil {
			return nil, err
		}
	}

	edges := make([]Edge, numEdges)
	for i := 0; i < numEdges; i++ {
		tokens, err := r.tokens(7)
		if err != nil {
			return nil, err
		}
		edges[i], err = parseEdge(tokens, numVertices, numPoints, len(roadClasses))
		if err != nil {
			return nil, err
		}
	}

	points := make([]geo.Coordinate, numPoints)
	for i := 0; i < numPoints; i++ {
		tokens, err := r.tokens(2)
		if err != nil {
			return nil, err
		}
		lat, errLat := strconv.ParseFloat(tokens[0], 64)
		lon, errLon := strconv.ParseFloat(tokens[1], 64)
		if err := errors.Join(errLat, errLon); err != nil {
			return nil, util.WrapErrorf(err, ErrCorruptRouterDb, "invalid point %d", i)
		}
		points[i] = geo.NewCoordinate(lat, lon)
	}

	db := NewRouterDb(vehicle, profiles, NewGraph(vertices, edges, points, roadClasses))

	numContracted, err := r.count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < numContracted; i++ {
		profile, cg, err := r.contracted(numVertices, numEdges)
		if err != nil {
			return nil, err
		}
		db.AddContracted(profile, cg)
	}

	line, err := r.line()
	if err != nil {
		return nil, err
	}
	if line != routerDbTrailer {
		return nil, util.WrapErrorf(nil, ErrCorruptRouterDb, "expected trailer, got %q", line)
	}

	return db, nil
}

func (r *routerDbReader) contracted(numVertices, numRoadEdges int) (string, *ContractedGraph, error) {
	line, err := r.line()
	if err != nil {
		return "", nil, err
	}
	// quoted profile names may contain spaces, the counts are the last two fields
	tokens := fields(line)
	if len(tokens) < 3 {
		return "", nil, util.WrapErrorf(nil, ErrCorruptRouterDb, "invalid contracted header %q", line)
	}
	profile, err := strconv.Unquote(strings.Join(tokens[:len(tokens)-2], " "))
	if err != nil {
		return "", nil, util.WrapErrorf(err, ErrCorruptRouterDb, "invalid contracted profile %q", line)
	}
	numRank, errRank := strconv.Atoi(tokens[len(tokens)-2])
	numEdges, errEdges := strconv.Atoi(tokens[len(tokens)-1])
	if err := errors.Join(errRank, errEdges); err != nil || numRank != numVertices || numEdges < 0 {
		return "", nil, util.WrapErrorf(err, ErrCorruptRouterDb, "invalid contracted header %q", line)
	}

	rank := make([]Index, numRank)
	tokens, err = r.tokens(numRank)
	if err != nil {
		return "", nil, err
	}
	for i, tok := range tokens {
		rank[i], err = ParseIndex(tok)
		if err != nil || int(rank[i]) >= numRank {
			return "", nil, util.WrapErrorf(err, ErrCorruptRouterDb, "invalid rank %q", tok)
		}
	}

	edges := make([]ShortcutEdge, numEdges)
	for i := 0; i < numEdges; i++ {
		tokens, err := r.tokens(6)
		if err != nil {
			return "", nil, err
		}
		edges[i], err = parseShortcutEdge(tokens, numVertices, numEdges, numRoadEdges)
		if err != nil {
			return "", nil, err
		}
	}

	return profile, NewContractedGraph(rank, edges), nil
}

func parseVertex(tokens []string, id Index) (Vertex, error) {
	lat, errLat := strconv.ParseFloat(tokens[0], 64)
	lon, errLon := strconv.ParseFloat(tokens[1], 64)
	osmId, errOsm := strconv.ParseInt(tokens[2], 10, 64)
	if err := errors.Join(errLat, errLon, errOsm); err != nil {
		return Vertex{}, util.WrapErrorf(err, ErrCorruptRouterDb, "invalid vertex %d", id)
	}
	return NewVertex(lat, lon, id, osmId), nil
}

func parseEdge(tokens []string, numVertices, numPoints, numRoadClasses int) (Edge, error) {
	tail, errTail := ParseIndex(tokens[0])
	head, errHead := ParseIndex(tokens[1])
	dist, errDist := strconv.ParseFloat(tokens[2], 64)
	travelTime, errTime := strconv.ParseFloat(tokens[3], 64)
	roadClass, errRc := strconv.ParseUint(tokens[4], 10, 8)
	start, errStart := ParseIndex(tokens[5])
	end, errEnd := ParseIndex(tokens[6])
	if err := errors.Join(errTail, errHead, errDist, errTime, errRc, errStart, errEnd); err != nil {
		return Edge{}, util.WrapErrorf(err, ErrCorruptRouterDb, "invalid edge %q", strings.Join(tokens, " "))
	}
	if int(tail) >= numVertices || int(head) >= numVertices || int(roadClass) >= numRoadClasses ||
		start > end || int(end) > numPoints {
		return Edge{}, util.WrapErrorf(nil, ErrCorruptRouterDb, "edge out of range %q", strings.Join(tokens, " "))
	}
	return NewEdge(tail, head, dist, travelTime, uint8(roadClass), start, end), nil
}

func parseShortcutEdge(tokens []string, numVertices, numEdges, numRoadEdges int) (ShortcutEdge, error) {
	from, errFrom := ParseIndex(tokens[0])
	to, errTo := ParseIndex(tokens[1])
	weight, errWeight := strconv.ParseFloat(tokens[2], 64)
	child1, errC1 := strconv.ParseInt(tokens[3], 10, 32)
	child2, errC2 := strconv.ParseInt(tokens[4], 10, 32)
	origEdge, errOrig := strconv.ParseInt(tokens[5], 10, 32)
	if err := errors.Join(errFrom, errTo, errWeight, errC1, errC2, errOrig); err != nil {
		return ShortcutEdge{}, util.WrapErrorf(err, ErrCorruptRouterDb, "invalid contracted edge %q", strings.Join(tokens, " "))
	}
	if int(from) >= numVertices || int(to) >= numVertices {
		return ShortcutEdge{}, util.WrapErrorf(nil, ErrCorruptRouterDb, "contracted edge out of range %q", strings.Join(tokens, " "))
	}
	if origEdge >= 0 {
		if int(origEdge) >= numRoadEdges {
			return ShortcutEdge{}, util.WrapErrorf(nil, ErrCorruptRouterDb, "contracted edge out of range %q", strings.Join(tokens, " "))
		}
		return NewOriginalEdge(from, to, weight, Index(origEdge)), nil
	}
	if child1 < 0 || child2 < 0 || int(child1) >= numEdges || int(child2) >= numEdges {
		return ShortcutEdge{}, util.WrapErrorf(nil, ErrCorruptRouterDb, "shortcut children out of range %q", strings.Join(tokens, " "))
	}
	return NewShortcutEdge(from, to, weight, Index(child1), Index(child2)), nil
}

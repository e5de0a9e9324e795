package datastructure

// RouterDb is the routable network of one vehicle: the road graph, the full
// names of the profiles the vehicle supports and a contracted index for each
// profile that has been prepared so far.
type RouterDb struct {
	vehicle    string
	profiles   []string
	graph      *Graph
	contracted map[string]*ContractedGraph
}

func NewRouterDb(vehicle string, profiles []string, graph *Graph) *RouterDb {
	return &RouterDb{
		vehicle:    vehicle,
		profiles:   profiles,
		graph:      graph,
		contracted: make(map[string]*ContractedGraph),
	}
}

func (db *RouterDb) GetVehicle() string {
	return db.vehicle
}

func (db *RouterDb) GetProfiles() []string {
	return db.profiles
}

func (db *RouterDb) GetGraph() *Graph {
	return db.graph
}

func (db *RouterDb) SupportProfile(profile string) bool {
	for _, p := range db.profiles {
		if p == profile {
			return true
		}
	}
	return false
}

func (db *RouterDb) HasContractedFor(profile string) bool {
	_, ok := db.contracted[profile]
	return ok
}

func (db *RouterDb) GetContracted(profile string) *ContractedGraph {
	return db.contracted[profile]
}

func (db *RouterDb) AddContracted(profile string, cg *ContractedGraph) {
	db.contracted[profile] = cg
}

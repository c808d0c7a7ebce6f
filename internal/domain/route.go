package domain

// Represents the answer to a successful shortest-path query.
// NodeIDs starts at the query origin and ends at the destination.
// Distance is the sum of flat Euclidean edge weights in degrees.
type Route struct {
	NodeIDs  []int64
	Distance float64
}

func (r *Route) Start() int64 { return r.NodeIDs[0] }

func (r *Route) End() int64 { return r.NodeIDs[len(r.NodeIDs)-1] }

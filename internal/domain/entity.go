package domain

// Kind of an entity delivered by an entity source.
type EntityKind int

const (
	EntityNode EntityKind = iota
	EntityDenseNode
	EntityWay
	EntityRelation
)

func (k EntityKind) String() string {
	switch k {
	case EntityNode:
		return "node"
	case EntityDenseNode:
		return "dense_node"
	case EntityWay:
		return "way"
	case EntityRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// Tag is a single OSM key/value pair.
type Tag struct {
	Key   string
	Value string
}

// Entity is one element of the filtered stream consumed by the graph builder.
// Lat and Lon are set for node kinds; Tags and Refs for ways.
type Entity struct {
	Kind EntityKind
	ID   int64
	Lat  float64
	Lon  float64
	Tags []Tag
	Refs []int64
}

// Return the value of the first tag with the given key.
func (e Entity) Tag(key string) (string, bool) {
	for _, t := range e.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

package state

// OpType names a replicated document operation.
type OpType string

const (
	OpSetLayer    OpType = "set_layer"
	OpDeleteLayer OpType = "delete_layer"
	OpSetOrder    OpType = "set_order"
)

// Op is a single replicated mutation, stamped with the origin site and its
// logical clock so every participant converges on the same state.
type Op struct {
	Type    OpType   `json:"type"`
	Layer   *Layer   `json:"layer,omitempty"`
	Target  string   `json:"target,omitempty"`
	Order   []string `json:"order,omitempty"`
	Lamport uint64   `json:"lamport"`
	Site    string   `json:"site"`
}

// stamp is the last-writer-wins version of a key: ties on the logical clock
// break on site ID so every site picks the same winner.
type stamp struct {
	Lamport uint64
	Site    string
}

func (s stamp) newer(o stamp) bool {
	if s.Lamport != o.Lamport {
		return s.Lamport > o.Lamport
	}
	return s.Site > o.Site
}

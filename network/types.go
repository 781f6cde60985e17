package network

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
)

// NodeKind represents the table a network node lives in. The string values
// double as the identifier prefixes in checkpoints, so "forks-3" is the
// fourth row of the fork table.
type NodeKind string

const (
	// KindFork is a street attachment point: a projected foot point or a
	// street intersection.
	KindFork NodeKind = "forks"

	// KindConsumer is a building connected to the network.
	KindConsumer NodeKind = "consumers"

	// KindProducer is a heat source connected to the network.
	KindProducer NodeKind = "producers"
)

// String returns the string representation of the NodeKind.
func (nk NodeKind) String() string {
	return string(nk)
}

// IsValid checks if the NodeKind is one of the defined constants.
func (nk NodeKind) IsValid() bool {
	switch nk {
	case KindFork, KindConsumer, KindProducer:
		return true
	default:
		return false
	}
}

// NodeID identifies a node by table and row number. The numeric part is
// dense after Normalize: 0..n-1 in insertion order within each kind.
type NodeID struct {
	Kind NodeKind
	Num  int
}

// String renders the identifier in checkpoint form, e.g. "forks-3".
func (id NodeID) String() string {
	return fmt.Sprintf("%s-%d", id.Kind, id.Num)
}

// IsZero reports whether the identifier is unset.
func (id NodeID) IsZero() bool {
	return id.Kind == ""
}

// MarshalText implements encoding.TextMarshaler so identifiers serialize
// in their checkpoint form.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseNodeID parses a checkpoint identifier like "consumers-0" back into
// its typed form. The kind must be one of the known tables and the row
// number a non-negative integer.
func ParseNodeID(s string) (NodeID, error) {
	idx := strings.LastIndex(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return NodeID{}, fmt.Errorf("%w: malformed node id %q", errors.ErrUnknownKind, s)
	}

	kind := NodeKind(s[:idx])
	if !kind.IsValid() {
		return NodeID{}, fmt.Errorf("%w: %q", errors.ErrUnknownKind, s[:idx])
	}

	num, err := strconv.Atoi(s[idx+1:])
	if err != nil || num < 0 {
		return NodeID{}, fmt.Errorf("%w: malformed node id %q", errors.ErrUnknownKind, s)
	}

	return NodeID{Kind: kind, Num: num}, nil
}

// Fork is a street attachment point. Forks created by projection carry the
// owning street and the relative position along it; forks created for
// producer connections additionally carry the producer's bus label.
type Fork struct {
	ID  NodeID
	Pos geometry.Point
	// Street is the label of the street the fork lies on; empty for pure
	// intersection forks that no projection produced.
	Street string
	// T is the relative position along the owning street, meaningful only
	// when Street is set.
	T float64
	// Bus is the energy-system bus label when a producer connects here.
	Bus string
}

// Consumer is a building row in the network.
type Consumer struct {
	ID    NodeID
	Label string
	Pos   geometry.Point
	// Demand is the peak-load placeholder summed during clustering.
	Demand float64
	// Street is the label of the street the consumer attached to.
	Street string
}

// Producer is a heat source row in the network.
type Producer struct {
	ID    NodeID
	Label string
	Pos   geometry.Point
}

// Pipe is a directed edge between two network nodes. Pipe IDs are dense
// 1..n in construction order after Normalize.
type Pipe struct {
	ID     int
	From   NodeID
	To     NodeID
	Length float64
	// Street is the label of the street the pipe runs along or attaches
	// to, kept for diagnostics and exports.
	Street string
}

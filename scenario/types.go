// Package scenario holds the input tables of a district-heating build:
// streets, buildings, and energy-system buses, together with the CSV and
// road-graph ingest that fills them.
package scenario

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
)

// ConnectionMode represents how a building asks to join the heat network.
// This enum replaces free-form spreadsheet cell inspection with type-safe
// values.
type ConnectionMode string

const (
	// ConnNone indicates the building does not take part in the network.
	ConnNone ConnectionMode = "none"

	// ConnPerpendicular indicates the building connects through a
	// perpendicular foot point on the nearest active street.
	ConnPerpendicular ConnectionMode = "perpendicular"

	// ConnStreetEnd indicates the building connects directly to a named
	// street endpoint instead of a projected foot point.
	ConnStreetEnd ConnectionMode = "street-end"
)

// String returns the string representation of the ConnectionMode.
func (cm ConnectionMode) String() string {
	return string(cm)
}

// IsValid checks if the ConnectionMode is one of the defined constants.
func (cm ConnectionMode) IsValid() bool {
	switch cm {
	case ConnNone, ConnPerpendicular, ConnStreetEnd:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler to ensure ConnectionMode serializes
// as a string.
func (cm ConnectionMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(cm))
}

// UnmarshalJSON implements json.Unmarshaler to deserialize ConnectionMode
// from string.
func (cm *ConnectionMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*cm = ConnectionMode(s)
	return nil
}

// Connection is a building's parsed network participation request.
type Connection struct {
	Mode ConnectionMode `json:"mode"`
	// Street names the target street for street-end connections.
	Street string `json:"street,omitempty"`
	// End selects the street endpoint for street-end connections: 1 for
	// the first intersection, 2 for the second.
	End int `json:"end,omitempty"`
}

// Participates reports whether the connection joins the building to the
// network at all.
func (c Connection) Participates() bool {
	return c.Mode == ConnPerpendicular || c.Mode == ConnStreetEnd
}

// String renders the connection for logs.
func (c Connection) String() string {
	if c.Mode == ConnStreetEnd {
		return fmt.Sprintf("%s(%s-%d)", c.Mode, c.Street, c.End)
	}
	return c.Mode.String()
}

// ParseConnection interprets a "district heating conn." spreadsheet cell.
// Recognized values are 0 (or empty) for no participation, 1 for a
// perpendicular connection, and "<street>-1" / "<street>-2" for an
// attachment to a named street endpoint. Anything else is an input error.
func ParseConnection(cell string) (Connection, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Connection{Mode: ConnNone}, nil
	}

	// Spreadsheet exports render the flag column as a float.
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		switch v {
		case 0:
			return Connection{Mode: ConnNone}, nil
		case 1:
			return Connection{Mode: ConnPerpendicular}, nil
		default:
			return Connection{}, fmt.Errorf("%w: %q", errors.ErrUnknownConnection, cell)
		}
	}

	// "<street>-<end>" with end 1 or 2; street labels may contain hyphens,
	// so only the trailing segment is the endpoint selector.
	if idx := strings.LastIndex(cell, "-"); idx > 0 {
		street := cell[:idx]
		switch cell[idx+1:] {
		case "1":
			return Connection{Mode: ConnStreetEnd, Street: street, End: 1}, nil
		case "2":
			return Connection{Mode: ConnStreetEnd, Street: street, End: 2}, nil
		}
	}

	return Connection{}, fmt.Errorf("%w: %q", errors.ErrUnknownConnection, cell)
}

// Street is one straight street section between two intersections.
type Street struct {
	Label  string         `json:"label"`
	From   geometry.Point `json:"from"`
	To     geometry.Point `json:"to"`
	Active bool           `json:"active"`
}

// Segment returns the street's axis for projection.
func (s Street) Segment() geometry.Segment {
	return geometry.Segment{Label: s.Label, From: s.From, To: s.To}
}

// Endpoint returns the street endpoint selected by a street-end
// connection: 1 for From, 2 for To.
func (s Street) Endpoint(end int) (geometry.Point, error) {
	switch end {
	case 1:
		return s.From, nil
	case 2:
		return s.To, nil
	default:
		return geometry.Point{}, fmt.Errorf("%w: endpoint %d of street %q",
			errors.ErrUnknownConnection, end, s.Label)
	}
}

// Building is a heat sink candidate from the scenario sheet.
type Building struct {
	Label  string         `json:"label"`
	Pos    geometry.Point `json:"pos"`
	Active bool           `json:"active"`
	// Demand is the peak heat load placeholder carried into the consumer
	// table. The solver overwrites it later; clustering sums it.
	Demand     float64    `json:"demand"`
	Connection Connection `json:"connection"`
}

// Bus is an energy-system bus from the scenario sheet. Buses flagged as
// part of the dh-system act as heat producers.
type Bus struct {
	Label    string         `json:"label"`
	Pos      geometry.Point `json:"pos"`
	Active   bool           `json:"active"`
	DHSystem bool           `json:"dh_system"`
}

// Scenario bundles the three input tables of one build.
type Scenario struct {
	Streets   []Street   `json:"streets"`
	Buildings []Building `json:"buildings"`
	Buses     []Bus      `json:"buses"`
}

// ActiveStreets returns the streets taking part in the build, in table
// order. Iteration order matters: projection ties resolve to the earlier
// street.
func (s *Scenario) ActiveStreets() []Street {
	var active []Street
	for _, st := range s.Streets {
		if st.Active {
			active = append(active, st)
		}
	}
	return active
}

// ActiveSegments returns the projection segments of the active streets, in
// table order.
func (s *Scenario) ActiveSegments() []geometry.Segment {
	var segs []geometry.Segment
	for _, st := range s.Streets {
		if st.Active {
			segs = append(segs, st.Segment())
		}
	}
	return segs
}

// Street looks up a street by label.
func (s *Scenario) Street(label string) (Street, bool) {
	for _, st := range s.Streets {
		if st.Label == label {
			return st, true
		}
	}
	return Street{}, false
}

// Producers returns the active buses flagged as dh-system, in table order.
func (s *Scenario) Producers() []Bus {
	var producers []Bus
	for _, b := range s.Buses {
		if b.Active && b.DHSystem {
			producers = append(producers, b)
		}
	}
	return producers
}

// Validate checks the structural health of the tables: labels must be
// non-empty and unique within their table, and every coordinate must be a
// finite number. Dangling street references inside connections are not
// checked here; the assembler reports those against the requesting entity.
func (s *Scenario) Validate() error {
	if err := validateLabels("street", streetLabels(s.Streets)); err != nil {
		return err
	}
	if err := validateLabels("building", buildingLabels(s.Buildings)); err != nil {
		return err
	}
	if err := validateLabels("bus", busLabels(s.Buses)); err != nil {
		return err
	}

	for _, st := range s.Streets {
		if !st.From.IsFinite() || !st.To.IsFinite() {
			return errors.WrapInvalid(
				fmt.Errorf("%w: street %q", errors.ErrBadCoordinate, st.Label),
				"Scenario", "Validate", "check street coordinates")
		}
	}
	for _, b := range s.Buildings {
		if !b.Pos.IsFinite() {
			return errors.WrapInvalid(
				fmt.Errorf("%w: building %q", errors.ErrBadCoordinate, b.Label),
				"Scenario", "Validate", "check building coordinates")
		}
	}
	for _, b := range s.Buses {
		if !b.Pos.IsFinite() {
			return errors.WrapInvalid(
				fmt.Errorf("%w: bus %q", errors.ErrBadCoordinate, b.Label),
				"Scenario", "Validate", "check bus coordinates")
		}
	}
	return nil
}

func validateLabels(kind string, labels []string) error {
	seen := make(map[string]bool, len(labels))
	for i, label := range labels {
		if label == "" {
			return errors.WrapInvalid(
				fmt.Errorf("%s row %d has an empty label", kind, i+1),
				"Scenario", "Validate", "check labels")
		}
		if seen[label] {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %s %q", errors.ErrDuplicateLabel, kind, label),
				"Scenario", "Validate", "check labels")
		}
		seen[label] = true
	}
	return nil
}

func streetLabels(streets []Street) []string {
	labels := make([]string, len(streets))
	for i, s := range streets {
		labels[i] = s.Label
	}
	return labels
}

func buildingLabels(buildings []Building) []string {
	labels := make([]string, len(buildings))
	for i, b := range buildings {
		labels[i] = b.Label
	}
	return labels
}

func busLabels(buses []Bus) []string {
	labels := make([]string, len(buses))
	for i, b := range buses {
		labels[i] = b.Label
	}
	return labels
}

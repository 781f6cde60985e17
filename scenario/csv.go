package scenario

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
)

// Scenario table file names inside a scenario directory.
const (
	StreetsFile   = "streets.csv"
	BuildingsFile = "buildings.csv"
	BusesFile     = "buses.csv"
)

// Column headers follow the spreadsheet vocabulary of the upstream model
// definitions, so exported sheets load without renaming.
const (
	colLabel      = "label"
	colActive     = "active"
	colLat        = "lat"
	colLon        = "lon"
	colLat1st     = "lat. 1st intersection"
	colLon1st     = "lon. 1st intersection"
	colLat2nd     = "lat. 2nd intersection"
	colLon2nd     = "lon. 2nd intersection"
	colConnection = "district heating conn."
	colDemand     = "demand"
)

// LoadCSV reads the three scenario tables from dir. Missing files and
// malformed cells are input errors; no cross-table reference checking
// happens here.
func LoadCSV(dir string) (*Scenario, error) {
	streets, err := loadStreets(filepath.Join(dir, StreetsFile))
	if err != nil {
		return nil, err
	}
	buildings, err := loadBuildings(filepath.Join(dir, BuildingsFile))
	if err != nil {
		return nil, err
	}
	buses, err := loadBuses(filepath.Join(dir, BusesFile))
	if err != nil {
		return nil, err
	}

	scen := &Scenario{Streets: streets, Buildings: buildings, Buses: buses}
	if err := scen.Validate(); err != nil {
		return nil, err
	}
	return scen, nil
}

func loadStreets(path string) ([]Street, error) {
	rows, err := readTable(path, colLabel, colActive, colLat1st, colLon1st, colLat2nd, colLon2nd)
	if err != nil {
		return nil, err
	}

	streets := make([]Street, 0, len(rows))
	for _, row := range rows {
		active, err := parseActive(row.get(colActive))
		if err != nil {
			return nil, rowError(path, row, err)
		}
		from, err := parsePoint(row.get(colLat1st), row.get(colLon1st))
		if err != nil {
			return nil, rowError(path, row, err)
		}
		to, err := parsePoint(row.get(colLat2nd), row.get(colLon2nd))
		if err != nil {
			return nil, rowError(path, row, err)
		}
		streets = append(streets, Street{
			Label:  row.get(colLabel),
			From:   from,
			To:     to,
			Active: active,
		})
	}
	return streets, nil
}

func loadBuildings(path string) ([]Building, error) {
	rows, err := readTable(path, colLabel, colActive, colLat, colLon, colConnection)
	if err != nil {
		return nil, err
	}

	buildings := make([]Building, 0, len(rows))
	for _, row := range rows {
		active, err := parseActive(row.get(colActive))
		if err != nil {
			return nil, rowError(path, row, err)
		}
		pos, err := parsePoint(row.get(colLat), row.get(colLon))
		if err != nil {
			return nil, rowError(path, row, err)
		}
		conn, err := ParseConnection(row.get(colConnection))
		if err != nil {
			return nil, rowError(path, row, err)
		}

		// The demand column is optional; the placeholder load is 1 until
		// the solver overwrites it.
		demand := 1.0
		if cell := row.get(colDemand); cell != "" {
			demand, err = strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, rowError(path, row, fmt.Errorf("%w: demand %q", errors.ErrBadCoordinate, cell))
			}
		}

		buildings = append(buildings, Building{
			Label:      row.get(colLabel),
			Pos:        pos,
			Active:     active,
			Demand:     demand,
			Connection: conn,
		})
	}
	return buildings, nil
}

func loadBuses(path string) ([]Bus, error) {
	rows, err := readTable(path, colLabel, colActive, colLat, colLon, colConnection)
	if err != nil {
		return nil, err
	}

	buses := make([]Bus, 0, len(rows))
	for _, row := range rows {
		active, err := parseActive(row.get(colActive))
		if err != nil {
			return nil, rowError(path, row, err)
		}
		pos, err := parsePoint(row.get(colLat), row.get(colLon))
		if err != nil {
			return nil, rowError(path, row, err)
		}
		dhSystem, err := parseBusConnection(row.get(colConnection))
		if err != nil {
			return nil, rowError(path, row, err)
		}

		buses = append(buses, Bus{
			Label:    row.get(colLabel),
			Pos:      pos,
			Active:   active,
			DHSystem: dhSystem,
		})
	}
	return buses, nil
}

// table is one parsed CSV file: a header index plus its data rows.
type tableRow struct {
	index map[string]int
	cells []string
	line  int
}

func (r tableRow) get(col string) string {
	idx, ok := r.index[col]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

func readTable(path string, required ...string) ([]tableRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Scenario", "readTable", "open table")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("read header of %s: %w", filepath.Base(path), err),
			"Scenario", "readTable", "read header")
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %q in %s", errors.ErrMissingColumn, col, filepath.Base(path)),
				"Scenario", "readTable", "check header")
		}
	}

	var rows []tableRow
	for line := 2; ; line++ {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("read %s line %d: %w", filepath.Base(path), line, err),
				"Scenario", "readTable", "read row")
		}
		if isEmptyRow(cells) {
			continue
		}
		rows = append(rows, tableRow{index: index, cells: cells, line: line})
	}
	return rows, nil
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowError(path string, row tableRow, err error) error {
	return errors.WrapInvalid(
		fmt.Errorf("%s line %d: %w", filepath.Base(path), row.line, err),
		"Scenario", "readTable", "parse row")
}

func parsePoint(latCell, lonCell string) (geometry.Point, error) {
	lat, err := strconv.ParseFloat(latCell, 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("%w: lat %q", errors.ErrBadCoordinate, latCell)
	}
	lon, err := strconv.ParseFloat(lonCell, 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("%w: lon %q", errors.ErrBadCoordinate, lonCell)
	}
	p := geometry.Point{Lat: lat, Lon: lon}
	if !p.IsFinite() {
		return geometry.Point{}, fmt.Errorf("%w: (%v, %v)", errors.ErrBadCoordinate, lat, lon)
	}
	return p, nil
}

func parseActive(cell string) (bool, error) {
	switch strings.ToLower(cell) {
	case "", "0", "no", "false":
		return false, nil
	case "1", "yes", "true":
		return true, nil
	default:
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return v != 0, nil
		}
		return false, fmt.Errorf("unrecognized active flag %q", cell)
	}
}

// parseBusConnection interprets the "district heating conn." cell of a bus
// row: "dh-system" marks the bus as a heat producer, 0 or empty leaves it
// out of the network.
func parseBusConnection(cell string) (bool, error) {
	switch strings.ToLower(cell) {
	case "dh-system":
		return true, nil
	case "", "0", "0.0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", errors.ErrUnknownConnection, cell)
	}
}

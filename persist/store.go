// Package persist checkpoints a built network to disk and loads it back.
// Each graph table becomes one CSV file next to a checkpoint manifest, so
// an expensive build can be reused across runs and the files remain
// readable by the downstream optimization tooling.
package persist

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
	"github.com/L4rsG/SESMG/metric"
	"github.com/L4rsG/SESMG/network"
)

// Checkpoint table file names.
const (
	ForksFile      = "forks.csv"
	ConsumersFile  = "consumers.csv"
	ProducersFile  = "producers.csv"
	PipesFile      = "pipes.csv"
	CheckpointFile = "checkpoint.json"
)

// Checkpoint is the manifest written next to the table files. Row counts
// guard against partially written or hand-edited checkpoints.
type Checkpoint struct {
	RunID     string         `json:"run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Rows      map[string]int `json:"rows"`
}

// Store reads and writes network checkpoints under one directory.
type Store struct {
	dir     string
	logger  *slog.Logger
	metrics *metric.Metrics
}

// NewStore creates a Store rooted at dir. Metrics may be nil when no
// registry is wired.
func NewStore(dir string, logger *slog.Logger, metrics *metric.Metrics) (*Store, error) {
	if dir == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Store", "NewStore", "directory is required")
	}
	return &Store{dir: dir, logger: logger, metrics: metrics}, nil
}

// Dir returns the checkpoint directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes all four graph tables concurrently, then the checkpoint
// manifest with a fresh run ID. The graph should be normalized first so
// the files carry dense identifiers.
func (s *Store) Save(ctx context.Context, g *network.Graph) (*Checkpoint, error) {
	if g == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Store", "Save", "graph is nil")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, errors.WrapInvalid(err, "Store", "Save", "create checkpoint directory")
	}

	forks := g.Forks()
	consumers := g.Consumers()
	producers := g.Producers()
	pipes := g.Pipes()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.writeForks(ctx, forks) })
	eg.Go(func() error { return s.writeConsumers(ctx, consumers) })
	eg.Go(func() error { return s.writeProducers(ctx, producers) })
	eg.Go(func() error { return s.writePipes(ctx, pipes) })
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	cp := &Checkpoint{
		RunID:     uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Rows: map[string]int{
			ForksFile:     len(forks),
			ConsumersFile: len(consumers),
			ProducersFile: len(producers),
			PipesFile:     len(pipes),
		},
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return nil, errors.WrapInvalid(err, "Store", "Save", "marshal checkpoint manifest")
	}
	if err := os.WriteFile(filepath.Join(s.dir, CheckpointFile), data, 0644); err != nil {
		return nil, errors.WrapInvalid(err, "Store", "Save", "write checkpoint manifest")
	}

	if s.metrics != nil {
		for table, rows := range cp.Rows {
			s.metrics.RecordCheckpointTable(table, rows)
		}
		s.metrics.RecordCheckpointBytes(s.bytesOnDisk())
	}

	s.logger.Info("checkpoint saved",
		"dir", s.dir,
		"run_id", cp.RunID,
		"forks", len(forks),
		"consumers", len(consumers),
		"producers", len(producers),
		"pipes", len(pipes))

	return cp, nil
}

// Load reads a checkpoint back into a fresh graph. The loaded tables are
// untrusted input: callers must run Normalize and Check before using the
// graph. Row counts are validated against the manifest.
func (s *Store) Load(ctx context.Context) (*network.Graph, *Checkpoint, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, CheckpointFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.WrapReference(
				fmt.Errorf("%w: no manifest in %s", errors.ErrCheckpointNotFound, s.dir),
				"Store", "Load", "read checkpoint manifest")
		}
		return nil, nil, errors.WrapInvalid(err, "Store", "Load", "read checkpoint manifest")
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, nil, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrCheckpointCorrupt, err),
			"Store", "Load", "parse checkpoint manifest")
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "Store", "Load", "load tables")
	}

	forks, err := s.readForks()
	if err != nil {
		return nil, nil, err
	}
	consumers, err := s.readConsumers()
	if err != nil {
		return nil, nil, err
	}
	producers, err := s.readProducers()
	if err != nil {
		return nil, nil, err
	}
	pipes, err := s.readPipes()
	if err != nil {
		return nil, nil, err
	}

	counts := map[string]int{
		ForksFile:     len(forks),
		ConsumersFile: len(consumers),
		ProducersFile: len(producers),
		PipesFile:     len(pipes),
	}
	for table, want := range cp.Rows {
		if counts[table] != want {
			return nil, nil, errors.WrapInvalid(
				fmt.Errorf("%w: %s holds %d rows, manifest expects %d",
					errors.ErrCheckpointCorrupt, table, counts[table], want),
				"Store", "Load", "validate row counts")
		}
	}

	g := network.NewGraph()
	g.ReplaceForks(forks)
	g.ReplaceConsumers(consumers)
	g.ReplaceProducers(producers)
	g.ReplacePipes(pipes)

	s.logger.Info("checkpoint loaded",
		"dir", s.dir,
		"run_id", cp.RunID,
		"created_at", cp.CreatedAt,
		"forks", len(forks),
		"consumers", len(consumers),
		"producers", len(producers),
		"pipes", len(pipes))

	return g, &cp, nil
}

func (s *Store) writeForks(ctx context.Context, forks []network.Fork) error {
	rows := make([][]string, 0, len(forks))
	for _, f := range forks {
		rows = append(rows, []string{
			f.ID.String(),
			formatFloat(f.Pos.Lat),
			formatFloat(f.Pos.Lon),
			f.Street,
			formatFloat(f.T),
			f.Bus,
		})
	}
	return s.writeCSV(ctx, ForksFile, []string{"id", "lat", "lon", "street", "t", "bus"}, rows)
}

func (s *Store) writeConsumers(ctx context.Context, consumers []network.Consumer) error {
	rows := make([][]string, 0, len(consumers))
	for _, c := range consumers {
		rows = append(rows, []string{
			c.ID.String(),
			c.Label,
			formatFloat(c.Pos.Lat),
			formatFloat(c.Pos.Lon),
			formatFloat(c.Demand),
			c.Street,
		})
	}
	return s.writeCSV(ctx, ConsumersFile, []string{"id", "label", "lat", "lon", "demand", "street"}, rows)
}

func (s *Store) writeProducers(ctx context.Context, producers []network.Producer) error {
	rows := make([][]string, 0, len(producers))
	for _, p := range producers {
		rows = append(rows, []string{
			p.ID.String(),
			p.Label,
			formatFloat(p.Pos.Lat),
			formatFloat(p.Pos.Lon),
		})
	}
	return s.writeCSV(ctx, ProducersFile, []string{"id", "label", "lat", "lon"}, rows)
}

func (s *Store) writePipes(ctx context.Context, pipes []network.Pipe) error {
	rows := make([][]string, 0, len(pipes))
	for _, p := range pipes {
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			p.From.String(),
			p.To.String(),
			formatFloat(p.Length),
			p.Street,
		})
	}
	return s.writeCSV(ctx, PipesFile, []string{"id", "from", "to", "length", "street"}, rows)
}

func (s *Store) writeCSV(ctx context.Context, name string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "Store", "writeCSV", fmt.Sprintf("write %s", name))
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.WrapInvalid(err, "Store", "writeCSV", fmt.Sprintf("open %s", name))
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return errors.WrapInvalid(err, "Store", "writeCSV", fmt.Sprintf("write %s header", name))
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return errors.WrapInvalid(err, "Store", "writeCSV", fmt.Sprintf("write %s row", name))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.WrapInvalid(err, "Store", "writeCSV", fmt.Sprintf("flush %s", name))
	}
	if err := f.Close(); err != nil {
		return errors.WrapInvalid(err, "Store", "writeCSV", fmt.Sprintf("close %s", name))
	}
	return nil
}

func (s *Store) readForks() ([]network.Fork, error) {
	rows, err := s.readCSV(ForksFile, 6)
	if err != nil {
		return nil, err
	}
	forks := make([]network.Fork, 0, len(rows))
	for _, row := range rows {
		id, err := network.ParseNodeID(row[0])
		if err != nil {
			return nil, s.corrupt(ForksFile, err)
		}
		pos, err := parsePoint(row[1], row[2])
		if err != nil {
			return nil, s.corrupt(ForksFile, err)
		}
		t, err := parseFloat(row[4])
		if err != nil {
			return nil, s.corrupt(ForksFile, err)
		}
		forks = append(forks, network.Fork{ID: id, Pos: pos, Street: row[3], T: t, Bus: row[5]})
	}
	return forks, nil
}

func (s *Store) readConsumers() ([]network.Consumer, error) {
	rows, err := s.readCSV(ConsumersFile, 6)
	if err != nil {
		return nil, err
	}
	consumers := make([]network.Consumer, 0, len(rows))
	for _, row := range rows {
		id, err := network.ParseNodeID(row[0])
		if err != nil {
			return nil, s.corrupt(ConsumersFile, err)
		}
		pos, err := parsePoint(row[2], row[3])
		if err != nil {
			return nil, s.corrupt(ConsumersFile, err)
		}
		demand, err := parseFloat(row[4])
		if err != nil {
			return nil, s.corrupt(ConsumersFile, err)
		}
		consumers = append(consumers, network.Consumer{
			ID: id, Label: row[1], Pos: pos, Demand: demand, Street: row[5],
		})
	}
	return consumers, nil
}

func (s *Store) readProducers() ([]network.Producer, error) {
	rows, err := s.readCSV(ProducersFile, 4)
	if err != nil {
		return nil, err
	}
	producers := make([]network.Producer, 0, len(rows))
	for _, row := range rows {
		id, err := network.ParseNodeID(row[0])
		if err != nil {
			return nil, s.corrupt(ProducersFile, err)
		}
		pos, err := parsePoint(row[2], row[3])
		if err != nil {
			return nil, s.corrupt(ProducersFile, err)
		}
		producers = append(producers, network.Producer{ID: id, Label: row[1], Pos: pos})
	}
	return producers, nil
}

func (s *Store) readPipes() ([]network.Pipe, error) {
	rows, err := s.readCSV(PipesFile, 5)
	if err != nil {
		return nil, err
	}
	pipes := make([]network.Pipe, 0, len(rows))
	for _, row := range rows {
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, s.corrupt(PipesFile, err)
		}
		from, err := network.ParseNodeID(row[1])
		if err != nil {
			return nil, s.corrupt(PipesFile, err)
		}
		to, err := network.ParseNodeID(row[2])
		if err != nil {
			return nil, s.corrupt(PipesFile, err)
		}
		length, err := parseFloat(row[3])
		if err != nil {
			return nil, s.corrupt(PipesFile, err)
		}
		pipes = append(pipes, network.Pipe{ID: id, From: from, To: to, Length: length, Street: row[4]})
	}
	return pipes, nil
}

// readCSV reads one table file, validates the column count, and returns
// the data rows without the header.
func (s *Store) readCSV(name string, columns int) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapReference(
				fmt.Errorf("%w: missing table %s", errors.ErrCheckpointNotFound, name),
				"Store", "readCSV", "open table")
		}
		return nil, errors.WrapInvalid(err, "Store", "readCSV", fmt.Sprintf("open %s", name))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = columns
	records, err := r.ReadAll()
	if err != nil {
		return nil, s.corrupt(name, err)
	}
	if len(records) == 0 {
		return nil, s.corrupt(name, fmt.Errorf("missing header row"))
	}
	return records[1:], nil
}

func (s *Store) corrupt(name string, err error) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s: %v", errors.ErrCheckpointCorrupt, name, err),
		"Store", "Load", "parse table")
}

func (s *Store) bytesOnDisk() int64 {
	var total int64
	for _, name := range []string{ForksFile, ConsumersFile, ProducersFile, PipesFile, CheckpointFile} {
		if info, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
			total += info.Size()
		}
	}
	return total
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parsePoint(lat, lon string) (geometry.Point, error) {
	la, err := parseFloat(lat)
	if err != nil {
		return geometry.Point{}, err
	}
	lo, err := parseFloat(lon)
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{Lat: la, Lon: lo}, nil
}

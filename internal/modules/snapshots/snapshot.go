// Package snapshots stores finished runs as msgpack flat files so reports can
// be re-rendered without re-running the simulation.
package snapshots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/internal/modules/reporting"
	"github.com/aristath/disposition/internal/modules/simulation"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is bumped whenever the encoded layout changes
const FormatVersion = 1

// Extension is the snapshot file suffix
const Extension = ".msgpack"

// Snapshot is a finished run with everything needed to render its reports
type Snapshot struct {
	Version    int                   `msgpack:"version"`
	RunID      string                `msgpack:"run_id"`
	Seed       uint64                `msgpack:"seed"`
	CreatedAt  time.Time             `msgpack:"created_at"`
	Experiment simulation.Experiment `msgpack:"experiment"`
	Report     reporting.Report      `msgpack:"report"`
	Summary    reporting.Summary     `msgpack:"summary"`
}

// New captures a finished run
func New(res *simulation.Result, seed uint64) Snapshot {
	report := reporting.FromResult(res)
	return Snapshot{
		Version:    FormatVersion,
		RunID:      res.RunID,
		Seed:       seed,
		CreatedAt:  res.FinishedAt,
		Experiment: res.Experiment,
		Report:     report,
		Summary:    reporting.Summarize(report),
	}
}

// Store reads and writes snapshots in one directory
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates a store rooted at dir
func NewStore(dir string, log zerolog.Logger) *Store {
	return &Store{
		dir: dir,
		log: log.With().Str("component", "snapshots").Logger(),
	}
}

// Save writes the snapshot as <experimentID>_<runID>.msgpack and returns the path
func (s *Store) Save(snap Snapshot) (string, error) {
	if snap.RunID == "" {
		return "", fmt.Errorf("%w: snapshot has no run id", domain.ErrConfiguration)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot %s: %w", snap.RunID, err)
	}

	path := filepath.Join(s.dir, snap.Experiment.ID+"_"+snap.RunID+Extension)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &domain.FixtureError{Op: "write snapshot", Path: path, Err: err}
	}

	s.log.Debug().
		Str("run_id", snap.RunID).
		Str("path", path).
		Int("bytes", len(data)).
		Msg("Snapshot saved")
	return path, nil
}

// Load reads one snapshot file
func (s *Store) Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, &domain.FixtureError{Op: "read snapshot", Path: path, Err: err}
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, &domain.FixtureError{Op: "decode snapshot", Path: path, Err: err}
	}
	if snap.Version != FormatVersion {
		return Snapshot{}, &domain.FixtureError{
			Op:   "decode snapshot",
			Path: path,
			Err:  fmt.Errorf("unsupported version %d (expected %d)", snap.Version, FormatVersion),
		}
	}
	return snap, nil
}

// List returns the snapshot files in the store, sorted by name. A missing
// directory is an empty store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

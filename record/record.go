// Package record writes optimization traces and batch summaries to CSV and
// JSON.
package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/batch"
	"github.com/adameus03/pso-de/swarm"
	"github.com/gocarina/gocsv"
)

// PositionRow is one coordinate of one particle after one iteration.
type PositionRow struct {
	Iteration int     `csv:"iteration"`
	Particle  int     `csv:"particle"`
	Dim       int     `csv:"dim"`
	X         float64 `csv:"x"`
}

// StatsRow summarizes a batch of runs of one function.
type StatsRow struct {
	Particles  int     `csv:"particles"`
	Iterations int     `csv:"iterations"`
	Social     float64 `csv:"social_coeff"`
	Cognitive  float64 `csv:"cog_coeff"`
	Inertia    float64 `csv:"inertia_coeff"`
	Fn         string  `csv:"fn_name"`
	Max        float64 `csv:"max_solution"`
	Avg        float64 `csv:"avg_solution"`
	Min        float64 `csv:"min_solution"`
}

// NewStatsRow builds the summary row for a batch run with the given setup.
func NewStatsRow(fn string, particles, iterations int, c swarm.Coefs, s *batch.Stats) StatsRow {
	return StatsRow{
		Particles:  particles,
		Iterations: iterations,
		Social:     c.Social,
		Cognitive:  c.Cognitive,
		Inertia:    c.Inertia,
		Fn:         fn,
		Max:        s.Max,
		Avg:        s.Mean(),
		Min:        s.Min,
	}
}

// PositionRows flattens snapshots into rows.  Iterations are numbered from
// one.
func PositionRows(snaps [][]psode.Vector) []*PositionRow {
	var rows []*PositionRow
	for i, snap := range snaps {
		for p, pos := range snap {
			for d := 0; d < pos.Len(); d++ {
				rows = append(rows, &PositionRow{Iteration: i + 1, Particle: p, Dim: d, X: pos.At(d)})
			}
		}
	}
	return rows
}

func WriteSnapshotsCSV(w io.Writer, snaps [][]psode.Vector) error {
	if err := gocsv.Marshal(PositionRows(snaps), w); err != nil {
		return fmt.Errorf("writing snapshots: %w", err)
	}
	return nil
}

// WriteSnapshotsJSON writes snaps as an array (iterations) of arrays
// (particles) of coordinate arrays.
func WriteSnapshotsJSON(w io.Writer, snaps [][]psode.Vector) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(snaps); err != nil {
		return fmt.Errorf("writing snapshots: %w", err)
	}
	return nil
}

// WriteStatsCSV writes rows, with a header line when header is set.
func WriteStatsCSV(w io.Writer, rows []*StatsRow, header bool) error {
	var err error
	if header {
		err = gocsv.Marshal(rows, w)
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, w)
	}
	if err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// AppendStatsCSV appends rows to the file at path, creating it with a
// header line if it does not exist or is empty.
func AppendStatsCSV(path string, rows []*StatsRow) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening stats file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("opening stats file: %w", err)
	}
	if err := WriteStatsCSV(f, rows, info.Size() == 0); err != nil {
		return err
	}
	return f.Close()
}

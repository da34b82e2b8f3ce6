package record

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/batch"
	"github.com/adameus03/pso-de/swarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshots() [][]psode.Vector {
	return [][]psode.Vector{
		{psode.Vec(1, 2), psode.Vec(3, 4)},
		{psode.Vec(0.5, 2), psode.Vec(3, -4)},
	}
}

func TestWriteSnapshotsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshotsCSV(&buf, snapshots()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1+2*2*2)
	assert.Equal(t, "iteration,particle,dim,x", lines[0])
	assert.Equal(t, "1,0,0,1", lines[1])
	assert.Equal(t, "2,1,1,-4", lines[8])
}

func TestWriteSnapshotsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshotsJSON(&buf, snapshots()))
	assert.JSONEq(t, `[[[1,2],[3,4]],[[0.5,2],[3,-4]]]`, buf.String())
}

func TestAppendStatsCSV(t *testing.T) {
	s := batch.NewStats()
	for _, v := range []float64{1, 2, 6} {
		s.AddValue(v)
	}
	row := NewStatsRow("sphere_2D", 30, 100, swarm.Coefs{Social: 1, Cognitive: 0.5, Inertia: 0.25}, s)
	assert.Equal(t, 3.0, row.Avg)

	path := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, AppendStatsCSV(path, []*StatsRow{&row}))
	require.NoError(t, AppendStatsCSV(path, []*StatsRow{&row}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header written more than once:\n%s", data)
	assert.Equal(t, "particles,iterations,social_coeff,cog_coeff,inertia_coeff,fn_name,max_solution,avg_solution,min_solution", lines[0])
	assert.Equal(t, "30,100,1,0.5,0.25,sphere_2D,6,3,1", lines[1])
	assert.Equal(t, lines[1], lines[2])
}

package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshdecomp/field"
	"github.com/notargets/meshdecomp/mesh"
)

func run(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCase(t *testing.T, extra string) (dir, input string) {
	dir = t.TempDir()
	m := mesh.NewBoxMesh(4, 1, 1)
	file, err := os.Create(filepath.Join(dir, "box_0"))
	require.NoError(t, err)
	require.NoError(t, m.Write(file))
	require.NoError(t, file.Close())

	p, err := field.New("p", field.Scalar, m.NumReal)
	require.NoError(t, err)
	p.Values = []float64{1, 2, 3, 4}
	require.NoError(t, p.WriteFile(filepath.Join(dir, "p0"), nil))

	input = filepath.Join(dir, "input.yaml")
	yaml := `
Title: "cmd test"
MeshName: box
WorkingDir: ` + dir + `
Step: 0
Fields: [p]
Decompose:
  Type: CELLID
  Total: 2
` + extra
	require.NoError(t, os.WriteFile(input, []byte(yaml), 0o644))
	return
}

func TestDecomposeMergeInspect(t *testing.T) {
	dir, input := writeCase(t, "")

	out, err := run("decompose", "-I", input)
	require.NoError(t, err)
	assert.Contains(t, out, "2 partitions by CELLID, 1 ghost facets")
	assert.Contains(t, out, "partition 1: 2 cells")

	out, err = run("inspect", "-I", input)
	require.NoError(t, err)
	assert.Contains(t, out, "interMesh_0_1: 1 facets")
	assert.Contains(t, out, "interMesh_1_0: 1 facets")

	require.NoError(t, os.Remove(filepath.Join(dir, "p0")))
	out, err = run("merge", "-I", input)
	require.NoError(t, err)
	assert.Contains(t, out, "merged p from partitions [0 1]")
	f, err := field.ReadFile(filepath.Join(dir, "p0"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, f.Values)
}

func TestBadInput(t *testing.T) {
	_, input := writeCase(t, "  Block: -3\n")
	_, err := run("decompose", "-I", input)
	assert.Error(t, err)

	_, err = run("decompose", "-I", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	_, input := writeCase(t, "")
	initConfig()
	t.Setenv("MESHDECOMP_INPUTCONDITIONSFILE", input)
	t.Setenv("MESHDECOMP_TOTAL", "3")
	t.Setenv("MESHDECOMP_INDEX_STORE", "pebble")

	dp, err := loadParameters()
	require.NoError(t, err)
	assert.Equal(t, "box", dp.MeshName)
	assert.Equal(t, 3, dp.Decompose.Total)
	assert.Equal(t, "pebble", dp.IndexStore)
	assert.Equal(t, []string{"p"}, dp.Fields)
}

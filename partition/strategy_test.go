package partition

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshdecomp/mesh"
)

// contiguousKway stands in for METIS: it walks the graph rows in order and
// fills parts of equal size
func contiguousKway(xadj, adjncy []int32, nparts int32) (part []int32, err error) {
	n := int32(len(xadj) - 1)
	part = make([]int32, n)
	for i := range part {
		part[i] = int32(i) * nparts / n
	}
	return
}

func assertTotal(t *testing.T, a Assignment, m *mesh.Mesh, total int) {
	t.Helper()
	require.NoError(t, Validate(a, m.NumReal, total))
	for _, count := range a.Counts(total) {
		assert.Greater(t, count, 0)
	}
}

func TestNewType(t *testing.T) {
	tests := []struct {
		label string
		want  Type
	}{
		{"XYZ", XYZ},
		{"cellid", CELLID},
		{"GRAPH", GRAPH},
		{"metis", GRAPH},
		{"NONE", NONE},
		{"", NONE},
	}
	for _, tt := range tests {
		got, err := NewType(tt.label)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.label)
	}
	_, err := NewType("hilbert")
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
	assert.Equal(t, "GRAPH", GRAPH.String())
}

func TestStrategiesAreTotal(t *testing.T) {
	m := mesh.NewBoxMesh(4, 2, 2)
	tests := []struct {
		name  string
		cfg   Config
		total int
	}{
		{"none", Config{Type: NONE}, 1},
		{"cellid", Config{Type: CELLID}, 3},
		{"cellid even", Config{Type: CELLID}, 4},
		{"xyz", Config{Type: XYZ, N: [3]int{2, 2, 1}}, 4},
		{"xyz rescaled", Config{Type: XYZ, N: [3]int{3, 3, 1}}, 4},
		{"graph", Config{Type: GRAPH, Kway: contiguousKway}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			require.NoError(t, err)
			a, err := s.Assign(m, tt.total)
			require.NoError(t, err)
			assertTotal(t, a, m, tt.total)

			// Deterministic for identical input
			b, err := s.Assign(m, tt.total)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

func TestInvalidTotal(t *testing.T) {
	m := mesh.NewTwoCellMesh()
	for _, s := range []Strategy{Trivial{}, Index{}, NewCartesian([3]int{1, 1, 1}, [4]float64{}),
		NewGraph(contiguousKway)} {
		_, err := s.Assign(m, 0)
		assert.True(t, errors.Is(err, ErrPartitionCountInvalid))
	}
}

func TestIndex(t *testing.T) {
	m := mesh.NewBoxMesh(5, 1, 1)
	a, err := Index{}.Assign(m, 2)
	require.NoError(t, err)
	assert.Equal(t, Assignment{0, 0, 0, 1, 1}, a)

	m = mesh.NewTwoCellMesh()
	a, err = Index{}.Assign(m, 2)
	require.NoError(t, err)
	assert.Equal(t, Assignment{0, 1}, a)
}

func TestCartesian(t *testing.T) {
	m := mesh.NewBoxMesh(4, 2, 1)
	c := NewCartesian([3]int{2, 2, 1}, [4]float64{})
	a, err := c.Assign(m, 4)
	require.NoError(t, err)
	// cell id = i + 4*j, bucket = floor(x/2)*2 + j
	assert.Equal(t, Assignment{0, 0, 2, 2, 1, 1, 3, 3}, a)

	{ // A quarter turn about z swaps the roles of x and y
		c = NewCartesian([3]int{2, 2, 1}, [4]float64{0, 0, 1, math.Pi / 2})
		a, err = c.Assign(m, 4)
		require.NoError(t, err)
		assertTotal(t, a, m, 4)
	}
	{ // Hint rescaled by (4/9)^(1/3)
		n, err := NewCartesian([3]int{3, 3, 1}, [4]float64{}).Buckets(4)
		require.NoError(t, err)
		assert.Equal(t, [3]int{2, 2, 1}, n)
	}
	{
		_, err := NewCartesian([3]int{0, 1, 1}, [4]float64{}).Buckets(4)
		assert.Error(t, err)
	}
}

func TestCartesianOverflowIsReported(t *testing.T) {
	m := mesh.NewBoxMesh(6, 1, 1)
	c := NewCartesian([3]int{4, 1, 1}, [4]float64{})
	n, err := c.Buckets(2)
	require.NoError(t, err)
	assert.Equal(t, [3]int{3, 1, 1}, n)

	a, err := c.Assign(m, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, a[5])
	assert.True(t, errors.Is(Validate(a, m.NumReal, 2), ErrPartitionOutOfRange))
}

func TestDualGraph(t *testing.T) {
	m := mesh.NewBoxMesh(3, 1, 1)
	xadj, adjncy := DualGraph(m)
	assert.Equal(t, []int32{0, 1, 3, 4}, xadj)
	assert.Equal(t, []int32{1, 0, 2, 1}, adjncy)

	m = mesh.NewBoxMesh(2, 2, 1)
	xadj, adjncy = DualGraph(m)
	assert.Equal(t, []int32{0, 2, 4, 6, 8}, xadj)
	assert.Equal(t, []int32{1, 2, 0, 3, 0, 3, 1, 2}, adjncy)
}

func TestGraphPartitionerFailure(t *testing.T) {
	m := mesh.NewBoxMesh(2, 2, 1)
	failing := func(xadj, adjncy []int32, nparts int32) ([]int32, error) {
		return nil, errors.New("METIS_ERROR_INPUT")
	}
	_, err := NewGraph(failing).Assign(m, 2)
	assert.True(t, errors.Is(err, ErrExternalPartitioner))

	short := func(xadj, adjncy []int32, nparts int32) ([]int32, error) {
		return []int32{0}, nil
	}
	_, err = NewGraph(short).Assign(m, 2)
	assert.True(t, errors.Is(err, ErrExternalPartitioner))
}

func TestMetisKway(t *testing.T) {
	if os.Getenv("MESHDECOMP_METIS") == "" {
		t.Skip("set MESHDECOMP_METIS=1 to run against the METIS library")
	}
	m := mesh.NewBoxMesh(4, 4, 2)
	a, err := NewGraph(nil).Assign(m, 4)
	require.NoError(t, err)
	assertTotal(t, a, m, 4)
}

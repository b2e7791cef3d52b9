package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshdecomp/utils"
)

var ErrMeshNotFound = errors.New("mesh file not found")

// FileName is the on-disk name of the mesh written at a step: <name>_<step>
func FileName(name string, step int) string {
	return fmt.Sprintf("%s_%d", name, step)
}

// LastStep walks back from step to the most recent step with a mesh file in dir
func LastStep(dir, name string, step int) (found int, ok bool) {
	for found = step; found >= 0; found-- {
		if _, err := os.Stat(filepath.Join(dir, FileName(name, found))); err == nil {
			return found, true
		}
	}
	return step, false
}

// ReadMeshFile loads the latest mesh at or before step and builds connectivity.
// The step actually loaded is returned alongside the mesh.
func ReadMeshFile(dir, name string, step int) (m *Mesh, loaded int, err error) {
	var (
		ok   bool
		file *os.File
	)
	if loaded, ok = LastStep(dir, name, step); !ok {
		return nil, step, fmt.Errorf("%w: %s at or before step %d in %s",
			ErrMeshNotFound, name, step, dir)
	}
	if file, err = os.Open(filepath.Join(dir, FileName(name, loaded))); err != nil {
		return
	}
	defer file.Close()
	if m, err = Read(file); err != nil {
		return nil, loaded, fmt.Errorf("reading %s: %w", file.Name(), err)
	}
	m.PruneBoundaries()
	if err = m.BuildConnectivity(); err != nil {
		return nil, loaded, fmt.Errorf("connectivity of %s: %w", file.Name(), err)
	}
	return
}

// Read parses the text mesh format: vertices, facets, cells, boundaries
func Read(r io.Reader) (m *Mesh, err error) {
	var (
		tr = utils.NewTokenReader(r)
		n  int
	)
	m = NewMesh()
	if err = tr.Expect("vertices"); err != nil {
		return nil, err
	}
	if n, err = tr.Int(); err != nil {
		return nil, err
	}
	m.Vertices = make([]r3.Vec, n)
	for i := range m.Vertices {
		var x [3]float64
		for j := range x {
			if x[j], err = tr.Float(); err != nil {
				return nil, err
			}
		}
		m.Vertices[i] = r3.Vec{X: x[0], Y: x[1], Z: x[2]}
	}
	if err = tr.Expect("facets"); err != nil {
		return nil, err
	}
	if n, err = tr.Int(); err != nil {
		return nil, err
	}
	m.Facets = make([]Facet, n)
	for i := range m.Facets {
		if m.Facets[i], err = tr.Ints(); err != nil {
			return nil, err
		}
	}
	if err = tr.Expect("cells"); err != nil {
		return nil, err
	}
	if n, err = tr.Int(); err != nil {
		return nil, err
	}
	m.Cells = make([]Cell, n)
	for i := range m.Cells {
		if m.Cells[i], err = tr.Ints(); err != nil {
			return nil, err
		}
	}
	// Boundaries are optional
	if _, err = tr.Peek(); errors.Is(err, io.EOF) {
		return m, nil
	}
	if err = tr.Expect("boundaries"); err != nil {
		return nil, err
	}
	if n, err = tr.Int(); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		var name string
		if name, err = tr.Next(); err != nil {
			return nil, err
		}
		if m.Boundaries[name], err = tr.Ints(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Write emits vertices, facets, cells and then the boundary groups sorted by name
func (m *Mesh) Write(w io.Writer) (err error) {
	var (
		bw  = bufio.NewWriter(w)
		buf []byte
	)
	buf = fmt.Appendf(buf[:0], "vertices %d\n", len(m.Vertices))
	for _, v := range m.Vertices {
		buf = utils.AppendFloat(buf, v.X)
		buf = append(buf, ' ')
		buf = utils.AppendFloat(buf, v.Y)
		buf = append(buf, ' ')
		buf = utils.AppendFloat(buf, v.Z)
		buf = append(buf, '\n')
		if _, err = bw.Write(buf); err != nil {
			return
		}
		buf = buf[:0]
	}
	buf = fmt.Appendf(buf, "facets %d\n", len(m.Facets))
	for _, f := range m.Facets {
		buf = append(utils.AppendInts(buf, f), '\n')
		if _, err = bw.Write(buf); err != nil {
			return
		}
		buf = buf[:0]
	}
	buf = fmt.Appendf(buf, "cells %d\n", len(m.Cells))
	for _, c := range m.Cells {
		buf = append(utils.AppendInts(buf, c), '\n')
		if _, err = bw.Write(buf); err != nil {
			return
		}
		buf = buf[:0]
	}
	names := m.BoundaryNames()
	buf = fmt.Appendf(buf, "boundaries %d\n", len(names))
	for _, name := range names {
		buf = append(buf, name...)
		buf = append(buf, ' ')
		buf = append(utils.AppendInts(buf, m.Boundaries[name]), '\n')
		if _, err = bw.Write(buf); err != nil {
			return
		}
		buf = buf[:0]
	}
	if _, err = bw.Write(buf); err != nil {
		return
	}
	return bw.Flush()
}

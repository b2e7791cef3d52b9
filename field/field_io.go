package field

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/meshdecomp/types"
	"github.com/notargets/meshdecomp/utils"
)

// FileName is the on-disk name of a field written at a step: <name><step>
func FileName(name string, step int) string {
	return fmt.Sprintf("%s%d", name, step)
}

// WriteInternal writes the field header and the dofs selected by index, in
// index order. A nil index writes every dof.
func (f *Field) WriteInternal(w io.Writer, index []int) (err error) {
	var (
		bw   = bufio.NewWriter(w)
		buf  []byte
		ndof = f.NumDofs()
		n    = ndof
	)
	if index != nil {
		n = len(index)
	}
	buf = fmt.Appendf(buf, "%s %d\n%s %d\n", f.Name, f.NComp, internalKeyword, n)
	for i := 0; i < n; i++ {
		d := i
		if index != nil {
			if d = index[i]; d < 0 || d >= ndof {
				return fmt.Errorf("field %s: dof %d outside [0,%d)", f.Name, d, ndof)
			}
		}
		for j, v := range f.Dof(d) {
			if j > 0 {
				buf = append(buf, ' ')
			}
			buf = utils.AppendFloat(buf, v)
		}
		buf = append(buf, '\n')
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

// WriteBoundary writes the field's own boundary blocks followed by extra blocks
func (f *Field) WriteBoundary(w io.Writer, extra ...BoundaryBlock) (err error) {
	bw := bufio.NewWriter(w)
	for _, bbs := range [][]BoundaryBlock{f.Boundaries, extra} {
		for _, bb := range bbs {
			fmt.Fprintf(bw, "%s %s\n\t%s %s\n", bb.Name, blockOpen, boundaryTypeWord, bb.TypeLabel)
			for _, e := range bb.Entries {
				fmt.Fprintf(bw, "\t%s", e.Key)
				for _, v := range e.Values {
					fmt.Fprintf(bw, " %s", v)
				}
				fmt.Fprintln(bw)
			}
			if _, err = fmt.Fprintln(bw, blockClose); err != nil {
				return
			}
		}
	}
	return bw.Flush()
}

// ReadInternal reads a field stream and scatters its internal dofs into f:
// the i-th value lands on dof index[i]. A nil index reads dofs in order.
func (f *Field) ReadInternal(r io.Reader, index []int) (err error) {
	var (
		in *Field
	)
	if in, err = Read(r); err != nil {
		return
	}
	return f.Scatter(in, index)
}

// Scatter copies the dofs of in to the positions named by index
func (f *Field) Scatter(in *Field, index []int) (err error) {
	var (
		ndof = f.NumDofs()
		n    = in.NumDofs()
	)
	if in.NComp != f.NComp {
		return fmt.Errorf("field %s: stream has %d components, field has %d",
			f.Name, in.NComp, f.NComp)
	}
	if index == nil {
		if n != ndof {
			return fmt.Errorf("field %s: stream has %d dofs, field has %d", f.Name, n, ndof)
		}
		copy(f.Values, in.Values)
		return
	}
	if n != len(index) {
		return fmt.Errorf("field %s: stream has %d dofs, index has %d", f.Name, n, len(index))
	}
	for i, d := range index {
		if d < 0 || d >= ndof {
			return fmt.Errorf("field %s: dof %d outside [0,%d)", f.Name, d, ndof)
		}
		copy(f.Dof(d), in.Dof(i))
	}
	return
}

// Read parses a complete field stream: header, internal dofs, boundary blocks
func Read(r io.Reader) (f *Field, err error) {
	var (
		br     = bufio.NewReader(r)
		lineNo int
		fields []string
		ncomp  int
		n      int
	)
	next := func() ([]string, error) {
		for {
			line, rerr := br.ReadString('\n')
			if len(line) == 0 && rerr != nil {
				return nil, rerr
			}
			lineNo++
			if words := strings.Fields(line); len(words) > 0 {
				return words, nil
			}
			if rerr != nil {
				return nil, rerr
			}
		}
	}
	fail := func(format string, args ...any) error {
		return fmt.Errorf("line %d: %s", lineNo, fmt.Sprintf(format, args...))
	}
	if fields, err = next(); err != nil {
		return nil, fail("missing header: %v", err)
	}
	if len(fields) != 2 {
		return nil, fail("header wants \"<name> <ncomp>\", have %q", fields)
	}
	if ncomp, err = strconv.Atoi(fields[1]); err != nil {
		return nil, fail("%v", err)
	}
	name := fields[0]
	if fields, err = next(); err != nil {
		return nil, fail("missing internal section: %v", err)
	}
	if len(fields) != 2 || fields[0] != internalKeyword {
		return nil, fail("want \"%s <count>\", have %q", internalKeyword, fields)
	}
	if n, err = strconv.Atoi(fields[1]); err != nil {
		return nil, fail("%v", err)
	}
	if f, err = New(name, ncomp, n); err != nil {
		return nil, fail("%v", err)
	}
	for d := 0; d < n; d++ {
		if fields, err = next(); err != nil {
			return nil, fail("dof %d: %v", d, err)
		}
		if len(fields) != ncomp {
			return nil, fail("dof %d has %d components, want %d", d, len(fields), ncomp)
		}
		for j, word := range fields {
			if f.Values[d*ncomp+j], err = strconv.ParseFloat(word, 64); err != nil {
				return nil, fail("%v", err)
			}
		}
	}
	for {
		if fields, err = next(); errors.Is(err, io.EOF) {
			return f, nil
		} else if err != nil {
			return nil, fail("%v", err)
		}
		if len(fields) != 2 || fields[1] != blockOpen {
			return nil, fail("want \"<boundary> %s\", have %q", blockOpen, fields)
		}
		bb := BoundaryBlock{Name: fields[0]}
		for {
			if fields, err = next(); err != nil {
				return nil, fail("unterminated boundary %s: %v", bb.Name, err)
			}
			if fields[0] == blockClose {
				break
			}
			if fields[0] == boundaryTypeWord && len(fields) == 2 {
				bb.TypeLabel = fields[1]
				bb.Type, _ = types.NewBCFLAG(fields[1])
				continue
			}
			bb.Entries = append(bb.Entries, Entry{Key: fields[0], Values: fields[1:]})
		}
		f.Boundaries = append(f.Boundaries, bb)
	}
}

// ReadFile loads a field file
func ReadFile(path string) (f *Field, err error) {
	var file *os.File
	if file, err = os.Open(path); err != nil {
		return
	}
	defer file.Close()
	if f, err = Read(file); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return
}

// WriteFile writes header, the dofs selected by index, the field's boundary
// blocks and then extra blocks. The file is synced before it is closed.
func (f *Field) WriteFile(path string, index []int, extra ...BoundaryBlock) (err error) {
	var file *os.File
	if file, err = os.Create(path); err != nil {
		return
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if err = f.WriteInternal(file, index); err != nil {
		return
	}
	if err = f.WriteBoundary(file, extra...); err != nil {
		return
	}
	return file.Sync()
}

// LoadFields reads the named fields present at step in dir. Names without a
// file at that step are returned in missing; they are not an error.
func LoadFields(dir string, names []string, step int) (reg *Registry, missing []string, err error) {
	reg = NewRegistry()
	for _, name := range names {
		path := filepath.Join(dir, FileName(name, step))
		if _, serr := os.Stat(path); serr != nil {
			missing = append(missing, name)
			continue
		}
		var f *Field
		if f, err = ReadFile(path); err != nil {
			return nil, nil, err
		}
		f.Name = name
		reg.Add(f)
	}
	return
}

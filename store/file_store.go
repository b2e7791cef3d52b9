package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/meshdecomp/utils"
)

// FileStore writes one text index file per partition and step:
// <Dir>/<MeshName><part>/index_<step>
type FileStore struct {
	Dir      string
	MeshName string
}

func NewFileStore(dir, meshName string) *FileStore {
	return &FileStore{Dir: dir, MeshName: meshName}
}

// PartitionDir is the output directory of one partition: <dir>/<meshName><part>
func PartitionDir(dir, meshName string, part int) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d", meshName, part))
}

func (s *FileStore) PartitionDir(part int) string {
	return PartitionDir(s.Dir, s.MeshName, part)
}

func (s *FileStore) path(part, step int) string {
	return filepath.Join(s.PartitionDir(part), fileIndexPrefix+strconv.Itoa(step))
}

// Put writes to a temporary file, syncs it and renames it into place, so a
// reader never sees a partial log
func (s *FileStore) Put(ctx context.Context, part, step int, log IndexLog) (err error) {
	var (
		tmp  *os.File
		path = s.path(part, step)
	)
	if err = validate(part, step, log); err != nil {
		return
	}
	if err = ctx.Err(); err != nil {
		return
	}
	if tmp, err = os.CreateTemp(filepath.Dir(path), ".index_*"); err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	bw := bufio.NewWriter(tmp)
	fmt.Fprintf(bw, "block %d\n%d\n", log.Block, len(log.Dofs))
	var buf []byte
	for _, d := range log.Dofs {
		buf = strconv.AppendInt(buf[:0], int64(d), 10)
		buf = append(buf, '\n')
		if _, err = bw.Write(buf); err != nil {
			return
		}
	}
	if err = bw.Flush(); err != nil {
		return
	}
	if err = tmp.Sync(); err != nil {
		return
	}
	if err = tmp.Close(); err != nil {
		return
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileStore) Get(ctx context.Context, part, step int) (log IndexLog, err error) {
	var (
		file *os.File
		path = s.path(part, step)
	)
	if err = ctx.Err(); err != nil {
		return
	}
	if file, err = os.Open(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: partition %d step %d", ErrIndexLogMissing, part, step)
		}
		return
	}
	defer file.Close()
	tr := utils.NewTokenReader(file)
	if err = tr.Expect("block"); err != nil {
		return log, fmt.Errorf("%s: %w", path, err)
	}
	if log.Block, err = tr.Int(); err != nil {
		return log, fmt.Errorf("%s: %w", path, err)
	}
	if log.Dofs, err = tr.Ints(); err != nil {
		return log, fmt.Errorf("%s: %w", path, err)
	}
	if err = validate(part, step, log); err != nil {
		return log, fmt.Errorf("%s: %w", path, err)
	}
	return
}

// Latest scans the partition directory once for the newest index_<n> with
// n <= step
func (s *FileStore) Latest(ctx context.Context, part, step int) (found int, log IndexLog, err error) {
	entries, rerr := os.ReadDir(s.PartitionDir(part))
	if rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
		return step, log, rerr
	}
	found = -1
	for _, e := range entries {
		n, ok := indexStep(e.Name())
		if !ok || e.IsDir() || n > step || n <= found {
			continue
		}
		found = n
	}
	if found < 0 {
		return step, log, fmt.Errorf("%w: partition %d at or before step %d",
			ErrIndexLogMissing, part, step)
	}
	log, err = s.Get(ctx, part, found)
	return
}

const fileIndexPrefix = "index_"

// indexStep parses the step of an index file name, rejecting temp files
// and anything not written by path
func indexStep(name string) (step int, ok bool) {
	if !strings.HasPrefix(name, fileIndexPrefix) {
		return
	}
	digits := name[len(fileIndexPrefix):]
	var err error
	if step, err = strconv.Atoi(digits); err != nil || step < 0 || strconv.Itoa(step) != digits {
		return 0, false
	}
	return step, true
}

func (s *FileStore) Close() error { return nil }

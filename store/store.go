// Package store persists the per partition cell index logs, the only state the
// merge stage reads back from a decomposition.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrIndexLogMissing = errors.New("index log not found")

// IndexLog is the expanded dof index of one partition: entry i is the global
// dof that the partition's local dof i came from
type IndexLog struct {
	Block int
	Dofs  []int
}

// NumCells is the number of local cells behind the log
func (il IndexLog) NumCells() int {
	if il.Block < 1 {
		return 0
	}
	return len(il.Dofs) / il.Block
}

// IndexStore keys index logs by partition and step
type IndexStore interface {
	// Put durably stores the log; it returns only once the log is committed
	Put(ctx context.Context, part, step int, log IndexLog) error
	// Get loads the log written for exactly this step
	Get(ctx context.Context, part, step int) (IndexLog, error)
	// Latest loads the log of the most recent decomposed step <= step
	Latest(ctx context.Context, part, step int) (found int, log IndexLog, err error)
	Close() error
}

// Kind selects an IndexStore backend
type Kind string

const (
	FileKind   Kind = "file"
	PebbleKind Kind = "pebble"
)

// Open returns the backend for kind rooted at dir. File logs live next to
// the partition meshes in <dir>/<meshName><part>/, pebble keeps one database
// in <dir>/<meshName>.index.
func Open(kind Kind, dir, meshName string) (s IndexStore, err error) {
	switch Kind(strings.ToLower(string(kind))) {
	case FileKind, "":
		return NewFileStore(dir, meshName), nil
	case PebbleKind:
		var ps *PebbleStore
		if ps, err = OpenPebbleStore(PebblePath(dir, meshName)); err != nil {
			return nil, err
		}
		return ps, nil
	}
	return nil, fmt.Errorf("unknown index store %q", kind)
}

func validate(part, step int, log IndexLog) error {
	if part < 0 || step < 0 {
		return fmt.Errorf("invalid index log key part=%d step=%d", part, step)
	}
	if log.Block < 1 {
		return fmt.Errorf("index log block must be positive, have %d", log.Block)
	}
	if len(log.Dofs)%log.Block != 0 {
		return fmt.Errorf("index log length %d is not a multiple of block %d",
			len(log.Dofs), log.Block)
	}
	return nil
}

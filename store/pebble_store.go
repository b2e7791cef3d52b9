package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"google.golang.org/protobuf/encoding/protowire"
)

const indexPrefix = "index/"

// PebbleStore keeps every index log of a decomposition in one pebble
// database. Keys order by partition and then by step so the latest step at
// or before a given one is a single reverse seek.
type PebbleStore struct {
	db *pebble.DB
}

// PebblePath is where Open puts the database of a mesh
func PebblePath(dir, meshName string) string {
	return filepath.Join(dir, meshName+".index")
}

func OpenPebbleStore(path string) (ps *PebbleStore, err error) {
	var db *pebble.DB
	if db, err = pebble.Open(path, &pebble.Options{}); err != nil {
		return nil, fmt.Errorf("opening index store %s: %w", path, err)
	}
	return &PebbleStore{db: db}, nil
}

func partPrefix(part int) []byte {
	return fmt.Appendf(nil, "%s%06d/", indexPrefix, part)
}

func indexKey(part, step int) []byte {
	return fmt.Appendf(partPrefix(part), "%010d", step)
}

func parseStep(key []byte) (step int, err error) {
	if len(key) < 10 {
		return 0, fmt.Errorf("malformed index key %q", key)
	}
	_, err = fmt.Sscanf(string(key[len(key)-10:]), "%d", &step)
	return
}

// encodeIndexLog packs block, dof count and dofs as varints
func encodeIndexLog(log IndexLog) (buf []byte) {
	buf = make([]byte, 0, 2+len(log.Dofs)*2)
	buf = protowire.AppendVarint(buf, uint64(log.Block))
	buf = protowire.AppendVarint(buf, uint64(len(log.Dofs)))
	for _, d := range log.Dofs {
		buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(d)))
	}
	return
}

func decodeIndexLog(buf []byte) (log IndexLog, err error) {
	next := func() (v uint64, err error) {
		n := 0
		if v, n = protowire.ConsumeVarint(buf); n < 0 {
			return 0, fmt.Errorf("corrupt index log: %w", protowire.ParseError(n))
		}
		buf = buf[n:]
		return
	}
	var v, count uint64
	if v, err = next(); err != nil {
		return
	}
	log.Block = int(v)
	if count, err = next(); err != nil {
		return
	}
	if count > uint64(len(buf)) {
		return log, fmt.Errorf("corrupt index log: %d dofs in %d bytes", count, len(buf))
	}
	log.Dofs = make([]int, count)
	for i := range log.Dofs {
		if v, err = next(); err != nil {
			return
		}
		log.Dofs[i] = int(protowire.DecodeZigZag(v))
	}
	if len(buf) != 0 {
		err = fmt.Errorf("corrupt index log: %d trailing bytes", len(buf))
	}
	return
}

// Put commits with a synced write
func (ps *PebbleStore) Put(ctx context.Context, part, step int, log IndexLog) (err error) {
	if err = validate(part, step, log); err != nil {
		return
	}
	if err = ctx.Err(); err != nil {
		return
	}
	return ps.db.Set(indexKey(part, step), encodeIndexLog(log), pebble.Sync)
}

func (ps *PebbleStore) Get(ctx context.Context, part, step int) (log IndexLog, err error) {
	if err = ctx.Err(); err != nil {
		return
	}
	val, closer, err := ps.db.Get(indexKey(part, step))
	if errors.Is(err, pebble.ErrNotFound) {
		return log, fmt.Errorf("%w: partition %d step %d", ErrIndexLogMissing, part, step)
	} else if err != nil {
		return
	}
	defer closer.Close()
	return decodeIndexLog(val)
}

func (ps *PebbleStore) Latest(ctx context.Context, part, step int) (found int, log IndexLog, err error) {
	if err = ctx.Err(); err != nil {
		return
	}
	iter, err := ps.db.NewIter(&pebble.IterOptions{
		LowerBound: partPrefix(part),
		UpperBound: indexKey(part, step+1),
	})
	if err != nil {
		return
	}
	defer iter.Close()
	if !iter.Last() {
		if err = iter.Error(); err == nil {
			err = fmt.Errorf("%w: partition %d at or before step %d",
				ErrIndexLogMissing, part, step)
		}
		return step, log, err
	}
	if found, err = parseStep(iter.Key()); err != nil {
		return
	}
	log, err = decodeIndexLog(iter.Value())
	return
}

func (ps *PebbleStore) Close() error {
	return ps.db.Close()
}

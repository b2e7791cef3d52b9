package decompose

import (
	"errors"

	"github.com/notargets/meshdecomp/partition"
	"github.com/notargets/meshdecomp/store"
)

var (
	ErrInputMeshMissing             = errors.New("input mesh missing")
	ErrIndexSentinelLeak            = errors.New("local mesh references an entity absent from its partition")
	ErrPartitionDirectoryUnwritable = errors.New("partition directory unwritable")
	ErrFieldFileMissingOnMerge      = errors.New("partition field file missing on merge")
	ErrNoPartitionsContributed      = errors.New("no partition contributed a field")
)

// Strategy and store errors surfaced unchanged through this package
var (
	ErrPartitionCountInvalid = partition.ErrPartitionCountInvalid
	ErrExternalPartitioner   = partition.ErrExternalPartitioner
	ErrPartitionOutOfRange   = partition.ErrPartitionOutOfRange
	ErrUnknownStrategy       = partition.ErrUnknownStrategy
	ErrIndexLogMissing       = store.ErrIndexLogMissing
)

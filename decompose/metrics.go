package decompose

import (
	"time"

	"github.com/hashicorp/go-metrics"
)

var (
	MetricPartitionsWritten = []string{"meshdecomp", "decompose", "partitions", "written"}
	MetricCellsWritten      = []string{"meshdecomp", "decompose", "cells", "written"}
	MetricFieldFilesWritten = []string{"meshdecomp", "decompose", "field", "files", "written"}
	MetricGhostFacets       = []string{"meshdecomp", "decompose", "ghost", "facets"}
	MetricDecomposeMillis   = []string{"meshdecomp", "decompose", "duration", "ms"}
	MetricMergeContributed  = []string{"meshdecomp", "merge", "contributions", "count"}
	MetricMergeMissing      = []string{"meshdecomp", "merge", "missing", "count"}
	MetricMergeFieldsOut    = []string{"meshdecomp", "merge", "fields", "written"}
	MetricMergeMillis       = []string{"meshdecomp", "merge", "duration", "ms"}
)

type TelemetryLabel string

var (
	LabelField TelemetryLabel = "field"
)

func (lab TelemetryLabel) M(val string) metrics.Label {
	return metrics.Label{Name: string(lab), Value: val}
}

func sinceMillis(start time.Time) float32 {
	return float32(time.Since(start).Seconds() * 1000)
}

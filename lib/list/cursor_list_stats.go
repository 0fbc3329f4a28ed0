package list

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	CursorListStatsName = "xcursor/cursor-list"
)

type cursorListOp uint8

const (
	opReset cursorListOp = iota
	opInsertBefore
	opNext
	opPrevious
	opFindNext
	opFindPrevious
	opDelete
	opSet
	opDestroy
)

func (op cursorListOp) String() string {
	switch op {
	case opReset:
		return "reset"
	case opInsertBefore:
		return "insertBefore"
	case opNext:
		return "next"
	case opPrevious:
		return "previous"
	case opFindNext:
		return "findNext"
	case opFindPrevious:
		return "findPrevious"
	case opDelete:
		return "delete"
	case opSet:
		return "set"
	case opDestroy:
		return "destroy"
	default:
	}
	return "unknown"
}

type cursorListStats struct {
	opCount      metric.Int64Counter
	elementCount metric.Int64UpDownCounter
}

func (stats *cursorListStats) RecordOp(op cursorListOp, ok bool) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("cursor.list.op", op.String()),
		attribute.Bool("cursor.list.op.ok", ok),
	)
	stats.opCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func (stats *cursorListStats) RecordLen(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.elementCount.Add(context.Background(), delta)
}

func newCursorListStats(name string) *cursorListStats {
	meterName := fmt.Sprintf("%s/%s", CursorListStatsName, name)
	return &cursorListStats{
		opCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"cursor.list.op.count",
				metric.WithDescription("The number of cursor list operations by op and result."),
			),
		),
		elementCount: lo.Must[metric.Int64UpDownCounter](otel.Meter(meterName).
			Int64UpDownCounter(
				"cursor.list.element.count",
				metric.WithDescription("The number of elements held by the cursor list."),
			),
		),
	}
}

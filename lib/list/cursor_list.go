package list

import (
	"go.uber.org/zap"

	"github.com/benz9527/xcursor/lib/infra"
	"github.com/benz9527/xcursor/xlog"
)

// References:
// https://docs.oracle.com/javase/8/docs/api/java/util/ListIterator.html
//
// The cursor is always in a gap. previous and next are the elements on both
// sides of the gap, either may be empty at the ends.
//
//            previous  next
//               |       |
//   head -> [1] <-> [2] ^ [3] <-> [4] -> nil
//
// Next/FindNext leave the returned element in previous.
// Previous/FindPrevious leave the returned element in next.
// Set and Delete act on that element exactly once.

var _ CursorList = (*cursorList)(nil) // Type check assertion

type cursorList struct {
	arena    *cursorListArena
	logger   xlog.XLogger
	stats    *cursorListStats
	head     cursorListHandle
	next     cursorListHandle
	previous cursorListHandle
	lastMove CursorMove
}

type cursorListOptions struct {
	logger    xlog.XLogger
	statsName string
	capacity  int
}

type CursorListOption func(opts *cursorListOptions)

// WithCursorListLogger logs rejected operations at debug level.
func WithCursorListLogger(logger xlog.XLogger) CursorListOption {
	return func(opts *cursorListOptions) {
		opts.logger = logger
	}
}

// WithCursorListStats records operation counters on the global otel meter provider.
func WithCursorListStats(name string) CursorListOption {
	return func(opts *cursorListOptions) {
		if len(name) == 0 {
			name = "default"
		}
		opts.statsName = name
	}
}

// WithCursorListCapacity pre-allocates room for n elements.
func WithCursorListCapacity(n int) CursorListOption {
	return func(opts *cursorListOptions) {
		opts.capacity = n
	}
}

func NewCursorList(opts ...CursorListOption) CursorList {
	o := &cursorListOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	l := &cursorList{
		arena:    newCursorListArena(o.capacity),
		logger:   o.logger,
		lastMove: MoveNone,
	}
	if l.logger == nil {
		l.logger = xlog.NewNopXLogger()
	}
	if len(o.statsName) > 0 {
		l.stats = newCursorListStats(o.statsName)
	}
	return l
}

// A nil or destroyed list is a programming error, not a recoverable failure.
func (l *cursorList) mustBeValid() {
	if l == nil || l.arena == nil {
		panic("[cursor-list] use of nil or destroyed list")
	}
}

func (l *cursorList) element(h cursorListHandle) *cursorListElement {
	return l.arena.get(h)
}

func (l *cursorList) reject(op cursorListOp, err error) {
	l.stats.RecordOp(op, false)
	l.logger.Debug("cursor list operation rejected",
		zap.String("op", op.String()),
		zap.String("reason", err.Error()),
		zap.Int("len", l.arena.objLen()),
	)
}

func (l *cursorList) Len() int {
	l.mustBeValid()
	return l.arena.objLen()
}

func (l *cursorList) LastMove() CursorMove {
	l.mustBeValid()
	return l.lastMove
}

func (l *cursorList) Reset() {
	l.mustBeValid()
	l.lastMove = MoveNone
	l.next = l.head
	l.previous = nilHandle
	l.stats.RecordOp(opReset, true)
}

func (l *cursorList) InsertBefore(v int) {
	l.mustBeValid()
	l.lastMove = MoveNone

	h := l.arena.allocate(v)
	newE := l.element(h)
	switch {
	case l.head == nilHandle:
		// empty list, the new element is the only one
		l.head = h
	case l.previous == nilHandle:
		// cursor at the start, the new element becomes the head
		newE.forward = l.next
		l.element(l.next).backward = h
		l.head = h
	case l.next == nilHandle:
		// cursor at the end
		newE.backward = l.previous
		l.element(l.previous).forward = h
	default:
		newE.forward = l.next
		newE.backward = l.previous
		l.element(l.next).backward = h
		l.element(l.previous).forward = h
	}
	l.previous = h

	l.stats.RecordOp(opInsertBefore, true)
	l.stats.RecordLen(1)
}

func (l *cursorList) HasNext() bool {
	l.mustBeValid()
	l.lastMove = MoveNone
	return l.next != nilHandle
}

func (l *cursorList) HasPrevious() bool {
	l.mustBeValid()
	l.lastMove = MoveNone
	return l.previous != nilHandle
}

func (l *cursorList) Next() (int, error) {
	l.mustBeValid()
	if l.next == nilHandle {
		l.lastMove = MoveNone
		l.reject(opNext, ErrCursorListEndOfList)
		return 0, ErrCursorListEndOfList
	}

	l.previous = l.next
	l.next = l.element(l.next).forward
	l.lastMove = MoveForward
	l.stats.RecordOp(opNext, true)
	return l.element(l.previous).value, nil
}

func (l *cursorList) Previous() (int, error) {
	l.mustBeValid()
	if l.previous == nilHandle {
		l.lastMove = MoveNone
		l.reject(opPrevious, ErrCursorListEndOfList)
		return 0, ErrCursorListEndOfList
	}

	l.next = l.previous
	l.previous = l.element(l.previous).backward
	l.lastMove = MoveBackward
	l.stats.RecordOp(opPrevious, true)
	return l.element(l.next).value, nil
}

func (l *cursorList) FindNext(v int) (int, error) {
	l.mustBeValid()
	l.lastMove = MoveNone
	if l.next == nilHandle {
		l.reject(opFindNext, ErrCursorListEndOfList)
		return 0, ErrCursorListEndOfList
	}

	iterator := l.next
	for iterator != nilHandle && l.element(iterator).value != v {
		iterator = l.element(iterator).forward
	}
	if iterator == nilHandle {
		// The scan never touched the cursor, so it stays where it was.
		l.reject(opFindNext, ErrCursorListNotFound)
		return 0, ErrCursorListNotFound
	}

	l.previous = iterator
	l.next = l.element(iterator).forward
	l.lastMove = MoveForward
	l.stats.RecordOp(opFindNext, true)
	return l.element(iterator).value, nil
}

func (l *cursorList) FindPrevious(v int) (int, error) {
	l.mustBeValid()
	l.lastMove = MoveNone
	if l.previous == nilHandle {
		l.reject(opFindPrevious, ErrCursorListEndOfList)
		return 0, ErrCursorListEndOfList
	}

	iterator := l.previous
	for iterator != nilHandle && l.element(iterator).value != v {
		iterator = l.element(iterator).backward
	}
	if iterator == nilHandle {
		l.reject(opFindPrevious, ErrCursorListNotFound)
		return 0, ErrCursorListNotFound
	}

	l.next = iterator
	l.previous = l.element(iterator).backward
	l.lastMove = MoveBackward
	l.stats.RecordOp(opFindPrevious, true)
	return l.element(iterator).value, nil
}

// moveTarget is the element returned by the last successful move.
func (l *cursorList) moveTarget() cursorListHandle {
	switch l.lastMove {
	case MoveForward:
		return l.previous
	case MoveBackward:
		return l.next
	case MoveNone:
		fallthrough
	default:
	}
	return nilHandle
}

func (l *cursorList) Delete() error {
	l.mustBeValid()
	target := l.moveTarget()
	if target == nilHandle {
		l.reject(opDelete, ErrCursorListPreconditionViolation)
		return ErrCursorListPreconditionViolation
	}

	// Either direction ends with the cursor in the gap the target leaves behind.
	e := l.element(target)
	forward, backward := e.forward, e.backward
	if backward == nilHandle {
		l.head = forward
	} else {
		l.element(backward).forward = forward
	}
	if forward != nilHandle {
		l.element(forward).backward = backward
	}
	l.previous = backward
	l.next = forward
	l.lastMove = MoveNone
	l.arena.recycle(target)

	l.stats.RecordOp(opDelete, true)
	l.stats.RecordLen(-1)
	return nil
}

func (l *cursorList) Set(v int) error {
	l.mustBeValid()
	target := l.moveTarget()
	if target == nilHandle {
		l.reject(opSet, ErrCursorListPreconditionViolation)
		return ErrCursorListPreconditionViolation
	}

	l.element(target).value = v
	l.lastMove = MoveNone
	l.stats.RecordOp(opSet, true)
	return nil
}

func (l *cursorList) Snapshot() CursorSnapshot {
	l.mustBeValid()
	snapshot := CursorSnapshot{
		Values: make([]int, 0, l.arena.objLen()),
		Gap:    -1,
	}
	for iterator := l.head; iterator != nilHandle; iterator = l.element(iterator).forward {
		if iterator == l.next {
			snapshot.Gap = len(snapshot.Values)
		}
		snapshot.Values = append(snapshot.Values, l.element(iterator).value)
	}
	if l.next == nilHandle {
		snapshot.Gap = len(snapshot.Values)
	}
	return snapshot
}

func (l *cursorList) Validate() error {
	l.mustBeValid()
	count := l.arena.objLen()
	if (l.head == nilHandle) != (count == 0) {
		return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "head and element count disagree")
	}
	if l.head != nilHandle && l.element(l.head).backward != nilHandle {
		return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "head has a backward link")
	}

	reachable := make(map[cursorListHandle]struct{}, count)
	tail := nilHandle
	for iterator := l.head; iterator != nilHandle; iterator = l.element(iterator).forward {
		if _, ok := reachable[iterator]; ok || len(reachable) >= count {
			return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "forward links form a cycle")
		}
		reachable[iterator] = struct{}{}
		if forward := l.element(iterator).forward; forward != nilHandle &&
			l.element(forward).backward != iterator {
			return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "forward and backward links disagree")
		}
		tail = iterator
	}
	if len(reachable) != count {
		return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "unreachable elements from head")
	}

	backwardCount := 0
	for iterator := tail; iterator != nilHandle; iterator = l.element(iterator).backward {
		if _, ok := reachable[iterator]; !ok || backwardCount >= count {
			return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "backward traversal leaves the list")
		}
		backwardCount++
	}
	if backwardCount != count {
		return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "backward traversal length differs")
	}

	for _, h := range []cursorListHandle{l.previous, l.next} {
		if _, ok := reachable[h]; h != nilHandle && !ok {
			return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "cursor refers to a removed element")
		}
	}
	switch {
	case l.previous == nilHandle && l.next != l.head:
		return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "cursor at start but next is not head")
	case l.previous != nilHandle && l.element(l.previous).forward != l.next:
		return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "cursor gap is not adjacent")
	case l.next != nilHandle && l.element(l.next).backward != l.previous:
		return infra.WrapErrorStackWithMessage(ErrCursorListCorrupted, "cursor gap is not adjacent")
	default:
	}
	return nil
}

func (l *cursorList) Destroy() {
	l.mustBeValid()
	released := l.arena.objLen()
	l.arena.free()
	l.arena = nil
	l.head, l.next, l.previous = nilHandle, nilHandle, nilHandle
	l.lastMove = MoveNone
	l.stats.RecordOp(opDestroy, true)
	l.stats.RecordLen(-int64(released))
	l.logger.Debug("cursor list destroyed", zap.Int("released", released))
}

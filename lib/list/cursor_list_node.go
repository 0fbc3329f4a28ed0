package list

// cursorListHandle addresses an element inside the arena.
// Zero is reserved as the empty handle.
type cursorListHandle uint32

const nilHandle cursorListHandle = 0

type cursorListElement struct {
	forward  cursorListHandle
	backward cursorListHandle
	value    int
}

// cursorListArena owns every element of a cursor list.
// Removed slots are recycled before the backing slice grows.
type cursorListArena struct {
	elements []cursorListElement
	recycled []cursorListHandle
}

func newCursorListArena(capacity int) *cursorListArena {
	if capacity <= 0 {
		capacity = 16
	}
	elements := make([]cursorListElement, 1, capacity+1) // non-zero handle
	return &cursorListArena{
		elements: elements,
		recycled: make([]cursorListHandle, 0, capacity/4+1),
	}
}

func (arena *cursorListArena) allocate(v int) cursorListHandle {
	if l := len(arena.recycled); l > 0 {
		h := arena.recycled[l-1]
		arena.recycled = arena.recycled[:l-1]
		arena.elements[h] = cursorListElement{value: v}
		return h
	}
	arena.elements = append(arena.elements, cursorListElement{value: v})
	return cursorListHandle(len(arena.elements) - 1)
}

func (arena *cursorListArena) get(h cursorListHandle) *cursorListElement {
	if h == nilHandle {
		return nil
	}
	return &arena.elements[h]
}

func (arena *cursorListArena) recycle(h cursorListHandle) {
	if h == nilHandle {
		return
	}
	arena.elements[h] = cursorListElement{}
	arena.recycled = append(arena.recycled, h)
}

// objLen counts the live elements.
func (arena *cursorListArena) objLen() int {
	return len(arena.elements) - 1 - len(arena.recycled)
}

func (arena *cursorListArena) free() {
	arena.elements = nil
	arena.recycled = nil
}

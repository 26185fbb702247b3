package bondgraph

import "errors"

// ErrNotInHeap is returned by MinHeap.Remove when the item is not present.
// It signals caller misuse; a correct search never triggers it.
var ErrNotInHeap = errors.New("bondgraph: item not found in heap")

// MinHeap is a binary min-heap ordered by a caller-supplied score. The
// lowest score sits at the root. Items are compared by == identity in
// Remove, so T should carry enough fields to be unique.
//
// A bounded heap is obtained by pushing and then popping while Len exceeds
// the bound; with score = -distance this evicts the farthest candidate.
type MinHeap[T comparable] struct {
	items []T
	score func(T) float64
}

// NewMinHeap returns an empty heap ordered by score.
func NewMinHeap[T comparable](score func(T) float64) *MinHeap[T] {
	return &MinHeap[T]{score: score}
}

// newMinHeapCap is NewMinHeap with preallocated capacity.
func newMinHeapCap[T comparable](score func(T) float64, capacity int) *MinHeap[T] {
	return &MinHeap[T]{items: make([]T, 0, capacity), score: score}
}

// Len returns the number of items in the heap.
func (h *MinHeap[T]) Len() int { return len(h.items) }

// Push inserts item and restores heap order.
func (h *MinHeap[T]) Push(item T) {
	h.items = append(h.items, item)
	h.bubbleUp(len(h.items) - 1)
}

// PeekMin returns the lowest-scored item without removing it.
func (h *MinHeap[T]) PeekMin() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	return h.items[0], true
}

// PopMin removes and returns the lowest-scored item.
func (h *MinHeap[T]) PopMin() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	top := h.items[0]
	last := len(h.items) - 1
	end := h.items[last]
	h.items = h.items[:last]
	if last > 0 {
		h.items[0] = end
		h.sinkDown(0)
	}
	return top, true
}

// Remove deletes item from the heap. The last element takes its slot and is
// moved up or down until heap order holds again.
func (h *MinHeap[T]) Remove(item T) error {
	for i := range h.items {
		if h.items[i] != item {
			continue
		}
		last := len(h.items) - 1
		end := h.items[last]
		h.items = h.items[:last]
		if i == last {
			return nil
		}
		h.items[i] = end
		if i > 0 && h.score(end) < h.score(h.items[(i-1)/2]) {
			h.bubbleUp(i)
		} else {
			h.sinkDown(i)
		}
		return nil
	}
	return ErrNotInHeap
}

// Items returns the heap's backing slice in heap order. The slice is owned
// by the heap and is only valid until the next mutation.
func (h *MinHeap[T]) Items() []T { return h.items }

// Reset empties the heap, keeping its storage.
func (h *MinHeap[T]) Reset() { h.items = h.items[:0] }

func (h *MinHeap[T]) bubbleUp(n int) {
	element := h.items[n]
	elemScore := h.score(element)
	for n > 0 {
		parentN := (n - 1) / 2
		parent := h.items[parentN]
		if elemScore >= h.score(parent) {
			break
		}
		h.items[parentN] = element
		h.items[n] = parent
		n = parentN
	}
}

// sinkDown moves the element at n toward the leaves. When both children beat
// the element with equal scores, the right child is taken.
func (h *MinHeap[T]) sinkDown(n int) {
	length := len(h.items)
	element := h.items[n]
	elemScore := h.score(element)
	for {
		right := (n + 1) * 2
		left := right - 1
		swap := -1
		var leftScore float64
		if left < length {
			leftScore = h.score(h.items[left])
			if leftScore < elemScore {
				swap = left
			}
		}
		if right < length {
			rightScore := h.score(h.items[right])
			if swap == -1 {
				if rightScore < elemScore {
					swap = right
				}
			} else if rightScore <= leftScore {
				swap = right
			}
		}
		if swap == -1 {
			return
		}
		h.items[n] = h.items[swap]
		h.items[swap] = element
		n = swap
	}
}

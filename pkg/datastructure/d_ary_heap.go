package datastructure

import (
	"errors"

	"github.com/lintang-b-s/streetscan/pkg"
)

var ErrEmptyHeap = errors.New("heap is empty")

// PriorityQueueNode is a heap entry. pos is its slot in the heap, -1 once extracted.
type PriorityQueueNode[T comparable] struct {
	rank float64
	item T
	pos  int
}

func NewPriorityQueueNode[T comparable](rank float64, item T) *PriorityQueueNode[T] {
	return &PriorityQueueNode[T]{rank: rank, item: item, pos: -1}
}

func (p *PriorityQueueNode[T]) GetItem() T {
	return p.item
}

func (p *PriorityQueueNode[T]) GetRank() float64 {
	return p.rank
}

// MinHeap is a d-ary min heap keyed by rank.
type MinHeap[T comparable] struct {
	heap []*PriorityQueueNode[T]
	d    int
}

func NewBinaryHeap[T comparable]() *MinHeap[T] {
	return NewdAryHeap[T](2)
}

func NewFourAryHeap[T comparable]() *MinHeap[T] {
	return NewdAryHeap[T](4)
}

func NewdAryHeap[T comparable](d int) *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]*PriorityQueueNode[T], 0),
		d:    d,
	}
}

func (h *MinHeap[T]) parent(i int) int {
	return (i - 1) / h.d
}

func (h *MinHeap[T]) siftUp(i int) {
	for i != 0 && h.heap[i].rank < h.heap[h.parent(i)].rank {
		h.swap(i, h.parent(i))
		i = h.parent(i)
	}
}

func (h *MinHeap[T]) siftDown(i int) {
	for {
		first := i*h.d + 1
		if first >= len(h.heap) {
			return
		}
		last := min(first+h.d, len(h.heap))

		smallest := first
		for c := first + 1; c < last; c++ {
			if h.heap[c].rank < h.heap[smallest].rank {
				smallest = c
			}
		}
		if h.heap[smallest].rank >= h.heap[i].rank {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.heap[i].pos = i
	h.heap[j].pos = j
}

func (h *MinHeap[T]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) Clear() {
	for _, node := range h.heap {
		node.pos = -1
	}
	h.heap = h.heap[:0]
}

// GetMinrank is the smallest queued rank, or twice INF_WEIGHT when empty.
func (h *MinHeap[T]) GetMinrank() float64 {
	if h.IsEmpty() {
		return 2 * pkg.INF_WEIGHT
	}
	return h.heap[0].rank
}

func (h *MinHeap[T]) Insert(node *PriorityQueueNode[T]) {
	h.heap = append(h.heap, node)
	node.pos = len(h.heap) - 1
	h.siftUp(node.pos)
}

func (h *MinHeap[T]) ExtractMin() (*PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return nil, ErrEmptyHeap
	}
	root := h.heap[0]
	last := len(h.heap) - 1
	h.swap(0, last)
	h.heap = h.heap[:last]
	root.pos = -1
	if len(h.heap) > 0 {
		h.siftDown(0)
	}
	return root, nil
}

// InsertOrDecrease inserts node, or lowers its rank if it is already queued.
// Nodes that were extracted before are inserted again.
func (h *MinHeap[T]) InsertOrDecrease(node *PriorityQueueNode[T], rank float64) {
	if node.pos >= 0 && node.pos < len(h.heap) && h.heap[node.pos] == node {
		if rank < node.rank {
			node.rank = rank
			h.siftUp(node.pos)
		}
		return
	}
	node.rank = rank
	h.Insert(node)
}

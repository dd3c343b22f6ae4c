package cache

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

// assertLinkedListEqualsSlice makes sure the list elements match the given slice in both directions.
func assertLinkedListEqualsSlice[V comparable](t *testing.T, expected []V, list *linkedList[V]) {
	t.Helper()

	assert.Equal(t, len(expected), list.Len(), "List length mismatch")
	if len(expected) == 0 {
		assert.Nil(t, list.Front(), "Empty list should have nil Front()")
		assert.Nil(t, list.Back(), "Empty list should have nil Back()")
		return
	}

	var forward []V
	for node := list.Front(); node != nil; node = node.Next() {
		forward = append(forward, node.Value)
	}
	assert.Equal(t, expected, forward, "Forward iteration mismatch")

	var backward []V
	for node := list.Back(); node != nil; node = node.Prev() {
		backward = append(backward, node.Value)
	}
	slices.Reverse(backward)
	assert.Equal(t, expected, backward, "Backward iteration mismatch")
}

// newLinkedListWithNodes returns a list holding 1..nodeCount front to back, plus its nodes.
func newLinkedListWithNodes(nodeCount int) (*linkedList[int], []*linkedListNode[int]) {
	list := new(linkedList[int])
	nodes := make([]*linkedListNode[int], nodeCount)
	for i := nodeCount; i >= 1; i-- {
		nodes[i-1] = list.PushFront(i)
	}
	return list, nodes
}

func TestLinkedList_PushFront(t *testing.T) {
	list := new(linkedList[int])
	assertLinkedListEqualsSlice(t, nil, list)
	list.PushFront(1)
	assertLinkedListEqualsSlice(t, []int{1}, list)
	list.PushFront(2)
	list.PushFront(3)
	assertLinkedListEqualsSlice(t, []int{3, 2, 1}, list)
}

func TestLinkedList_Remove(t *testing.T) {
	t.Run("Remove from middle", func(t *testing.T) {
		list, nodes := newLinkedListWithNodes(5)
		list.Remove(nodes[2])
		assertLinkedListEqualsSlice(t, []int{1, 2, 4, 5}, list)
		assert.Equal(t, nodes[3], nodes[1].Next(), "Node 2's next should be node 4")
		assert.Equal(t, nodes[1], nodes[3].Prev(), "Node 4's prev should be node 2")
		assert.Nil(t, nodes[2].Next())
		assert.Nil(t, nodes[2].Prev())
	})

	t.Run("Remove head and tail", func(t *testing.T) {
		list, nodes := newLinkedListWithNodes(5)
		list.Remove(nodes[0])
		list.Remove(nodes[4])
		assertLinkedListEqualsSlice(t, []int{2, 3, 4}, list)
	})

	t.Run("Remove until empty", func(t *testing.T) {
		list, nodes := newLinkedListWithNodes(3)
		for _, node := range nodes {
			list.Remove(node)
		}
		assertLinkedListEqualsSlice(t, []int{}, list)
	})
}

func TestLinkedList_MoveToFront(t *testing.T) {
	list, nodes := newLinkedListWithNodes(4)
	list.MoveToFront(nodes[2])
	assertLinkedListEqualsSlice(t, []int{3, 1, 2, 4}, list)
	list.MoveToFront(nodes[3]) // Tail.
	assertLinkedListEqualsSlice(t, []int{4, 3, 1, 2}, list)
	list.MoveToFront(nodes[3]) // Already the head.
	assertLinkedListEqualsSlice(t, []int{4, 3, 1, 2}, list)

	list.Clear()
	assertLinkedListEqualsSlice(t, []int{}, list)
}

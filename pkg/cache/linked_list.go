package cache

// linkedListNode represents a node in the doubly linked list.
type linkedListNode[V any] struct {
	next  *linkedListNode[V]
	prev  *linkedListNode[V]
	Value V
}

// Next returns the next node in the list.
func (n *linkedListNode[V]) Next() *linkedListNode[V] {
	return n.next
}

// Prev returns the previous node in the list.
func (n *linkedListNode[V]) Prev() *linkedListNode[V] {
	return n.prev
}

// linkedList is a nil-terminated doubly linked list ordering cache entries by recency, most recent first.
type linkedList[V any] struct {
	head *linkedListNode[V]
	tail *linkedListNode[V]
	size int
}

func (l *linkedList[V]) Len() int                  { return l.size }
func (l *linkedList[V]) Front() *linkedListNode[V] { return l.head }
func (l *linkedList[V]) Back() *linkedListNode[V]  { return l.tail }

// detach rewires the neighbours of `n` around it without touching the size.
func (l *linkedList[V]) detach(n *linkedListNode[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else { // Node is the head.
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else { // Node is the tail.
		l.tail = n.prev
	}
	n.next = nil
	n.prev = nil
}

// attachFront links a detached node in as the new head.
func (l *linkedList[V]) attachFront(n *linkedListNode[V]) {
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else { // List was empty.
		l.tail = n
	}
	l.head = n
}

// Remove removes a node from the list.
func (l *linkedList[V]) Remove(n *linkedListNode[V]) {
	l.detach(n)
	l.size--
}

// PushFront adds a new value to the front of the list.
func (l *linkedList[V]) PushFront(v V) *linkedListNode[V] {
	n := &linkedListNode[V]{Value: v}
	l.attachFront(n)
	l.size++
	return n
}

// MoveToFront makes `n` the head of the list; `n` must belong to the list.
func (l *linkedList[V]) MoveToFront(n *linkedListNode[V]) {
	if l.head == n {
		return
	}
	l.detach(n)
	l.attachFront(n)
}

// Clear drops every node.
func (l *linkedList[V]) Clear() {
	l.head, l.tail, l.size = nil, nil, 0
}

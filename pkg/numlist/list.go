// Octa keeps every number as a circular doubly linked list of digits, most significant digit first.
// The chain is circular: the tail's next node is the head and the head's previous node is the tail, so rotating the
// number (shift left / right) only moves the head and tail references.
//
// All mutations are splices: a node is linked in or out by rewiring the few link fields around it, and indexes are
// validated before any link is touched. A list is owned by a single goroutine; callers serialize access themselves.

package numlist

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/octa/pkg/utils"
)

// Digit is one symbol of a positional numeral, bounded by the radix of its list.
type Digit uint8

const (
	DefaultRadix = 8
	MinRadix     = 2
	MaxRadix     = 36
	NotFound     = -1 // Returned by IndexOf / LastIndexOf when the digit is absent.
)

const digitSymbols = "0123456789abcdefghijklmnopqrstuvwxyz"

// node holds a single digit of the list.
type node struct {
	value      Digit
	next, prev *node
}

// List is a circular doubly linked list of digits in a fixed radix. The zero value is not usable; use New.
type List struct {
	head *node
	tail *node // Always head.prev; cached to make backward walks and appends O(1).
	size int
	// radix bounds the digits and is the base the digit sequence is read in.
	radix int
	// gen is bumped on every structural change so cursors can detect they went stale.
	gen uint64
}

// Sequence is anything that exposes an ordered digit sequence.
type Sequence interface {
	Len() int
	All() iter.Seq[Digit]
}

var _ Sequence = (*List)(nil)

// New returns an empty octal list.
func New() *List {
	return &List{radix: DefaultRadix}
}

// FromDigits builds a list in the given radix holding `digits` in order.
func FromDigits(radix int, digits ...Digit) (*List, error) {
	if radix < MinRadix || radix > MaxRadix {
		return nil, fmt.Errorf("%w: radix %d", ErrUnsupported, radix)
	}
	l := &List{radix: radix}
	if err := l.AddAll(digits...); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *List) Len() int      { return l.size }
func (l *List) IsEmpty() bool { return l.size == 0 }
func (l *List) Radix() int    { return l.radix }

func (l *List) checkIndex(op string, index int) error {
	if index < 0 || index >= l.size {
		return &IndexError{Op: op, Index: index, Size: l.size}
	}
	return nil
}

func (l *List) checkInsertIndex(op string, index int) error {
	if index < 0 || index > l.size {
		return &IndexError{Op: op, Index: index, Size: l.size}
	}
	return nil
}

func (l *List) checkDigit(v Digit) error {
	if int(v) >= l.radix {
		return fmt.Errorf("%w: digit %d is not valid in base %d", ErrFormat, v, l.radix)
	}
	return nil
}

// nodeAt resolves a valid index, walking from whichever end is closer.
func (l *List) nodeAt(index int) *node {
	if index < l.size/2 {
		n := l.head
		for range index {
			n = n.next
		}
		return n
	}
	n := l.tail
	for i := l.size - 1; i > index; i-- {
		n = n.prev
	}
	return n
}

// linkBefore splices `n` between `at` and its predecessor.
func linkBefore(n, at *node) {
	n.next = at
	n.prev = at.prev
	at.prev.next = n
	at.prev = n
}

// spliceIn links `n` so that it ends up at `index`. The caller may pass the node currently at `index` as `at` to
// skip the lookup; it is only consulted for interior positions.
func (l *List) spliceIn(index int, n, at *node) {
	switch {
	case l.size == 0:
		n.next, n.prev = n, n
		l.head, l.tail = n, n
	case index == 0:
		linkBefore(n, l.head)
		l.head = n
	case index == l.size: // Between the old tail and the head.
		linkBefore(n, l.head)
		l.tail = n
	default:
		if at == nil {
			at = l.nodeAt(index)
		}
		linkBefore(n, at)
	}
	l.size++
	l.gen++
}

// unlink connects the neighbours of `n` directly and moves head / tail off of it.
func (l *List) unlink(n *node) {
	if l.size == 1 {
		l.head, l.tail = nil, nil
	} else {
		n.prev.next = n.next
		n.next.prev = n.prev
		if n == l.head {
			l.head = n.next
		}
		if n == l.tail {
			l.tail = n.prev
		}
	}
	n.next, n.prev = nil, nil
	l.size--
	l.gen++
}

func (l *List) append(v Digit) {
	l.spliceIn(l.size, &node{value: v}, nil)
}

// Get returns the digit at `index`.
func (l *List) Get(index int) (Digit, error) {
	if err := l.checkIndex("get", index); err != nil {
		return 0, err
	}
	return l.nodeAt(index).value, nil
}

// Set replaces the digit at `index` and returns the previous one.
func (l *List) Set(index int, v Digit) (Digit, error) {
	if err := l.checkIndex("set", index); err != nil {
		return 0, err
	}
	if err := l.checkDigit(v); err != nil {
		return 0, err
	}
	n := l.nodeAt(index)
	previous := n.value
	n.value = v
	return previous, nil
}

// Insert places `v` at `index`, shifting the digits from `index` onwards one position to the right.
func (l *List) Insert(index int, v Digit) error {
	if err := l.checkInsertIndex("insert", index); err != nil {
		return err
	}
	if err := l.checkDigit(v); err != nil {
		return err
	}
	l.spliceIn(index, &node{value: v}, nil)
	return nil
}

// Add appends `v` as the least significant digit.
func (l *List) Add(v Digit) error {
	return l.Insert(l.size, v)
}

// AddAll appends all digits; nothing is appended if any of them is invalid.
func (l *List) AddAll(vs ...Digit) error {
	return l.InsertAll(l.size, vs...)
}

// InsertAll places `vs` at `index` in order. The list is left untouched when the index or any digit is invalid.
func (l *List) InsertAll(index int, vs ...Digit) error {
	if err := l.checkInsertIndex("insert", index); err != nil {
		return err
	}
	for _, v := range vs {
		if err := l.checkDigit(v); err != nil {
			return err
		}
	}
	var at *node
	if index < l.size {
		at = l.nodeAt(index)
	}
	for offset, v := range vs {
		if at == nil {
			l.append(v)
		} else {
			l.spliceIn(index+offset, &node{value: v}, at)
		}
	}
	return nil
}

// RemoveAt unlinks the digit at `index` and returns it.
func (l *List) RemoveAt(index int) (Digit, error) {
	if err := l.checkIndex("remove", index); err != nil {
		return 0, err
	}
	n := l.nodeAt(index)
	l.unlink(n)
	return n.value, nil
}

// Remove unlinks the first occurrence of `v`. It returns false if `v` is not in the list.
func (l *List) Remove(v Digit) bool {
	n := l.head
	for range l.size {
		if n.value == v {
			l.unlink(n)
			return true
		}
		n = n.next
	}
	return false
}

// RemoveAll removes every occurrence of the given digits and reports whether anything was removed.
func (l *List) RemoveAll(vs ...Digit) bool {
	return l.removeWhere(func(v Digit) bool { return slices.Contains(vs, v) })
}

// RetainAll keeps only the occurrences of the given digits and reports whether anything was removed.
func (l *List) RetainAll(vs ...Digit) bool {
	return l.removeWhere(func(v Digit) bool { return !slices.Contains(vs, v) })
}

func (l *List) removeWhere(drop func(Digit) bool) bool {
	c := &Cursor{list: l, next: l.head, gen: l.gen}
	removed := false
	for c.HasNext() {
		// The cursor is private to this loop, so Next and Remove cannot fail.
		v, _ := c.Next()
		if drop(v) {
			_ = c.Remove()
			removed = true
		}
	}
	return removed
}

func (l *List) IndexOf(v Digit) int {
	n := l.head
	for i := range l.size {
		if n.value == v {
			return i
		}
		n = n.next
	}
	return NotFound
}

func (l *List) LastIndexOf(v Digit) int {
	n := l.tail
	for i := l.size - 1; i >= 0; i-- {
		if n.value == v {
			return i
		}
		n = n.prev
	}
	return NotFound
}

func (l *List) Contains(v Digit) bool {
	return l.IndexOf(v) != NotFound
}

func (l *List) ContainsAll(vs ...Digit) bool {
	for _, v := range vs {
		if !l.Contains(v) {
			return false
		}
	}
	return true
}

// Clear drops every node.
func (l *List) Clear() {
	l.head, l.tail = nil, nil
	l.size = 0
	l.gen++
}

// Swap exchanges the digits stored at `i` and `j`. Unlike the indexed accessors, an invalid index is reported by
// returning false, leaving the list unchanged.
func (l *List) Swap(i, j int) bool {
	if i < 0 || i >= l.size || j < 0 || j >= l.size {
		return false
	}
	if i == j {
		return true
	}
	a, b := l.nodeAt(i), l.nodeAt(j)
	a.value, b.value = b.value, a.value
	return true
}

// SortAscending orders the digits from smallest to largest. Only values move; links stay as they are.
func (l *List) SortAscending() {
	l.sortWith(cmp.Compare[Digit])
}

// SortDescending orders the digits from largest to smallest.
func (l *List) SortDescending() {
	l.sortWith(utils.Reverse[Digit](cmp.Compare[Digit]))
}

func (l *List) sortWith(compare utils.CompareFn[Digit]) {
	if l.size <= 1 {
		return
	}
	values := l.ToSlice()
	slices.SortFunc(values, compare)
	n := l.head
	for _, v := range values {
		n.value = v
		n = n.next
	}
}

// ShiftLeft rotates the list one step: [1,2,3,4] becomes [2,3,4,1].
func (l *List) ShiftLeft() {
	if l.size > 1 {
		l.head = l.head.next
		l.tail = l.tail.next
		l.gen++
	}
}

// ShiftRight rotates the list one step the other way: [1,2,3,4] becomes [4,1,2,3].
func (l *List) ShiftRight() {
	if l.size > 1 {
		l.head = l.head.prev
		l.tail = l.tail.prev
		l.gen++
	}
}

// Range returns an independent copy of the digits in [from, to).
func (l *List) Range(from, to int) (*List, error) {
	if from < 0 || from > l.size {
		return nil, &IndexError{Op: "range", Index: from, Size: l.size}
	}
	if to < from || to > l.size {
		return nil, &IndexError{Op: "range", Index: to, Size: l.size}
	}
	sub := &List{radix: l.radix}
	if from == to {
		return sub, nil
	}
	n := l.nodeAt(from)
	for range to - from {
		sub.append(n.value)
		n = n.next
	}
	return sub, nil
}

// Clone returns a copy of the list built from fresh nodes.
func (l *List) Clone() *List {
	clone := &List{radix: l.radix}
	for v := range l.All() {
		clone.append(v)
	}
	return clone
}

// ToSlice returns the digits head to tail.
func (l *List) ToSlice() []Digit {
	digits := make([]Digit, 0, l.size)
	n := l.head
	for range l.size {
		digits = append(digits, n.value)
		n = n.next
	}
	return digits
}

// All yields the digits from head to tail. It stops early if the list is structurally changed while ranging.
func (l *List) All() iter.Seq[Digit] {
	return func(yield func(Digit) bool) {
		l.walk(yield, l.head, func(n *node) *node { return n.next })
	}
}

// Backward yields the digits from tail to head.
func (l *List) Backward() iter.Seq[Digit] {
	return func(yield func(Digit) bool) {
		l.walk(yield, l.tail, func(n *node) *node { return n.prev })
	}
}

func (l *List) walk(yield func(Digit) bool, start *node, step func(*node) *node) {
	gen, size := l.gen, l.size
	n := start
	for range size {
		if !yield(n.value) {
			return
		}
		if l.gen != gen {
			utils.RaiseInvariant("numlist", "modified_while_ranging",
				"Digit list was structurally changed while being ranged over.", "size", size, "newSize", l.size)
			return
		}
		n = step(n)
	}
}

// Equal reports whether both lists hold the same digits in the same order.
func (l *List) Equal(other *List) bool {
	if other == nil || l.size != other.size {
		return false
	}
	a, b := l.head, other.head
	for range l.size {
		if a.value != b.value {
			return false
		}
		a, b = a.next, b.next
	}
	return true
}

// String renders the digits head to tail; an empty list renders as "0".
func (l *List) String() string {
	if l.size == 0 {
		return "0"
	}
	var sb strings.Builder
	sb.Grow(l.size)
	n := l.head
	for range l.size {
		sb.WriteByte(digitSymbols[n.value])
		n = n.next
	}
	return sb.String()
}

// Hash is derived from String, so equal lists hash equally.
func (l *List) Hash() uint64 {
	return xxhash.Sum64String(l.String())
}

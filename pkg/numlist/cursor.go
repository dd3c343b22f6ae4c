package numlist

// Cursor walks a list in both directions and can change the list at its position. A cursor sits between two digits:
// Next returns the digit after it and Previous the digit before it.
//
// Structural changes made to the list through anything but the cursor itself invalidate it; every following call
// fails with ErrConcurrentModification.
type Cursor struct {
	list *List
	// next is the node the following Next call returns. When the cursor is at the end it is the head, since the
	// chain is circular, which makes Previous at the end yield the tail.
	next         *node
	nextIndex    int
	lastReturned *node // Target of Set / Remove; cleared by Remove and Insert.
	movedBack    bool  // Whether lastReturned came from Previous.
	gen          uint64
}

// Cursor returns a cursor positioned before the digit at `index`; `index` may be Len() to start at the end.
func (l *List) Cursor(index int) (*Cursor, error) {
	if err := l.checkInsertIndex("cursor", index); err != nil {
		return nil, err
	}
	c := &Cursor{list: l, nextIndex: index, gen: l.gen}
	if index == l.size {
		c.next = l.head
	} else {
		c.next = l.nodeAt(index)
	}
	return c, nil
}

func (c *Cursor) checkGeneration() error {
	if c.gen != c.list.gen {
		return ErrConcurrentModification
	}
	return nil
}

func (c *Cursor) HasNext() bool     { return c.nextIndex < c.list.size }
func (c *Cursor) HasPrevious() bool { return c.nextIndex > 0 }
func (c *Cursor) NextIndex() int    { return c.nextIndex }
func (c *Cursor) PreviousIndex() int {
	return c.nextIndex - 1
}

// Next moves the cursor forward and returns the digit it passed.
func (c *Cursor) Next() (Digit, error) {
	if err := c.checkGeneration(); err != nil {
		return 0, err
	}
	if !c.HasNext() {
		return 0, ErrNoSuchElement
	}
	c.lastReturned = c.next
	c.movedBack = false
	c.next = c.next.next
	c.nextIndex++
	return c.lastReturned.value, nil
}

// Previous moves the cursor backward and returns the digit it passed.
func (c *Cursor) Previous() (Digit, error) {
	if err := c.checkGeneration(); err != nil {
		return 0, err
	}
	if !c.HasPrevious() {
		return 0, ErrNoSuchElement
	}
	c.next = c.next.prev
	c.nextIndex--
	c.lastReturned = c.next
	c.movedBack = true
	return c.lastReturned.value, nil
}

// Remove unlinks the digit last returned by Next or Previous. Afterwards Next returns the digit that followed it.
func (c *Cursor) Remove() error {
	if err := c.checkGeneration(); err != nil {
		return err
	}
	if c.lastReturned == nil {
		return ErrNoCurrentElement
	}
	removed := c.lastReturned
	if c.movedBack {
		c.next = removed.next
	} else {
		c.nextIndex--
	}
	c.list.unlink(removed)
	if c.list.size == 0 {
		c.next = nil
	}
	c.lastReturned = nil
	c.gen = c.list.gen
	return nil
}

// Set replaces the digit last returned by Next or Previous.
func (c *Cursor) Set(v Digit) error {
	if err := c.checkGeneration(); err != nil {
		return err
	}
	if c.lastReturned == nil {
		return ErrNoCurrentElement
	}
	if err := c.list.checkDigit(v); err != nil {
		return err
	}
	c.lastReturned.value = v
	return nil
}

// Insert links `v` right before the cursor; the following Next is unaffected and Previous returns `v`.
func (c *Cursor) Insert(v Digit) error {
	if err := c.checkGeneration(); err != nil {
		return err
	}
	if err := c.list.checkDigit(v); err != nil {
		return err
	}
	n := &node{value: v}
	c.list.spliceIn(c.nextIndex, n, c.next)
	c.next = n.next
	c.nextIndex++
	c.lastReturned = nil
	c.gen = c.list.gen
	return nil
}

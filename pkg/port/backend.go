package port

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nobletooth/octa/pkg/numio"
	"github.com/nobletooth/octa/pkg/numlist"
	"github.com/nobletooth/octa/pkg/scan"
	"github.com/nobletooth/octa/pkg/storage"
)

// ErrKeyExists is returned by RESTORE when the target key already holds a number.
var ErrKeyExists = errors.New("target key name already exists")

// NumberBackend is the storage backend used by octa ports, e.g. Redis. Digit lists aren't safe for concurrent use,
// so every call holds the backend lock for its whole duration.
type NumberBackend struct {
	mux     sync.Mutex
	store   storage.NumberStore
	renders *renderCache
}

// NewNumberBackend wraps `store`; the backend owns it from now on and closes it in Close.
func NewNumberBackend(store storage.NumberStore) (*NumberBackend, error) {
	if store == nil {
		return nil, errors.New("expected a non-nil number store")
	}
	return &NumberBackend{store: store, renders: newRenderCache()}, nil
}

// read runs `fn` on the number stored at `key`.
func (nb *NumberBackend) read(key string, fn func(list *numlist.List) error) error {
	nb.mux.Lock()
	defer nb.mux.Unlock()

	list, err := nb.store.Get(key)
	if err != nil {
		return err
	}
	return fn(list)
}

// derive stores the result of `fn` over the numbers at `srcKeys` under `dst`.
func (nb *NumberBackend) derive(dst string, fn func(srcs ...*numlist.List) (*numlist.List, error),
	srcKeys ...string) error {
	nb.mux.Lock()
	defer nb.mux.Unlock()

	srcs := make([]*numlist.List, len(srcKeys))
	for i, key := range srcKeys {
		list, err := nb.store.Get(key)
		if err != nil {
			return err
		}
		srcs[i] = list
	}
	result, err := fn(srcs...)
	if err != nil {
		return err
	}
	return nb.store.Set(dst, result)
}

// SetDecimal parses `decimal` and stores it as an octal number under `key`.
func (nb *NumberBackend) SetDecimal(key, decimal string) error {
	list, err := numlist.Parse(decimal)
	if err != nil {
		return err
	}
	nb.mux.Lock()
	defer nb.mux.Unlock()
	return nb.store.Set(key, list)
}

// Digits returns the digits of the number at `key` in its own radix.
func (nb *NumberBackend) Digits(key string) (digits string, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		digits = list.String()
		return nil
	})
	return digits, err
}

// Decimal returns the base 10 rendering of the number at `key`.
func (nb *NumberBackend) Decimal(key string) (decimal string, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		decimal = nb.renders.decimal(list)
		return nil
	})
	return decimal, err
}

func (nb *NumberBackend) Len(key string) (size int, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		size = list.Len()
		return nil
	})
	return size, err
}

func (nb *NumberBackend) Get(key string, index int) (digit numlist.Digit, err error) {
	err = nb.read(key, func(list *numlist.List) (err error) {
		digit, err = list.Get(index)
		return err
	})
	return digit, err
}

// Put replaces the digit at `index` and returns the one it replaced.
func (nb *NumberBackend) Put(key string, index int, digit numlist.Digit) (previous numlist.Digit, err error) {
	err = nb.read(key, func(list *numlist.List) (err error) {
		previous, err = list.Set(index, digit)
		return err
	})
	return previous, err
}

func (nb *NumberBackend) Insert(key string, index int, digit numlist.Digit) error {
	return nb.read(key, func(list *numlist.List) error { return list.Insert(index, digit) })
}

func (nb *NumberBackend) RemoveAt(key string, index int) (removed numlist.Digit, err error) {
	err = nb.read(key, func(list *numlist.List) (err error) {
		removed, err = list.RemoveAt(index)
		return err
	})
	return removed, err
}

// Remove drops the first occurrence of `digit` and reports whether there was one.
func (nb *NumberBackend) Remove(key string, digit numlist.Digit) (removed bool, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		removed = list.Remove(digit)
		return nil
	})
	return removed, err
}

// RemoveAll drops every occurrence of `digits` and reports whether anything changed.
func (nb *NumberBackend) RemoveAll(key string, digits ...numlist.Digit) (changed bool, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		changed = list.RemoveAll(digits...)
		return nil
	})
	return changed, err
}

// RetainAll keeps only occurrences of `digits` and reports whether anything changed.
func (nb *NumberBackend) RetainAll(key string, digits ...numlist.Digit) (changed bool, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		changed = list.RetainAll(digits...)
		return nil
	})
	return changed, err
}

func (nb *NumberBackend) IndexOf(key string, digit numlist.Digit) (index int, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		index = list.IndexOf(digit)
		return nil
	})
	return index, err
}

func (nb *NumberBackend) LastIndexOf(key string, digit numlist.Digit) (index int, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		index = list.LastIndexOf(digit)
		return nil
	})
	return index, err
}

// Contains reports whether the number at `key` has every one of `digits`.
func (nb *NumberBackend) Contains(key string, digits ...numlist.Digit) (found bool, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		found = list.ContainsAll(digits...)
		return nil
	})
	return found, err
}

// Swap exchanges two digits; it reports false and changes nothing when either index is out of range.
func (nb *NumberBackend) Swap(key string, i, j int) (swapped bool, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		swapped = list.Swap(i, j)
		return nil
	})
	return swapped, err
}

func (nb *NumberBackend) Sort(key string, descending bool) error {
	return nb.read(key, func(list *numlist.List) error {
		if descending {
			list.SortDescending()
		} else {
			list.SortAscending()
		}
		return nil
	})
}

// Shift rotates the digits of the number at `key` by one position.
func (nb *NumberBackend) Shift(key string, left bool) error {
	return nb.read(key, func(list *numlist.List) error {
		if left {
			list.ShiftLeft()
		} else {
			list.ShiftRight()
		}
		return nil
	})
}

func (nb *NumberBackend) Clear(key string) error {
	return nb.read(key, func(list *numlist.List) error {
		list.Clear()
		return nil
	})
}

// Range stores the digits [from, to) of `src` under `dst`.
func (nb *NumberBackend) Range(dst, src string, from, to int) error {
	return nb.derive(dst, func(srcs ...*numlist.List) (*numlist.List, error) {
		return srcs[0].Range(from, to)
	}, src)
}

// ToBase10 stores the decimal digits of `src` under `dst`.
func (nb *NumberBackend) ToBase10(dst, src string) error {
	return nb.derive(dst, func(srcs ...*numlist.List) (*numlist.List, error) {
		return srcs[0].ConvertToBase10(), nil
	}, src)
}

// Multiply stores the product of `a` and `b` under `dst`, in the radix of `a`.
func (nb *NumberBackend) Multiply(dst, a, b string) error {
	return nb.derive(dst, func(srcs ...*numlist.List) (*numlist.List, error) {
		return srcs[0].Multiply(srcs[1])
	}, a, b)
}

// Load reads the decimal numeral file at `path` into `key`.
func (nb *NumberBackend) Load(key, path string) error {
	list, err := numio.Load(path)
	if err != nil {
		return err
	}
	nb.mux.Lock()
	defer nb.mux.Unlock()
	return nb.store.Set(key, list)
}

// Save writes the number at `key` to `path` as a decimal numeral.
func (nb *NumberBackend) Save(key, path string) error {
	return nb.read(key, func(list *numlist.List) error { return numio.Save(path, list) })
}

// Dump returns the packed form of the number at `key`.
func (nb *NumberBackend) Dump(key string) (payload []byte, err error) {
	err = nb.read(key, func(list *numlist.List) error {
		payload = pack(list)
		return nil
	})
	return payload, err
}

// Restore stores the packed number `payload` under `key`. Unless `replace` is set, an existing key is an error.
func (nb *NumberBackend) Restore(key string, payload []byte, replace bool) error {
	list, err := unpack(payload)
	if err != nil {
		return err
	}
	nb.mux.Lock()
	defer nb.mux.Unlock()

	if !replace {
		if _, err := nb.store.Get(key); err == nil {
			return ErrKeyExists
		} else if !errors.Is(err, storage.ErrKeyNotFound) {
			return err
		}
	}
	return nb.store.Set(key, list)
}

// Delete removes every existing key of `keys` and returns how many there were.
func (nb *NumberBackend) Delete(keys ...string) (deleted int, err error) {
	nb.mux.Lock()
	defer nb.mux.Unlock()

	for _, key := range keys {
		err := nb.store.Delete(key)
		if errors.Is(err, storage.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", key, err)
		}
		deleted++
	}
	return deleted, nil
}

// Keys lists the stored keys matching the glob `pattern`, in ascending order.
func (nb *NumberBackend) Keys(pattern string) ([]string, error) {
	nb.mux.Lock()
	defer nb.mux.Unlock()

	matches, err := scan.MatchGlob(pattern, nb.store.Keys())
	if err != nil {
		return nil, err
	}
	return slices.Collect(matches), nil
}

func (nb *NumberBackend) Close() error {
	nb.mux.Lock()
	defer nb.mux.Unlock()
	return nb.store.Close()
}

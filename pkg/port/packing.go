// Octa packs numbers for DUMP / RESTORE into a compact binary payload:
//
//	[radix: 1 byte][digit count: uvarint][digits][checksum: 8 bytes, big endian xxhash of everything before it]
//
// Digits of radix 16 or lower take a nibble each, high nibble first, and an odd count leaves the last low nibble
// zero. Digits of wider radices take a byte each.

package port

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/octa/pkg/numlist"
)

const (
	maxNibbleRadix = 16
	checksumSize   = 8
)

var ErrBadPayload = errors.New("bad DUMP payload")

// pack serializes `list` into a DUMP payload.
func pack(list *numlist.List) []byte {
	count := list.Len()
	digitBytes := count
	if list.Radix() <= maxNibbleRadix {
		digitBytes = (count + 1) / 2
	}
	buffer := make([]byte, 0, 1+binary.MaxVarintLen64+digitBytes+checksumSize)
	buffer = append(buffer, byte(list.Radix()))
	buffer = binary.AppendUvarint(buffer, uint64(count))

	i := 0
	for digit := range list.All() {
		switch {
		case list.Radix() > maxNibbleRadix:
			buffer = append(buffer, byte(digit))
		case i%2 == 0:
			buffer = append(buffer, byte(digit)<<4)
		default:
			buffer[len(buffer)-1] |= byte(digit)
		}
		i++
	}
	return binary.BigEndian.AppendUint64(buffer, xxhash.Sum64(buffer))
}

// unpack deserializes a DUMP payload, rejecting anything pack could not have produced.
func unpack(packed []byte) (*numlist.List, error) {
	if len(packed) < 1+1+checksumSize {
		return nil, fmt.Errorf("%w: too short", ErrBadPayload)
	}
	body, checksum := packed[:len(packed)-checksumSize], packed[len(packed)-checksumSize:]
	if xxhash.Sum64(body) != binary.BigEndian.Uint64(checksum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrBadPayload)
	}

	radix := int(body[0])
	count, n := binary.Uvarint(body[1:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: malformed digit count", ErrBadPayload)
	}
	packedDigits := body[1+n:]
	if count > 2*uint64(len(packedDigits)) {
		return nil, fmt.Errorf("%w: %d digits do not fit in %d bytes", ErrBadPayload, count, len(packedDigits))
	}
	nibbles := radix <= maxNibbleRadix
	expectedLen := count
	if nibbles {
		expectedLen = (count + 1) / 2
	}
	if uint64(len(packedDigits)) != expectedLen {
		return nil, fmt.Errorf("%w: expected %d digit bytes, got %d", ErrBadPayload, expectedLen, len(packedDigits))
	}

	digits := make([]numlist.Digit, 0, count)
	for _, b := range packedDigits {
		if !nibbles {
			digits = append(digits, numlist.Digit(b))
			continue
		}
		digits = append(digits, numlist.Digit(b>>4))
		if uint64(len(digits)) < count {
			digits = append(digits, numlist.Digit(b&0x0f))
		} else if b&0x0f != 0 {
			return nil, fmt.Errorf("%w: non-zero padding", ErrBadPayload)
		}
	}
	list, err := numlist.FromDigits(radix, digits...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return list, nil
}

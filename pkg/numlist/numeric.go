// Numeric operations read the digit sequence as a numeral in the list's radix and hand the arithmetic to math/big.
// Results are always materialized as new lists; operands are never touched.

package numlist

import (
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
)

var decimalNumeral = regexp.MustCompile(`^[0-9]+$`)

// Parse builds an octal list from a decimal numeral such as "64" (which yields the digits 1, 0, 0).
func Parse(decimal string) (*List, error) {
	if !decimalNumeral.MatchString(decimal) {
		return nil, fmt.Errorf("%w: %q is not a decimal numeral", ErrFormat, decimal)
	}
	value, ok := new(big.Int).SetString(decimal, 10 /*base*/)
	if !ok {
		return nil, fmt.Errorf("%w: failed to parse %q", ErrFormat, decimal)
	}
	return fromBigInt(value, DefaultRadix), nil
}

// ParseOrEmpty is Parse for callers that accept an empty list in place of an error.
// Check Len() afterwards to tell a failed parse apart.
func ParseOrEmpty(decimal string) *List {
	l, err := Parse(decimal)
	if err != nil {
		slog.Debug("Numeral could not be parsed, using an empty list.", "error", err)
		return New()
	}
	return l
}

// fromBigInt lays out a non-negative value as digits of the given radix.
func fromBigInt(value *big.Int, radix int) *List {
	text := value.Text(radix)
	l := &List{radix: radix}
	for i := range len(text) {
		l.append(digitOf(text[i]))
	}
	return l
}

// digitOf maps a symbol produced by big.Int.Text back to its value.
func digitOf(symbol byte) Digit {
	switch {
	case symbol >= '0' && symbol <= '9':
		return Digit(symbol - '0')
	default:
		return Digit(symbol-'a') + 10
	}
}

// BigInt returns the value of the digit sequence; an empty list is zero.
func (l *List) BigInt() *big.Int {
	value := new(big.Int)
	radix := big.NewInt(int64(l.radix))
	digit := new(big.Int)
	for v := range l.All() {
		value.Mul(value, radix)
		value.Add(value, digit.SetUint64(uint64(v)))
	}
	return value
}

// ToDecimalString renders the value in base 10; an empty list renders as "0".
func (l *List) ToDecimalString() string {
	return l.BigInt().Text(10)
}

// ConvertToBase10 returns the value as a new list of decimal digits. Zero becomes a single 0 digit.
func (l *List) ConvertToBase10() *List {
	return fromBigInt(l.BigInt(), 10)
}

// ConvertTo returns the value as a new list in the given radix.
func (l *List) ConvertTo(radix int) (*List, error) {
	if radix < MinRadix || radix > MaxRadix {
		return nil, fmt.Errorf("%w: radix %d is outside [%d, %d]", ErrUnsupported, radix, MinRadix, MaxRadix)
	}
	return fromBigInt(l.BigInt(), radix), nil
}

// Multiply returns the product of both values in the receiver's radix. `other` must be a *List.
func (l *List) Multiply(other Sequence) (*List, error) {
	operand, ok := other.(*List)
	if !ok || operand == nil {
		return nil, fmt.Errorf("%w: got %T", ErrTypeMismatch, other)
	}
	product := new(big.Int).Mul(l.BigInt(), operand.BigInt())
	return fromBigInt(product, l.radix), nil
}

package utils

import (
	"cmp"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverse(t *testing.T) {
	values := []int{3, 1, 4, 1, 5}
	slices.SortFunc(values, Reverse[int](cmp.Compare[int]))
	assert.Equal(t, []int{5, 4, 3, 1, 1}, values)
}

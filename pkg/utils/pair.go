package utils

// Pair couples a key with its value, e.g. while iterating over ordered stores.
type Pair[K any, V any] struct {
	Key   K
	Value V
}

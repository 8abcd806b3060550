package internal

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeqConcat(t *testing.T) {
	assert := assert.New(t)

	seq := IterSeqConcat(slices.Values([]int{1, 2}), slices.Values([]int{}), slices.Values([]int{3}))
	assert.Equal([]int{1, 2, 3}, slices.Collect(seq))

	var first []int
	for v := range seq {
		first = append(first, v)
		if v == 2 {
			break
		}
	}
	assert.Equal([]int{1, 2}, first)
}

func TestIterSorted(t *testing.T) {
	assert := assert.New(t)

	m := map[string]int{"b": 2, "a": 1, "c": 3}

	var keys []string
	for key, value := range IterSorted(m) {
		keys = append(keys, key)
		assert.Equal(m[key], value)
	}
	assert.Equal([]string{"a", "b", "c"}, keys)

	both := maps.Collect(IterSeq2Concat(IterSorted(map[string]int{"x": 9}), IterSorted(m)))
	assert.Equal(4, len(both))
}

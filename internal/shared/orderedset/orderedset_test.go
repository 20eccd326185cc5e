package orderedset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetKeepsFirstInsertionOrder(t *testing.T) {
	s := New("Kuat", "Corellia")
	assert.True(t, s.Add("Bespin"))
	assert.False(t, s.Add("Kuat"))

	assert.Equal(t, []string{"Kuat", "Corellia", "Bespin"}, s.Items())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("Corellia"))
	assert.False(t, s.Contains("Hoth"))
}

func TestZeroValueSetIsUsable(t *testing.T) {
	var s Set[int]
	assert.False(t, s.Contains(1))
	assert.True(t, s.Add(1))
	assert.Equal(t, []int{1}, s.Items())
}

func TestItemsReturnsCopy(t *testing.T) {
	s := New(1, 2)
	items := s.Items()
	items[0] = 99
	assert.Equal(t, []int{1, 2}, s.Items())
}

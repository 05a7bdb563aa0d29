package memory_test

import (
	"fmt"
	"testing"

	"github.com/petasbytes/go-chatbot/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EmptyRendersNothing(t *testing.T) {
	s := memory.NewStore(0, "")
	assert.Equal(t, memory.DefaultCapacity, s.Capacity())
	assert.Equal(t, memory.DropNewest, s.Policy())
	assert.Equal(t, "", s.Render())
	assert.Empty(t, s.Slots())
}

func TestStore_SaveAndRender(t *testing.T) {
	s := memory.NewStore(5, memory.DropNewest)
	assert.True(t, s.Save("allergic to peanuts"))
	assert.True(t, s.Save("prefers metric units"))

	assert.Equal(t, "0: allergic to peanuts\n1: prefers metric units", s.Render())
	assert.Equal(t, []memory.Slot{
		{Index: 0, Text: "allergic to peanuts"},
		{Index: 1, Text: "prefers metric units"},
	}, s.Slots())
}

func TestStore_BoundHoldsForEverySave(t *testing.T) {
	for _, policy := range []memory.OverflowPolicy{memory.DropNewest, memory.DropOldest} {
		t.Run(string(policy), func(t *testing.T) {
			s := memory.NewStore(3, policy)
			for i := 0; i < 20; i++ {
				s.Save(fmt.Sprintf("fact %d", i))
				require.LessOrEqual(t, s.Len(), 3)
			}
		})
	}
}

func TestStore_OverflowDropsNewest(t *testing.T) {
	s := memory.NewStore(5, memory.DropNewest)
	for i := 0; i < 5; i++ {
		require.True(t, s.Save(fmt.Sprintf("m%d", i)))
	}

	kept := s.Save("m5")
	assert.False(t, kept, "the just-appended entry is the one dropped")
	assert.Equal(t, "0: m0\n1: m1\n2: m2\n3: m3\n4: m4", s.Render())
}

func TestStore_OverflowDropsOldest(t *testing.T) {
	s := memory.NewStore(2, memory.DropOldest)
	s.Save("a")
	s.Save("b")
	assert.True(t, s.Save("c"))
	assert.Equal(t, "0: b\n1: c", s.Render())
}

func TestStore_DuplicateTextIsDistinctAppend(t *testing.T) {
	s := memory.NewStore(3, memory.DropNewest)
	s.Save("same")
	s.Save("same")
	assert.Equal(t, 2, s.Len())
}

func TestStore_DeleteRebasesIndices(t *testing.T) {
	s := memory.NewStore(5, memory.DropNewest)
	for _, f := range []string{"a", "b", "c", "d"} {
		s.Save(f)
	}
	before := s.Slots()

	removed, err := s.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed)

	after := s.Slots()
	require.Len(t, after, len(before)-1)
	for i, slot := range after {
		assert.Equal(t, i, slot.Index, "no gaps")
	}
	// Everything previously beyond the deleted index moved down by exactly one.
	for _, old := range before[2:] {
		assert.Equal(t, old.Text, after[old.Index-1].Text)
	}
	assert.Equal(t, "a", after[0].Text)
}

func TestStore_DeleteOutOfRange(t *testing.T) {
	s := memory.NewStore(5, memory.DropNewest)
	s.Save("only")

	for _, idx := range []int{-1, 1, 99} {
		_, err := s.Delete(idx)
		assert.ErrorIs(t, err, memory.ErrIndexOutOfRange, "index %d", idx)
	}
	assert.Equal(t, 1, s.Len())
}

func TestParseOverflowPolicy(t *testing.T) {
	p, err := memory.ParseOverflowPolicy("")
	require.NoError(t, err)
	assert.Equal(t, memory.DropNewest, p)

	p, err = memory.ParseOverflowPolicy(" Drop_Oldest ")
	require.NoError(t, err)
	assert.Equal(t, memory.DropOldest, p)

	_, err = memory.ParseOverflowPolicy("lru")
	assert.Error(t, err)
}

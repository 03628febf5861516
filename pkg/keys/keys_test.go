package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidates(t *testing.T) {
	tap := Tap{Primary: 'c', Alternates: []uint16{'x', 0, 'v', 'd'}}

	tests := []struct {
		name string
		max  int
		want []uint16
	}{
		{"primary only", 0, []uint16{'c'}},
		{"one alternate", 1, []uint16{'c', 'x'}},
		{"zero codes dropped", 3, []uint16{'c', 'x', 'v'}},
		{"cap above available", 10, []uint16{'c', 'x', 'v', 'd'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tap.Candidates(tt.max, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := tap.Candidates(-1, nil)
	assert.ErrorIs(t, err, ErrInvalidAlternates)
	assert.Equal(t, []uint16{'c'}, tap.AppendCandidates(-1, nil))
	assert.Equal(t, []uint16{'a', 'c', 'x'}, tap.AppendCandidates(1, []uint16{'a'}))
}

func TestMatchesFoldsStoredCase(t *testing.T) {
	assert.True(t, Matches('a', 'a'))
	assert.True(t, Matches('a', 'A'))
	assert.True(t, Matches('A', 'A'))
	assert.False(t, Matches('A', 'a'))
	assert.True(t, Matches('é', 'É'))
	assert.True(t, Matches('ж', 'Ж'))
	assert.False(t, Matches('b', 'a'))
	assert.Equal(t, uint16(0xD800), Fold(0xD800))
}

func TestUnpackRoundTrip(t *testing.T) {
	codes := []int{
		'c', 'x', 'v', 0,
		'a', 0, 0, 0,
		't', 'r', 0, 'y', // alternates stop at the first empty slot
	}
	taps, err := Unpack(codes, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []Tap{
		{Primary: 'c', Alternates: []uint16{'x', 'v'}},
		{Primary: 'a'},
		{Primary: 't', Alternates: []uint16{'r'}},
	}, taps)

	packed := Pack(taps, 4)
	assert.Equal(t, []int{'c', 'x', 'v', 0, 'a', 0, 0, 0, 't', 'r', 0, 0}, packed)

	_, err = Unpack(codes, 4, 4)
	assert.ErrorIs(t, err, ErrInvalidAlternates)
	_, err = Unpack(codes, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidAlternates)
}

func TestFromString(t *testing.T) {
	taps := FromString("hi😀")
	require.Len(t, taps, 4)
	assert.Equal(t, uint16('h'), taps[0].Primary)
	assert.Empty(t, taps[0].Alternates)
}

func TestLayoutNeighbors(t *testing.T) {
	assert.Equal(t, []uint16{'v', 'x', 'd', 'f'}, QWERTY.Neighbors('c'))
	assert.Equal(t, QWERTY.Neighbors('c'), QWERTY.Neighbors('C'))
	assert.Contains(t, QWERTY.Neighbors('q'), uint16('w'))
	assert.NotContains(t, QWERTY.Neighbors('q'), uint16('p'))
	assert.Empty(t, QWERTY.Neighbors('1'))

	taps := QWERTY.Taps("Cat", 2)
	require.Len(t, taps, 3)
	assert.Equal(t, Tap{Primary: 'c', Alternates: []uint16{'v', 'x'}}, taps[0])
	assert.Len(t, QWERTY.Taps("cat", 0)[0].Alternates, 0)

	l, err := LayoutByName("AZERTY")
	require.NoError(t, err)
	assert.Equal(t, "azerty", l.Name)
	_, err = LayoutByName("colemak")
	assert.Error(t, err)
}

package bitmagic

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBitFieldRejectsNonIntegers(t *testing.T) {
	for _, v := range []any{"", "3857", 98.88, map[string]int{}, map[string]int{"hi": 5}, nil, (*big.Int)(nil), []int{1}} {
		_, err := NewBitField(v)
		assert.Truef(t, errors.Is(err, ErrInput), "value %#v", v)
	}
}

func TestNewBitFieldValues(t *testing.T) {
	bf, err := NewBitField(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bf.Value().Int64())

	bf, err = NewBitField(uint16(874))
	require.NoError(t, err)
	assert.Equal(t, int64(874), bf.Value().Int64())

	huge := new(big.Int).Lsh(big.NewInt(1), 65)
	bf, err = NewBitField(huge)
	require.NoError(t, err)
	assert.Equal(t, 0, bf.Value().Cmp(huge))

	// Value 返回副本
	bf.Value().SetInt64(1)
	assert.Equal(t, 0, bf.Value().Cmp(huge))
}

func TestReadBits(t *testing.T) {
	bf, _ := NewBitField(157) // 10011101
	assert.Equal(t, map[int]uint{0: 1, 1: 0, 2: 1, 3: 1, 7: 1}, bf.ReadBits(0, 1, 2, 3, 7))

	neg, _ := NewBitField(-1)
	assert.Equal(t, map[int]uint{0: 1, 100: 1, 1000: 1}, neg.ReadBits(0, 100, 1000))
}

func TestReadField(t *testing.T) {
	bf, _ := NewBitField(39) // 100111
	cases := []struct {
		positions []int
		want      int64
	}{
		{[]int{0, 1, 2}, 7},
		{[]int{0, 1, 2, 3}, 7},
		{[]int{0}, 1},
		{[]int{3}, 0},
		{[]int{0, 1, 2, 3, 4, 5}, 39},
		{[]int{0, 0, 0}, 7},
		{[]int{5}, 1},
		{[]int{4, 5}, 2},
		{[]int{-1, 0}, 2},
		{nil, 0},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, bf.ReadField(c.positions...).Int64(), "positions %v", c.positions)
	}
}

func TestWriteBits(t *testing.T) {
	bf, _ := NewBitField(5)
	v, err := bf.WriteBits(map[int]any{1: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int64())
	assert.Equal(t, int64(7), bf.Value().Int64())

	v, err = bf.WriteBits(map[int]any{3: true, 2: false, 1: false})
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.Int64())
}

func TestWriteBitsAcceptsBooleanLikeValues(t *testing.T) {
	bf, _ := NewBitField(25)
	v, err := bf.WriteBits(map[int]any{2: true, 1: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(31), v.Int64())

	v, err = bf.WriteBits(map[int]any{2: false, 1: uint8(0)})
	require.NoError(t, err)
	assert.Equal(t, int64(25), v.Int64())

	for _, bad := range []any{-1, 2, "", "0", []int{}, map[string]int{}, 1.0, nil} {
		_, err := bf.WriteBits(map[int]any{2: bad})
		assert.Truef(t, errors.Is(err, ErrInput), "value %#v", bad)
	}
	assert.Equal(t, int64(25), bf.Value().Int64())
}

func TestWriteBitsNegativeIndex(t *testing.T) {
	bf, _ := NewBitField(5)
	_, err := bf.WriteBits(map[int]any{0: false, -8: false})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInput))
	// 校验失败时不做任何修改
	assert.Equal(t, int64(5), bf.Value().Int64())
}

func TestWriteBitsTwosComplement(t *testing.T) {
	bf, _ := NewBitField(-1)
	v, _ := bf.WriteBits(map[int]any{0: false})
	assert.Equal(t, int64(-2), v.Int64())
	v, _ = bf.WriteBits(map[int]any{1: false})
	assert.Equal(t, int64(-4), v.Int64())
	v, _ = bf.WriteBits(map[int]any{0: true, 1: true})
	assert.Equal(t, int64(-1), v.Int64())

	bf, _ = NewBitField(-1)
	v, _ = bf.WriteBits(map[int]any{63: false})
	want := new(big.Int).Lsh(big.NewInt(1), 63)
	want.Add(want, big.NewInt(1)).Neg(want)
	assert.Equal(t, 0, v.Cmp(want), "got %s", v)
	v, _ = bf.WriteBits(map[int]any{63: true})
	assert.Equal(t, int64(-1), v.Int64())
}

func TestWriteBackWhatWasRead(t *testing.T) {
	values := []int64{0, 1, 5, 39, 157, 874, -1, -2, -37, 1 << 40}
	positions := [][]int{{0}, {0, 1, 2}, {7, 3, 1}, {63, 64, 65}, {2, 9, 4, 100}}
	for _, value := range values {
		for _, ps := range positions {
			bf, _ := NewBitField(value)
			bits := make(map[int]any)
			for p, b := range bf.ReadBits(ps...) {
				bits[p] = int(b)
			}
			got, err := bf.WriteBits(bits)
			require.NoError(t, err)
			assert.Equalf(t, value, got.Int64(), "value %d positions %v", value, ps)
		}
	}
}

package bitmagic

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label string

type badName struct {
	X int
}

func settingsTable(t *testing.T, opts ...TableOption) *Table {
	t.Helper()
	tbl, err := NewTableWithOptions("settings", []Entry{
		Field(0, "is_odd"),
		Field(Span(1, 3), "amount"),
		Field(4, "is_cool"),
	}, opts...)
	require.NoError(t, err)
	return tbl
}

func TestNewTable(t *testing.T) {
	tbl := settingsTable(t)
	assert.Equal(t, "settings", tbl.Name())
	assert.Equal(t, []string{"is_odd", "amount", "is_cool"}, tbl.FieldNames())
	assert.Equal(t, map[string][]int{"is_odd": {0}, "amount": {1, 2, 3}, "is_cool": {4}}, tbl.FieldList())
	assert.Equal(t, 5, tbl.DistinctBitCount())
	assert.Equal(t, 4, tbl.MaxBit())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, tbl.Bits())
	assert.Equal(t, DefaultAttributeName, tbl.AttributeName())
	assert.Equal(t, int64(0), tbl.Default().Int64())

	positions, ok := tbl.Positions("amount")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, positions)
	_, ok = tbl.Positions("nope")
	assert.False(t, ok)

	// 返回的都是副本
	tbl.FieldList()["amount"][0] = 9
	tbl.Fields()[1].Positions[0] = 9
	positions[0] = 9
	positions, _ = tbl.Positions("amount")
	assert.Equal(t, []int{1, 2, 3}, positions)
}

func TestNewTableFieldKeys(t *testing.T) {
	tbl, err := NewTable("keys",
		Field(uint8(0), "a"),
		Field(Range{From: 1, To: 4, Exclusive: true}, "b"),
		Field([]int{9, 7, 8}, "c"),
		Field([]any{10, []int{11, 12}, Span(14, 15)}, "d"),
		Field(&Range{From: 20, To: 20}, label("e")),
	)
	require.NoError(t, err)
	assert.Equal(t, []FieldSpec{
		{Name: "a", Positions: []int{0}},
		{Name: "b", Positions: []int{1, 2, 3}},
		{Name: "c", Positions: []int{9, 7, 8}},
		{Name: "d", Positions: []int{10, 11, 12, 14, 15}},
		{Name: "e", Positions: []int{20}},
	}, tbl.Fields())
	assert.Equal(t, 20, tbl.MaxBit())
}

func TestNewTableOverlappingFields(t *testing.T) {
	tbl, err := NewTable("alias",
		Field([]int{0, 1}, "low"),
		Field([]int{1, 2}, "high"),
		Field(1, "middle"),
	)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1, 2, 1}, tbl.Bits())
	assert.Equal(t, []int{0, 1, 2}, tbl.UniqueBits())
	assert.Equal(t, 3, tbl.DistinctBitCount())
}

func TestNewTableEmpty(t *testing.T) {
	tbl, err := NewTable("empty")
	require.NoError(t, err)
	assert.Equal(t, -1, tbl.MaxBit())
	assert.Equal(t, 0, tbl.DistinctBitCount())
	assert.Empty(t, tbl.Fields())
	assert.Equal(t, 0, tbl.Space().Length())
}

func TestNewTableOptions(t *testing.T) {
	tbl, err := NewTable("opts",
		Field(0, "a"),
		Option("attributeName", "settings"),
		Option("default", 7),
		Option("foo", "bar"),
		Entry{Key: 3.5, Value: "x"},
	)
	require.NoError(t, err)
	assert.Equal(t, "settings", tbl.AttributeName())
	assert.Equal(t, int64(7), tbl.Default().Int64())

	opts := tbl.Options()
	v, ok := opts.Extra("foo")
	require.True(t, ok)
	assert.Equal(t, "bar", v)
	v, ok = opts.Extra(3.5)
	require.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = opts.Extra("default")
	assert.False(t, ok)

	// Options 返回副本
	opts.Default.SetInt64(100)
	assert.Equal(t, int64(7), tbl.Default().Int64())
}

func TestNewTableFunctionalOptions(t *testing.T) {
	tbl, err := NewTableWithOptions("opts",
		[]Entry{Field(0, "a"), Option("default", 1)},
		WithDefault(3),
		WithAttributeName("bits"),
	)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tbl.Default().Int64())
	assert.Equal(t, "bits", tbl.AttributeName())

	huge := new(big.Int).Lsh(big.NewInt(1), 80)
	tbl, err = NewTableWithOptions("big", nil, WithBigDefault(huge))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Default().Cmp(huge))
}

func TestNewTableBadOptionTypes(t *testing.T) {
	for _, e := range []Entry{
		Option("default", "x"),
		Option("attributeName", 3),
		Option("attributeName", ""),
		Option("updater", "x"),
		Option("boolCaster", 1),
		Option("allowFailedFields", "yes"),
		Option("helpers", 0),
	} {
		_, err := NewTable("bad", e)
		assert.Truef(t, errors.Is(err, ErrField), "entry %#v", e)
	}
}

func TestNewTableBadFieldNames(t *testing.T) {
	for _, name := range []any{5, nil, "", 3.2, badName{X: 1}, []string{"a"}} {
		_, err := NewTable("bad", Field(0, name))
		require.Error(t, err)
		assert.Truef(t, errors.Is(err, ErrField), "name %#v", name)
		assert.Contains(t, err.Error(), fmt.Sprintf("%#v", name))
	}
}

func TestNewTableDuplicateName(t *testing.T) {
	_, err := NewTable("dup", Field(0, "a"), Field(1, "b"), Field(2, "a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrField))
	assert.Contains(t, err.Error(), "'a'")
}

func TestNewTableAmbiguousKeys(t *testing.T) {
	bad := []any{
		-1,
		Range{From: 5, To: 2},
		Range{From: -1, To: 2},
		Range{From: 3, To: 3, Exclusive: true},
		[]int{},
		[]int{1, -2},
		[]any{1, "x"},
		[]any{1, 2.5},
		new(big.Int).Lsh(big.NewInt(1), 70),
	}
	for _, key := range bad {
		_, err := NewTable("bad", Field(key, "a"))
		require.Errorf(t, err, "key %#v", key)
		assert.True(t, errors.Is(err, ErrField))
		assert.Contains(t, err.Error(), "valid field declaration")
	}
}

func TestNewTableAllowFailedFields(t *testing.T) {
	// allowFailedFields 与声明顺序无关
	tbl, err := NewTable("lenient",
		Field(-1, "neg"),
		Field(Range{From: 5, To: 2}, "desc"),
		Field(0, "a"),
		Option("allowFailedFields", true),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tbl.FieldNames())

	opts := tbl.Options()
	assert.True(t, opts.AllowFailedFields)
	v, ok := opts.Extra(-1)
	require.True(t, ok)
	assert.Equal(t, "neg", v)
	v, ok = opts.Extra(Range{From: 5, To: 2})
	require.True(t, ok)
	assert.Equal(t, "desc", v)

	tbl, err = NewTableWithOptions("lenient", []Entry{Field([]int{}, "empty"), Field(1, "b")}, WithAllowFailedFields(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, tbl.FieldNames())
}

func TestTableSpaceIsMemoised(t *testing.T) {
	tbl := settingsTable(t, WithDefault(8))
	s := tbl.Space()
	assert.Same(t, s, tbl.Space())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.Bits())
	assert.Equal(t, int64(8), s.Default().Int64())
}

package tsv

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/wildmap/bitmagic"
)

const header = "key\tvalue\tremark\n位置\t名称\t备注\nposition\tname\tcomment\n"

func writeTSV(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".tsv"), []byte(header+body), 0o644))
	return dir
}

func TestLoadTable(t *testing.T) {
	dir := writeTSV(t, "settings", strings.Join([]string{
		"0\tis_odd\t奇数",
		"1..3\tamount\t数量",
		"[4]\tis_cool",
		"[5, [6, 7]]\tmode\t",
		"8...10\tlevel\t左闭右开",
		"",
		"default\t3\t默认值",
		"attributeName\tsettings",
		"note\thello world",
		"",
	}, "\n"))

	tbl, err := LoadTable(dir, "settings")
	require.NoError(t, err)
	assert.Equal(t, "settings", tbl.Name())
	assert.Equal(t, map[string][]int{
		"is_odd":  {0},
		"amount":  {1, 2, 3},
		"is_cool": {4},
		"mode":    {5, 6, 7},
		"level":   {8, 9},
	}, tbl.FieldList())
	assert.Equal(t, []string{"is_odd", "amount", "is_cool", "mode", "level"}, tbl.FieldNames())
	assert.Equal(t, int64(3), tbl.Default().Int64())
	assert.Equal(t, "settings", tbl.AttributeName())

	note, ok := tbl.Options().Extra("note")
	require.True(t, ok)
	assert.Equal(t, "hello world", note)
}

func TestLoadTableWithOptions(t *testing.T) {
	dir := writeTSV(t, "perms", "0\tread\n1\twrite\ndefault\t1\n")
	tbl, err := LoadTable(dir, "perms", bitmagic.WithDefault(2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), tbl.Default().Int64())
}

func TestDeclare(t *testing.T) {
	dir := writeTSV(t, "perms", "0\tread\n1\twrite\n")
	reg := bitmagic.NewRegistry()
	_, err := Declare(reg, dir, "perms")
	require.NoError(t, err)

	tbl, ok := reg.Table("perms")
	require.True(t, ok)
	assert.Equal(t, []string{"read", "write"}, tbl.FieldNames())

	_, err = Declare(reg, dir, "missing")
	assert.Error(t, err)
}

func TestParseEntries(t *testing.T) {
	entries, err := ParseEntries(strings.NewReader(header +
		"2\tflag\n" +
		"allowFailedFields\ttrue\n" +
		"big\t123456789012345678901234567890\n" +
		"ratio\t0.5\n" +
		"empty\tNULL\n" +
		"short\n"))
	require.NoError(t, err)
	require.Len(t, entries, 6)

	assert.Equal(t, bitmagic.Entry{Key: 2, Value: "flag"}, entries[0])
	assert.Equal(t, bitmagic.Entry{Key: "allowFailedFields", Value: true}, entries[1])
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	assert.Equal(t, 0, entries[2].Value.(*big.Int).Cmp(want))
	assert.Equal(t, 0.5, entries[3].Value)
	assert.Nil(t, entries[4].Value)
	assert.Nil(t, entries[5].Value)
}

func TestParseKey(t *testing.T) {
	cases := map[string]any{
		"7":         7,
		"[1, 2]":    []any{1, 2},
		"3..5":      bitmagic.Range{From: 3, To: 5},
		"3...5":     bitmagic.Range{From: 3, To: 5, Exclusive: true},
		"5..2":      bitmagic.Range{From: 5, To: 2},
		"default":   "default",
		"123abc":    "123abc",
		"\"quoted\"": "quoted",
	}
	for in, want := range cases {
		got, err := parseKey(in)
		require.NoError(t, err)
		assert.Equalf(t, want, got, "key %q", in)
	}
}

func TestParseEntriesCollectsErrors(t *testing.T) {
	_, err := ParseEntries(strings.NewReader(header +
		"0\tok\n" +
		"NULL\tfirst\n" +
		"\tsecond\n" +
		"1\tok2\n"))
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "row 5")
	assert.Contains(t, errs[1].Error(), "row 6")
}

func TestParseEntriesBadHeader(t *testing.T) {
	_, err := ParseEntries(strings.NewReader("pos\tname\n"))
	assert.Error(t, err)
	_, err = ParseEntries(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadTableInvalidDeclaration(t *testing.T) {
	dir := writeTSV(t, "bad", "-1..3\tbroken\n")
	_, err := LoadTable(dir, "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, bitmagic.ErrField))

	dir = writeTSV(t, "lenient", "-1..3\tbroken\n0\tok\nallowFailedFields\ttrue\n")
	tbl, err := LoadTable(dir, "lenient")
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, tbl.FieldNames())
}

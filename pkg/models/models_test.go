package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueToString(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string", value: "hello", want: "hello"},
		{name: "json number int", value: json.Number("42"), want: "42"},
		{name: "json number float", value: json.Number("3.14"), want: "3.14"},
		{name: "int", value: 7, want: "7"},
		{name: "int64", value: int64(-12), want: "-12"},
		{name: "float", value: 2.5, want: "2.5"},
		{name: "float no trailing zeros", value: 10.0, want: "10"},
		{name: "bool", value: true, want: "true"},
		{name: "bytes", value: []byte("raw"), want: "raw"},
		{name: "nested object", value: map[string]interface{}{"city": "Oslo"}, want: `{"city":"Oslo"}`},
		{name: "nested array", value: []interface{}{"a", "b"}, want: `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueToString(tt.value))
		})
	}
}

func TestRecordKeys(t *testing.T) {
	r := Record{"id": 1, "name": "a"}
	assert.ElementsMatch(t, []string{"id", "name"}, r.Keys())
}

func TestTable(t *testing.T) {
	table := NewTable([]string{"id", "name"})
	assert.Equal(t, 0, table.RowCount())
	assert.Equal(t, 2, table.ColumnCount())

	table.AppendRow([]string{"1", "a"})
	table.AppendRow([]string{"2", "b"})

	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, []string{"1", "a"}, table.Row(0))

	cell, ok := table.Cell(1, "name")
	assert.True(t, ok)
	assert.Equal(t, "b", cell)

	_, ok = table.Cell(0, "missing")
	assert.False(t, ok)
}

func TestTableCopiesColumnSlice(t *testing.T) {
	cols := []string{"id"}
	table := NewTable(cols)
	cols[0] = "mutated"

	assert.Equal(t, []string{"id"}, table.Columns())
}

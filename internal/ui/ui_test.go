package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	DisableColor()

	var buf bytes.Buffer
	prevOut, prevErr := Output, ErrOutput
	Output, ErrOutput = &buf, &buf
	t.Cleanup(func() {
		Output, ErrOutput = prevOut, prevErr
	})
	return &buf
}

func TestFormatSQL(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			"select",
			"SELECT * FROM `rt` WHERE MATCH('(hello)') AND `gid` = 1 ORDER BY `id` DESC LIMIT 0, 10",
			"SELECT *\nFROM `rt`\nWHERE MATCH('(hello)')\nAND `gid` = 1\nORDER BY `id` DESC\nLIMIT 0, 10",
		},
		{
			"within group",
			"SELECT * FROM rt GROUP BY gid WITHIN GROUP ORDER BY id ASC",
			"SELECT *\nFROM rt\nGROUP BY gid\nWITHIN GROUP ORDER BY id ASC",
		},
		{
			"quoted keywords stay",
			"SELECT * FROM rt WHERE MATCH('a from b') AND title = 'x where y'",
			"SELECT *\nFROM rt\nWHERE MATCH('a from b')\nAND title = 'x where y'",
		},
		{
			"escaped quote",
			`SELECT * FROM rt WHERE title = 'it\'s from' LIMIT 1`,
			"SELECT *\nFROM rt\nWHERE title = 'it\\'s from'\nLIMIT 1",
		},
		{
			"subquery untouched",
			"SELECT * FROM (SELECT * FROM rt ORDER BY id) ORDER BY a",
			"SELECT *\nFROM (SELECT * FROM rt ORDER BY id)\nORDER BY a",
		},
		{
			"between",
			"SELECT * FROM rt WHERE price BETWEEN 1 AND 5 AND gid = 2",
			"SELECT *\nFROM rt\nWHERE price BETWEEN 1 AND 5\nAND gid = 2",
		},
		{"keyword prefix", "SELECT fromage FROM rt", "SELECT fromage\nFROM rt"},
		{"no clauses", "SHOW META", "SHOW META"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSQL(tt.query))
		})
	}
}

func TestTableData(t *testing.T) {
	result := sphinxql.NewResultSet([]string{"id", "title", "gid"}, [][]interface{}{
		{int64(1), "hello", nil},
		{int64(2), []byte("world"), 3.5},
	}, 0)

	data := TableData(result)
	require.Len(t, data, 3)
	assert.Equal(t, []string{"id", "title", "gid"}, data[0])
	assert.Equal(t, []string{"1", "hello", "NULL"}, data[1])
	assert.Equal(t, []string{"2", "world", "3.5"}, data[2])
}

func TestPrintResultSet(t *testing.T) {
	buf := capture(t)

	result := sphinxql.NewResultSet([]string{"id"}, [][]interface{}{{"42"}}, 0)
	require.NoError(t, PrintResultSet(result))
	assert.Contains(t, buf.String(), "42")

	buf.Reset()
	require.NoError(t, PrintResultSet(sphinxql.NewResultSet(nil, nil, 3)))
	assert.Empty(t, buf.String())
}

func TestPrintMessages(t *testing.T) {
	buf := capture(t)

	PrintSuccess("connected to %s", "127.0.0.1:9306")
	PrintError("failed: %d", 1064)
	PrintCount("row", 1, 2*time.Millisecond)
	PrintCount("row", 3, time.Second)
	PrintSQL("compiled", "SELECT * FROM rt")

	out := buf.String()
	assert.Contains(t, out, "connected to 127.0.0.1:9306")
	assert.Contains(t, out, "failed: 1064")
	assert.Contains(t, out, "1 row (2ms)")
	assert.Contains(t, out, "3 rows (1s)")
	assert.Contains(t, out, "FROM rt")
}

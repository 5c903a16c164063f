package sphinxql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperStatements(t *testing.T) {
	h := NewHelper(new(MockConnection))
	hits := true

	tests := []struct {
		name     string
		query    *SphinxQL
		expected string
	}{
		{"show meta", h.ShowMeta(), "SHOW META"},
		{"show warnings", h.ShowWarnings(), "SHOW WARNINGS"},
		{"show status", h.ShowStatus(), "SHOW STATUS"},
		{"show tables", h.ShowTables(""), "SHOW TABLES"},
		{"show tables like", h.ShowTables("rt%"), "SHOW TABLES LIKE 'rt%'"},
		{"show variables", h.ShowVariables(), "SHOW VARIABLES"},
		{"set variable", h.SetVariable("AUTOCOMMIT", 0, false), "SET `AUTOCOMMIT` = 0"},
		{"set global user variable", h.SetVariable("@foo", 1, true), "SET GLOBAL @foo = (1)"},
		{"set user variable list", h.SetVariable("@foo", []int{1, 2}, false), "SET @foo = (1, 2)"},
		{
			"call snippets",
			h.CallSnippets([]string{"this is my document text"}, "rt", "is", map[string]interface{}{
				"before_match": "<em>",
				"after_match":  "</em>",
			}),
			"CALL SNIPPETS('this is my document text', 'rt', 'is', '</em>' AS after_match, '<em>' AS before_match)",
		},
		{
			"call snippets with documents",
			h.CallSnippets([]string{"a", "b"}, "rt", "is", nil),
			"CALL SNIPPETS(('a', 'b'), 'rt', 'is')",
		},
		{"call keywords", h.CallKeywords("test case", "rt", nil), "CALL KEYWORDS('test case', 'rt')"},
		{"call keywords with hits", h.CallKeywords("test case", "rt", &hits), "CALL KEYWORDS('test case', 'rt', 1)"},
		{"describe", h.Describe("rt"), "DESCRIBE `rt`"},
		{"create function", h.CreateFunction("my_udf", "INT", "test_udf.so"), "CREATE FUNCTION `my_udf` RETURNS INT SONAME 'test_udf.so'"},
		{"drop function", h.DropFunction("my_udf"), "DROP FUNCTION `my_udf`"},
		{"attach index", h.AttachIndex("disk", "rt"), "ATTACH INDEX `disk` TO RTINDEX `rt`"},
		{"flush rtindex", h.FlushRtIndex("rt"), "FLUSH RTINDEX `rt`"},
		{"truncate rtindex", h.TruncateRtIndex("rt"), "TRUNCATE RTINDEX `rt`"},
		{"optimize index", h.OptimizeIndex("rt"), "OPTIMIZE INDEX `rt`"},
		{"show index status", h.ShowIndexStatus("rt"), "SHOW INDEX `rt` STATUS"},
		{"flush ramchunk", h.FlushRamchunk("rt"), "FLUSH RAMCHUNK `rt`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, compile(t, tt.query))
		})
	}
}

func TestHelperDefersQuotingErrors(t *testing.T) {
	h := NewHelper(nil)

	_, err := h.ShowTables("rt").Compile()
	assert.ErrorIs(t, err, ErrNoConnection)

	_, err = h.CallKeywords("a", "rt", nil).Compile()
	assert.ErrorIs(t, err, ErrNoConnection)

	sql, err := h.SetVariable("AUTOCOMMIT", 1, false).Compile()
	require.NoError(t, err)
	assert.Equal(t, "SET `AUTOCOMMIT` = 1", sql)
}

func TestPairsToMap(t *testing.T) {
	result := NewResultSet(
		[]string{"Variable_name", "Value"},
		[][]interface{}{{"total", "3"}, {"time", []byte("0.001")}},
		0,
	)

	assert.Equal(t, map[string]string{"total": "3", "time": "0.001"}, PairsToMap(result))

	status := NewResultSet([]string{"Counter", "Value"}, [][]interface{}{{"uptime", int64(10)}}, 0)
	assert.Equal(t, map[string]string{"uptime": "10"}, PairsToMap(status))
}

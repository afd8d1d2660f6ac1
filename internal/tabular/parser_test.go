package tabular

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	table, err := Parse("name,amount\nAda,100\nGrace,250")

	require.NoError(t, err)
	assert.Equal(t, []string{"name", "amount"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, Row{"name": "Ada", "amount": "100"}, table.Rows[0])
	assert.Equal(t, Row{"name": "Grace", "amount": "250"}, table.Rows[1])
	assert.Equal(t, [][]string{{"name", "amount"}, {"Ada", "100"}, {"Grace", "250"}}, table.RawMatrix)
}

func TestParse_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n\n", "   \r\n  \n"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, ErrEmptyInput, "input %q", input)
	}
}

func TestParse_LineEndings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"LF", "a,b\n1,2\n3,4"},
		{"CRLF", "a,b\r\n1,2\r\n3,4\r\n"},
		{"CR", "a,b\r1,2\r3,4"},
		{"blank lines", "\na,b\n\n1,2\n   \n3,4\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, table.Headers)
			assert.Len(t, table.Rows, 2)
			assert.Equal(t, "4", table.Rows[1]["b"])
		})
	}
}

func TestParse_QuotedFields(t *testing.T) {
	table, err := Parse("name,note\n\"Smith, John\",\"said \"\"hi\"\"\"\n  Ada  ,  \"  padded  \" ")

	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Smith, John", table.Rows[0]["name"])
	assert.Equal(t, `said "hi"`, table.Rows[0]["note"])
	assert.Equal(t, "Ada", table.Rows[1]["name"])
	assert.Equal(t, "padded", table.Rows[1]["note"])
}

func TestParse_ShortAndLongRows(t *testing.T) {
	table, err := Parse("a,b,c\n1\n1,2,3,4")

	require.NoError(t, err)
	assert.Equal(t, Row{"a": "1", "b": "", "c": ""}, table.Rows[0])
	assert.Equal(t, Row{"a": "1", "b": "2", "c": "3"}, table.Rows[1])
	assert.Equal(t, []string{"1", "2", "3", "4"}, table.RawMatrix[2])
}

func TestParse_HeaderOnly(t *testing.T) {
	table, err := Parse("a,b")

	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Len(t, table.RawMatrix, 1)
}

func TestParse_UnterminatedQuote(t *testing.T) {
	_, err := Parse("a,b\n1,2\n\"open,3")

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 3, parseErr.Line)
	assert.Contains(t, parseErr.Error(), "unterminated")
}

func TestParse_DuplicateHeaders(t *testing.T) {
	_, err := Parse("email,name,email\nx,y,z")

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 1, parseErr.Line)
	assert.Contains(t, parseErr.Error(), `"email"`)
}

func TestParse_EmptyHeadersAllowedTwice(t *testing.T) {
	table, err := Parse("a,,\n1,2,3")

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", ""}, table.Headers)
}

func TestParseWithDelimiter(t *testing.T) {
	table, err := ParseWithDelimiter("a;b\n\"x;y\";2", ';')

	require.NoError(t, err)
	assert.Equal(t, "x;y", table.Rows[0]["a"])
	assert.Equal(t, "2", table.Rows[0]["b"])
}

func TestParse_RowsMatchRawMatrix(t *testing.T) {
	inputs := []string{
		"a\n1\n2\n3",
		"a,b\n\n1,2\n\n\n3",
		"x,y,z\n1,2\n3",
	}
	for _, input := range inputs {
		table, err := Parse(input)
		require.NoError(t, err)
		assert.Equal(t, len(table.RawMatrix)-1, len(table.Rows))
		for _, row := range table.Rows {
			assert.Len(t, row, len(table.Headers))
		}
	}
}

func TestTable_Project(t *testing.T) {
	table, err := Parse("a,b,c\n1,2,3\n4,5,6")
	require.NoError(t, err)

	projected := table.Project([]string{"c", "a", "missing"})

	assert.Equal(t, []string{"a", "c"}, projected.Headers)
	assert.Equal(t, Row{"a": "1", "c": "3"}, projected.Rows[0])
	assert.Len(t, table.Headers, 3, "original must be untouched")
}

func TestTable_SelectRows(t *testing.T) {
	table, err := Parse("a\n1\n2\n3")
	require.NoError(t, err)

	selected := table.SelectRows([]int{2, 0, 9, -1})

	require.Len(t, selected.Rows, 2)
	assert.Equal(t, "3", selected.Rows[0]["a"])
	assert.Equal(t, "1", selected.Rows[1]["a"])
	assert.Len(t, table.Rows, 3)
}

func TestTable_Sample(t *testing.T) {
	table, err := Parse("a\n1\n2\n3")
	require.NoError(t, err)

	assert.Len(t, table.Sample(2), 2)
	assert.Len(t, table.Sample(10), 3)
	assert.Len(t, table.Sample(-1), 3)
}

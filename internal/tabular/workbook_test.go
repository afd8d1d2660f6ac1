package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "amount"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", " Ada "))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 100))
	require.NoError(t, f.SetCellValue("Sheet1", "A4", "Grace"))
	require.NoError(t, f.SetCellValue("Sheet1", "B4", 250))

	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	_, err = f.NewSheet("Campaigns")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Campaigns", "A1", "campaign"))
	require.NoError(t, f.SetCellValue("Campaigns", "A2", "Spring Gala"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadWorkbook(t *testing.T) {
	set, err := ReadWorkbook(buildWorkbook(t))

	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	donations := set.Datasets[0]
	assert.Equal(t, []string{"name", "amount"}, donations.Headers)
	require.Len(t, donations.Rows, 2)
	assert.Equal(t, "Ada", donations.Rows[0]["name"])
	assert.Equal(t, "250", donations.Rows[1]["amount"])

	assert.Equal(t, "Spring Gala", set.Datasets[1].Rows[0]["campaign"])
}

func TestReadWorkbook_Invalid(t *testing.T) {
	_, err := ReadWorkbook(strings.NewReader("not a workbook"))
	assert.Error(t, err)
}

func TestReadWorkbook_SerializesAsMulti(t *testing.T) {
	set, err := ReadWorkbook(buildWorkbook(t))
	require.NoError(t, err)

	text := SerializeMulti(set)

	assert.True(t, DetectMultiple(text))
	parsed, err := SplitAndParse(text)
	require.NoError(t, err)
	assert.Equal(t, 2, parsed.Len())
}

func TestReadWorkbook_MultilineCell(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "address"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Ada"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "1 Main St\nApt 4"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "Grace"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", "2 Side Rd\nUnit 9"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	set, err := ReadWorkbook(buf)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St Apt 4", set.Datasets[0].Rows[0]["address"])

	parsed, err := ParseDatasets(SerializeMulti(set))
	require.NoError(t, err)
	require.Equal(t, 1, parsed.Len())
	require.Len(t, parsed.Datasets[0].Rows, 2)
	assert.Equal(t, "2 Side Rd Unit 9", parsed.Datasets[0].Rows[1]["address"])
}

package dataimport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/salesiq/models"
)

var roundTripHeaders = []string{"Name", "Note", "Amount"}

var roundTripRows = []models.Row{
	{"Name": "Acme Corp", "Note": "plain", "Amount": "15499.50"},
	{"Name": "Smith, Jones & Co", "Note": `says "hello"`, "Amount": "1"},
	{"Name": "Multi", "Note": "line one\nline two", "Amount": ""},
	{"Name": "Göteborg AB", "Note": "  padded  ", "Amount": "007"},
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, roundTripHeaders, roundTripRows))

	table, err := ParseFile("export.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, roundTripHeaders, table.Headers)
	assert.Equal(t, roundTripRows, table.Rows)
	assert.Empty(t, table.Problems)
}

func TestCSVGzipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSVGzip(&buf, roundTripHeaders, roundTripRows))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0x1f, 0x8b}))

	table, err := ParseFile("export.csv.gz", &buf)
	require.NoError(t, err)
	assert.Equal(t, roundTripRows, table.Rows)
}

func TestXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, roundTripHeaders, roundTripRows))

	table, err := ParseFile("export.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, roundTripHeaders, table.Headers)
	assert.Equal(t, roundTripRows, table.Rows)
}

func TestExportEscapesCommas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []string{"Name"}, []models.Row{{"Name": "a,b"}}))
	assert.Equal(t, "Name\n\"a,b\"\n", buf.String())
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	_, err := ParseFile("notes.txt", strings.NewReader("a,b"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	assert.False(t, SupportedFile("report.pdf"))
	assert.True(t, SupportedFile("Report.XLSX"))
	assert.True(t, SupportedFile("sales.csv.gz"))
}

func TestParseEmptyFile(t *testing.T) {
	_, err := ParseFile("empty.csv", strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseMalformedCSV(t *testing.T) {
	_, err := ParseFile("broken.csv", strings.NewReader("a,b\n\"unterminated,1\n"))
	assert.Error(t, err)
}

func TestParseReportsExtraFields(t *testing.T) {
	table, err := ParseFile("rows.csv", strings.NewReader("\xef\xbb\xbfA,B\n1,2,3\n4\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, table.Headers)
	require.Len(t, table.Rows, 2)
	require.Len(t, table.Problems, 1)
	assert.Equal(t, 2, table.Problems[0].Row)
	assert.Equal(t, models.Row{"A": "4", "B": ""}, table.Rows[1])
	assert.Equal(t, []int{2, 3}, table.lines)
}

const validSales = `date , CUSTOMER,Product,Quantity,Unit Price,Total Amount,Region,Notes
2024-01-15,Acme Corp,Premium Widget,5,299.99,1499.95,North,first
01/16/2024,Tech Solutions Inc,Standard Widget,10,199.99,1999.90,,
`

func TestValidateAcceptsSchema(t *testing.T) {
	table, err := ParseFile("sales.csv", strings.NewReader(validSales))
	require.NoError(t, err)

	report, records := Validate(table, "upload-1")
	assert.True(t, report.Valid())
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 2, report.ValidRows)
	assert.Equal(t, []string{"Notes"}, report.UnknownColumns)

	require.Len(t, records, 2)
	assert.Equal(t, "upload-1", records[0].UploadID)
	assert.Equal(t, 1499.95, records[0].TotalAmount)
	assert.Equal(t, "2024-01-16", records[1].Date.Format(models.DateLayout))
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestValidateReportsMissingColumns(t *testing.T) {
	table, err := ParseFile("sales.csv", strings.NewReader("Date,Customer\n2024-01-01,Acme\n"))
	require.NoError(t, err)

	report, records := Validate(table, "u")
	assert.False(t, report.Valid())
	assert.Equal(t, []string{ColProduct, ColQuantity, ColUnitPrice, ColTotalAmount}, report.MissingColumns)
	assert.Empty(t, records)
}

func TestValidateReportsRowErrors(t *testing.T) {
	data := "Date,Customer,Product,Quantity,Unit Price,Total Amount,Customer Email\n" +
		"2024-13-40,Acme,Widget,5,10,50,\n" +
		"2024-01-02,,Widget,$5,10,50,not-an-email\n" +
		"2024-01-03,Beta,Widget,1,10,10,ok@example.com\n"
	table, err := ParseFile("sales.csv", strings.NewReader(data))
	require.NoError(t, err)

	report, records := Validate(table, "u")
	assert.False(t, report.Valid())
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 1, report.ValidRows)
	require.Len(t, records, 1)
	assert.Equal(t, "Beta", records[0].Customer)

	byRow := map[int][]string{}
	for _, e := range report.RowErrors {
		byRow[e.Row] = append(byRow[e.Row], e.Column)
	}
	assert.Equal(t, []string{ColDate}, byRow[2])
	assert.ElementsMatch(t, []string{ColCustomer, ColQuantity, ColCustomerEmail}, byRow[3])
	assert.NotContains(t, byRow, 4)
}

func TestRowErrorsUseFileLines(t *testing.T) {
	cases := []struct {
		name string
		data string
		line int
	}{
		{
			name: "blank line",
			data: "Date,Customer,Product,Quantity,Unit Price,Total Amount\n" +
				"2024-01-01,Acme,Widget,1,10,10\n" +
				"\n" +
				"2024-01-02,Beta,Widget,many,10,10\n",
			line: 4,
		},
		{
			name: "quoted newline",
			data: "Date,Customer,Product,Quantity,Unit Price,Total Amount\n" +
				"2024-01-01,\"Acme\nNorth\",Widget,1,10,10\n" +
				"2024-01-02,Beta,Widget,many,10,10\n",
			line: 4,
		},
		{
			name: "leading blank lines",
			data: "\n\nDate,Customer,Product,Quantity,Unit Price,Total Amount\n" +
				"2024-01-02,Beta,Widget,many,10,10\n",
			line: 4,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := ParseFile("sales.csv", strings.NewReader(tc.data))
			require.NoError(t, err)

			report, _ := Validate(table, "u")
			require.Len(t, report.RowErrors, 1)
			assert.Equal(t, tc.line, report.RowErrors[0].Row)
			assert.Equal(t, ColQuantity, report.RowErrors[0].Column)
		})
	}
}

func TestTemplateIsValid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	table, err := ParseFile("template.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, SchemaColumns(), table.Headers)

	report, records := Validate(table, "template")
	assert.True(t, report.Valid())
	assert.Len(t, records, 2)
}

func TestSalesRowsRoundTrip(t *testing.T) {
	table, err := ParseFile("sales.csv", strings.NewReader(validSales))
	require.NoError(t, err)
	_, records := Validate(table, "u")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, SchemaColumns(), SalesRows(records)))
	again, err := ParseFile("again.csv", &buf)
	require.NoError(t, err)
	_, reparsed := Validate(again, "u")
	require.Len(t, reparsed, len(records))
	for i := range records {
		assert.Equal(t, records[i].TotalAmount, reparsed[i].TotalAmount)
		assert.True(t, records[i].Date.Equal(reparsed[i].Date))
	}
}

func TestPreview(t *testing.T) {
	rows := make([]models.Row, 150)
	assert.Len(t, Preview(rows, 0, 10, 100), 10)
	assert.Len(t, Preview(rows, 25, 10, 100), 25)
	assert.Len(t, Preview(rows, 500, 10, 100), 100)
	assert.Len(t, Preview(rows[:3], 0, 10, 100), 3)
	assert.Empty(t, Preview(nil, 10, 10, 100))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("CSV.GZ")
	require.NoError(t, err)
	assert.Equal(t, "customers.csv.gz", f.FileName("customers"))
	assert.Equal(t, "application/gzip", f.ContentType())

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestCustomerRows(t *testing.T) {
	rows := CustomerRows([]models.Customer{{Name: "Acme", TotalSpent: 15499.5, OrderCount: 12, Segment: models.SegmentHighValue}})
	require.Len(t, rows, 1)
	assert.Equal(t, "15499.5", rows[0]["Total Spent"])
	assert.Equal(t, "12", rows[0]["Order Count"])
	assert.Equal(t, "", rows[0]["Last Order Date"])
}

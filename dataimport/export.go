package dataimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"

	"github.com/BerniceZTT/salesiq/models"
)

// Format 导出格式
type Format string

const (
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
	FormatCSVGz Format = "csv.gz"
)

// ParseFormat 解析导出格式，默认CSV
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatCSVGz:
		return f, nil
	}
	return "", fmt.Errorf("不支持的导出格式: %q", value)
}

// ContentType 响应的 Content-Type
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSVGz:
		return "application/gzip"
	}
	return "text/csv; charset=utf-8"
}

// FileName 带扩展名的下载文件名
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

func rowValues(headers []string, row models.Row) []string {
	values := make([]string, len(headers))
	for i, h := range headers {
		values[i] = row[h]
	}
	return values
}

// WriteCSV 写出带表头的CSV，字段按 RFC 4180 转义
func WriteCSV(w io.Writer, headers []string, rows []models.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(rowValues(headers, row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVGzip 写出gzip压缩的CSV
func WriteCSVGzip(w io.Writer, headers []string, rows []models.Row) error {
	zw := gzip.NewWriter(w)
	if err := WriteCSV(zw, headers, rows); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// WriteXLSX 写出单个工作表的xlsx，所有单元格按文本写入
func WriteXLSX(w io.Writer, headers []string, rows []models.Row) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	writeRow := func(line int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return file.SetSheetRow(sheet, cell, &cells)
	}

	if err := writeRow(1, headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(i+2, rowValues(headers, row)); err != nil {
			return err
		}
	}
	_, err := file.WriteTo(w)
	return err
}

// Write 按格式导出
func Write(w io.Writer, format Format, headers []string, rows []models.Row) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, headers, rows)
	case FormatCSVGz:
		return WriteCSVGzip(w, headers, rows)
	}
	return WriteCSV(w, headers, rows)
}

// CustomerHeaders 客户导出的列
var CustomerHeaders = []string{"Name", "Email", "Total Spent", "Order Count", "Last Order Date", "Segment"}

// CustomerRows 把客户转换为导出行
func CustomerRows(customers []models.Customer) []models.Row {
	rows := make([]models.Row, 0, len(customers))
	for _, c := range customers {
		lastOrder := ""
		if !c.LastOrderDate.IsZero() {
			lastOrder = c.LastOrderDate.Format(models.DateLayout)
		}
		rows = append(rows, models.Row{
			"Name":            c.Name,
			"Email":           c.Email,
			"Total Spent":     strconv.FormatFloat(c.TotalSpent, 'f', -1, 64),
			"Order Count":     strconv.Itoa(c.OrderCount),
			"Last Order Date": lastOrder,
			"Segment":         string(c.Segment),
		})
	}
	return rows
}

// SalesRows 把销售记录转换为导出行，列与导入模板一致
func SalesRows(records []models.SalesRecord) []models.Row {
	rows := make([]models.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.Row{
			ColDate:          r.Date.Format(models.DateLayout),
			ColCustomer:      r.Customer,
			ColProduct:       r.Product,
			ColQuantity:      strconv.FormatFloat(r.Quantity, 'f', -1, 64),
			ColUnitPrice:     strconv.FormatFloat(r.UnitPrice, 'f', -1, 64),
			ColTotalAmount:   strconv.FormatFloat(r.TotalAmount, 'f', -1, 64),
			ColRegion:        r.Region,
			ColSalesRep:      r.SalesRep,
			ColCategory:      r.Category,
			ColCustomerEmail: r.CustomerEmail,
		})
	}
	return rows
}

// templateRows 导入模板中的示例数据
var templateRows = []models.Row{
	{
		ColDate: "2024-01-15", ColCustomer: "Acme Corp", ColProduct: "Premium Widget", ColQuantity: "5",
		ColUnitPrice: "299.99", ColTotalAmount: "1499.95", ColRegion: "North", ColSalesRep: "John Smith",
		ColCategory: "Electronics", ColCustomerEmail: "contact@acme.com",
	},
	{
		ColDate: "01/16/2024", ColCustomer: "Tech Solutions Inc", ColProduct: "Standard Widget", ColQuantity: "10",
		ColUnitPrice: "199.99", ColTotalAmount: "1999.90", ColRegion: "South", ColSalesRep: "Sarah Johnson",
		ColCategory: "Electronics", ColCustomerEmail: "info@techsolutions.com",
	},
}

// WriteTemplate 写出导入模板CSV
func WriteTemplate(w io.Writer) error {
	return WriteCSV(w, SchemaColumns(), templateRows)
}

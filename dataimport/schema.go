package dataimport

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/BerniceZTT/salesiq/models"
)

// 销售数据列名
const (
	ColDate          = "Date"
	ColCustomer      = "Customer"
	ColProduct       = "Product"
	ColQuantity      = "Quantity"
	ColUnitPrice     = "Unit Price"
	ColTotalAmount   = "Total Amount"
	ColRegion        = "Region"
	ColSalesRep      = "Sales Rep"
	ColCategory      = "Category"
	ColCustomerEmail = "Customer Email"
)

// RequiredColumns 必填列
var RequiredColumns = []string{ColDate, ColCustomer, ColProduct, ColQuantity, ColUnitPrice, ColTotalAmount}

// OptionalColumns 可选列
var OptionalColumns = []string{ColRegion, ColSalesRep, ColCategory, ColCustomerEmail}

// SchemaColumns 全部列，按模板顺序
func SchemaColumns() []string {
	return append(append([]string(nil), RequiredColumns...), OptionalColumns...)
}

// dateLayouts 支持的日期格式
var dateLayouts = []string{models.DateLayout, "01/02/2006"}

func parseSalesDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无效日期: %q", value)
}

// salesRow 待校验的一行，col 标签为列名
type salesRow struct {
	Date          string `col:"Date" validate:"required,salesdate"`
	Customer      string `col:"Customer" validate:"required"`
	Product       string `col:"Product" validate:"required"`
	Quantity      string `col:"Quantity" validate:"required,numeric"`
	UnitPrice     string `col:"Unit Price" validate:"required,numeric"`
	TotalAmount   string `col:"Total Amount" validate:"required,numeric"`
	Region        string `col:"Region"`
	SalesRep      string `col:"Sales Rep"`
	Category      string `col:"Category"`
	CustomerEmail string `col:"Customer Email" validate:"omitempty,email"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("col")
	})
	_ = v.RegisterValidation("salesdate", func(fl validator.FieldLevel) bool {
		_, err := parseSalesDate(fl.Field().String())
		return err == nil
	})
	return v
}

// fieldMessage 把校验失败转换为提示文字
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必填字段为空"
	case "numeric":
		return fmt.Sprintf("不是有效的数字: %q", fe.Value())
	case "salesdate":
		return fmt.Sprintf("日期格式应为 YYYY-MM-DD 或 MM/DD/YYYY: %q", fe.Value())
	case "email":
		return fmt.Sprintf("不是有效的邮箱: %q", fe.Value())
	}
	return fmt.Sprintf("校验失败(%s)", fe.Tag())
}

// normalizeHeader 表头比较时忽略大小写和首尾空白
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// resolveColumns 返回 列名 -> 文件中实际表头 的映射，以及未识别的表头
func resolveColumns(headers []string) (map[string]string, []string) {
	known := make(map[string]string)
	for _, col := range SchemaColumns() {
		known[normalizeHeader(col)] = col
	}
	resolved := make(map[string]string)
	var unknown []string
	for _, h := range headers {
		col, ok := known[normalizeHeader(h)]
		if !ok {
			if strings.TrimSpace(h) != "" {
				unknown = append(unknown, h)
			}
			continue
		}
		if _, dup := resolved[col]; !dup {
			resolved[col] = h
		}
	}
	return resolved, unknown
}

// Validate 按销售数据格式校验表格，返回校验报告和通过校验的记录
func Validate(table *Table, uploadID string) (models.ValidationReport, []models.SalesRecord) {
	report := models.ValidationReport{
		MissingColumns: []string{},
		RowErrors:      []models.RowError{},
		TotalRows:      len(table.Rows),
	}
	columns, unknown := resolveColumns(table.Headers)
	report.UnknownColumns = unknown
	for _, col := range RequiredColumns {
		if _, ok := columns[col]; !ok {
			report.MissingColumns = append(report.MissingColumns, col)
		}
	}
	report.RowErrors = append(report.RowErrors, table.Problems...)
	if len(report.MissingColumns) > 0 {
		return report, nil
	}

	value := func(row models.Row, col string) string {
		header, ok := columns[col]
		if !ok {
			return ""
		}
		return strings.TrimSpace(row[header])
	}

	badRows := make(map[int]bool)
	for _, p := range table.Problems {
		badRows[p.Row] = true
	}

	var records []models.SalesRecord
	for i, row := range table.Rows {
		line := lineOf(table, i)
		input := salesRow{
			Date:          value(row, ColDate),
			Customer:      value(row, ColCustomer),
			Product:       value(row, ColProduct),
			Quantity:      value(row, ColQuantity),
			UnitPrice:     value(row, ColUnitPrice),
			TotalAmount:   value(row, ColTotalAmount),
			Region:        value(row, ColRegion),
			SalesRep:      value(row, ColSalesRep),
			Category:      value(row, ColCategory),
			CustomerEmail: value(row, ColCustomerEmail),
		}

		if err := validate.Struct(input); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range verrs {
					report.RowErrors = append(report.RowErrors, models.RowError{Row: line, Column: fe.Field(), Message: fieldMessage(fe)})
				}
			} else {
				report.RowErrors = append(report.RowErrors, models.RowError{Row: line, Message: err.Error()})
			}
			continue
		}
		if badRows[line] {
			continue
		}

		date, _ := parseSalesDate(input.Date)
		quantity, _ := strconv.ParseFloat(input.Quantity, 64)
		unitPrice, _ := strconv.ParseFloat(input.UnitPrice, 64)
		total, _ := strconv.ParseFloat(input.TotalAmount, 64)
		records = append(records, models.SalesRecord{
			ID:            uuid.NewString(),
			UploadID:      uploadID,
			Date:          date,
			Customer:      input.Customer,
			CustomerEmail: input.CustomerEmail,
			Product:       input.Product,
			Category:      input.Category,
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			TotalAmount:   total,
			Region:        input.Region,
			SalesRep:      input.SalesRep,
		})
	}
	report.ValidRows = len(records)
	return report, records
}

// lineOf 第 i 个数据行在文件中的行号，没有记录来源时假设表头在第1行且无空行
func lineOf(table *Table, i int) int {
	if i < len(table.lines) {
		return table.lines[i]
	}
	return i + 2
}

// Package dataimport 负责销售数据文件的解析、校验、预览和导出
package dataimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"

	"github.com/BerniceZTT/salesiq/models"
)

// maxXLSCells 旧版xls一次读取的最大行数
const maxXLSCells = 100000

var (
	// ErrUnsupportedFile 不支持的文件类型
	ErrUnsupportedFile = errors.New("不支持的文件类型，请上传 .csv、.xlsx 或 .xls 文件")
	// ErrEmptyFile 文件没有表头
	ErrEmptyFile = errors.New("文件为空或缺少表头")
)

// Table 解析后的表格，Rows 按表头取值
type Table struct {
	Headers []string
	Rows    []models.Row
	// Problems 解析阶段发现的行级问题
	Problems []models.RowError
	// lines 每个数据行在文件中的行号
	lines []int
}

// SupportedFile 是否是可以导入的文件
func SupportedFile(name string) bool {
	switch fileKind(name) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

// fileKind 返回去掉 .gz 后缀后的扩展名
func fileKind(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".gz") {
		lower = strings.TrimSuffix(lower, ".gz")
	}
	return filepath.Ext(lower)
}

// ParseFile 按文件扩展名解析表格，第一行非空行作为表头
func ParseFile(name string, r io.Reader) (*Table, error) {
	if !SupportedFile(name) {
		return nil, ErrUnsupportedFile
	}

	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("解压文件失败: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	if fileKind(name) == ".csv" {
		records, lines, err := readCSV(r)
		if err != nil {
			return nil, err
		}
		return buildTable(records, lines)
	}

	records, err := readSheet(fileKind(name), r)
	if err != nil {
		return nil, err
	}
	// 工作表的行号就是记录序号
	lines := make([]int, len(records))
	for i := range records {
		lines[i] = i + 1
	}
	return buildTable(records, lines)
}

// readCSV 逐条读取记录，同时记下每条记录起始的文件行号
func readCSV(r io.Reader) ([][]string, []int, error) {
	reader := csv.NewReader(r)
	// 行长度不一致时由 buildTable 报告
	reader.FieldsPerRecord = -1

	var records [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("CSV解析失败: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return records, lines, nil
}

func readSheet(kind string, r io.Reader) ([][]string, error) {
	switch kind {
	case ".xls":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("XLS解析失败: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, ErrEmptyFile
		}
		if workbook.NumSheets() > 1 {
			return nil, fmt.Errorf("文件包含多个工作表，请只保留一个")
		}
		return workbook.ReadAllCells(maxXLSCells), nil
	case ".xlsx":
		file, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("XLSX解析失败: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheet := file.GetSheetName(0)
		if sheet == "" {
			return nil, ErrEmptyFile
		}
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("XLSX解析失败: %w", err)
		}
		return rows, nil
	}
	return nil, ErrUnsupportedFile
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func buildTable(records [][]string, lines []int) (*Table, error) {
	start := 0
	for start < len(records) && isBlank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrEmptyFile
	}

	table := &Table{}
	for i, h := range records[start] {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		table.Headers = append(table.Headers, h)
	}

	for i, record := range records[start+1:] {
		if isBlank(record) {
			continue
		}
		// 文件中的行号，从1开始
		line := lines[start+1+i]
		if len(record) > len(table.Headers) {
			table.Problems = append(table.Problems, models.RowError{
				Row:     line,
				Message: fmt.Sprintf("字段数量(%d)多于表头(%d)", len(record), len(table.Headers)),
			})
		}
		row := make(models.Row, len(table.Headers))
		for j, h := range table.Headers {
			if j < len(record) {
				row[h] = record[j]
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
		table.lines = append(table.lines, line)
	}
	return table, nil
}

// Preview 返回前 limit 行，limit 不合法时使用默认值，且不超过上限
func Preview(rows []models.Row, limit, defaultRows, maxRows int) []models.Row {
	if limit <= 0 {
		limit = defaultRows
	}
	if maxRows > 0 && limit > maxRows {
		limit = maxRows
	}
	if limit > len(rows) {
		limit = len(rows)
	}
	return rows[:limit]
}

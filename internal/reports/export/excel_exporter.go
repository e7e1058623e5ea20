package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the ledger workbook.
const (
	LedgerSheet  = "Asientos Verdes"
	SummarySheet = "Resumen"
)

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	IncludeHeader bool              `json:"include_header"`
	FreezeHeader  bool              `json:"freeze_header"`
	AutoFilter    bool              `json:"auto_filter"`
	NumberFormat  string            `json:"number_format"`
	HeaderStyle   *ExcelStyleConfig `json:"header_style,omitempty"`
	DataStyle     *ExcelStyleConfig `json:"data_style,omitempty"`
	AutoWidth     bool              `json:"auto_width"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Alignment string `json:"alignment"` // left, center, right
	Border    bool   `json:"border"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		IncludeHeader: true,
		FreezeHeader:  true,
		AutoFilter:    true,
		NumberFormat:  "#,##0.00",
		AutoWidth:     true,
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "2E7D32",
			FontColor: "FFFFFF",
			Alignment: "center",
			Border:    true,
		},
		DataStyle: &ExcelStyleConfig{
			FontSize:  11,
			Alignment: "left",
			Border:    true,
		},
	}
}

// MultiSheetExporter writes one sheet per data set into a single workbook
type MultiSheetExporter struct {
	file    *excelize.File
	options ExcelOptions
	sheets  int
}

// NewMultiSheetExporter creates a multi-sheet Excel exporter
func NewMultiSheetExporter(options ExcelOptions) *MultiSheetExporter {
	return &MultiSheetExporter{
		file:    excelize.NewFile(),
		options: options,
	}
}

// AddSheet adds a sheet with a header row and data rows. The first sheet
// takes over the workbook's default sheet.
func (e *MultiSheetExporter) AddSheet(name string, columns []Column, rows []map[string]interface{}) error {
	if e.sheets == 0 {
		if err := e.file.SetSheetName(e.file.GetSheetName(0), name); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := e.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	e.sheets++

	w := &sheetWriter{file: e.file, sheet: name, options: e.options}
	if err := w.writeHeader(labels(columns)); err != nil {
		return err
	}
	return w.writeRows(rows, keys(columns))
}

// WriteTo writes the workbook to a writer
func (e *MultiSheetExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close releases the workbook
func (e *MultiSheetExporter) Close() error {
	return e.file.Close()
}

// sheetWriter fills a single worksheet
type sheetWriter struct {
	file    *excelize.File
	sheet   string
	options ExcelOptions
}

func (w *sheetWriter) writeHeader(labels []string) error {
	if !w.options.IncludeHeader {
		return nil
	}

	headerStyleID := 0
	if w.options.HeaderStyle != nil {
		style, err := createStyle(w.file, w.options.HeaderStyle)
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		headerStyleID = style
	}

	for i, label := range labels {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := w.file.SetCellValue(w.sheet, cell, label); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if headerStyleID > 0 {
			w.file.SetCellStyle(w.sheet, cell, cell, headerStyleID)
		}
	}

	if w.options.FreezeHeader {
		w.file.SetPanes(w.sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	return nil
}

func (w *sheetWriter) writeRows(rows []map[string]interface{}, columns []string) error {
	startRow := 1
	if w.options.IncludeHeader {
		startRow = 2
	}

	dataStyleID := 0
	if w.options.DataStyle != nil {
		style, err := createStyle(w.file, w.options.DataStyle)
		if err != nil {
			return fmt.Errorf("failed to create data style: %w", err)
		}
		dataStyleID = style
	}
	numberStyleID := 0
	if w.options.NumberFormat != "" {
		numberStyle := &excelize.Style{CustomNumFmt: &w.options.NumberFormat}
		if w.options.DataStyle != nil && w.options.DataStyle.Border {
			numberStyle.Border = borders()
		}
		style, err := w.file.NewStyle(numberStyle)
		if err != nil {
			return fmt.Errorf("failed to create number style: %w", err)
		}
		numberStyleID = style
	}

	columnWidths := make(map[int]float64)
	for rowIdx, row := range rows {
		rowNum := startRow + rowIdx

		for colIdx, colName := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			val := row[colName]

			styleID := dataStyleID
			switch v := val.(type) {
			case nil:
				val = ""
			case time.Time:
				if v.IsZero() {
					val = ""
				} else {
					val = v.Format("2006-01-02")
				}
			case float64:
				if numberStyleID > 0 {
					styleID = numberStyleID
				}
			}

			if err := w.file.SetCellValue(w.sheet, cell, val); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
			if styleID > 0 {
				w.file.SetCellStyle(w.sheet, cell, cell, styleID)
			}

			if w.options.AutoWidth {
				if width := float64(len(fmt.Sprintf("%v", val))) * 1.2; width > columnWidths[colIdx] {
					columnWidths[colIdx] = width
				}
			}
		}
	}

	if w.options.AutoFilter && w.options.IncludeHeader && len(rows) > 0 {
		lastCol, _ := excelize.CoordinatesToCellName(len(columns), 1)
		w.file.AutoFilter(w.sheet, "A1:"+lastCol, nil)
	}

	if w.options.AutoWidth {
		for colIdx, width := range columnWidths {
			colName, _ := excelize.ColumnNumberToName(colIdx + 1)
			width = max(10, min(60, width))
			w.file.SetColWidth(w.sheet, colName, colName, width)
		}
	}
	return nil
}

func borders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func createStyle(file *excelize.File, config *ExcelStyleConfig) (int, error) {
	style := &excelize.Style{
		Font: &excelize.Font{
			Bold: config.FontBold,
			Size: float64(config.FontSize),
		},
	}
	if config.FontColor != "" {
		style.Font.Color = config.FontColor
	}
	if config.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{config.FillColor},
		}
	}
	if config.Alignment != "" {
		style.Alignment = &excelize.Alignment{Horizontal: config.Alignment}
	}
	if config.Border {
		style.Border = borders()
	}
	return file.NewStyle(style)
}

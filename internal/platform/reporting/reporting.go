// Package reporting renders tabular clinic data as xlsx workbooks and serves
// a fixed set of named reports over HTTP.
package reporting

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
)

const MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is one worksheet: a header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Workbook renders sheets into an xlsx document. The header row is bold and
// frozen on every sheet.
func Workbook(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	keepDefault := false
	for i, s := range sheets {
		if s.Name == "Sheet1" {
			keepDefault = true
		}
		idx, err := f.NewSheet(s.Name)
		if err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", s.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	if !keepDefault {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	for col, h := range s.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.Name, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Name, cell, cell, headerStyle); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.Name, name, name, float64(max(12, len(h)+4))); err != nil {
			return err
		}
	}

	for r, row := range s.Rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(s.Name, cell, v); err != nil {
				return fmt.Errorf("row %d col %d: %w", r+2, c+1, err)
			}
		}
	}

	if len(s.Header) == 0 {
		return nil
	}
	return f.SetPanes(s.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// Report is a named export. Build runs on each download.
type Report struct {
	ID          string                            `json:"id"`
	Name        string                            `json:"name"`
	Description string                            `json:"description"`
	Build       func(ctx context.Context) []Sheet `json:"-"`
}

type Handler struct {
	reports []Report
}

func NewHandler(reports ...Report) *Handler {
	return &Handler{reports: reports}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports", h.ListReports)
	api.GET("/reports/:file", h.Download)
}

func (h *Handler) ListReports(c echo.Context) error {
	out := h.reports
	if out == nil {
		out = []Report{}
	}
	return c.JSON(http.StatusOK, out)
}

// Download serves GET /reports/<id>.xlsx.
func (h *Handler) Download(c echo.Context) error {
	id, ok := strings.CutSuffix(c.Param("file"), ".xlsx")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	r := h.Find(id)
	if r == nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}

	data, err := Workbook(r.Build(c.Request().Context())...)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("render report: %v", err))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", id+".xlsx"))
	return c.Blob(http.StatusOK, MIMEXLSX, data)
}

func (h *Handler) Find(id string) *Report {
	for i := range h.reports {
		if h.reports[i].ID == id {
			return &h.reports[i]
		}
	}
	return nil
}

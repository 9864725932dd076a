package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"conferencereg/internal/domain"
)

// ExportSheet is the worksheet holding one row per registrant.
const ExportSheet = "Registrations"

// exportLeadColumns come first, in this order; every other field follows sorted by name.
var exportLeadColumns = []string{"created_at", "type", "role", "name", "email", "payment_status"}

type exportService struct {
	registrations domain.RegistrationService
	logger        *slog.Logger
}

// NewExportService returns an ExportService that writes the registrations as XLSX.
func NewExportService(registrations domain.RegistrationService, logger *slog.Logger) domain.ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &exportService{registrations: registrations, logger: logger}
}

func (s *exportService) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	recs, err := s.registrations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	var rows []map[string]any
	for _, rec := range recs {
		for _, reg := range rec.Registrants() {
			row := reg.Flatten(rec["created_at"])
			row["type"] = string(rec.Type())
			rows = append(rows, row)
		}
	}
	headers := exportHeaders(rows)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ExportSheet, cell, h)
	}
	for r, row := range rows {
		for c, h := range headers {
			v, ok := row[h]
			if !ok || v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(ExportSheet, cell, cellValue(v))
		}
	}
	_ = f.SetColWidth(ExportSheet, "A", "A", 20)
	_ = f.SetColWidth(ExportSheet, "D", "E", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.InfoContext(ctx, "export.xlsx.ok",
		"records", len(recs),
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func exportHeaders(rows []map[string]any) []string {
	var extra []string
	for _, row := range rows {
		for k := range row {
			if !slices.Contains(exportLeadColumns, k) && !slices.Contains(extra, k) {
				extra = append(extra, k)
			}
		}
	}
	slices.Sort(extra)
	return append(slices.Clone(exportLeadColumns), extra...)
}

// cellValue keeps scalars typed and renders nested values (lists, objects) as JSON.
func cellValue(v any) any {
	switch t := v.(type) {
	case string, bool, float64:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

func (s *queueServiceImpl) ExportAwaiting(ctx context.Context, kind workflow.Kind, act actor.Actor) ([]byte, error) {
	records, err := s.ListAwaiting(ctx, kind, act)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"ID", "Supplier ID", "Status", "Status Reason", "Created At"}
	for i, h := range headers {
		cell, cellErr := excelize.CoordinatesToCellName(i+1, 1)
		if cellErr != nil {
			return nil, fmt.Errorf("build export header: %w", cellErr)
		}
		if setErr := f.SetCellValue(sheet, cell, h); setErr != nil {
			return nil, fmt.Errorf("build export header: %w", setErr)
		}
	}

	for row, rec := range records {
		values := []interface{}{
			rec.ID,
			rec.OwnerID,
			rec.Status.String(),
			rec.StatusReason,
			rec.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, cellErr := excelize.CoordinatesToCellName(col+1, row+2)
			if cellErr != nil {
				return nil, fmt.Errorf("build export row: %w", cellErr)
			}
			if setErr := f.SetCellValue(sheet, cell, v); setErr != nil {
				return nil, fmt.Errorf("build export row: %w", setErr)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write export workbook: %w", err)
	}
	return buf.Bytes(), nil
}

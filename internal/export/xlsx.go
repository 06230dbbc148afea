package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lendhub/internal/domain"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// Reporter builds xlsx booking reports for a period and drops them into the
// configured export directory.
type Reporter struct {
	repo domain.Repository
	dir  string
}

func NewReporter(repo domain.Repository, dir string) *Reporter {
	return &Reporter{repo: repo, dir: dir}
}

// BuildReport writes all bookings overlapping the period into an xlsx file
// and returns its path.
func (r *Reporter) BuildReport(ctx context.Context, start, end time.Time) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := r.repo.GetBookingsInPeriod(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		start.Format("2006-01-02"), end.Format("2006-01-02")))
	_ = f.MergeCell(sheetName, "A1", "G1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"ID", "Item", "Owner ID", "Booker", "Status", "Start", "End"}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, b := range bookings {
		values := []interface{}{
			b.ID, "", int64(0), "", string(b.Status),
			b.Start.Format(time.RFC3339), b.End.Format(time.RFC3339),
		}
		if b.Item != nil {
			values[1] = b.Item.Name
			values[2] = b.Item.OwnerID
		}
		if b.Booker != nil {
			values[3] = b.Booker.Name
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "G", 22)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	path := filepath.Join(r.dir, fileName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving export file: %w", err)
	}
	return path, nil
}

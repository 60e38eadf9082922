package excel

import (
	"fmt"
	"io"

	"github.com/example/langportal/pkg/models"
	"github.com/xuri/excelize/v2"
)

const progressSheet = "Progress"

var progressHeader = []interface{}{
	"Word", "Translation", "Mastery", "Times Reviewed", "Next Review", "Last Reviewed",
}

// WriteProgress writes a learner's word progress as an xlsx workbook.
// words resolves word IDs to vocabulary entries; unknown IDs are written as is.
func WriteProgress(w io.Writer, progress []models.WordProgress, words map[string]models.Word) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(progressSheet, "A1", &progressHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(progressSheet, "A1", "F1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(progressSheet, "A", "F", 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	for i, p := range progress {
		text, translation := p.WordID, ""
		if word, ok := words[p.WordID]; ok {
			text, translation = word.Text, word.Translation
		}

		nextReview, lastReviewed := "", ""
		if p.NextReviewDate != nil {
			nextReview = p.NextReviewDate.UTC().Format("2006-01-02 15:04")
		}
		if n := len(p.ReviewHistory); n > 0 {
			lastReviewed = p.ReviewHistory[n-1].Date.UTC().Format("2006-01-02 15:04")
		}

		row := []interface{}{text, translation, p.MasteryLevel, p.TimesReviewed, nextReview, lastReviewed}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(progressSheet, cellRef, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

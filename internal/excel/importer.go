package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/langportal/internal/database"
	"github.com/example/langportal/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	TextColumn        string // Column with the word
	TranslationColumn string // Column with the translation
	DiacriticsColumn  string // Column with the vowelled spelling
	CategoryColumn    string // Column with the category
	DifficultyColumn  string // Column with the difficulty
	SheetName         string // Sheet to import, empty means the first one
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TextColumn:        "A",
		TranslationColumn: "B",
		DiacriticsColumn:  "C",
		CategoryColumn:    "D",
		DifficultyColumn:  "E",
		StartRow:          2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer loads vocabulary files into the words table
type Importer struct {
	words *database.WordRepository
}

// NewImporter creates an importer writing through words
func NewImporter(words *database.WordRepository) *Importer {
	return &Importer{words: words}
}

// Import imports words from an Excel or CSV file. Rows are matched to
// existing words by exact text and updated in place.
func (im *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return im.importFromCSV(ctx, config)
	}
	return im.importFromExcel(ctx, config)
}

func (im *Importer) importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if isBlank(row) {
			result.Skipped++
			continue
		}

		result.TotalProcessed++
		word := wordFromRow(row, config, "")
		if err := im.save(ctx, word, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// importFromCSV reads the same column layout as the Excel import. A row
// with only its first cell filled starts a new category for the rows below.
func (im *Importer) importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	rowNum := 0
	currentCategory := ""
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++

		if rowNum < config.StartRow {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if isBlank(row) {
			result.Skipped++
			continue
		}
		if isBlank(row[1:]) {
			currentCategory = strings.Trim(strings.TrimSpace(row[0]), "\"")
			continue
		}

		result.TotalProcessed++
		word := wordFromRow(row, config, currentCategory)
		if err := im.save(ctx, word, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

// save creates the word or updates the existing entry with the same text
func (im *Importer) save(ctx context.Context, word models.Word, result *ImportResult) error {
	if word.Text == "" {
		return fmt.Errorf("word cannot be empty")
	}
	if word.Translation == "" {
		return fmt.Errorf("translation cannot be empty")
	}

	existing, err := im.words.GetByText(ctx, word.Text)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := im.words.Create(ctx, &word); err != nil {
			return err
		}
		result.Created++
		return nil
	}

	existing.Translation = word.Translation
	existing.Diacritics = word.Diacritics
	if word.Category != "" {
		existing.Category = word.Category
	}
	existing.Difficulty = word.Difficulty
	if err := im.words.Update(ctx, existing); err != nil {
		return err
	}
	result.Updated++
	return nil
}

func wordFromRow(row []string, config ImportConfig, defaultCategory string) models.Word {
	word := models.Word{
		Text:        cleanWord(cell(row, config.TextColumn)),
		Translation: strings.TrimSpace(cell(row, config.TranslationColumn)),
		Diacritics:  strings.TrimSpace(cell(row, config.DiacriticsColumn)),
		Category:    strings.TrimSpace(cell(row, config.CategoryColumn)),
		Difficulty:  parseIntOrDefault(cell(row, config.DifficultyColumn), 1, 5, 3),
	}
	if word.Category == "" {
		word.Category = defaultCategory
	}
	return word
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cleanWord drops trailing notes in parentheses, "(pl. kutub)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// columnToIndex converts an Excel column letter to a 0-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

// parseIntOrDefault parses s and clamps it to [min, max]; bad input gives def
func parseIntOrDefault(s string, min, max, def int) int {
	val, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

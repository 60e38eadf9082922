package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/langportal/internal/config"
	"github.com/example/langportal/internal/database"
	"github.com/example/langportal/pkg/models"
	"github.com/xuri/excelize/v2"
)

func newWordRepo(t *testing.T) *database.WordRepository {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{Type: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return database.NewWordRepository(db)
}

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cellRef, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "words.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestImportExcelCreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	words := newWordRepo(t)
	im := NewImporter(words)

	path := writeWorkbook(t, [][]interface{}{
		{"Text", "Translation", "Diacritics", "Category", "Difficulty"},
		{"كتاب", "book", "كِتَاب", "nouns", 2},
		{"قلم (pl. أقلام)", "pen", "", "nouns", 9},
		{"", "orphan translation"},
	})
	cfg := DefaultImportConfig()
	cfg.FilePath = path

	res, err := im.Import(ctx, cfg)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Created != 2 || res.Updated != 0 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v", res)
	}

	pen, err := words.GetByText(ctx, "قلم")
	if err != nil || pen == nil {
		t.Fatalf("GetByText(pen) = %v, %v", pen, err)
	}
	if pen.Difficulty != 5 {
		t.Errorf("difficulty = %d, want clamped 5", pen.Difficulty)
	}

	path = writeWorkbook(t, [][]interface{}{
		{"Text", "Translation"},
		{"كتاب", "a book"},
	})
	cfg.FilePath = path
	res, err = im.Import(ctx, cfg)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 {
		t.Fatalf("second result = %+v", res)
	}
	book, err := words.GetByText(ctx, "كتاب")
	if err != nil || book == nil {
		t.Fatalf("GetByText(book) = %v, %v", book, err)
	}
	if book.Translation != "a book" || book.Category != "nouns" {
		t.Errorf("book = %+v", book)
	}
}

func TestImportCSVCategoryRows(t *testing.T) {
	ctx := context.Background()
	words := newWordRepo(t)

	content := "text,translation,diacritics\n" +
		"verbs,,\n" +
		"ذهب,to go,ذَهَبَ\n" +
		"كتب,to write,كَتَبَ\n" +
		"\n" +
		"colors,,\n" +
		"أحمر,red,\n"
	path := filepath.Join(t.TempDir(), "words.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	res, err := NewImporter(words).Import(ctx, cfg)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Created != 3 || len(res.Errors) != 0 {
		t.Fatalf("result = %+v", res)
	}

	red, err := words.GetByText(ctx, "أحمر")
	if err != nil || red == nil {
		t.Fatalf("GetByText = %v, %v", red, err)
	}
	if red.Category != "colors" || red.Translation != "red" {
		t.Errorf("red = %+v", red)
	}
	goWord, _ := words.GetByText(ctx, "ذهب")
	if goWord == nil || goWord.Category != "verbs" || goWord.Diacritics != "ذَهَبَ" {
		t.Errorf("go = %+v", goWord)
	}
}

func TestWriteProgress(t *testing.T) {
	next := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	progress := []models.WordProgress{
		{
			WordID:         "w1",
			MasteryLevel:   75,
			TimesReviewed:  4,
			NextReviewDate: &next,
			ReviewHistory: models.ReviewHistory{
				{Date: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), Correct: true},
			},
		},
		{WordID: "w-unknown", MasteryLevel: 10, TimesReviewed: 1},
	}
	words := map[string]models.Word{"w1": {ID: "w1", Text: "كتاب", Translation: "book"}}

	var buf bytes.Buffer
	if err := WriteProgress(&buf, progress, words); err != nil {
		t.Fatalf("WriteProgress: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(progressSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "Word" {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"كتاب", "book", "75", "4", "2026-03-14 09:30", "2026-03-10 08:00"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("row 1 col %d = %q, want %q", i, rows[1][i], v)
		}
	}
	if rows[2][0] != "w-unknown" {
		t.Errorf("unknown word row = %v", rows[2])
	}
}

func TestColumnToIndex(t *testing.T) {
	cases := map[string]int{"A": 0, "b": 1, "Z": 25, "AA": 26}
	for in, want := range cases {
		if got := columnToIndex(in); got != want {
			t.Errorf("columnToIndex(%q) = %d, want %d", in, got, want)
		}
	}
}

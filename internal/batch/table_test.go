package batch

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBFname,link,,link\n" +
		"\n" +
		"first,\"https://v.douyin.com/a/, copied\",x,https://b23.tv/b\n" +
		" , , , \n" +
		"second,https://youtu.be/c\n"

	table, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	wantHeaders := []string{"name", "link", "column 3", "link_2"}
	if strings.Join(table.Headers, "|") != strings.Join(wantHeaders, "|") {
		t.Errorf("Headers = %v, want %v", table.Headers, wantHeaders)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2 (blank rows dropped)", len(table.Rows))
	}
	if got := table.Rows[0]["link"]; got != "https://v.douyin.com/a/, copied" {
		t.Errorf("quoted cell = %q", got)
	}
	if got := table.Rows[1]["link_2"]; got != "" {
		t.Errorf("short row cell = %q, want empty", got)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	for _, input := range []string{"", "\n\n", "only,headers\n"} {
		if _, err := ReadCSV(strings.NewReader(input)); !errors.Is(err, ErrEmptyTable) {
			t.Errorf("ReadCSV(%q) error = %v, want ErrEmptyTable", input, err)
		}
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"links.csv", FormatCSV, false},
		{"LINKS.TXT", FormatCSV, false},
		{"book.xlsx", FormatXLSX, false},
		{"old.xls", "", true},
		{"notes.pdf", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		got, err := FormatFor(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFor(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("FormatFor(%q) error = %v, want ErrUnsupportedFormat", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("FormatFor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	in := &Table{
		Headers: []string{"title", "url"},
		Rows: []map[string]string{
			{"title": "a", "url": "https://youtu.be/x"},
			{"title": "b", "url": "https://b23.tv/y"},
		},
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, in); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	out, err := Read("export.xlsx", &buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(out.Rows) != 2 || out.Rows[1]["url"] != "https://b23.tv/y" {
		t.Errorf("Read() rows = %v", out.Rows)
	}
}

func TestReadXLSXUsesFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetCellValue(sheet, "A1", "")
	_ = f.SetCellValue(sheet, "B1", "link")
	_ = f.SetCellValue(sheet, "A2", "row")
	_ = f.SetCellValue(sheet, "B2", "https://www.bilibili.com/video/BV1ab")
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("NewSheet() error = %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	table, err := ReadXLSX(&buf)
	if err != nil {
		t.Fatalf("ReadXLSX() error = %v", err)
	}
	if table.Headers[0] != "column 1" || table.Headers[1] != "link" {
		t.Errorf("Headers = %v", table.Headers)
	}
	if table.Rows[0]["link"] != "https://www.bilibili.com/video/BV1ab" {
		t.Errorf("Rows = %v", table.Rows)
	}
}

func TestWriteCSV(t *testing.T) {
	table := &Table{
		Headers: []string{"a", "b"},
		Rows:    []map[string]string{{"a": "1", "b": "x,y"}},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got, want := buf.String(), "a,b\n1,\"x,y\"\n"; got != want {
		t.Errorf("WriteCSV() = %q, want %q", got, want)
	}
}

package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestConvertDurationToMinutes(t *testing.T) {
	cases := map[string]int{
		"2:15":   135,
		"0:00":   0,
		"10:59":  659,
		" 1:05 ": 65,
		"1:xx":   60,
		"abc:30": 30,
		"1":      0,
		"1:2:3":  0,
		"":       0,
		"-1:30":  30,
	}
	for in, want := range cases {
		assert.Equal(t, want, ConvertDurationToMinutes(in), in)
	}
}

func TestConvertDurationRoundTrip(t *testing.T) {
	for h := 0; h < 30; h++ {
		for m := 0; m < 60; m++ {
			total := h*60 + m
			require.Equal(t, total, ConvertDurationToMinutes(FormatMinutes(total)))
		}
	}
}

func TestDayBoundaries(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 22, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 9, 23, 59, 59, 999000000, time.UTC), EndOfDay(ts))
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}

func TestTimestampedFilename(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 7, 3, 0, time.UTC)
	assert.Equal(t, "timelog_export_2024-05-01_09-07-03.xlsx", TimestampedFilename("timelog_export", now, "xlsx"))
	assert.Equal(t, "timelog_export_2024-05-01_09-07-03_filtered_offjob.xlsx", TimestampedFilename("timelog_export", now, ".xlsx", "_filtered", "", "offjob"))
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Learner", "Feedback"},
		Rows:    []map[string]string{{"Learner": "Ann", "Feedback": "Great, thanks"}},
	})
	require.NoError(t, err)
	body := strings.TrimPrefix(string(out), "\ufeff")
	assert.Equal(t, "Learner,Feedback\nAnn,\"Great, thanks\"\n", body)

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterEscapesFormulas(t *testing.T) {
	data := Dataset{
		Headers: []string{"Learner", "Feedback"},
		Rows:    []map[string]string{{"Learner": "=HYPERLINK(\"x\")", "Feedback": "-2 marks"}, {"Learner": "Bo"}},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	body := strings.TrimPrefix(string(out), "\ufeff")
	assert.Equal(t, "Learner,Feedback\n\"'=HYPERLINK(\"\"x\"\")\",'-2 marks\nBo,\n", body)

	raw, err := (&CSVExporter{}).Render(data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "-2 marks")
	assert.NotContains(t, string(raw), "'-2")
}

func TestXLSXExporterRendersSheets(t *testing.T) {
	out, err := NewXLSXExporter().Render(
		Sheet{
			Name:         "Timelog Data",
			Data:         Dataset{Headers: []string{"Date", "Minutes"}, Rows: []map[string]string{{"Date": "2024-01-02", "Minutes": "135"}}},
			ColumnWidths: []float64{12, 10},
		},
		Sheet{
			Name: "Export Summary",
			Data: Dataset{Headers: []string{"Filter", "Value"}, Rows: []map[string]string{{"Filter": "Course", "Value": "All"}}},
		},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{"Timelog Data", "Export Summary"}, f.GetSheetList())
	v, err := f.GetCellValue("Timelog Data", "B2")
	require.NoError(t, err)
	assert.Equal(t, "135", v)
	width, err := f.GetColWidth("Timelog Data", "A")
	require.NoError(t, err)
	assert.InDelta(t, 12, width, 0.01)
	v, err = f.GetCellValue("Export Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Course", v)
}

func TestXLSXExporterRequiresSheet(t *testing.T) {
	_, err := NewXLSXExporter().Render()
	assert.Error(t, err)
}

func TestPDFRenderDocumentPaginates(t *testing.T) {
	short := Document{Title: "Form", Sections: []Section{{Heading: "A", Fields: []Field{{Label: "Q1", Value: "yes"}}}}}
	assert.Equal(t, 1, PageCount(short))

	fields := make([]Field, 0, 60)
	for i := 0; i < 60; i++ {
		fields = append(fields, Field{Label: "Question", Value: strings.Repeat("long answer text ", 20)})
	}
	long := Document{Title: "Form", Sections: []Section{{Heading: "Answers", Fields: fields}}}
	assert.Greater(t, PageCount(long), 3)

	out, err := NewPDFExporter().RenderDocument(long)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRenderSnapshot(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 900))
	for y := 0; y < 900; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y % 255), B: 120, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	doc := Document{Title: "Snapshot"}
	out, fellBack, err := NewPDFExporter().RenderSnapshot(doc, buf.Bytes())
	require.NoError(t, err)
	assert.False(t, fellBack)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRenderSnapshotFallsBackToText(t *testing.T) {
	doc := Document{Title: "Broken", Sections: []Section{{Fields: []Field{{Label: "Q", Value: "A"}}}}}
	out, fellBack, err := NewPDFExporter().RenderSnapshot(doc, []byte("not a png"))
	require.NoError(t, err)
	assert.True(t, fellBack)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, fellBack, err = NewPDFExporter().RenderSnapshot(doc, nil)
	require.NoError(t, err)
	assert.True(t, fellBack)
}

func TestPDFRenderTable(t *testing.T) {
	out, err := NewPDFExporter().Render(Dataset{Headers: []string{"A"}, Rows: []map[string]string{{"A": "1"}}}, "feedback")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

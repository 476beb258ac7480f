package model_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/lvillar/reportcanvas/model"
)

var view = model.View{Width: 800, Height: 600}

func TestSetReturnsCopy(t *testing.T) {
	orig := model.NewText(view, "Hello")
	next, err := model.Set(orig, model.FieldText, "World")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if orig.Text != "Hello" {
		t.Errorf("original modified: %q", orig.Text)
	}
	if got := next.(model.Text).Text; got != "World" {
		t.Errorf("text = %q, want World", got)
	}
}

func TestSetFields(t *testing.T) {
	shape, err := model.NewShape(view, model.ShapeRectangle)
	if err != nil {
		t.Fatal(err)
	}
	chart, err := model.NewChart(view, model.ChartBar, model.ChartConfig{})
	if err != nil {
		t.Fatal(err)
	}
	barcode, err := model.NewBarcode(view, "Name", "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		obj     model.Object
		field   model.Field
		value   any
		wantErr error
		check   func(model.Object) bool
	}{
		{"move x", model.NewText(view, ""), model.FieldX, 42.0, nil,
			func(o model.Object) bool { x, _ := o.Position(); return x == 42 }},
		{"move y int", model.NewText(view, ""), model.FieldY, 7, nil,
			func(o model.Object) bool { _, y := o.Position(); return y == 7 }},
		{"json number", model.NewText(view, ""), model.FieldX, json.Number("3.5"), nil,
			func(o model.Object) bool { x, _ := o.Position(); return x == 3.5 }},
		{"font clamped high", model.NewText(view, ""), model.FieldFontSize, 100.0, nil,
			func(o model.Object) bool { return o.(model.Text).FontSize == model.MaxFontSize }},
		{"font clamped low", model.NewMappedText(view, "Name"), model.FieldFontSize, 2.0, nil,
			func(o model.Object) bool { return o.(model.MappedText).FontSize == model.MinFontSize }},
		{"bold", model.NewMappedText(view, "Name"), model.FieldBold, true, nil,
			func(o model.Object) bool { return o.(model.MappedText).Bold }},
		{"column", model.NewMappedText(view, "Name"), model.FieldColumn, "Score", nil,
			func(o model.Object) bool { return o.(model.MappedText).Column == "Score" }},
		{"fill none", shape, model.FieldFill, "none", nil,
			func(o model.Object) bool { return o.(model.Shape).Fill.IsNone() }},
		{"shape kind", shape, model.FieldKind, "circle", nil,
			func(o model.Object) bool { return o.(model.Shape).ShapeKind == model.ShapeCircle }},
		{"chart width clamped", chart, model.FieldWidth, 5000.0, nil,
			func(o model.Object) bool { return o.(model.Chart).Width == model.MaxChartSide }},
		{"chart height clamped", chart, model.FieldHeight, 10.0, nil,
			func(o model.Object) bool { return o.(model.Chart).Height == model.MinChartSide }},
		{"symbology", barcode, model.FieldSymbology, "code128", nil,
			func(o model.Object) bool { return o.(model.Barcode).Symbology == model.SymbologyCode128 }},
		{"symbology pdf417", barcode, model.FieldSymbology, "pdf417", nil,
			func(o model.Object) bool { return o.(model.Barcode).Symbology == model.SymbologyPDF417 }},

		{"font size on shape", shape, model.FieldFontSize, 12.0, model.ErrInvalidField, nil},
		{"text on mapped text", model.NewMappedText(view, "Name"), model.FieldText, "x", model.ErrInvalidField, nil},
		{"bad shape kind", shape, model.FieldKind, "triangle", model.ErrInvalidValue, nil},
		{"negative width", shape, model.FieldWidth, -1.0, model.ErrInvalidValue, nil},
		{"non-numeric x", shape, model.FieldX, "left", model.ErrInvalidValue, nil},
		{"bad symbology", barcode, model.FieldSymbology, "ean13", model.ErrInvalidValue, nil},
		{"radar with no items", chart, model.FieldKind, "radar", model.ErrRadarTooFewItems, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.Set(tt.obj, tt.field, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if !reflect.DeepEqual(got, tt.obj) {
					t.Error("failed update must return the original object")
				}
				return
			}
			if err != nil {
				t.Fatalf("Set: %v", err)
			}
			if !tt.check(got) {
				t.Errorf("unexpected result %+v", got)
			}
		})
	}
}

func TestNewChartRadarNeedsThreeItems(t *testing.T) {
	items := []model.EvaluationItem{
		{Label: "A", ScoreCol: "a", AvgCol: "a_avg"},
		{Label: "B", ScoreCol: "b", AvgCol: "b_avg"},
	}
	_, err := model.NewChart(view, model.ChartRadar, model.NewChartConfig(items, nil, "", ""))
	if !errors.Is(err, model.ErrRadarTooFewItems) {
		t.Fatalf("err = %v, want ErrRadarTooFewItems", err)
	}

	items = append(items, model.EvaluationItem{ScoreCol: "c", AvgCol: "c_avg"})
	c, err := model.NewChart(view, model.ChartRadar, model.NewChartConfig(items, nil, "", ""))
	if err != nil {
		t.Fatalf("NewChart: %v", err)
	}
	if c.Config.Labels[2] != "c" {
		t.Errorf("empty label should default to score column, got %q", c.Config.Labels[2])
	}
}

func TestNewChartConfigOrder(t *testing.T) {
	items := []model.EvaluationItem{
		{Label: "Math", ScoreCol: "m", AvgCol: "m_avg"},
		{Label: "Art", ScoreCol: "a", AvgCol: "a_avg"},
		{Label: "PE", ScoreCol: "p", AvgCol: "p_avg"},
	}
	cfg := model.NewChartConfig(items, []string{"PE", "Unknown", "Math"}, "", "#123456")

	if len(cfg.Labels) != 2 || cfg.Labels[0] != "PE" || cfg.Labels[1] != "Math" {
		t.Fatalf("labels = %v, want [PE Math]", cfg.Labels)
	}
	if cfg.ScoreCols[0] != "p" || cfg.AvgCols[1] != "m_avg" {
		t.Errorf("columns not aligned: %v %v", cfg.ScoreCols, cfg.AvgCols)
	}
	if cfg.ActualColor != model.DefaultActualColor {
		t.Errorf("actual colour = %q, want default", cfg.ActualColor)
	}
	if cfg.AverageColor != "#123456" {
		t.Errorf("average colour = %q", cfg.AverageColor)
	}

	// The config is a copy: later edits of the items do not leak in.
	items[0].ScoreCol = "changed"
	if cfg.ScoreCols[1] != "m" {
		t.Error("config aliases the evaluation items")
	}
}

func TestNewObjectsCentred(t *testing.T) {
	s, err := model.NewShape(view, model.ShapeCircle)
	if err != nil {
		t.Fatal(err)
	}
	if s.X+s.Width/2 != view.Width/2 || s.Y+s.Height/2 != view.Height/2 {
		t.Errorf("shape not centred: %+v", s)
	}
	if !s.Fill.IsNone() {
		t.Errorf("new shape fill = %q, want none", s.Fill)
	}

	txt := model.NewText(view, "")
	if txt.Text != model.DefaultText || txt.FontSize != model.DefaultFontSize {
		t.Errorf("unexpected defaults %+v", txt)
	}
	if txt.X != view.Width/2-100 || txt.Y != view.Height/2-20 {
		t.Errorf("text origin = (%v, %v)", txt.X, txt.Y)
	}

	if _, err := model.NewShape(view, "hexagon"); !errors.Is(err, model.ErrInvalidValue) {
		t.Errorf("unknown shape kind: err = %v", err)
	}
	if _, err := model.NewImage(view, nil, 0, 10); !errors.Is(err, model.ErrInvalidValue) {
		t.Errorf("zero-width image: err = %v", err)
	}
}

func TestPaper(t *testing.T) {
	w, h := model.PaperA4.SizePx()
	if w != 210*model.PxPerMM || h != 297*model.PxPerMM {
		t.Errorf("A4 = %vx%v", w, h)
	}
	if _, err := model.ParsePaper("Letter"); !errors.Is(err, model.ErrInvalidValue) {
		t.Errorf("ParsePaper(Letter) err = %v", err)
	}
	if p, err := model.ParsePaper("A3"); err != nil || p != model.PaperA3 {
		t.Errorf("ParsePaper(A3) = %v, %v", p, err)
	}
}

func TestDatasetRecord(t *testing.T) {
	ds := model.Dataset{Columns: []string{"Name", "Score"}, Rows: [][]string{{"Alice", "8"}}}
	if ds.ColumnIndex("Score") != 1 || ds.ColumnIndex("Rank") != -1 {
		t.Error("ColumnIndex mismatch")
	}
	if _, ok := ds.Record(1); ok {
		t.Error("Record(1) should be out of range")
	}
	if _, ok := ds.Record(-1); ok {
		t.Error("Record(-1) should be out of range")
	}
}

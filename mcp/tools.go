package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"os"

	"github.com/lvillar/reportcanvas"
	"github.com/lvillar/reportcanvas/model"
)

// RegisterSessionTools adds the editing tools of session to the server.
func RegisterSessionTools(s *Server, session *reportcanvas.Session) {
	h := &handlers{session: session}
	for _, t := range []Tool{
		{
			Name:        "load_spreadsheet",
			Description: "Load the first sheet of an .xlsx workbook as the dataset. The first row names the columns; every other row is one record.",
			InputSchema: schema(props{"path": str("Path to the workbook")}, "path"),
			Handler:     h.loadSpreadsheet,
		},
		{
			Name:        "load_dataset",
			Description: "Load a dataset given inline as column names and rows of cells.",
			InputSchema: schema(props{
				"columns": array(map[string]any{"type": "string"}, "Column names"),
				"rows":    array(map[string]any{"type": "array"}, "Records, each an array of cells aligned to columns"),
			}, "columns", "rows"),
			Handler: h.loadDataset,
		},
		{
			Name:        "set_paper",
			Description: "Set the page format: A4 or A3.",
			InputSchema: schema(props{"paper": enum("Paper type", string(model.PaperA4), string(model.PaperA3))}, "paper"),
			Handler:     h.setPaper,
		},
		{
			Name:        "set_evaluation_items",
			Description: "Define the evaluation items charts can show. Each item pairs a label with the column holding the record's score and the column holding the average.",
			InputSchema: schema(props{
				"items": array(map[string]any{
					"type": "object",
					"properties": props{
						"label":    str("Axis label; defaults to scoreCol"),
						"scoreCol": str("Column with the record's own score"),
						"avgCol":   str("Column with the average score"),
					},
					"required": []string{"scoreCol", "avgCol"},
				}, "Evaluation items"),
			}, "items"),
			Handler: h.setEvaluationItems,
		},
		{
			Name:        "add_text",
			Description: "Place a static text label. Returns the new object id.",
			InputSchema: schema(props{"text": str("Label text")}),
			Handler:     h.addText,
		},
		{
			Name:        "add_mapped_text",
			Description: "Place a text that shows each record's value of a column. Returns the new object id.",
			InputSchema: schema(props{"column": str("Dataset column")}, "column"),
			Handler:     h.addMappedText,
		},
		{
			Name:        "add_shape",
			Description: "Place a rectangle or circle. Returns the new object id.",
			InputSchema: schema(props{"kind": enum("Shape kind", string(model.ShapeRectangle), string(model.ShapeCircle))}, "kind"),
			Handler:     h.addShape,
		},
		{
			Name:        "add_chart",
			Description: "Place a bar or radar chart over the evaluation items. Radar charts need at least 3 items. Returns the new object id.",
			InputSchema: schema(props{
				"kind":         enum("Chart kind", string(model.ChartBar), string(model.ChartRadar)),
				"labels":       array(map[string]any{"type": "string"}, "Item labels in display order; all items when omitted"),
				"actualColor":  str("Colour of the record's series, e.g. #fdae6b"),
				"averageColor": str("Colour of the average series, e.g. #bcbddc"),
			}, "kind"),
			Handler: h.addChart,
		},
		{
			Name:        "add_image",
			Description: "Place an image read from a file or given as base64. Returns the new object id.",
			InputSchema: schema(props{
				"path":   str("Image file path"),
				"data":   str("Base64 image data, used when path is omitted"),
				"width":  num("Width in canvas pixels; natural width when omitted"),
				"height": num("Height in canvas pixels; natural height when omitted"),
			}),
			Handler: h.addImage,
		},
		{
			Name:        "add_barcode",
			Description: "Place a barcode encoding each record's value of a column. Returns the new object id.",
			InputSchema: schema(props{
				"column":    str("Dataset column"),
				"symbology": enum("Barcode type", string(model.SymbologyQR), string(model.SymbologyCode128), string(model.SymbologyPDF417)),
			}, "column"),
			Handler: h.addBarcode,
		},
		{
			Name:        "update_object",
			Description: "Set one field of an object, e.g. x, y, text, column, fontSize, bold, color, width, height, stroke, fill, strokeWidth, kind, config, symbology.",
			InputSchema: schema(props{
				"id":    str("Object id"),
				"field": str("Field name"),
				"value": map[string]any{"description": "New value"},
			}, "id", "field", "value"),
			Handler: h.updateObject,
		},
		{
			Name:        "remove_object",
			Description: "Remove an object from the template.",
			InputSchema: schema(props{"id": str("Object id")}, "id"),
			Handler:     h.removeObject,
		},
		{
			Name:        "select_object",
			Description: "Select an object; an empty id clears the selection.",
			InputSchema: schema(props{"id": str("Object id")}),
			Handler:     h.selectObject,
		},
		{
			Name:        "show_record",
			Description: "Preview a record by 0-based index, or step with next/prev.",
			InputSchema: schema(props{
				"index": num("Record index"),
				"step":  enum("Relative navigation", "next", "prev"),
			}),
			Handler: h.showRecord,
		},
		{
			Name:        "get_scene",
			Description: "Return the previewed record resolved against the template, optionally with a PNG preview.",
			InputSchema: schema(props{"preview": map[string]any{"type": "boolean", "description": "Include a PNG preview"}}),
			Handler:     h.getScene,
		},
		{
			Name:        "export_pdf",
			Description: "Render every record and collect the pages into one PDF. Saves to outputPath or returns base64.",
			InputSchema: schema(props{"outputPath": str("Optional file path; base64 is returned when omitted")}),
			Handler:     h.exportPDF,
		},
	} {
		s.AddTool(t)
	}
}

type props = map[string]any

func schema(p props, required ...string) map[string]any {
	m := map[string]any{"type": "object", "properties": p}
	if len(required) > 0 {
		m["required"] = required
	}
	return m
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func num(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func array(items map[string]any, desc string) map[string]any {
	return map[string]any{"type": "array", "items": items, "description": desc}
}

func enum(desc string, values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "description": desc}
}

func text(format string, a ...any) ToolResult {
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf(format, a...)}}}
}

func jsonResult(v any) (ToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, fmt.Errorf("encoding result: %w", err)
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: string(b)}}}, nil
}

func stringArg(args map[string]any, name string) (string, bool) {
	s, ok := args[name].(string)
	return s, ok && s != ""
}

func requireString(args map[string]any, name string) (string, error) {
	s, ok := stringArg(args, name)
	if !ok {
		return "", fmt.Errorf("missing '%s' argument", name)
	}
	return s, nil
}

func numberArg(args map[string]any, name string) (float64, bool) {
	n, ok := args[name].(float64)
	return n, ok
}

// decode re-marshals a loosely typed argument into v.
func decode(arg any, v any) error {
	b, err := json.Marshal(arg)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

type handlers struct {
	session *reportcanvas.Session
}

func (h *handlers) datasetSummary() (ToolResult, error) {
	ds := h.session.Dataset()
	return jsonResult(map[string]any{
		"columns": ds.Columns,
		"records": ds.Len(),
	})
}

func (h *handlers) loadSpreadsheet(_ context.Context, args map[string]any) (ToolResult, error) {
	path, err := requireString(args, "path")
	if err != nil {
		return ToolResult{}, err
	}
	if err := h.session.LoadSpreadsheet(path); err != nil {
		return ToolResult{}, err
	}
	return h.datasetSummary()
}

func (h *handlers) loadDataset(_ context.Context, args map[string]any) (ToolResult, error) {
	var columns []string
	if err := decode(args["columns"], &columns); err != nil || len(columns) == 0 {
		return ToolResult{}, fmt.Errorf("missing 'columns' argument")
	}
	var raw [][]any
	if err := decode(args["rows"], &raw); err != nil {
		return ToolResult{}, fmt.Errorf("invalid 'rows' argument: %w", err)
	}
	rows := make([][]string, len(raw))
	for i, r := range raw {
		rows[i] = make([]string, len(r))
		for j, cell := range r {
			rows[i][j] = cellString(cell)
		}
	}
	if err := h.session.LoadDataset(model.Dataset{Columns: columns, Rows: rows}); err != nil {
		return ToolResult{}, err
	}
	return h.datasetSummary()
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func (h *handlers) setPaper(_ context.Context, args map[string]any) (ToolResult, error) {
	paper, err := requireString(args, "paper")
	if err != nil {
		return ToolResult{}, err
	}
	if err := h.session.SetPaper(model.Paper(paper)); err != nil {
		return ToolResult{}, err
	}
	return text("Paper set to %s", paper), nil
}

func (h *handlers) setEvaluationItems(_ context.Context, args map[string]any) (ToolResult, error) {
	var items []model.EvaluationItem
	if err := decode(args["items"], &items); err != nil {
		return ToolResult{}, fmt.Errorf("invalid 'items' argument: %w", err)
	}
	if err := h.session.SetEvaluationItems(items); err != nil {
		return ToolResult{}, err
	}
	return text("%d evaluation items set", len(items)), nil
}

func added(id string, err error) (ToolResult, error) {
	if err != nil {
		return ToolResult{}, err
	}
	return jsonResult(map[string]string{"id": id})
}

func (h *handlers) addText(_ context.Context, args map[string]any) (ToolResult, error) {
	t, _ := stringArg(args, "text")
	return added(h.session.AddText(t))
}

func (h *handlers) addMappedText(_ context.Context, args map[string]any) (ToolResult, error) {
	col, err := requireString(args, "column")
	if err != nil {
		return ToolResult{}, err
	}
	return added(h.session.AddMappedText(col))
}

func (h *handlers) addShape(_ context.Context, args map[string]any) (ToolResult, error) {
	kind, err := requireString(args, "kind")
	if err != nil {
		return ToolResult{}, err
	}
	return added(h.session.AddShape(model.ShapeKind(kind)))
}

func (h *handlers) addChart(_ context.Context, args map[string]any) (ToolResult, error) {
	kind, err := requireString(args, "kind")
	if err != nil {
		return ToolResult{}, err
	}
	var labels []string
	if v, ok := args["labels"]; ok && v != nil {
		if err := decode(v, &labels); err != nil {
			return ToolResult{}, fmt.Errorf("invalid 'labels' argument: %w", err)
		}
	}
	actual, _ := stringArg(args, "actualColor")
	average, _ := stringArg(args, "averageColor")
	return added(h.session.AddChart(model.ChartKind(kind), labels, model.Color(actual), model.Color(average)))
}

func (h *handlers) addImage(_ context.Context, args map[string]any) (ToolResult, error) {
	var (
		data []byte
		err  error
	)
	if path, ok := stringArg(args, "path"); ok {
		data, err = os.ReadFile(path)
		if err != nil {
			return ToolResult{}, fmt.Errorf("reading image: %w", err)
		}
	} else if enc, ok := stringArg(args, "data"); ok {
		data, err = base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return ToolResult{}, fmt.Errorf("decoding image: %w", err)
		}
	} else {
		return ToolResult{}, fmt.Errorf("missing 'path' or 'data' argument")
	}
	w, _ := numberArg(args, "width")
	hgt, _ := numberArg(args, "height")
	return added(h.session.AddImage(data, w, hgt))
}

func (h *handlers) addBarcode(_ context.Context, args map[string]any) (ToolResult, error) {
	col, err := requireString(args, "column")
	if err != nil {
		return ToolResult{}, err
	}
	sym, _ := stringArg(args, "symbology")
	return added(h.session.AddBarcode(col, model.Symbology(sym)))
}

func (h *handlers) findObject(id string) (model.Object, bool) {
	for _, o := range h.session.Objects() {
		if o.ObjectID() == id {
			return o, true
		}
	}
	return nil, false
}

func (h *handlers) updateObject(_ context.Context, args map[string]any) (ToolResult, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return ToolResult{}, err
	}
	field, err := requireString(args, "field")
	if err != nil {
		return ToolResult{}, err
	}
	if _, ok := h.findObject(id); !ok {
		return text("No object %s; nothing changed", id), nil
	}
	value := args["value"]
	if model.Field(field) == model.FieldConfig {
		var cfg model.ChartConfig
		if err := decode(value, &cfg); err != nil {
			return ToolResult{}, fmt.Errorf("invalid chart config: %w", err)
		}
		value = cfg
	}
	if err := h.session.Update(id, model.Field(field), value); err != nil {
		return ToolResult{}, err
	}
	return text("Updated %s of %s", field, id), nil
}

func (h *handlers) removeObject(_ context.Context, args map[string]any) (ToolResult, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return ToolResult{}, err
	}
	if _, ok := h.findObject(id); !ok {
		return text("No object %s; nothing changed", id), nil
	}
	if err := h.session.Remove(id); err != nil {
		return ToolResult{}, err
	}
	return text("Removed %s", id), nil
}

func (h *handlers) selectObject(_ context.Context, args map[string]any) (ToolResult, error) {
	id, _ := stringArg(args, "id")
	if err := h.session.Select(id); err != nil {
		return ToolResult{}, err
	}
	if id == "" {
		return text("Selection cleared"), nil
	}
	return text("Selected %s", id), nil
}

func (h *handlers) showRecord(_ context.Context, args map[string]any) (ToolResult, error) {
	var shown int
	step, _ := stringArg(args, "step")
	switch step {
	case "next":
		shown = h.session.Next()
	case "prev":
		shown = h.session.Prev()
	case "":
		idx, ok := numberArg(args, "index")
		if !ok {
			return ToolResult{}, fmt.Errorf("missing 'index' or 'step' argument")
		}
		shown = h.session.ShowRecord(int(idx))
	default:
		return ToolResult{}, fmt.Errorf("invalid step %q", step)
	}
	return jsonResult(map[string]int{"record": shown, "records": h.session.Dataset().Len()})
}

func (h *handlers) getScene(_ context.Context, args map[string]any) (ToolResult, error) {
	res, err := jsonResult(h.session.Scene())
	if err != nil {
		return res, err
	}
	if preview, _ := args["preview"].(bool); preview {
		img, err := h.session.Preview(1)
		if err != nil {
			return ToolResult{}, err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return ToolResult{}, fmt.Errorf("encoding preview: %w", err)
		}
		res.Content = append(res.Content, pngBlock(buf.Bytes()))
	}
	return res, nil
}

func (h *handlers) exportPDF(ctx context.Context, args map[string]any) (ToolResult, error) {
	if path, ok := stringArg(args, "outputPath"); ok {
		res, err := h.session.ExportFile(ctx, path)
		if err != nil {
			return ToolResult{}, err
		}
		return text("PDF exported: %s (%d pages, %d records skipped)", path, res.Pages, len(res.Failures)), nil
	}

	var buf bytes.Buffer
	res, err := h.session.Export(ctx, &buf)
	if err != nil {
		return ToolResult{}, err
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return text("PDF exported (%d pages, %d records skipped, %d bytes). Base64 data:\n%s",
		res.Pages, len(res.Failures), buf.Len(), encoded), nil
}

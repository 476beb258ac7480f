package frame

import (
	"github.com/lvillar/reportcanvas/binding"
	"github.com/lvillar/reportcanvas/model"
)

// Render resolves tpl against record of ds. selected is the id of the
// selected object; it only affects Edit mode.
func Render(tpl model.Template, ds model.Dataset, record int, mode Mode, selected string) Scene {
	w, h := tpl.Paper.SizePx()
	scene := Scene{
		Width:  w,
		Height: h,
		Record: record,
		Mode:   mode,
		Items:  make([]Item, 0, len(tpl.Objects)),
	}
	for _, obj := range tpl.Objects {
		var chrome Chrome
		if mode == Edit {
			chrome = Chrome{Selected: obj.ObjectID() == selected, Deletable: true}
		}
		if it := resolve(obj, ds, record, chrome); it != nil {
			scene.Items = append(scene.Items, it)
		}
	}
	return scene
}

func resolve(obj model.Object, ds model.Dataset, record int, chrome Chrome) Item {
	switch o := obj.(type) {
	case model.Text:
		return TextItem{
			Type: model.KindText, ID: o.ID, X: o.X, Y: o.Y,
			Text: o.Text, FontSize: o.FontSize, Bold: o.Bold, Color: o.Color,
			Chrome: chrome,
		}
	case model.MappedText:
		return TextItem{
			Type: model.KindMappedText, ID: o.ID, X: o.X, Y: o.Y,
			Text:     binding.Text(ds, record, o.Column),
			FontSize: o.FontSize, Bold: o.Bold, Color: o.Color,
			Chrome: chrome,
		}
	case model.Shape:
		return ShapeItem{
			Type: model.KindShape, ID: o.ID, X: o.X, Y: o.Y, Width: o.Width, Height: o.Height,
			Kind: o.ShapeKind, Stroke: o.Stroke, Fill: o.Fill, StrokeWidth: o.StrokeWidth,
			Chrome: chrome,
		}
	case model.Image:
		return ImageItem{
			Type: model.KindImage, ID: o.ID, X: o.X, Y: o.Y, Width: o.Width, Height: o.Height,
			Data: o.Data, Chrome: chrome,
		}
	case model.Chart:
		item := ChartItem{
			Type: model.KindChart, ID: o.ID, X: o.X, Y: o.Y, Width: o.Width, Height: o.Height,
			Kind:         o.ChartKind,
			ActualColor:  o.Config.ActualColor,
			AverageColor: o.Config.AverageColor,
			Chrome:       chrome,
		}
		if _, ok := ds.Record(record); ok {
			item.Data = binding.Chart(ds, record, o.Config)
		} else {
			item.NoData = true
		}
		return item
	case model.Barcode:
		item := BarcodeItem{
			Type: model.KindBarcode, ID: o.ID, X: o.X, Y: o.Y, Width: o.Width, Height: o.Height,
			Symbology: o.Symbology, Chrome: chrome,
		}
		if v, ok := binding.Value(ds, record, o.Column); ok {
			item.Value = v
		} else {
			item.Placeholder = binding.Placeholder(o.Column)
		}
		return item
	}
	return nil
}

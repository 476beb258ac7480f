package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/lvillar/reportcanvas"
	"github.com/lvillar/reportcanvas/model"
)

// RegisterSessionResources adds the read-only views of session to the
// server. Resources use the canvas:// scheme.
func RegisterSessionResources(s *Server, session *reportcanvas.Session) {
	s.AddResource(Resource{
		URI:         "canvas://scene",
		Name:        "Current Scene",
		Description: "The previewed record resolved against the template, as painted in edit mode.",
		MIMEType:    "application/json",
		Handler: func(uri string) ([]ResourceContent, error) {
			return jsonContent(uri, session.Scene())
		},
	})

	s.AddResource(Resource{
		URI:         "canvas://dataset",
		Name:        "Dataset",
		Description: "The loaded dataset: column names and records.",
		MIMEType:    "application/json",
		Handler: func(uri string) ([]ResourceContent, error) {
			return jsonContent(uri, session.Dataset())
		},
	})

	s.AddResource(Resource{
		URI:         "canvas://objects",
		Name:        "Template Objects",
		Description: "The template's paper, evaluation items and objects in paint order.",
		MIMEType:    "application/json",
		Handler: func(uri string) ([]ResourceContent, error) {
			tpl := session.Template()
			objects := make([]objectView, len(tpl.Objects))
			for i, o := range tpl.Objects {
				objects[i] = viewOf(o)
			}
			return jsonContent(uri, map[string]any{
				"paper":    tpl.Paper,
				"items":    tpl.Items,
				"selected": session.Selected(),
				"objects":  objects,
			})
		},
	})
}

// objectView is an object tagged with its variant. Image payloads are
// reported by size only.
type objectView struct {
	Type   model.Kind   `json:"type"`
	Object model.Object `json:"object"`
	Bytes  int          `json:"bytes,omitempty"`
}

func viewOf(o model.Object) objectView {
	v := objectView{Type: o.Kind(), Object: o}
	if img, ok := o.(model.Image); ok {
		v.Bytes = len(img.Data)
		img.Data = nil
		v.Object = img
	}
	return v
}

func jsonContent(uri string, v any) ([]ResourceContent, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(b),
	}}, nil
}

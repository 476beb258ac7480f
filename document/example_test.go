package document_test

import (
	"bytes"
	"fmt"
	"image"

	"github.com/lvillar/reportcanvas/document"
)

func ExampleBuilder() {
	// An A4 page in CSS pixels.
	b, err := document.New(794, 1123, document.WithTitle("Quarterly scores"))
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := 0; i < 2; i++ {
		if err := b.AddPage(image.NewRGBA(image.Rect(0, 0, 397, 562))); err != nil {
			fmt.Println(err)
			return
		}
	}
	var buf bytes.Buffer
	if err := b.Output(&buf); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(b.PageCount(), b.PageOrientation())
	// Output: 2 P
}

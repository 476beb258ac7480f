package binding_test

import (
	"fmt"

	"github.com/lvillar/reportcanvas/binding"
	"github.com/lvillar/reportcanvas/model"
)

func ExampleText() {
	ds := model.Dataset{
		Columns: []string{"Name", "Score"},
		Rows:    [][]string{{"Alice", "8"}, {"Bob", "3"}},
	}
	fmt.Println(binding.Text(ds, 1, "Name"))
	fmt.Println(binding.Text(ds, 1, "Rank"))
	// Output:
	// Bob
	// [Rank]
}

package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-safe/dsp/buffer"
)

func ExampleBuffer() {
	b := buffer.New(2, 6)
	in := [][]float64{{1, 2, 3}, {4, 5, 6}}

	n := b.WriteAt(4, in, len(in[0]))

	fmt.Println(n)
	fmt.Println(b.Channel(0))
	fmt.Println(b.Channel(1))

	// Output:
	// 2
	// [0 0 0 0 1 2]
	// [0 0 0 0 4 5]
}

func ExampleViews() {
	host := [][]float64{{0, 1, 2, 3, 4, 5}}
	views := make([][]float64, 0, 1)

	views = buffer.Views(views, host, 2, 4)
	views[0][0] = 20

	fmt.Println(host[0])

	// Output:
	// [0 1 20 3 4 5]
}

package fbnl_test

import (
	"fmt"

	"github.com/cwbudde/algo-tweezer/dsp/filter/fbnl"
	"github.com/cwbudde/algo-tweezer/internal/testutil"
)

func ExampleFilter() {
	// Two plateaus of 300 samples, separated by a step of 8 noise sigmas.
	data := testutil.StepTrace([]float64{0, 8}, []int{300, 300}, 1, 42)

	r, err := fbnl.Filter(data, 1000, 25)
	if err != nil {
		fmt.Println(err)
		return
	}

	peak := 0
	for i, v := range r.StepMass {
		if v > r.StepMass[peak] {
			peak = i
		}
	}
	fmt.Println("samples:", len(r.Filtered))
	fmt.Println("step found near 300:", peak >= 296 && peak <= 304)
	// Output:
	// samples: 600
	// step found near 300: true
}

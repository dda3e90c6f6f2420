package time_test

import (
	"fmt"

	timestats "github.com/cwbudde/algo-tweezer/stats/time"
)

func ExampleCalculate() {
	s := timestats.Calculate([]float64{1, 2, 3, 4})
	fmt.Printf("mean=%.1f median=%.1f iqr=%.1f\n", s.Mean, s.Median, s.IQR)

	// Output:
	// mean=2.5 median=2.5 iqr=2.0
}

func ExampleMovingMean() {
	fmt.Println(timestats.MovingMean([]float64{1, 2, 3, 4}, 2))

	// Output:
	// [1.5 2.5 3.5]
}

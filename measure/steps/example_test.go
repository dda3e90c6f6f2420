package steps_test

import (
	"fmt"

	"github.com/cwbudde/algo-tweezer/measure/steps"
)

func ExampleFindSteps() {
	stepMass := make([]float64, 40)
	copy(stepMass[8:], []float64{1, 3, 1})
	copy(stepMass[25:], []float64{-2, -4, -2})

	s := steps.FindSteps(stepMass, 0.5, steps.FindOptions{MinStepSpacing: 5})
	fmt.Println("indices:", s.Indices)
	fmt.Println("up:", s.Up)
	fmt.Println("plateaus:", len(s.Plateaus))
	// Output:
	// indices: [9 26]
	// up: [true false]
	// plateaus: 3
}

func ExampleDeleteSmallSteps() {
	stepMass := make([]float64, 30)
	copy(stepMass[9:], []float64{2, 2})
	copy(stepMass[19:], []float64{2, 2})

	data := make([]float64, 30)
	for i := range data {
		switch {
		case i >= 20:
			data[i] = 5.2
		case i >= 10:
			data[i] = 5
		}
	}

	s := steps.FindSteps(stepMass, 1, steps.FindOptions{MinStepSpacing: 5})
	s.StepSizes, s.PlateauHeights, s.DwellPoints = steps.Analyse(s.Indices, s.Plateaus, data)
	kept := steps.DeleteSmallSteps(s, []float64{1, 1})
	fmt.Println("found:", s.Indices)
	fmt.Println("kept:", kept.Indices)
	fmt.Printf("heights: %.1f\n", kept.PlateauHeights)
	// Output:
	// found: [10 20]
	// kept: [10]
	// heights: [0.0 5.1]
}

package dataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// RandomCohort is the cohort name of generated control groups
const RandomCohort = "rand"

// RandomKey identifies the uniform random control group. Any group key with
// the random cohort resolves to it.
var RandomKey = models.GroupKey{Cohort: RandomCohort, Metric: "uniform"}

// Defaults of the uniform random control group
const (
	DefaultRandomGraphs = 100
	DefaultRandomNodes  = 88
)

// RandomGroup generates count size×size matrices with weights drawn
// uniformly from [0,1) and a zero diagonal. The same seed always yields the
// same group.
func RandomGroup(count, size int, seed uint64) []mat.Matrix {
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}

	graphs := make([]mat.Matrix, count)
	for g := range graphs {
		m := mat.NewDense(size, size, nil)
		for i := 0; i < size; i++ {
			for j := 0; j < size; j++ {
				if i != j {
					m.Set(i, j, uniform.Rand())
				}
			}
		}
		graphs[g] = m
	}
	return graphs
}

package scoring

// Fixed formula constants. Coefficient order for the polynomial sets is
// lowest power first: c[0] + c[1]*bw + c[2]*bw^2 + ...

// DOTS denominator polynomial (quartic), per sex.
var (
	dotsMen   = [5]float64{-307.75076, 24.0900756, -0.1918759221, 0.0007391293, -0.000001093}
	dotsWomen = [5]float64{-57.96288, 13.6175032, -0.1126655495, 0.0005158568, -0.0000010706}
)

// Wilks denominator polynomial (quintic), per sex.
var (
	wilksMen   = [6]float64{-216.0475144, 16.2606339, -0.002388645, -0.00113732, 7.01863e-06, -1.291e-08}
	wilksWomen = [6]float64{594.31747775582, -27.23842536447, 0.82112226871, -0.00930733913, 4.731582e-05, -9.054e-08}
)

// IPF GL points: lift * 100 / (A - B*exp(-C*bw)).
type glConstants struct {
	a, b, c float64
}

var (
	glMen   = glConstants{a: 1199.72839, b: 1025.18162, c: 0.00921}
	glWomen = glConstants{a: 610.32796, b: 1045.59282, c: 0.03048}
)

// IPF weight class ladders, ascending upper bounds in kilograms. A
// bodyweight above the last bound maps to the open-ended "+" class.
var (
	classLadderMen   = []float64{59, 66, 74, 83, 93, 105, 120}
	classLadderWomen = []float64{47, 52, 57, 63, 69, 76, 84}
)

// Strength tier thresholds on the DOTS axis, ascending, per lift and sex:
// Novice, Intermediate, Advanced, Elite, World Class. A score below the
// first bound is Beginner.
var tierThresholdsMen = map[string][5]float64{
	"squat":    {70, 105, 140, 175, 195},
	"bench":    {50, 75, 100, 125, 140},
	"deadlift": {80, 120, 160, 200, 220},
	"total":    {200, 300, 400, 500, 550},
}

var tierThresholdsWomen = map[string][5]float64{
	"squat":    {65, 98, 130, 165, 185},
	"bench":    {45, 68, 90, 115, 130},
	"deadlift": {75, 112, 150, 188, 208},
	"total":    {185, 280, 375, 470, 520},
}

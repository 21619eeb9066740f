package scoring

import "strconv"

// round1 rounds x to one decimal place using the shortest correctly rounded
// decimal of the exact binary value, with exact ties going to the even digit
// (56.25 -> 56.2, 56.35 -> 56.4 because 56.35 is stored slightly above).
func round1(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		return x
	}
	return r
}

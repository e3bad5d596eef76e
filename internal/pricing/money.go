package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// Sum adds fee amounts.
func Sum(fees []Fee) Money {
	var total Money
	for _, f := range fees {
		total += f.Amount
	}
	return total
}

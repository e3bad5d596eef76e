package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/rental-ledger/internal/rental"
)

// Rule names attached by the Assembler.
const (
	RuleDistance            = "distance"
	RuleDay                 = "day"
	RuleInsurance           = "insurance"
	RuleAssistance          = "assistance"
	RulePlatform            = "platform"
	RuleDeductibleReduction = "deductible_reduction"
)

// CostKind tags a Cost variant.
type CostKind uint8

const (
	CostDistance CostKind = iota + 1
	CostDay
)

func (k CostKind) String() string {
	switch k {
	case CostDistance:
		return "distance"
	case CostDay:
		return "day"
	}
	return fmt.Sprintf("cost(%d)", uint8(k))
}

// Cost is one component of a rental's price.
type Cost struct {
	kind     CostKind
	discount Schedule
}

// DistanceCost bills distance × price per km.
func DistanceCost() Cost { return Cost{kind: CostDistance} }

// DayCost bills price per day for each rented day. With a non-empty schedule every
// day is discounted by its tier and truncated to a whole minor unit on its own.
func DayCost(discount Schedule) Cost { return Cost{kind: CostDay, discount: discount} }

func (c Cost) Kind() CostKind { return c.kind }

// Discount returns the schedule of a day cost, nil when undiscounted.
func (c Cost) Discount() Schedule { return c.discount }

// Total evaluates the cost for the given rental terms.
func (c Cost) Total(t rental.Terms) (Money, error) {
	switch c.kind {
	case CostDistance:
		return t.Distance() * t.Vehicle().PricePerKm, nil
	case CostDay:
		return c.dayTotal(t)
	}
	return 0, fmt.Errorf("pricing: unsupported %s", c.kind)
}

func (c Cost) dayTotal(t rental.Terms) (Money, error) {
	perDay := t.Vehicle().PricePerDay
	days := t.DayCount()
	if len(c.discount) == 0 {
		return perDay * Money(days), nil
	}

	one := decimal.NewFromInt(1)
	rate := decimal.NewFromInt(perDay)
	var total Money
	for d := 1; d <= days; d++ {
		tier, err := c.discount.Tier(d)
		if err != nil {
			return 0, fmt.Errorf("rental %d, %d days: %w", t.ID(), days, err)
		}
		total += rate.Mul(one.Sub(tier.Discount)).IntPart()
	}
	return total, nil
}

// CommissionKind tags a Commission variant.
type CommissionKind uint8

const (
	CommissionInsurance CommissionKind = iota + 1
	CommissionAssistance
	// CommissionResidual takes the full commission cut minus every other commission.
	CommissionResidual
)

func (k CommissionKind) String() string {
	switch k {
	case CommissionInsurance:
		return "insurance"
	case CommissionAssistance:
		return "assistance"
	case CommissionResidual:
		return "residual"
	}
	return fmt.Sprintf("commission(%d)", uint8(k))
}

// Commission is a stakeholder's share of the platform commission.
type Commission struct {
	kind   CommissionKind
	rate   decimal.Decimal
	share  decimal.Decimal
	perDay Money
}

// InsuranceCommission takes share of the commission rate applied to price.
func InsuranceCommission(rate, share decimal.Decimal) Commission {
	return Commission{kind: CommissionInsurance, rate: rate, share: share}
}

// AssistanceCommission is a flat fee per rented day.
func AssistanceCommission(perDay Money) Commission {
	return Commission{kind: CommissionAssistance, perDay: perDay}
}

// ResidualCommission absorbs the rounding of its siblings so that all commissions
// add up to floor(price × rate).
func ResidualCommission(rate decimal.Decimal) Commission {
	return Commission{kind: CommissionResidual, rate: rate}
}

func (c Commission) Kind() CommissionKind { return c.kind }
func (c Commission) IsResidual() bool     { return c.kind == CommissionResidual }

// direct computes a non-residual fee.
func (c Commission) direct(price Money, days int) (Money, error) {
	switch c.kind {
	case CommissionInsurance:
		return floorOf(price, c.rate, c.share), nil
	case CommissionAssistance:
		return c.perDay * Money(days), nil
	}
	return 0, fmt.Errorf("pricing: %s commission has no direct fee", c.kind)
}

func (c Commission) residual(price, siblings Money) Money {
	return floorOf(price, c.rate) - siblings
}

// floorOf returns floor(amount × factors...) computed without float rounding.
func floorOf(amount Money, factors ...decimal.Decimal) Money {
	v := decimal.NewFromInt(amount)
	for _, f := range factors {
		v = v.Mul(f)
	}
	return v.Floor().IntPart()
}

// OptionKind tags an Option variant.
type OptionKind uint8

const (
	OptionDeductibleReduction OptionKind = iota + 1
)

// Option is an add-on the driver may purchase on top of the price.
type Option struct {
	kind    OptionKind
	dayCost Money
}

// DeductibleReductionOption costs dayCost per rented day when purchased.
func DeductibleReductionOption(dayCost Money) Option {
	return Option{kind: OptionDeductibleReduction, dayCost: dayCost}
}

func (o Option) Kind() OptionKind { return o.kind }

// Cost evaluates the option for the given rental terms.
func (o Option) Cost(t rental.Terms) Money {
	switch o.kind {
	case OptionDeductibleReduction:
		if t.DeductibleReduction() {
			return o.dayCost * Money(t.DayCount())
		}
	}
	return 0
}

package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/rental-ledger/internal/rental"
)

// Defaults parameterise the rules an Assembler attaches.
type Defaults struct {
	CommissionRate    decimal.Decimal
	InsuranceShare    decimal.Decimal
	AssistancePerDay  Money
	DeductibleDayCost Money
}

// StandardDefaults returns a 30% commission, half of it to insurance, 1.00 per day
// for assistance and 4.00 per day for the deductible reduction.
func StandardDefaults() Defaults {
	return Defaults{
		CommissionRate:    decimal.RequireFromString("0.30"),
		InsuranceShare:    decimal.RequireFromString("0.50"),
		AssistancePerDay:  100,
		DeductibleDayCost: 400,
	}
}

// Assembler attaches the canonical rule set to rentals. The rule values are built
// once and shared by every sheet it produces.
type Assembler struct {
	distance   Cost
	day        Cost
	insurance  Commission
	assistance Commission
	platform   Commission
	deductible Option
}

// NewAssembler builds an Assembler from d.
func NewAssembler(d Defaults) *Assembler {
	return &Assembler{
		distance:   DistanceCost(),
		day:        DayCost(nil),
		insurance:  InsuranceCommission(d.CommissionRate, d.InsuranceShare),
		assistance: AssistanceCommission(d.AssistancePerDay),
		platform:   ResidualCommission(d.CommissionRate),
		deductible: DeductibleReductionOption(d.DeductibleDayCost),
	}
}

// Assemble attaches distance and undiscounted day costs, the insurance, assistance
// and platform commissions and the deductible-reduction option to r.
func (a *Assembler) Assemble(r *rental.Rental) *Sheet {
	costs := NewRegistry[Cost]()
	costs.Set(RuleDistance, a.distance)
	costs.Set(RuleDay, a.day)

	commissions := NewRegistry[Commission]()
	commissions.Set(RuleInsurance, a.insurance)
	commissions.Set(RuleAssistance, a.assistance)
	commissions.Set(RulePlatform, a.platform)

	options := NewRegistry[Option]()
	options.Set(RuleDeductibleReduction, a.deductible)

	return &Sheet{
		rental:      r,
		terms:       r,
		costs:       costs,
		commissions: commissions,
		options:     options,
	}
}

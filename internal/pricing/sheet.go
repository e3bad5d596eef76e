package pricing

import (
	"errors"
	"fmt"

	"github.com/noah-isme/rental-ledger/internal/rental"
)

// ErrUnknownRule is returned when a cost, commission or option is requested by a
// name that is not attached to the sheet.
var ErrUnknownRule = errors.New("pricing: unknown rule")

// Fee is a named amount produced by a commission or option.
type Fee struct {
	Name   string
	Amount Money
}

// Sheet is a rental with its cost, commission and option rules attached. All
// figures are recomputed on every query.
type Sheet struct {
	rental      *rental.Rental
	terms       rental.Terms
	costs       *Registry[Cost]
	commissions *Registry[Commission]
	options     *Registry[Option]
}

// Rental returns the original rental record.
func (s *Sheet) Rental() *rental.Rental { return s.rental }

// Terms returns the facts the rules are evaluated against: the rental itself, or its
// modified view for an amended sheet.
func (s *Sheet) Terms() rental.Terms { return s.terms }

func (s *Sheet) DayCount() int { return s.terms.DayCount() }

// ReplaceCost attaches c under name. Unknown names are added.
func (s *Sheet) ReplaceCost(name string, c Cost) *Sheet {
	s.costs.Set(name, c)
	return s
}

// ReplaceCommission attaches c under name. Unknown names are added.
func (s *Sheet) ReplaceCommission(name string, c Commission) *Sheet {
	s.commissions.Set(name, c)
	return s
}

// ReplaceOption attaches o under name. Unknown names are added.
func (s *Sheet) ReplaceOption(name string, o Option) *Sheet {
	s.options.Set(name, o)
	return s
}

func (s *Sheet) CostNames() []string       { return s.costs.Names() }
func (s *Sheet) CommissionNames() []string { return s.commissions.Names() }
func (s *Sheet) OptionNames() []string     { return s.options.Names() }

// Price sums every attached cost.
func (s *Sheet) Price() (Money, error) {
	var total Money
	for _, name := range s.costs.Names() {
		c, _ := s.costs.Get(name)
		amount, err := c.Total(s.terms)
		if err != nil {
			return 0, fmt.Errorf("cost %q: %w", name, err)
		}
		total += amount
	}
	return total, nil
}

// Cost evaluates a single attached cost.
func (s *Sheet) Cost(name string) (Money, error) {
	c, ok := s.costs.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: cost %q", ErrUnknownRule, name)
	}
	return c.Total(s.terms)
}

// CommissionFees evaluates every commission in attachment order. Direct commissions
// are computed first; residual ones are then derived from those results only.
func (s *Sheet) CommissionFees() ([]Fee, error) {
	price, err := s.Price()
	if err != nil {
		return nil, err
	}
	days := s.DayCount()
	names := s.commissions.Names()

	computed := make(map[string]Money, len(names))
	var direct Money
	for _, name := range names {
		c, _ := s.commissions.Get(name)
		if c.IsResidual() {
			continue
		}
		fee, err := c.direct(price, days)
		if err != nil {
			return nil, fmt.Errorf("commission %q: %w", name, err)
		}
		computed[name] = fee
		direct += fee
	}
	for _, name := range names {
		c, _ := s.commissions.Get(name)
		if c.IsResidual() {
			computed[name] = c.residual(price, direct)
		}
	}

	fees := make([]Fee, 0, len(names))
	for _, name := range names {
		fees = append(fees, Fee{Name: name, Amount: computed[name]})
	}
	return fees, nil
}

// CommissionFee returns the fee of one attached commission.
func (s *Sheet) CommissionFee(name string) (Money, error) {
	if _, ok := s.commissions.Get(name); !ok {
		return 0, fmt.Errorf("%w: commission %q", ErrUnknownRule, name)
	}
	fees, err := s.CommissionFees()
	if err != nil {
		return 0, err
	}
	for _, f := range fees {
		if f.Name == name {
			return f.Amount, nil
		}
	}
	return 0, fmt.Errorf("%w: commission %q", ErrUnknownRule, name)
}

// CommissionTotal sums every commission fee.
func (s *Sheet) CommissionTotal() (Money, error) {
	fees, err := s.CommissionFees()
	if err != nil {
		return 0, err
	}
	return Sum(fees), nil
}

// OptionCost returns the cost of one attached option.
func (s *Sheet) OptionCost(name string) (Money, error) {
	o, ok := s.options.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: option %q", ErrUnknownRule, name)
	}
	return o.Cost(s.terms), nil
}

// OptionCosts evaluates every option in attachment order.
func (s *Sheet) OptionCosts() []Fee {
	names := s.options.Names()
	out := make([]Fee, 0, len(names))
	for _, name := range names {
		o, _ := s.options.Get(name)
		out = append(out, Fee{Name: name, Amount: o.Cost(s.terms)})
	}
	return out
}

// IsAmended reports whether the underlying rental carries a modification.
func (s *Sheet) IsAmended() bool { return s.rental.IsModified() }

// Amended returns a sheet sharing this sheet's rules but evaluated against the
// rental's modified view.
func (s *Sheet) Amended() (*Sheet, error) {
	view, err := rental.NewModifiedView(s.rental)
	if err != nil {
		return nil, fmt.Errorf("rental %d: %w", s.rental.ID(), err)
	}
	return s.withTerms(view), nil
}

func (s *Sheet) withTerms(t rental.Terms) *Sheet {
	return &Sheet{
		rental:      s.rental,
		terms:       t,
		costs:       s.costs,
		commissions: s.commissions,
		options:     s.options,
	}
}

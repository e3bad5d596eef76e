package payment

import (
	"fmt"

	"github.com/noah-isme/rental-ledger/internal/pricing"
)

// ActionType is the direction of a money movement from the actor's point of view.
type ActionType string

const (
	Credit ActionType = "credit"
	Debit  ActionType = "debit"
)

// Opposite returns the other direction.
func (t ActionType) Opposite() ActionType {
	if t == Credit {
		return Debit
	}
	return Credit
}

// Role selects how an actor's exposure is derived from a quote.
type Role uint8

const (
	RoleDriver Role = iota + 1
	RoleOwner
	RoleInsurance
	RoleAssistance
	RolePlatform
)

func (r Role) String() string {
	switch r {
	case RoleDriver:
		return "driver"
	case RoleOwner:
		return "owner"
	case RoleInsurance:
		return "insurance"
	case RoleAssistance:
		return "assistance"
	case RolePlatform:
		return "platform"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Quote is the read side of a priced rental that actors depend on.
type Quote interface {
	Price() (pricing.Money, error)
	CommissionTotal() (pricing.Money, error)
	CommissionFee(name string) (pricing.Money, error)
	OptionCost(name string) (pricing.Money, error)
}

// Actor is a stakeholder in a rental's money flow.
type Actor struct {
	Name    string
	Role    Role
	Default ActionType
	Reverse ActionType
}

// NewActor builds an actor for role. Drivers pay, so their default direction is a
// debit; every other role is credited.
func NewActor(name string, role Role) Actor {
	a := Actor{Name: name, Role: role, Default: Credit, Reverse: Debit}
	if role == RoleDriver {
		a.Default, a.Reverse = Debit, Credit
	}
	return a
}

// DefaultActors returns driver, owner, insurance, assistance and platform, named
// after their role.
func DefaultActors() []Actor {
	roles := []Role{RoleDriver, RoleOwner, RoleInsurance, RoleAssistance, RolePlatform}
	actors := make([]Actor, len(roles))
	for i, r := range roles {
		actors[i] = NewActor(r.String(), r)
	}
	return actors
}

// Amount returns the actor's exposure on q.
func (a Actor) Amount(q Quote) (pricing.Money, error) {
	switch a.Role {
	case RoleDriver:
		return sum(q.Price, option(q, pricing.RuleDeductibleReduction))
	case RoleOwner:
		price, err := q.Price()
		if err != nil {
			return 0, err
		}
		commissions, err := q.CommissionTotal()
		if err != nil {
			return 0, err
		}
		return price - commissions, nil
	case RoleInsurance:
		return q.CommissionFee(pricing.RuleInsurance)
	case RoleAssistance:
		return q.CommissionFee(pricing.RuleAssistance)
	case RolePlatform:
		return sum(commission(q, pricing.RulePlatform), option(q, pricing.RuleDeductibleReduction))
	}
	return 0, fmt.Errorf("payment: actor %q has unsupported %s", a.Name, a.Role)
}

type amountFunc func() (pricing.Money, error)

func commission(q Quote, name string) amountFunc {
	return func() (pricing.Money, error) { return q.CommissionFee(name) }
}

func option(q Quote, name string) amountFunc {
	return func() (pricing.Money, error) { return q.OptionCost(name) }
}

func sum(parts ...amountFunc) (pricing.Money, error) {
	var total pricing.Money
	for _, part := range parts {
		v, err := part()
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

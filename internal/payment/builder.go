package payment

import (
	"errors"
	"fmt"

	"github.com/noah-isme/rental-ledger/internal/pricing"
)

// ErrNegativeAmount is returned when an actor of an unamended rental is owed a
// negative amount.
var ErrNegativeAmount = errors.New("payment: negative amount")

// Action is one directional money movement.
type Action struct {
	Who    string        `json:"who"`
	Type   ActionType    `json:"type"`
	Amount pricing.Money `json:"amount"`
}

// Builder turns a priced rental into payment actions, one per actor in order.
type Builder struct {
	actors []Actor
}

// NewBuilder returns a builder over actors, or DefaultActors when none are given.
func NewBuilder(actors ...Actor) *Builder {
	if len(actors) == 0 {
		actors = DefaultActors()
	}
	return &Builder{actors: append([]Actor(nil), actors...)}
}

// WithActor replaces the actor with the same name in place, or appends it.
func (b *Builder) WithActor(a Actor) *Builder {
	for i := range b.actors {
		if b.actors[i].Name == a.Name {
			b.actors[i] = a
			return b
		}
	}
	b.actors = append(b.actors, a)
	return b
}

// Actors returns a copy of the configured actors.
func (b *Builder) Actors() []Actor { return append([]Actor(nil), b.actors...) }

// Actions evaluates every actor against sheet. An amended rental yields the
// difference between its modified and original terms instead.
func (b *Builder) Actions(sheet *pricing.Sheet) ([]Action, error) {
	if sheet.IsAmended() {
		amended, err := sheet.Amended()
		if err != nil {
			return nil, err
		}
		return b.deltas(sheet, amended)
	}
	return b.direct(sheet)
}

func (b *Builder) direct(q Quote) ([]Action, error) {
	out := make([]Action, 0, len(b.actors))
	for _, a := range b.actors {
		amount, err := a.Amount(q)
		if err != nil {
			return nil, fmt.Errorf("actor %q: %w", a.Name, err)
		}
		if amount < 0 {
			return nil, fmt.Errorf("%w: actor %q amount %d", ErrNegativeAmount, a.Name, amount)
		}
		out = append(out, Action{Who: a.Name, Type: a.Default, Amount: amount})
	}
	return out, nil
}

// deltas compares each actor's exposure after the amendment with the original one.
// A zero delta is reported in the reverse direction.
func (b *Builder) deltas(original, amended Quote) ([]Action, error) {
	out := make([]Action, 0, len(b.actors))
	for _, a := range b.actors {
		before, err := a.Amount(original)
		if err != nil {
			return nil, fmt.Errorf("actor %q: %w", a.Name, err)
		}
		after, err := a.Amount(amended)
		if err != nil {
			return nil, fmt.Errorf("actor %q amended: %w", a.Name, err)
		}
		delta := after - before
		action := Action{Who: a.Name, Type: a.Default, Amount: delta}
		if delta <= 0 {
			action.Type = a.Reverse
			action.Amount = -delta
		}
		out = append(out, action)
	}
	return out, nil
}

// Net returns credits minus debits. A balanced set of actions nets to zero.
func Net(actions []Action) pricing.Money {
	var net pricing.Money
	for _, a := range actions {
		switch a.Type {
		case Credit:
			net += a.Amount
		case Debit:
			net -= a.Amount
		}
	}
	return net
}

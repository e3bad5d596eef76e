package rental

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDateRange is returned when a rental ends before it starts.
var ErrInvalidDateRange = errors.New("rental: end date precedes start date")

// Vehicle carries the rates a rental is billed with. Prices are in minor units.
type Vehicle struct {
	ID          int64
	PricePerDay int64
	PricePerKm  int64
}

// Terms are the facts pricing rules read. Both Rental and ModifiedView satisfy it.
type Terms interface {
	ID() int64
	StartDate() time.Time
	EndDate() time.Time
	Distance() int64
	DeductibleReduction() bool
	Vehicle() Vehicle
	DayCount() int
}

// Params describes a rental record to construct.
type Params struct {
	ID                  int64
	Vehicle             Vehicle
	StartDate           time.Time
	EndDate             time.Time
	Distance            int64
	DeductibleReduction bool
	Modification        Modification
}

// Rental is an immutable rental record.
type Rental struct {
	id                  int64
	vehicle             Vehicle
	start               time.Time
	end                 time.Time
	distance            int64
	deductibleReduction bool
	modification        Modification
}

// New validates params and builds a Rental.
func New(p Params) (*Rental, error) {
	start := truncateDay(p.StartDate)
	end := truncateDay(p.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("rental %d: %w", p.ID, ErrInvalidDateRange)
	}
	if p.Distance < 0 {
		return nil, fmt.Errorf("rental %d: distance must not be negative", p.ID)
	}
	var mod Modification
	if len(p.Modification) > 0 {
		mod = make(Modification, len(p.Modification))
		for k, v := range p.Modification {
			mod[k] = v
		}
	}
	return &Rental{
		id:                  p.ID,
		vehicle:             p.Vehicle,
		start:               start,
		end:                 end,
		distance:            p.Distance,
		deductibleReduction: p.DeductibleReduction,
		modification:        mod,
	}, nil
}

func (r *Rental) ID() int64                 { return r.id }
func (r *Rental) StartDate() time.Time      { return r.start }
func (r *Rental) EndDate() time.Time        { return r.end }
func (r *Rental) Distance() int64           { return r.distance }
func (r *Rental) DeductibleReduction() bool { return r.deductibleReduction }
func (r *Rental) Vehicle() Vehicle          { return r.vehicle }

// DayCount is the inclusive number of rented days.
func (r *Rental) DayCount() int { return DayCount(r.start, r.end) }

// Modification returns the amendment attached to the rental, or nil.
func (r *Rental) Modification() Modification { return r.modification }

// IsModified reports whether the rental carries an amendment.
func (r *Rental) IsModified() bool { return len(r.modification) > 0 }

package rental

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidModification is returned when an amendment names a field outside the
// whitelist or carries a value of the wrong shape.
var ErrInvalidModification = errors.New("rental: invalid modification")

// Amendable field names.
const (
	FieldID        = "id"
	FieldRentalID  = "rental_id"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
	FieldDistance  = "distance"
)

var amendable = map[string]struct{}{
	FieldID:        {},
	FieldRentalID:  {},
	FieldStartDate: {},
	FieldEndDate:   {},
	FieldDistance:  {},
}

// Modification is a sparse amendment record keyed by field name, as decoded from input.
type Modification map[string]any

// ID returns the amendment's own identifier.
func (m Modification) ID() (int64, bool) {
	return m.int(FieldID)
}

// RentalID returns the identifier of the rental the amendment applies to.
func (m Modification) RentalID() (int64, bool) {
	return m.int(FieldRentalID)
}

func (m Modification) int(key string) (int64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	n, err := toInt64(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ModifiedView overlays a rental's amendment on top of the original record.
// Accessors read the override first and fall back to the original. The original
// is never mutated.
type ModifiedView struct {
	base     *Rental
	id       *int64
	rentalID *int64
	start    *time.Time
	end      *time.Time
	distance *int64
}

// NewModifiedView validates the rental's amendment and returns the overlay.
// A rental without an amendment yields a view identical to the original.
func NewModifiedView(r *Rental) (*ModifiedView, error) {
	v := &ModifiedView{base: r}
	keys := make([]string, 0, len(r.modification))
	for k := range r.modification {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := amendable[key]; !ok {
			return nil, fmt.Errorf("%w: field %q cannot be amended", ErrInvalidModification, key)
		}
		raw := r.modification[key]
		switch key {
		case FieldID, FieldRentalID, FieldDistance:
			n, err := toInt64(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidModification, key, err)
			}
			switch key {
			case FieldID:
				v.id = &n
			case FieldRentalID:
				v.rentalID = &n
			default:
				if n < 0 {
					return nil, fmt.Errorf("%w: distance must not be negative", ErrInvalidModification)
				}
				v.distance = &n
			}
		case FieldStartDate, FieldEndDate:
			d, err := toDate(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidModification, key, err)
			}
			if key == FieldStartDate {
				v.start = &d
			} else {
				v.end = &d
			}
		}
	}

	if v.EndDate().Before(v.StartDate()) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModification, ErrInvalidDateRange)
	}
	return v, nil
}

// Original returns the rental the view overlays.
func (v *ModifiedView) Original() *Rental { return v.base }

func (v *ModifiedView) ID() int64 {
	if v.id != nil {
		return *v.id
	}
	return v.base.ID()
}

// RentalID is the identifier of the amended rental.
func (v *ModifiedView) RentalID() int64 {
	if v.rentalID != nil {
		return *v.rentalID
	}
	return v.base.ID()
}

func (v *ModifiedView) StartDate() time.Time {
	if v.start != nil {
		return *v.start
	}
	return v.base.StartDate()
}

func (v *ModifiedView) EndDate() time.Time {
	if v.end != nil {
		return *v.end
	}
	return v.base.EndDate()
}

func (v *ModifiedView) Distance() int64 {
	if v.distance != nil {
		return *v.distance
	}
	return v.base.Distance()
}

func (v *ModifiedView) DeductibleReduction() bool { return v.base.DeductibleReduction() }
func (v *ModifiedView) Vehicle() Vehicle          { return v.base.Vehicle() }
func (v *ModifiedView) DayCount() int             { return DayCount(v.StartDate(), v.EndDate()) }

func toInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("value %v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("unsupported integer value %v (%T)", raw, raw)
	}
}

func toDate(raw any) (time.Time, error) {
	switch d := raw.(type) {
	case string:
		return ParseDate(d)
	case time.Time:
		return truncateDay(d), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v (%T)", raw, raw)
	}
}

package loader

import (
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/rental-ledger/internal/rental"
)

var (
	// ErrInvalidDataset is returned when a dataset cannot be decoded or fails validation.
	ErrInvalidDataset = errors.New("loader: invalid dataset")
	// ErrVehicleNotFound is returned when a rental references an unknown car.
	ErrVehicleNotFound = errors.New("loader: vehicle not found")
)

// CarRecord is a vehicle as stored in a dataset.
type CarRecord struct {
	ID          int64 `json:"id" yaml:"id" validate:"required"`
	PricePerDay int64 `json:"price_per_day" yaml:"price_per_day" validate:"gte=0"`
	PricePerKm  int64 `json:"price_per_km" yaml:"price_per_km" validate:"gte=0"`
}

// RentalRecord is a rental as stored in a dataset. Dates use the YYYY-MM-DD layout.
type RentalRecord struct {
	ID                  int64  `json:"id" yaml:"id" validate:"required"`
	CarID               int64  `json:"car_id" yaml:"car_id" validate:"required"`
	StartDate           string `json:"start_date" yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate             string `json:"end_date" yaml:"end_date" validate:"required,datetime=2006-01-02"`
	Distance            int64  `json:"distance" yaml:"distance" validate:"gte=0"`
	DeductibleReduction bool   `json:"deductible_reduction" yaml:"deductible_reduction"`
}

// Dataset is the full input of a reporting run.
type Dataset struct {
	Cars          []CarRecord           `json:"cars" yaml:"cars" validate:"dive"`
	Rentals       []RentalRecord        `json:"rentals" yaml:"rentals" validate:"dive"`
	Modifications []rental.Modification `json:"rental_modifications" yaml:"rental_modifications"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every record of the dataset.
func (d *Dataset) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidDataset, first.Namespace(), first.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	for i, m := range d.Modifications {
		if _, ok := m.RentalID(); !ok {
			return fmt.Errorf("%w: rental_modifications[%d] lacks rental_id", ErrInvalidDataset, i)
		}
	}
	return nil
}

// Join joins every rental to its car and to the first modification naming it.
func (d *Dataset) Join() ([]*rental.Rental, error) {
	cars := make(map[int64]rental.Vehicle, len(d.Cars))
	for _, c := range d.Cars {
		cars[c.ID] = rental.Vehicle{ID: c.ID, PricePerDay: c.PricePerDay, PricePerKm: c.PricePerKm}
	}
	mods := make(map[int64]rental.Modification, len(d.Modifications))
	for _, m := range d.Modifications {
		id, ok := m.RentalID()
		if !ok {
			continue
		}
		if _, seen := mods[id]; !seen {
			mods[id] = m
		}
	}

	out := make([]*rental.Rental, 0, len(d.Rentals))
	for _, rec := range d.Rentals {
		car, ok := cars[rec.CarID]
		if !ok {
			return nil, fmt.Errorf("%w: rental %d references car %d", ErrVehicleNotFound, rec.ID, rec.CarID)
		}
		start, err := rental.ParseDate(rec.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: rental %d: %v", ErrInvalidDataset, rec.ID, err)
		}
		end, err := rental.ParseDate(rec.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: rental %d: %v", ErrInvalidDataset, rec.ID, err)
		}
		r, err := rental.New(rental.Params{
			ID:                  rec.ID,
			Vehicle:             car,
			StartDate:           start,
			EndDate:             end,
			Distance:            rec.Distance,
			DeductibleReduction: rec.DeductibleReduction,
			Modification:        mods[rec.ID],
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
		out = append(out, r)
	}
	return out, nil
}

package main

import (
	"errors"

	"github.com/noah-isme/rental-ledger/internal/loader"
	"github.com/noah-isme/rental-ledger/internal/obs"
	"github.com/noah-isme/rental-ledger/internal/payment"
	"github.com/noah-isme/rental-ledger/internal/pricing"
	"github.com/noah-isme/rental-ledger/internal/rental"
	"github.com/noah-isme/rental-ledger/internal/report"
)

var failureKinds = []struct {
	target error
	kind   string
}{
	{pricing.ErrUnknownRule, "unknown_rule"},
	{pricing.ErrNoMatchingTier, "no_matching_tier"},
	{pricing.ErrInvalidSchedule, "invalid_schedule"},
	{rental.ErrInvalidModification, "invalid_modification"},
	{rental.ErrInvalidDateRange, "invalid_date_range"},
	{payment.ErrNegativeAmount, "negative_amount"},
	{loader.ErrVehicleNotFound, "vehicle_not_found"},
	{loader.ErrInvalidDataset, "invalid_dataset"},
	{report.ErrUnknownTemplate, "unknown_template"},
	{report.ErrUnknownField, "unknown_field"},
	{report.ErrMismatch, "mismatch"},
}

// failureKind maps err to a low-cardinality label. The first matching kind wins.
func failureKind(err error) string {
	for _, fk := range failureKinds {
		if errors.Is(err, fk.target) {
			return fk.kind
		}
	}
	return "other"
}

func observeDocument(m *obs.PricingMetrics, doc report.Document) {
	switch doc.Template {
	case report.TemplateRentals:
		m.ObserveRentals(len(doc.Rows))
	case report.TemplateModifications:
		m.ObserveModifications(len(doc.Rows))
	}
	for _, row := range doc.Rows {
		for _, a := range row.Actions {
			m.ObserveAction(a.Who, string(a.Type), int64(a.Amount))
		}
	}
}

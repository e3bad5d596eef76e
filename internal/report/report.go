package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/rental-ledger/internal/payment"
	"github.com/noah-isme/rental-ledger/internal/pricing"
)

var (
	// ErrUnknownTemplate is returned for a template name that is not registered.
	ErrUnknownTemplate = errors.New("report: unknown template")
	// ErrUnknownField is returned for a field name that is not registered.
	ErrUnknownField = errors.New("report: unknown field")
)

// Template selects which rentals a report lists and how rows are keyed.
type Template string

const (
	// TemplateRentals lists every rental.
	TemplateRentals Template = "rentals"
	// TemplateModifications lists amended rentals only, keyed by amendment id.
	TemplateModifications Template = "rental_modifications"
)

// Field selects a block of data emitted for each row.
type Field string

const (
	FieldID            Field = "id"
	FieldPrice         Field = "price"
	FieldCommission    Field = "commission"
	FieldOption        Field = "option"
	FieldPaymentAction Field = "payment_action"
)

var (
	knownTemplates = map[Template]struct{}{TemplateRentals: {}, TemplateModifications: {}}
	knownFields    = map[Field]struct{}{
		FieldID: {}, FieldPrice: {}, FieldCommission: {}, FieldOption: {}, FieldPaymentAction: {},
	}
)

// ParseTemplate validates a template name.
func ParseTemplate(name string) (Template, error) {
	t := Template(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := knownTemplates[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, nil
}

// ParseFields validates a comma separated list of field names.
func ParseFields(list string) ([]Field, error) {
	var out []Field
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		f := Field(name)
		if _, ok := knownFields[f]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, part)
		}
		out = append(out, f)
	}
	return out, nil
}

// Reporter renders priced rentals into a Document.
type Reporter struct {
	template Template
	fields   []Field
	builder  *payment.Builder
}

// New returns a Reporter. A nil builder uses the default actors.
func New(template Template, selected []Field, builder *payment.Builder) (*Reporter, error) {
	if _, ok := knownTemplates[template]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, template)
	}
	for _, f := range selected {
		if _, ok := knownFields[f]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}
	if builder == nil {
		builder = payment.NewBuilder()
	}
	return &Reporter{template: template, fields: append([]Field(nil), selected...), builder: builder}, nil
}

// Generate builds one row per reported sheet, in input order.
func (r *Reporter) Generate(ctx context.Context, sheets []*pricing.Sheet) (Document, error) {
	ctx, span := otel.Tracer("report.Reporter").Start(ctx, "report.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.template", string(r.template)),
		attribute.Int("report.rentals", len(sheets)),
	)
	logger := zerolog.Ctx(ctx)

	doc := Document{Template: r.template, Fields: append([]Field(nil), r.fields...), Rows: []Row{}}
	for _, sheet := range sheets {
		if r.template == TemplateModifications && !sheet.IsAmended() {
			continue
		}
		row, err := r.row(ctx, sheet)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "report generation failed")
			return Document{}, err
		}
		doc.Rows = append(doc.Rows, row)
	}
	logger.Debug().
		Str("template", string(r.template)).
		Int("rentals", len(sheets)).
		Int("rows", len(doc.Rows)).
		Msg("report_generated")
	return doc, nil
}

func (r *Reporter) row(ctx context.Context, sheet *pricing.Sheet) (Row, error) {
	rentalID := sheet.Rental().ID()
	_, span := otel.Tracer("report.Reporter").Start(ctx, "report.rental")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("rental.id", rentalID),
		attribute.Bool("rental.amended", sheet.IsAmended()),
	)

	var row Row
	if r.template == TemplateModifications {
		if id, ok := sheet.Rental().Modification().ID(); ok {
			row.ID = &id
		}
		row.RentalID = &rentalID
	}

	for _, f := range r.fields {
		switch f {
		case FieldID:
			if row.ID == nil {
				row.ID = &rentalID
			}
		case FieldPrice:
			price, err := sheet.Price()
			if err != nil {
				return Row{}, fmt.Errorf("rental %d price: %w", rentalID, err)
			}
			row.Price = &price
		case FieldCommission:
			fees, err := sheet.CommissionFees()
			if err != nil {
				return Row{}, fmt.Errorf("rental %d commission: %w", rentalID, err)
			}
			row.Commission = make(map[string]pricing.Money, len(fees))
			for _, fee := range fees {
				row.Commission[fee.Name+"_fee"] = fee.Amount
			}
		case FieldOption:
			costs := sheet.OptionCosts()
			row.Options = make(map[string]pricing.Money, len(costs))
			for _, c := range costs {
				row.Options[c.Name] = c.Amount
			}
		case FieldPaymentAction:
			actions, err := r.builder.Actions(sheet)
			if err != nil {
				return Row{}, fmt.Errorf("rental %d actions: %w", rentalID, err)
			}
			row.Actions = actions
		}
	}

	zerolog.Ctx(ctx).Debug().
		Int64("rental_id", rentalID).
		Bool("amended", sheet.IsAmended()).
		Int("day_count", sheet.DayCount()).
		Msg("rental_reported")
	return row, nil
}

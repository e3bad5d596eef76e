package payment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rental-ledger/internal/payment"
	"github.com/noah-isme/rental-ledger/internal/pricing"
	"github.com/noah-isme/rental-ledger/internal/rental"
)

var car = rental.Vehicle{ID: 1, PricePerDay: 2000, PricePerKm: 10}

func sheetFor(t *testing.T, v rental.Vehicle, start, end string, distance int64, deductible bool, mod rental.Modification) *pricing.Sheet {
	t.Helper()
	r, err := rental.New(rental.Params{
		ID:                  1,
		Vehicle:             v,
		StartDate:           rental.MustParseDate(start),
		EndDate:             rental.MustParseDate(end),
		Distance:            distance,
		DeductibleReduction: deductible,
		Modification:        mod,
	})
	require.NoError(t, err)
	return pricing.NewAssembler(pricing.StandardDefaults()).Assemble(r)
}

func discounted(s *pricing.Sheet) *pricing.Sheet {
	return s.ReplaceCost(pricing.RuleDay, pricing.DayCost(pricing.StandardSchedule()))
}

func TestActionsForUnamendedRental(t *testing.T) {
	t.Parallel()

	sheet := sheetFor(t, car, "2017-12-08", "2017-12-10", 100, false, nil)
	actions, err := payment.NewBuilder().Actions(sheet)
	require.NoError(t, err)
	require.Equal(t, []payment.Action{
		{Who: "driver", Type: payment.Debit, Amount: 7000},
		{Who: "owner", Type: payment.Credit, Amount: 4900},
		{Who: "insurance", Type: payment.Credit, Amount: 1050},
		{Who: "assistance", Type: payment.Credit, Amount: 300},
		{Who: "platform", Type: payment.Credit, Amount: 750},
	}, actions)
	require.Zero(t, payment.Net(actions))
}

func TestDeductibleReductionGoesToPlatform(t *testing.T) {
	t.Parallel()

	sheet := sheetFor(t, car, "2017-12-08", "2017-12-10", 100, true, nil)
	actions, err := payment.NewBuilder().Actions(sheet)
	require.NoError(t, err)
	require.Equal(t, payment.Action{Who: "driver", Type: payment.Debit, Amount: 8200}, actions[0])
	require.Equal(t, payment.Action{Who: "platform", Type: payment.Credit, Amount: 1950}, actions[4])
	require.Zero(t, payment.Net(actions))
}

func TestNegativeDirectAmountFails(t *testing.T) {
	t.Parallel()

	cheap := rental.Vehicle{ID: 9, PricePerDay: 10}
	sheet := sheetFor(t, cheap, "2017-12-08", "2017-12-10", 0, false, nil)

	_, err := payment.NewBuilder().Actions(sheet)
	require.ErrorIs(t, err, payment.ErrNegativeAmount)
	require.ErrorContains(t, err, `"platform"`)
}

func TestAmendedRentalYieldsDeltas(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		start, end string
		distance   int64
		mod        rental.Modification
		want       []payment.Action
	}{
		{
			name: "longer and further",
			start: "2015-12-08", end: "2015-12-08", distance: 100,
			mod: rental.Modification{"id": 1, "rental_id": 1, "end_date": "2015-12-10", "distance": 150},
			want: []payment.Action{
				{Who: "driver", Type: payment.Debit, Amount: 4900},
				{Who: "owner", Type: payment.Credit, Amount: 2870},
				{Who: "insurance", Type: payment.Credit, Amount: 615},
				{Who: "assistance", Type: payment.Credit, Amount: 200},
				{Who: "platform", Type: payment.Credit, Amount: 1215},
			},
		},
		{
			name: "one day shorter",
			start: "2015-07-03", end: "2015-07-14", distance: 1000,
			mod: rental.Modification{"id": 2, "rental_id": 1, "start_date": "2015-07-04"},
			want: []payment.Action{
				{Who: "driver", Type: payment.Credit, Amount: 1400},
				{Who: "owner", Type: payment.Debit, Amount: 700},
				{Who: "insurance", Type: payment.Debit, Amount: 150},
				{Who: "assistance", Type: payment.Debit, Amount: 100},
				{Who: "platform", Type: payment.Debit, Amount: 450},
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sheet := discounted(sheetFor(t, car, tc.start, tc.end, tc.distance, true, tc.mod))
			actions, err := payment.NewBuilder().Actions(sheet)
			require.NoError(t, err)
			require.Equal(t, tc.want, actions)
			require.Zero(t, payment.Net(actions))
		})
	}
}

func TestDistanceIncreaseIsDebitedToDriver(t *testing.T) {
	t.Parallel()

	sheet := sheetFor(t, car, "2017-12-08", "2017-12-10", 100, false, rental.Modification{"distance": 120})
	actions, err := payment.NewBuilder().Actions(sheet)
	require.NoError(t, err)
	require.Equal(t, payment.Action{Who: "driver", Type: payment.Debit, Amount: 200}, actions[0])
}

func TestUnchangedAmendmentReportsZeroInReverse(t *testing.T) {
	t.Parallel()

	sheet := sheetFor(t, car, "2017-12-08", "2017-12-10", 100, false, rental.Modification{"id": 7, "rental_id": 1})
	actions, err := payment.NewBuilder().Actions(sheet)
	require.NoError(t, err)
	require.Equal(t, payment.Action{Who: "driver", Type: payment.Credit, Amount: 0}, actions[0])
	require.Equal(t, payment.Action{Who: "owner", Type: payment.Debit, Amount: 0}, actions[1])
}

func TestAmendedDeltasSkipNegativeCheck(t *testing.T) {
	t.Parallel()

	cheap := rental.Vehicle{ID: 9, PricePerDay: 10}
	sheet := sheetFor(t, cheap, "2017-12-08", "2017-12-10", 0, false, rental.Modification{"end_date": "2017-12-09"})

	actions, err := payment.NewBuilder().Actions(sheet)
	require.NoError(t, err)
	require.Zero(t, payment.Net(actions))
}

func TestInvalidAmendmentFails(t *testing.T) {
	t.Parallel()

	sheet := sheetFor(t, car, "2017-12-08", "2017-12-10", 100, false, rental.Modification{"deductible_reduction": true})
	_, err := payment.NewBuilder().Actions(sheet)
	require.ErrorIs(t, err, rental.ErrInvalidModification)
}

func TestWithActorMergesByName(t *testing.T) {
	t.Parallel()

	b := payment.NewBuilder().
		WithActor(payment.NewActor("platform", payment.RoleInsurance)).
		WithActor(payment.NewActor("broker", payment.RoleAssistance))

	actors := b.Actors()
	require.Len(t, actors, 6)
	require.Equal(t, payment.RoleInsurance, actors[4].Role)
	require.Equal(t, "broker", actors[5].Name)

	actions, err := b.Actions(sheetFor(t, car, "2017-12-08", "2017-12-10", 100, false, nil))
	require.NoError(t, err)
	require.Equal(t, payment.Action{Who: "platform", Type: payment.Credit, Amount: 1050}, actions[4])
	require.Equal(t, payment.Action{Who: "broker", Type: payment.Credit, Amount: 300}, actions[5])
}

func TestLedgerBalancesAcrossRentals(t *testing.T) {
	t.Parallel()

	odd := rental.Vehicle{ID: 4, PricePerDay: 3333, PricePerKm: 7}
	for _, end := range []string{"2015-01-01", "2015-01-03", "2015-01-09", "2015-01-30"} {
		sheet := discounted(sheetFor(t, odd, "2015-01-01", end, 321, true, nil))
		actions, err := payment.NewBuilder().Actions(sheet)
		require.NoError(t, err)
		require.Zero(t, payment.Net(actions), end)

		again, err := payment.NewBuilder().Actions(sheet)
		require.NoError(t, err)
		require.Equal(t, actions, again)
	}
}

func TestActorDirections(t *testing.T) {
	t.Parallel()

	driver := payment.NewActor("driver", payment.RoleDriver)
	require.Equal(t, payment.Debit, driver.Default)
	require.Equal(t, payment.Credit, driver.Reverse)

	owner := payment.NewActor("owner", payment.RoleOwner)
	require.Equal(t, payment.Credit, owner.Default)
	require.Equal(t, payment.Debit, owner.Default.Opposite())
}

package loader_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rental-ledger/internal/loader"
	"github.com/noah-isme/rental-ledger/internal/rental"
)

const jsonDataset = `{
  "cars": [{"id": 1, "price_per_day": 2000, "price_per_km": 10}],
  "rentals": [
    {"id": 1, "car_id": 1, "start_date": "2015-12-08", "end_date": "2015-12-08", "distance": 100, "deductible_reduction": true},
    {"id": 2, "car_id": 1, "start_date": "2015-03-31", "end_date": "2015-04-01", "distance": 300, "deductible_reduction": false}
  ],
  "rental_modifications": [
    {"id": 1, "rental_id": 1, "end_date": "2015-12-10", "distance": 150},
    {"id": 9, "rental_id": 1, "distance": 999}
  ]
}`

const yamlDataset = `
cars:
  - id: 1
    price_per_day: 2000
    price_per_km: 10
rentals:
  - id: 3
    car_id: 1
    start_date: "2015-07-03"
    end_date: "2015-07-14"
    distance: 1000
    deductible_reduction: true
rental_modifications:
  - id: 2
    rental_id: 3
    start_date: 2015-07-04
`

func TestDecodeJSONJoinsCarsAndModifications(t *testing.T) {
	t.Parallel()

	ds, err := loader.Decode(strings.NewReader(jsonDataset), loader.FormatJSON)
	require.NoError(t, err)

	rentals, err := ds.Join()
	require.NoError(t, err)
	require.Len(t, rentals, 2)

	first := rentals[0]
	require.Equal(t, int64(2000), first.Vehicle().PricePerDay)
	require.True(t, first.DeductibleReduction())
	require.True(t, first.IsModified())

	id, ok := first.Modification().ID()
	require.True(t, ok)
	require.Equal(t, int64(1), id, "first matching modification wins")

	view, err := rental.NewModifiedView(first)
	require.NoError(t, err)
	require.Equal(t, 3, view.DayCount())
	require.Equal(t, int64(150), view.Distance())

	require.False(t, rentals[1].IsModified())
	require.Equal(t, 2, rentals[1].DayCount())
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	ds, err := loader.Decode(strings.NewReader(yamlDataset), loader.FormatYAML)
	require.NoError(t, err)

	rentals, err := ds.Join()
	require.NoError(t, err)
	require.Len(t, rentals, 1)

	view, err := rental.NewModifiedView(rentals[0])
	require.NoError(t, err)
	require.Equal(t, rental.MustParseDate("2015-07-04"), view.StartDate())
	require.Equal(t, 11, view.DayCount())
}

func TestDecodeRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"malformed json": `{"cars": [`,
		"bad date":       `{"cars":[{"id":1}],"rentals":[{"id":1,"car_id":1,"start_date":"08/12/2015","end_date":"2015-12-08"}]}`,
		"negative price": `{"cars":[{"id":1,"price_per_day":-1}]}`,
		"missing car id": `{"cars":[{"id":1}],"rentals":[{"id":1,"start_date":"2015-12-08","end_date":"2015-12-08"}]}`,
		"orphan mod":     `{"rental_modifications":[{"id":1,"distance":3}]}`,
		"inverted range": `{"cars":[{"id":1}],"rentals":[{"id":1,"car_id":1,"start_date":"2015-12-09","end_date":"2015-12-08"}]}`,
	}
	for name, body := range cases {
		ds, err := loader.Decode(strings.NewReader(body), loader.FormatJSON)
		if err == nil {
			_, err = ds.Join()
		}
		require.ErrorIs(t, err, loader.ErrInvalidDataset, name)
	}
}

func TestRentalsRequireKnownCar(t *testing.T) {
	t.Parallel()

	body := `{"cars":[{"id":1}],"rentals":[{"id":1,"car_id":2,"start_date":"2015-12-08","end_date":"2015-12-08"}]}`
	ds, err := loader.Decode(strings.NewReader(body), loader.FormatJSON)
	require.NoError(t, err)

	_, err = ds.Join()
	require.ErrorIs(t, err, loader.ErrVehicleNotFound)
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := loader.Decode(strings.NewReader("{}"), loader.Format("toml"))
	require.ErrorIs(t, err, loader.ErrInvalidDataset)
}

func TestLoadFilePicksFormatByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "data.json")
	yamlPath := filepath.Join(dir, "data.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonDataset), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDataset), 0o600))

	ds, err := loader.LoadFile(jsonPath)
	require.NoError(t, err)
	require.Len(t, ds.Rentals, 2)

	ds, err = loader.LoadFile(yamlPath)
	require.NoError(t, err)
	require.Len(t, ds.Rentals, 1)

	_, err = loader.LoadFile(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, loader.FormatYAML, loader.FormatFromPath("x.YAML"))
}

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"

	"github.com/noah-isme/rental-ledger/internal/payment"
	"github.com/noah-isme/rental-ledger/internal/pricing"
)

// ErrMismatch is returned when a document differs from the expected output.
var ErrMismatch = errors.New("report: output mismatch")

// Row is the data reported for one rental. Unrequested blocks are nil.
type Row struct {
	ID         *int64                   `json:"id,omitempty"`
	RentalID   *int64                   `json:"rental_id,omitempty"`
	Price      *pricing.Money           `json:"price,omitempty"`
	Commission map[string]pricing.Money `json:"commission,omitempty"`
	Options    map[string]pricing.Money `json:"options,omitempty"`
	Actions    []payment.Action         `json:"actions,omitempty"`
}

// Document is a generated report.
type Document struct {
	Template Template
	Fields   []Field
	Rows     []Row
}

// MarshalJSON renders the document as {"<template>": [rows...]}.
func (d Document) MarshalJSON() ([]byte, error) {
	rows := d.Rows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(map[string][]Row{string(d.Template): rows})
}

// WriteJSON writes the indented JSON form of doc.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Table flattens the document into a header and one value row per rental.
// Nested blocks become dotted columns such as commission.insurance_fee or
// actions.driver.amount.
func (d Document) Table() ([]string, [][]any) {
	var header []string
	seen := map[string]int{}
	column := func(name string) int {
		if i, ok := seen[name]; ok {
			return i
		}
		seen[name] = len(header)
		header = append(header, name)
		return seen[name]
	}

	cells := make([]map[int]any, len(d.Rows))
	for i, r := range d.Rows {
		values := map[int]any{}
		if r.ID != nil {
			values[column("id")] = *r.ID
		}
		if r.RentalID != nil {
			values[column("rental_id")] = *r.RentalID
		}
		if r.Price != nil {
			values[column("price")] = *r.Price
		}
		for _, name := range sortedKeys(r.Commission) {
			values[column("commission."+name)] = r.Commission[name]
		}
		for _, name := range sortedKeys(r.Options) {
			values[column("options."+name)] = r.Options[name]
		}
		for _, a := range r.Actions {
			values[column("actions."+a.Who+".type")] = string(a.Type)
			values[column("actions."+a.Who+".amount")] = a.Amount
		}
		cells[i] = values
	}

	rows := make([][]any, len(cells))
	for i, values := range cells {
		row := make([]any, len(header))
		for col, v := range values {
			row[col] = v
		}
		rows[i] = row
	}
	return header, rows
}

func sortedKeys(m map[string]pricing.Money) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compare checks doc against an expected JSON report. Key order and whitespace
// are ignored.
func Compare(doc Document, expected io.Reader) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	var got, want any
	if err := json.Unmarshal(raw, &got); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	body, err := io.ReadAll(expected)
	if err != nil {
		return fmt.Errorf("read expected report: %w", err)
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&want); err != nil {
		return fmt.Errorf("decode expected report: %w", err)
	}
	if !reflect.DeepEqual(got, want) {
		return fmt.Errorf("%w: got %s", ErrMismatch, raw)
	}
	return nil
}

package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoMatchingTier is returned when a rental day falls outside every discount tier.
	ErrNoMatchingTier = errors.New("pricing: no discount tier matches day")
	// ErrInvalidSchedule is returned for malformed, overlapping or out-of-range tiers.
	ErrInvalidSchedule = errors.New("pricing: invalid discount schedule")
)

// StandardScheduleText is the textual form of StandardSchedule.
const StandardScheduleText = "1:0,2-4:0.10,5-10:0.30,11-365:0.50"

// Tier applies Discount to every day in [FirstDay, LastDay] (1-based, inclusive).
type Tier struct {
	FirstDay int
	LastDay  int
	Discount decimal.Decimal
}

// Contains reports whether the rental day falls inside the tier.
func (t Tier) Contains(day int) bool {
	return day >= t.FirstDay && day <= t.LastDay
}

func (t Tier) String() string {
	if t.FirstDay == t.LastDay {
		return fmt.Sprintf("%d:%s", t.FirstDay, t.Discount.String())
	}
	return fmt.Sprintf("%d-%d:%s", t.FirstDay, t.LastDay, t.Discount.String())
}

// Schedule is an ordered list of discount tiers. The first tier containing a day wins.
type Schedule []Tier

// NewSchedule validates tiers and returns them as a Schedule.
func NewSchedule(tiers ...Tier) (Schedule, error) {
	one := decimal.NewFromInt(1)
	for _, t := range tiers {
		if t.FirstDay < 1 || t.LastDay < t.FirstDay {
			return nil, fmt.Errorf("%w: range %d-%d", ErrInvalidSchedule, t.FirstDay, t.LastDay)
		}
		if t.Discount.IsNegative() || t.Discount.GreaterThanOrEqual(one) {
			return nil, fmt.Errorf("%w: discount %s outside [0,1)", ErrInvalidSchedule, t.Discount)
		}
	}
	sorted := append([]Tier(nil), tiers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FirstDay < sorted[j].FirstDay })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].FirstDay <= sorted[i-1].LastDay {
			return nil, fmt.Errorf("%w: %s overlaps %s", ErrInvalidSchedule, sorted[i], sorted[i-1])
		}
	}
	return Schedule(append([]Tier(nil), tiers...)), nil
}

// StandardSchedule is the long-rental discount: none on day 1, 10% on days 2-4,
// 30% on days 5-10 and 50% from day 11 up to one year.
func StandardSchedule() Schedule {
	return Schedule{
		{FirstDay: 1, LastDay: 1, Discount: decimal.Zero},
		{FirstDay: 2, LastDay: 4, Discount: decimal.RequireFromString("0.10")},
		{FirstDay: 5, LastDay: 10, Discount: decimal.RequireFromString("0.30")},
		{FirstDay: 11, LastDay: 365, Discount: decimal.RequireFromString("0.50")},
	}
}

// ParseSchedule reads a comma separated list of "first-last:fraction" (or "day:fraction")
// entries. An empty value means no discount; "standard" selects StandardSchedule.
func ParseSchedule(value string) (Schedule, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "none":
		return nil, nil
	case "standard":
		return StandardSchedule(), nil
	}

	parts := strings.Split(value, ",")
	tiers := make([]Tier, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rng, fraction, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: entry %q lacks a discount", ErrInvalidSchedule, part)
		}
		first, last, err := parseRange(rng)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrInvalidSchedule, part, err)
		}
		discount, err := decimal.NewFromString(strings.TrimSpace(fraction))
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrInvalidSchedule, part, err)
		}
		tiers = append(tiers, Tier{FirstDay: first, LastDay: last, Discount: discount})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers in %q", ErrInvalidSchedule, value)
	}
	return NewSchedule(tiers...)
}

func parseRange(bounds string) (int, int, error) {
	lo, hi, isRange := strings.Cut(strings.TrimSpace(bounds), "-")
	first, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return first, first, nil
	}
	last, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, err
	}
	return first, last, nil
}

// Tier returns the first tier containing day.
func (s Schedule) Tier(day int) (Tier, error) {
	for _, t := range s {
		if t.Contains(day) {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: day %d", ErrNoMatchingTier, day)
}

func (s Schedule) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

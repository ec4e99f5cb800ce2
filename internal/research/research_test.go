package research

import (
	"math"
	"reflect"
	"testing"

	"github.com/tatianab/spice-planner/internal/catalog"
)

var devs = map[string]catalog.Development{
	"a":  {ID: "a", Tier: 0},
	"b":  {ID: "b", Tier: 1, Requires: "a"},
	"c":  {ID: "c", Tier: 2, Requires: "b"},
	"c2": {ID: "c2", Tier: 3, Replaces: "c"},
	"x":  {ID: "x", Tier: 0, Requires: "y"},
	"y":  {ID: "y", Tier: 0, Requires: "x"},
}

func lookup(id string) (catalog.Development, bool) {
	d, ok := devs[id]
	return d, ok
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStepsForTier(t *testing.T) {
	t.Parallel()

	tests := map[int]int{-3: 2, 0: 2, 1: 3, 2: 4, 3: 5, 9: 5}
	for tier, want := range tests {
		if got := StepsForTier(tier); got != want {
			t.Errorf("StepsForTier(%d) = %d, want %d", tier, got, want)
		}
	}
}

func TestDevelopmentCost(t *testing.T) {
	t.Parallel()

	if got := DevelopmentCost(1, 0); !near(got, BaseCost) {
		t.Errorf("single step = %v, want %v", got, BaseCost)
	}
	want := BaseCost * (1 + ScalePerStep)
	if got := DevelopmentCost(2, 0); !near(got, want) {
		t.Errorf("two steps = %v, want %v", got, want)
	}
	if got := DevelopmentCost(2, 3); !near(got, want*math.Pow(ScalePerStep, 3)) {
		t.Errorf("two steps after three = %v", got)
	}
}

func TestTotalCostOfOrder(t *testing.T) {
	t.Parallel()

	order := []string{"a", "unknown", "b"}
	want := DevelopmentCost(2, 0) + DevelopmentCost(3, 2)
	if got := TotalCostOfOrder(order, lookup); !near(got, want) {
		t.Errorf("TotalCostOfOrder = %v, want %v", got, want)
	}
	if got := TotalStepsResearched(order, lookup); got != 5 {
		t.Errorf("TotalStepsResearched = %d, want 5", got)
	}
	if got := CostToResearchNext(devs["c"], []string{"a", "b"}, lookup); !near(got, DevelopmentCost(4, 5)) {
		t.Errorf("CostToResearchNext = %v", got)
	}
}

func TestCostToDays(t *testing.T) {
	t.Parallel()

	if got := CostToDays(50, 5); got != 10 {
		t.Errorf("CostToDays = %v, want 10", got)
	}
	if got := CostToDays(50, 0); !math.IsInf(got, 1) {
		t.Errorf("CostToDays at zero rate = %v, want +Inf", got)
	}
}

func TestMinimumPathOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target string
		want   []string
	}{
		{"a", nil},
		{"c", []string{"a", "b"}},
		{"c2", []string{"a", "b"}},
		{"missing", nil},
		{"x", []string{"y"}},
	}
	for _, tt := range tests {
		if got := MinimumPathOrder(tt.target, lookup); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("MinimumPathOrder(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestFormatDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days        int
		long, short string
	}{
		{0, "0 days", "0d"},
		{1, "1 day", "1d"},
		{30, "1 month", "1m"},
		{31, "1 month 1 day", "1m 1d"},
		{95, "3 months 5 days", "3m 5d"},
	}
	for _, tt := range tests {
		if got := FormatDays(tt.days); got != tt.long {
			t.Errorf("FormatDays(%d) = %q, want %q", tt.days, got, tt.long)
		}
		if got := FormatDaysShort(tt.days); got != tt.short {
			t.Errorf("FormatDaysShort(%d) = %q, want %q", tt.days, got, tt.short)
		}
	}
}

package grid

import (
	"testing"
)

func TestCalculateInitialPosition(t *testing.T) {
	scenarioA := decs("90", "100", "110")
	tests := []struct {
		name       string
		price      string
		levels     []string
		investment string
		wantGrid   int
		wantCash   string
		wantStock  string
		wantShares string
	}{
		{"inside first cell", "95", []string{"90", "100", "110"}, "1000", 0, "1000", "0", "0"},
		{"shared level matches lower cell first", "100", []string{"90", "100", "110"}, "1000", 0, "1000", "0", "0"},
		{"inside second cell", "105", []string{"90", "100", "110"}, "1000", 1, "500", "500", "5.56"},
		{"below grid clamps to first cell", "80", []string{"90", "100", "110"}, "1000", 0, "1000", "0", "0"},
		{"above grid clamps to last cell", "120", []string{"90", "100", "110"}, "1000", 1, "500", "500", "5.56"},
		{"averages the levels below", "45", []string{"10", "20", "30", "40", "50"}, "1000", 3, "250", "750", "37.5"},
		{"uneven allocation is rounded", "25", []string{"10", "20", "30", "40"}, "1000", 1, "666.67", "333.33", "33.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels := scenarioA
			if tt.levels != nil {
				levels = decs(tt.levels...)
			}
			got := CalculateInitialPosition(dec(tt.price), levels, dec(tt.investment))
			if got.CurrentGrid != tt.wantGrid {
				t.Errorf("CurrentGrid = %d, want %d", got.CurrentGrid, tt.wantGrid)
			}
			if !got.CashAllocation.Equal(dec(tt.wantCash)) {
				t.Errorf("CashAllocation = %s, want %s", got.CashAllocation, tt.wantCash)
			}
			if !got.StockAllocation.Equal(dec(tt.wantStock)) {
				t.Errorf("StockAllocation = %s, want %s", got.StockAllocation, tt.wantStock)
			}
			if !got.Shares.Equal(dec(tt.wantShares)) {
				t.Errorf("Shares = %s, want %s", got.Shares, tt.wantShares)
			}
		})
	}
}

package engine

import (
	"bytes"
	"gridtrader/types"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = dec(v)
	}
	return out
}

func portfolioWithValues(values ...string) *Portfolio {
	p := newPortfolio(decimal.Zero)
	for i, v := range values {
		p.dailyValues = append(p.dailyValues, types.DailySnapshot{
			Date:  testDay.AddDate(0, 0, i),
			Value: dec(v),
		})
	}
	return p
}

func TestCalcMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []decimal.Decimal
		want   string
	}{
		{"empty", nil, "0"},
		{"only rising", decs("100", "110", "120"), "0"},
		{"single dip", decs("1000", "1100", "990", "1210"), "0.1"},
		{"deepest dip wins", decs("100", "80", "120", "60", "130"), "0.5"},
		{"starts at zero", decs("0", "50", "25"), "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calcMaxDrawdown(tt.values)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("calcMaxDrawdown() = %s, want %s", got, tt.want)
			}
			if got.IsNegative() || got.GreaterThan(decimal.NewFromInt(1)) {
				t.Errorf("drawdown %s outside [0, 1]", got)
			}
		})
	}
}

func TestCalcSharpeRatio(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{"no returns", nil, 0},
		{"single return", []float64{0.05}, 0},
		{"flat returns", []float64{0.01, 0.01, 0.01}, 0},
		{"two returns", []float64{0.01, 0.03}, math.Sqrt(252) * 0.02 / math.Sqrt(0.0002)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calcSharpeRatio(tt.returns).InexactFloat64()
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("calcSharpeRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDailyReturns(t *testing.T) {
	got := dailyReturns(decs("100", "110", "99"))
	want := []float64{0.1, -0.1}
	if len(got) != len(want) {
		t.Fatalf("dailyReturns() = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("return[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if dailyReturns(decs("100")) != nil {
		t.Errorf("a single value has no returns")
	}
}

func TestCalcMetrics(t *testing.T) {
	p := portfolioWithValues("1000", "1100", "990", "1210")
	p.trades = []types.Trade{
		{Side: types.SideTypeBuy, Amount: dec("500")},
		{Side: types.SideTypeBuy, Amount: dec("500")},
		{Side: types.SideTypeSell, Amount: dec("550")},
	}

	m := CalcMetrics(dec("1000"), p)

	if !m.InitialValue.Equal(dec("1000")) || !m.FinalValue.Equal(dec("1210")) {
		t.Errorf("initial/final = %s/%s", m.InitialValue, m.FinalValue)
	}
	if !m.TotalReturn.Equal(dec("0.21")) || !m.TotalReturnPct.Equal(dec("21")) {
		t.Errorf("total return = %s (%s%%)", m.TotalReturn, m.TotalReturnPct)
	}
	wantAnnual := math.Pow(1.21, 365.0/4) - 1
	if math.Abs(m.AnnualizedReturn.InexactFloat64()-wantAnnual)/wantAnnual > 1e-9 {
		t.Errorf("annualized = %s, want %v", m.AnnualizedReturn, wantAnnual)
	}
	if !m.MaxDrawdown.Equal(dec("0.1")) || !m.MaxDrawdownPct.Equal(dec("10")) {
		t.Errorf("drawdown = %s (%s%%)", m.MaxDrawdown, m.MaxDrawdownPct)
	}
	if !m.SharpeRatio.IsPositive() {
		t.Errorf("sharpe = %s, want positive", m.SharpeRatio)
	}
	if m.NumTrades != 3 || m.BuyTrades != 2 || m.SellTrades != 1 {
		t.Errorf("trade counts = %d/%d/%d", m.NumTrades, m.BuyTrades, m.SellTrades)
	}
	if !m.TradeProfit.Equal(dec("-450")) {
		t.Errorf("trade profit = %s, want -450", m.TradeProfit)
	}
}

func TestCalcMetrics_EdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		investment string
		values     []string
		wantFinal  string
		wantReturn string
	}{
		{"no snapshots", "1000", nil, "1000", "0"},
		{"single day", "1000", []string{"1000"}, "1000", "0"},
		{"zero investment", "0", []string{"10", "20"}, "20", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := CalcMetrics(dec(tt.investment), portfolioWithValues(tt.values...))
			if !m.FinalValue.Equal(dec(tt.wantFinal)) {
				t.Errorf("final = %s, want %s", m.FinalValue, tt.wantFinal)
			}
			if !m.TotalReturn.Equal(dec(tt.wantReturn)) {
				t.Errorf("total return = %s, want %s", m.TotalReturn, tt.wantReturn)
			}
			if !m.SharpeRatio.IsZero() {
				t.Errorf("sharpe = %s, want 0", m.SharpeRatio)
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	strategy := scenarioA(t)
	result := &types.BacktestResult{
		Strategy: strategy.Snapshot(),
		Period:   types.BacktestPeriod{StartDate: testDay, EndDate: testDay, Days: 1},
		Metrics: types.Metrics{
			InitialValue: dec("1000"),
			FinalValue:   dec("1000"),
			NumTrades:    1,
			BuyTrades:    1,
			TradeProfit:  dec("-500"),
		},
	}

	var buf bytes.Buffer
	printReport(&buf, result)
	out := buf.String()

	for _, want := range []string{"AAPL", "2024-01-02 to 2024-01-02 (1 days)", "1000.00", "1 / 0", "-500.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
}

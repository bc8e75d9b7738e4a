package engine

import (
	"fmt"
	"gridtrader/types"
	"io"
	"math"

	"github.com/shopspring/decimal"
)

const tradingDaysPerYear = 252

var hundred = decimal.NewFromInt(100)

// CalcMetrics reduces a finished run into its summary metrics. Returns are
// measured against the invested amount, not against the first snapshot.
func CalcMetrics(investment decimal.Decimal, p *Portfolio) types.Metrics {
	values := make([]decimal.Decimal, 0, len(p.dailyValues))
	for _, snap := range p.dailyValues {
		values = append(values, snap.Value)
	}

	finalValue := investment
	if len(values) > 0 {
		finalValue = values[len(values)-1]
	}

	totalReturn := calcTotalReturn(investment, finalValue)
	annualized := calcAnnualizedReturn(totalReturn, len(values))
	maxDrawdown := calcMaxDrawdown(values)
	buys, sells := countTrades(p.trades)

	return types.Metrics{
		InitialValue:        investment,
		FinalValue:          finalValue,
		TotalReturn:         totalReturn,
		TotalReturnPct:      totalReturn.Mul(hundred),
		AnnualizedReturn:    annualized,
		AnnualizedReturnPct: annualized.Mul(hundred),
		MaxDrawdown:         maxDrawdown,
		MaxDrawdownPct:      maxDrawdown.Mul(hundred),
		SharpeRatio:         calcSharpeRatio(dailyReturns(values)),
		NumTrades:           len(p.trades),
		BuyTrades:           buys,
		SellTrades:          sells,
		TradeProfit:         calcTradeProfit(p.trades),
	}
}

func calcTotalReturn(initial, final decimal.Decimal) decimal.Decimal {
	if !initial.IsPositive() {
		return decimal.Zero
	}
	return final.Sub(initial).Div(initial)
}

// calcAnnualizedReturn compounds the total return over 365/days periods.
func calcAnnualizedReturn(totalReturn decimal.Decimal, days int) decimal.Decimal {
	if days == 0 {
		return decimal.Zero
	}
	growth := decimal.NewFromInt(1).Add(totalReturn).InexactFloat64()
	annual := math.Pow(growth, 365.0/float64(days)) - 1.0
	return fromFloat(annual)
}

// calcMaxDrawdown returns the largest fractional decline from a running peak.
func calcMaxDrawdown(values []decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	peak := decimal.Zero
	maxDD := decimal.Zero
	for i, v := range values {
		if i == 0 || v.GreaterThan(peak) {
			peak = v
		}
		if !peak.IsPositive() {
			continue
		}
		dd := one.Sub(v.Div(peak))
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
	}
	return maxDD
}

// dailyReturns are the percentage changes between consecutive values. The
// first value has no predecessor and yields no return.
func dailyReturns(values []decimal.Decimal) []float64 {
	if len(values) < 2 {
		return nil
	}
	one := decimal.NewFromInt(1)
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if !prev.IsPositive() {
			continue
		}
		returns = append(returns, values[i].Div(prev).Sub(one).InexactFloat64())
	}
	return returns
}

// calcSharpeRatio annualizes mean/stddev of daily returns with a zero risk
// free rate. The sample standard deviation needs two returns; without it, or
// when it is zero, the ratio is zero.
func calcSharpeRatio(returns []float64) decimal.Decimal {
	if len(returns) < 2 {
		return decimal.Zero
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var varianceSum float64
	for _, r := range returns {
		diff := r - mean
		varianceSum += diff * diff
	}
	std := math.Sqrt(varianceSum / float64(len(returns)-1))
	if std == 0 {
		return decimal.Zero
	}

	return fromFloat(math.Sqrt(tradingDaysPerYear) * mean / std)
}

func countTrades(trades []types.Trade) (buys, sells int) {
	for _, tr := range trades {
		switch tr.Side {
		case types.SideTypeBuy:
			buys++
		case types.SideTypeSell:
			sells++
		}
	}
	return buys, sells
}

// calcTradeProfit is the cash returned by sells minus the cash spent on buys.
func calcTradeProfit(trades []types.Trade) decimal.Decimal {
	profit := decimal.Zero
	for _, tr := range trades {
		switch tr.Side {
		case types.SideTypeBuy:
			profit = profit.Sub(tr.Amount)
		case types.SideTypeSell:
			profit = profit.Add(tr.Amount)
		}
	}
	return profit
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func printReport(w io.Writer, result *types.BacktestResult) {
	m := result.Metrics

	fmt.Fprintln(w, "===== Grid Backtest Report =====")
	fmt.Fprintf(w, "Symbol:                %s\n", result.Strategy.Symbol)
	fmt.Fprintf(w, "Grid:                  %s - %s (%d levels)\n",
		result.Strategy.LowerPrice, result.Strategy.UpperPrice, result.Strategy.NumGrids)
	fmt.Fprintf(w, "Period:                %s to %s (%d days)\n",
		result.Period.StartDate.Format("2006-01-02"), result.Period.EndDate.Format("2006-01-02"), result.Period.Days)

	fmt.Fprintln(w, "\n-- Performance --")
	fmt.Fprintf(w, "Initial Value:         %s\n", m.InitialValue.StringFixed(2))
	fmt.Fprintf(w, "Final Value:           %s\n", m.FinalValue.StringFixed(2))
	fmt.Fprintf(w, "Total Return %%:        %s\n", m.TotalReturnPct.StringFixed(2))
	fmt.Fprintf(w, "Annualized Return %%:   %s\n", m.AnnualizedReturnPct.StringFixed(2))

	fmt.Fprintln(w, "\n-- Risk --")
	fmt.Fprintf(w, "Max Drawdown %%:        %s\n", m.MaxDrawdownPct.StringFixed(2))
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", m.SharpeRatio.StringFixed(4))

	fmt.Fprintln(w, "\n-- Trades --")
	fmt.Fprintf(w, "Total Trades:          %d\n", m.NumTrades)
	fmt.Fprintf(w, "Buy / Sell:            %d / %d\n", m.BuyTrades, m.SellTrades)
	fmt.Fprintf(w, "Trade Profit:          %s\n", m.TradeProfit.StringFixed(2))

	fmt.Fprintln(w, "================================")
}

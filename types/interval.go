package types

import (
	"fmt"
	"time"
)

type Interval string

const (
	Day   Interval = "1d"
	Week  Interval = "1wk"
	Month Interval = "1mo"
)

var IntervalToTime = map[Interval]time.Duration{
	Day:  time.Hour * 24,
	Week: time.Hour * 24 * 7,
}

var ConvertInterval = map[string]Interval{
	"1d":  Day,
	"D":   Day,
	"1wk": Week,
	"W":   Week,
	"1mo": Month,
	"M":   Month,
}

// Period is a lookback window such as "1y" or "max", counted back from a
// reference time.
type Period string

const (
	OneDay     Period = "1d"
	FiveDays   Period = "5d"
	OneMonth   Period = "1mo"
	ThreeMonth Period = "3mo"
	SixMonth   Period = "6mo"
	OneYear    Period = "1y"
	TwoYears   Period = "2y"
	FiveYears  Period = "5y"
	TenYears   Period = "10y"
	YearToDate Period = "ytd"
	Max        Period = "max"
)

var periods = map[string]Period{
	string(OneDay):     OneDay,
	string(FiveDays):   FiveDays,
	string(OneMonth):   OneMonth,
	string(ThreeMonth): ThreeMonth,
	string(SixMonth):   SixMonth,
	string(OneYear):    OneYear,
	string(TwoYears):   TwoYears,
	string(FiveYears):  FiveYears,
	string(TenYears):   TenYears,
	string(YearToDate): YearToDate,
	string(Max):        Max,
}

func ParsePeriod(s string) (Period, error) {
	p, ok := periods[s]
	if !ok {
		return "", fmt.Errorf("period %q not supported", s)
	}
	return p, nil
}

// maxHistoryStart bounds "max" lookups.
var maxHistoryStart = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Start returns the first instant covered by the period when looking back from now.
func (p Period) Start(now time.Time) (time.Time, error) {
	now = now.UTC()
	switch p {
	case OneDay:
		return now.AddDate(0, 0, -1), nil
	case FiveDays:
		return now.AddDate(0, 0, -5), nil
	case OneMonth:
		return now.AddDate(0, -1, 0), nil
	case ThreeMonth:
		return now.AddDate(0, -3, 0), nil
	case SixMonth:
		return now.AddDate(0, -6, 0), nil
	case OneYear:
		return now.AddDate(-1, 0, 0), nil
	case TwoYears:
		return now.AddDate(-2, 0, 0), nil
	case FiveYears:
		return now.AddDate(-5, 0, 0), nil
	case TenYears:
		return now.AddDate(-10, 0, 0), nil
	case YearToDate:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), nil
	case Max:
		return maxHistoryStart, nil
	}
	return time.Time{}, fmt.Errorf("period %q not supported", string(p))
}

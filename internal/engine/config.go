package engine

import (
	"gridtrader/types"
)

type RunConfig struct {
	period       types.Period
	interval     types.Interval
	showProgress bool
}

func NewRunConfig(period types.Period, interval types.Interval, showProgress bool) *RunConfig {
	return &RunConfig{
		period:       period,
		interval:     interval,
		showProgress: showProgress,
	}
}

type ReportingConfig struct {
	printSummary    bool
	tradesFile      string
	dailyValuesFile string
}

func NewReportingConfig(printSummary bool, tradesFile, dailyValuesFile string) *ReportingConfig {
	return &ReportingConfig{
		printSummary:    printSummary,
		tradesFile:      tradesFile,
		dailyValuesFile: dailyValuesFile,
	}
}

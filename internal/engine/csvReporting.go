package engine

import (
	"encoding/csv"
	"fmt"
	"gridtrader/types"
	"io"
	"os"
	"strconv"
)

const dateLayout = "2006-01-02"

// writeCSVFile creates path and hands it to write. A failed close is reported
// when write itself succeeded.
func writeCSVFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return write(f)
}

// writeTradesCSV writes trades to any io.Writer as CSV.
func writeTradesCSV(w io.Writer, trades []types.Trade) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "type", "price", "shares", "amount", "grid_level"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tr := range trades {
		record := []string{
			tr.Date.Format(dateLayout),
			string(tr.Side),
			tr.Price.String(),
			tr.Shares.String(),
			tr.Amount.String(),
			strconv.Itoa(tr.GridLevel),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// writeDailyValuesCSV writes the end-of-day valuation curve as CSV.
func writeDailyValuesCSV(w io.Writer, snapshots []types.DailySnapshot) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "close", "cash", "shares", "value"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range snapshots {
		record := []string{
			s.Date.Format(dateLayout),
			s.Close.String(),
			s.Cash.String(),
			s.Shares.String(),
			s.Value.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

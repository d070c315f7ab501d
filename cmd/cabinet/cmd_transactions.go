package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cabinet-go/cabinet/internal/document"
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Manage the imported bank feed",
}

var transactionsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import bank transactions from a CSV feed",
	Long: `Import reads a CSV with columns date,amount,name,memo (header row
optional). Dates are yyyy-MM-dd; amounts are decimal, signed, and stored in
minor currency units.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransactionsImport,
}

func init() {
	transactionsCmd.AddCommand(transactionsImportCmd)
}

func runTransactionsImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	count := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(record) < 3 {
			return fmt.Errorf("row %d: need at least date, amount and name", count+1)
		}
		date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(record[0]), time.Local)
		if err != nil {
			if count == 0 {
				continue // header row
			}
			return fmt.Errorf("row %d: %w", count+1, err)
		}
		amount, err := parseMinorUnits(strings.TrimSpace(record[1]))
		if err != nil {
			return fmt.Errorf("row %d: %w", count+1, err)
		}
		tx := document.Transaction{Date: date, Amount: amount, Name: strings.TrimSpace(record[2])}
		if len(record) > 3 {
			tx.Memo = strings.TrimSpace(record[3])
		}
		if err := a.store.Transactions().Save(ctx, tx); err != nil {
			return err
		}
		count++
	}
	fmt.Printf("imported %d transactions\n", count)
	return nil
}

// parseMinorUnits converts a signed decimal string like "-12.30" to minor
// currency units. Parsing is all-or-nothing: a fraction longer than two
// digits is rejected rather than silently truncated.
func parseMinorUnits(s string) (int64, error) {
	in := s
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", in, err)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q: more than two fraction digits", in)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	minor, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", in, err)
	}
	v := major*100 + minor
	if neg {
		v = -v
	}
	return v, nil
}

// Package report renders a scan cycle as plain-text tables for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/alanyoungcy/marketfocus/internal/domain"
	"github.com/alanyoungcy/marketfocus/internal/market"
	"github.com/alanyoungcy/marketfocus/internal/service"
)

// Options controls what the report shows.
type Options struct {
	// ValidPricesOnly hides candidates missing either price.
	ValidPricesOnly bool
	// ShowInvalid appends the records that failed to parse, with reasons.
	ShowInvalid bool
}

// Write renders the focus picks followed by the candidate table.
func Write(w io.Writer, res service.ScanResult, opts Options) error {
	candidates := res.Candidates
	if opts.ValidPricesOnly {
		candidates = market.WithPrices(candidates)
	}

	fmt.Fprintf(w, "cycle %s at %s: %d fetched, %d candidates (<= %.0fh)\n\n",
		res.CycleID, res.ScannedAt.UTC().Format("2006-01-02 15:04:05Z"),
		len(res.Records), len(candidates), market.MaxHoursToClose)

	fmt.Fprintln(w, "FOCUS")
	if len(res.Focus) == 0 {
		fmt.Fprintln(w, "  no crypto or sports market closing soon")
	} else if err := writeTable(w, res.Focus); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "CANDIDATES")
	if len(candidates) == 0 {
		fmt.Fprintln(w, "  none")
	} else if err := writeTable(w, candidates); err != nil {
		return err
	}

	if opts.ShowInvalid {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "INVALID")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range res.Records {
			if !r.Valid() {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.DisplayID(), r.InvalidReason, dash(r.DecodeIssue))
			}
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("report: flush: %w", err)
		}
	}
	return nil
}

func writeTable(w io.Writer, records []domain.MarketRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  MARKET\tCATEGORY\tHOURS\tYES\tNO\tQUESTION")
	for _, r := range records {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			r.DisplayID(),
			dash(r.Category),
			formatFloat(r.HoursToClose, 2),
			formatFloat(r.YesPrice, 3),
			formatFloat(r.NoPrice, 3),
			truncate(r.Question, 60),
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: flush: %w", err)
	}
	return nil
}

func formatFloat(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

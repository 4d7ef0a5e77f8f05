// Package report renders human-readable validation summaries.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nagavaishak/Celsius/internal/domain"
	"github.com/nagavaishak/Celsius/internal/validation"
)

const bannerWidth = 60

func banner(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", bannerWidth))
}

// WriteHeader prints the run banner shown before collection begins.
func WriteHeader(w io.Writer, cities []string, windowDays int) {
	banner(w)
	fmt.Fprintln(w, "WEATHER MARKET THESIS VALIDATION")
	banner(w)
	fmt.Fprintf(w, "Validation period: %d days\n", windowDays)
	fmt.Fprintf(w, "Target cities: %s\n", strings.Join(cities, ", "))
	fmt.Fprintln(w)
}

// WriteVerdict prints the final report with a per-criterion breakdown.
func WriteVerdict(w io.Writer, rep domain.VerdictReport) {
	banner(w)
	fmt.Fprintln(w, "VALIDATION RESULTS")
	banner(w)

	fmt.Fprintf(w, "\nAverage edge: %.1f%%\n", rep.AverageEdge*100)
	fmt.Fprintf(w, "Win rate: %.1f%% (assumed, needs real outcomes)\n", rep.WinRate*100)
	fmt.Fprintf(w, "Opportunities per day: %.1f\n", rep.OpportunitiesPerDay)
	fmt.Fprintf(w, "Total opportunities: %d\n", rep.TotalOpportunities)

	fmt.Fprintln(w, "\n--- Success Criteria ---")
	fmt.Fprintf(w, "Average edge >= %.0f%%: %.1f%% %s\n",
		validation.MinAverageEdge*100, rep.AverageEdge*100, mark(rep.EdgePassed))
	fmt.Fprintf(w, "Win rate >= %.0f%%: %.1f%% %s\n",
		validation.MinWinRate*100, rep.WinRate*100, mark(rep.WinRatePassed))
	fmt.Fprintf(w, "Opportunities >= %.0f/day: %.1f %s\n",
		validation.MinOpportunitiesPerDay, rep.OpportunitiesPerDay, mark(rep.FrequencyPassed))

	fmt.Fprintln(w)
	banner(w)
	if rep.OverallPassed {
		fmt.Fprintln(w, "VALIDATION PASSED - edge confirmed, proceed to build")
	} else {
		fmt.Fprintln(w, "VALIDATION FAILED - no exploitable edge, do not proceed")
	}
	banner(w)
}

// WriteEmpty prints the failure banner for a run with no observations.
func WriteEmpty(w io.Writer) {
	banner(w)
	fmt.Fprintln(w, "VALIDATION RESULTS")
	banner(w)
	fmt.Fprintln(w, "VALIDATION FAILED: no opportunities found")
}

func mark(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// Summary renders a one-line verdict suitable for chat announcements.
func Summary(rep domain.VerdictReport) string {
	verdict := "FAILED"
	if rep.OverallPassed {
		verdict = "PASSED"
	}
	return fmt.Sprintf("%s: avg edge %.1f%%, win rate %.1f%%, %.1f opportunities/day (%d total)",
		verdict, rep.AverageEdge*100, rep.WinRate*100, rep.OpportunitiesPerDay, rep.TotalOpportunities)
}

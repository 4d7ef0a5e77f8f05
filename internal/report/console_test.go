package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nagavaishak/Celsius/internal/domain"
)

func TestWriteVerdictPassing(t *testing.T) {
	var b strings.Builder
	WriteVerdict(&b, domain.VerdictReport{
		AverageEdge:         0.1234,
		WinRate:             0.70,
		OpportunitiesPerDay: 3.2,
		TotalOpportunities:  45,
		EdgePassed:          true,
		WinRatePassed:       true,
		FrequencyPassed:     true,
		OverallPassed:       true,
	})
	out := b.String()
	assert.Contains(t, out, "Average edge: 12.3%")
	assert.Contains(t, out, "Win rate: 70.0%")
	assert.Contains(t, out, "Total opportunities: 45")
	assert.Contains(t, out, "Average edge >= 5%: 12.3% PASS")
	assert.Contains(t, out, "VALIDATION PASSED")
}

func TestWriteVerdictFailing(t *testing.T) {
	var b strings.Builder
	WriteVerdict(&b, domain.VerdictReport{
		AverageEdge:         0.02,
		WinRate:             0.70,
		OpportunitiesPerDay: 1.5,
		TotalOpportunities:  21,
		EdgePassed:          false,
		WinRatePassed:       true,
		FrequencyPassed:     false,
	})
	out := b.String()
	assert.Contains(t, out, "Average edge >= 5%: 2.0% FAIL")
	assert.Contains(t, out, "Opportunities >= 3/day: 1.5 FAIL")
	assert.Contains(t, out, "VALIDATION FAILED")
}

func TestSummary(t *testing.T) {
	s := Summary(domain.VerdictReport{
		AverageEdge:         0.08,
		WinRate:             0.70,
		OpportunitiesPerDay: 3.5,
		TotalOpportunities:  49,
		OverallPassed:       true,
	})
	assert.Equal(t, "PASSED: avg edge 8.0%, win rate 70.0%, 3.5 opportunities/day (49 total)", s)
}

// Package scoring turns raw spatial rows and external records into
// normalized 0-100 scores with human-readable explanations. Factor weights
// and tier thresholds are fixed domain constants; they are part of the
// observable contract and must not drift.
package scoring

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gridsight/site-scorer/pkg/places"
)

// roundTo rounds v to n decimal places.
func roundTo(v float64, n int) float64 {
	pow := math.Pow(10, float64(n))
	return math.Round(v*pow) / pow
}

// orZero treats a missing numeric column as zero, never as an error.
func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// fmtScore renders a rounded score without trailing zeros, e.g. "69.93".
func fmtScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var thousands = message.NewPrinter(language.English)

// fmtCount renders an integer with thousands separators, e.g. "1,290,188".
func fmtCount(n int64) string {
	return thousands.Sprintf("%d", n)
}

// countByCategory groups businesses by their primary category.
func countByCategory(businesses []places.Business) map[string]int {
	counts := make(map[string]int)
	for _, b := range businesses {
		counts[b.Category()]++
	}
	return counts
}

// topCategories renders the n busiest categories as "cat: count" pairs,
// ordered by descending count with names breaking ties.
func topCategories(counts map[string]int, n int) string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.name + ": " + strconv.Itoa(e.count)
	}
	return strings.Join(parts, ", ")
}

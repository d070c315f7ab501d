// Package match scores documents against bank transactions. The scoring is a
// binary accept/reject expressed as extreme values so it composes additively
// with richer scoring systems without a separate gating step.
package match

import (
	"time"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
)

const (
	// MatchScore is returned when amount and date both fall in tolerance.
	MatchScore = 10000
	// NoMatchScore is returned otherwise, including when the document lacks
	// the configured fields.
	NoMatchScore = -10000
)

const secondsPerDay = 86400

// DefaultToleranceBefore is the allowed number of days a transaction may
// precede the document's reference date when no explicit tolerance is given.
const DefaultToleranceBefore = 3

// Matcher holds the per-document-type matching configuration: which
// attributes carry the reference date and amount, and the day window either
// side of the date.
type Matcher struct {
	DateKey         string
	AmountKey       string
	ToleranceAfter  int
	ToleranceBefore int
}

// New builds a matcher with the default before-tolerance.
func New(dateKey, amountKey string, toleranceAfter int) *Matcher {
	return &Matcher{
		DateKey:         dateKey,
		AmountKey:       amountKey,
		ToleranceAfter:  toleranceAfter,
		ToleranceBefore: DefaultToleranceBefore,
	}
}

// Score rates the transaction against the document's attributes. The amount
// comparison is sign-insensitive: the same economic event may be recorded
// with opposite sign conventions in different feeds. The day difference is
// transaction date minus document date divided by 86400, truncated toward
// zero; the window comparison is sensitive to that exact rounding.
func (m *Matcher) Score(tx document.Transaction, attrs attr.Map) int {
	docDate, ok := attrs.Time(m.DateKey)
	if !ok {
		return NoMatchScore
	}
	docAmount, ok := attrs.Number(m.AmountKey)
	if !ok {
		return NoMatchScore
	}
	if tx.Amount != docAmount && tx.Amount != -docAmount {
		return NoMatchScore
	}
	diffDays := int((tx.Date.Unix() - docDate.Unix()) / secondsPerDay)
	if diffDays <= m.ToleranceAfter && diffDays >= -m.ToleranceBefore {
		return MatchScore
	}
	return NoMatchScore
}

// DateRange is an inclusive window of candidate transaction dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RelevantDateRange returns the window of transactions worth scoring for a
// document, so callers can pre-filter the feed before scoring all pairs.
// The second return is false when the document lacks the date field.
func (m *Matcher) RelevantDateRange(attrs attr.Map) (DateRange, bool) {
	docDate, ok := attrs.Time(m.DateKey)
	if !ok {
		return DateRange{}, false
	}
	return DateRange{
		Start: docDate.Add(-time.Duration(m.ToleranceBefore) * secondsPerDay * time.Second),
		End:   docDate.Add(time.Duration(m.ToleranceAfter) * secondsPerDay * time.Second),
	}, true
}

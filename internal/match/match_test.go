package match

import (
	"testing"
	"time"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
)

func day(d int) time.Time {
	// Day 0 of an arbitrary epoch, midnight UTC.
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestScoreWindow(t *testing.T) {
	m := &Matcher{DateKey: "date", AmountKey: "amount", ToleranceAfter: 5, ToleranceBefore: 3}
	attrs := attr.Map{"date": day(0), "amount": int64(2500)}

	tests := []struct {
		name  string
		txDay int
		want  int
	}{
		{"same day", 0, MatchScore},
		{"last day after", 5, MatchScore},
		{"one past after", 6, NoMatchScore},
		{"last day before", -3, MatchScore},
		{"one past before", -4, NoMatchScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := document.Transaction{Date: day(tt.txDay), Amount: 2500}
			if got := m.Score(tx, attrs); got != tt.want {
				t.Errorf("Score(day %+d) = %d, want %d", tt.txDay, got, tt.want)
			}
		})
	}
}

func TestScoreTruncatesTowardZero(t *testing.T) {
	m := &Matcher{DateKey: "date", AmountKey: "amount", ToleranceAfter: 0, ToleranceBefore: 0}
	attrs := attr.Map{"date": day(0), "amount": int64(100)}

	// 12 hours before the document date: -43200/86400 truncates to 0, so a
	// zero-tolerance window still accepts it. 36 hours before truncates to -1.
	early := document.Transaction{Date: day(0).Add(-12 * time.Hour), Amount: 100}
	if got := m.Score(early, attrs); got != MatchScore {
		t.Errorf("Score(-12h) = %d, want %d", got, MatchScore)
	}
	earlier := document.Transaction{Date: day(0).Add(-36 * time.Hour), Amount: 100}
	if got := m.Score(earlier, attrs); got != NoMatchScore {
		t.Errorf("Score(-36h) = %d, want %d", got, NoMatchScore)
	}
	late := document.Transaction{Date: day(0).Add(12 * time.Hour), Amount: 100}
	if got := m.Score(late, attrs); got != MatchScore {
		t.Errorf("Score(+12h) = %d, want %d", got, MatchScore)
	}
}

func TestScoreAmountSignInsensitive(t *testing.T) {
	m := New("date", "amount", 4)
	attrs := attr.Map{"date": day(0), "amount": int64(-7890)}

	for _, amount := range []int64{7890, -7890} {
		tx := document.Transaction{Date: day(1), Amount: amount}
		if got := m.Score(tx, attrs); got != MatchScore {
			t.Errorf("Score(amount %d) = %d, want %d", amount, got, MatchScore)
		}
	}
	tx := document.Transaction{Date: day(1), Amount: 7891}
	if got := m.Score(tx, attrs); got != NoMatchScore {
		t.Errorf("Score(wrong amount) = %d, want %d", got, NoMatchScore)
	}
}

func TestScoreMissingFields(t *testing.T) {
	m := New("date", "amount", 4)
	tx := document.Transaction{Date: day(0), Amount: 100}

	tests := []struct {
		name  string
		attrs attr.Map
	}{
		{"empty map", attr.Map{}},
		{"missing amount", attr.Map{"date": day(0)}},
		{"missing date", attr.Map{"amount": int64(100)}},
		{"date wrong kind", attr.Map{"date": "2024-06-01", "amount": int64(100)}},
		{"amount wrong kind", attr.Map{"date": day(0), "amount": "100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Score(tx, tt.attrs); got != NoMatchScore {
				t.Errorf("Score = %d, want %d", got, NoMatchScore)
			}
		})
	}
}

func TestNewDefaultToleranceBefore(t *testing.T) {
	m := New("date", "amount", 20)
	if m.ToleranceBefore != DefaultToleranceBefore {
		t.Errorf("ToleranceBefore = %d, want %d", m.ToleranceBefore, DefaultToleranceBefore)
	}
	if m.ToleranceAfter != 20 {
		t.Errorf("ToleranceAfter = %d, want 20", m.ToleranceAfter)
	}
}

func TestRelevantDateRange(t *testing.T) {
	m := &Matcher{DateKey: "date", AmountKey: "amount", ToleranceAfter: 5, ToleranceBefore: 3}

	window, ok := m.RelevantDateRange(attr.Map{"date": day(100), "amount": int64(1)})
	if !ok {
		t.Fatal("RelevantDateRange reported no window")
	}
	if !window.Start.Equal(day(97)) || !window.End.Equal(day(105)) {
		t.Errorf("window = [%v, %v], want [%v, %v]", window.Start, window.End, day(97), day(105))
	}

	if _, ok := m.RelevantDateRange(attr.Map{"amount": int64(1)}); ok {
		t.Error("RelevantDateRange returned a window without a document date")
	}
}

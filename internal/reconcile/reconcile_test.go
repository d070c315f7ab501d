package reconcile

import (
	"testing"
	"time"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
	"github.com/cabinet-go/cabinet/internal/match"
	"github.com/cabinet-go/cabinet/internal/registry"
)

func day(d int) time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func billType() *registry.DocumentType {
	return &registry.DocumentType{
		Name:    "invoice",
		Matcher: &match.Matcher{DateKey: "date", AmountKey: "amount", ToleranceAfter: 5, ToleranceBefore: 3},
	}
}

func TestCandidatesPrefilter(t *testing.T) {
	svc := New(nil)
	attrs := attr.Map{"date": day(10), "amount": int64(500)}
	feed := []document.Transaction{
		{Date: day(0), Amount: 500, Name: "too early"},
		{Date: day(7), Amount: 500, Name: "start of window"},
		{Date: day(15), Amount: 999, Name: "end of window"},
		{Date: day(16), Amount: 500, Name: "too late"},
	}

	got := svc.Candidates(billType(), attrs, feed)
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2", len(got))
	}
	if got[0].Name != "start of window" || got[1].Name != "end of window" {
		t.Errorf("candidates = %q, %q", got[0].Name, got[1].Name)
	}
}

func TestCandidatesWithoutMatcher(t *testing.T) {
	svc := New(nil)
	dt := &registry.DocumentType{Name: "note"}
	feed := []document.Transaction{{Date: day(0), Amount: 1}}
	if got := svc.Candidates(dt, attr.Map{}, feed); got != nil {
		t.Errorf("matcher-less type produced candidates: %v", got)
	}
}

func TestBestTransaction(t *testing.T) {
	svc := New(nil)
	attrs := attr.Map{"date": day(10), "amount": int64(500)}
	feed := []document.Transaction{
		{Date: day(8), Amount: 123, Name: "wrong amount"},
		{Date: day(11), Amount: -500, Name: "the one"},
		{Date: day(12), Amount: 500, Name: "also plausible"},
	}

	tx, ok := svc.BestTransaction(billType(), attrs, feed)
	if !ok {
		t.Fatal("no transaction matched")
	}
	if tx.Name != "the one" {
		t.Errorf("matched %q, want the first acceptable candidate", tx.Name)
	}
}

func TestBestTransactionNoMatch(t *testing.T) {
	svc := New(nil)
	attrs := attr.Map{"date": day(10), "amount": int64(500)}
	feed := []document.Transaction{
		{Date: day(10), Amount: 501, Name: "off by one"},
		{Date: day(20), Amount: 500, Name: "outside window"},
	}
	if _, ok := svc.BestTransaction(billType(), attrs, feed); ok {
		t.Error("matched a transaction that should have been rejected")
	}
}

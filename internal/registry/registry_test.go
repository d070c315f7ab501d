package registry

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
)

func testDoc(text string) *document.Document {
	return document.New(text, text)
}

func staticExtractor(attrs attr.Map) Extractor {
	return ExtractorFunc(func(doc *document.Document) (attr.Map, error) {
		return attrs, nil
	})
}

func TestRegisterLastWins(t *testing.T) {
	r := New(nil)

	first := NewCollection("bills", "First", "")
	r.Register(first)
	if err := r.DefineDocumentType("bills", "invoice", DocumentTypeSpec{
		PublicName: "Old invoice",
		Extractor:  staticExtractor(attr.Map{"v": "old"}),
	}); err != nil {
		t.Fatalf("define: %v", err)
	}

	second := NewCollection("bills", "Second", "")
	r.Register(second)
	if err := r.DefineDocumentType("bills", "invoice", DocumentTypeSpec{
		PublicName: "New invoice",
		Extractor:  staticExtractor(attr.Map{"v": "new"}),
	}); err != nil {
		t.Fatalf("define: %v", err)
	}

	c, err := r.Collection("bills")
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	if c.PublicName != "Second" {
		t.Errorf("PublicName = %q, want the later registration", c.PublicName)
	}
	dt, err := r.Lookup("bills", "invoice")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if dt.PublicName != "New invoice" {
		t.Errorf("resolved type %q, want the later definition", dt.PublicName)
	}
}

func TestRedefineTypeWithinCollection(t *testing.T) {
	r := New(nil)
	r.Register(NewCollection("bills", "Bills", ""))

	if err := r.DefineDocumentType("bills", "invoice", DocumentTypeSpec{
		PublicName: "First invoice",
		Extractor:  staticExtractor(attr.Map{"v": "first"}),
	}); err != nil {
		t.Fatalf("define: %v", err)
	}
	if err := r.DefineDocumentType("bills", "invoice", DocumentTypeSpec{
		PublicName: "Second invoice",
		Extractor:  staticExtractor(attr.Map{"v": "second"}),
	}); err != nil {
		t.Fatalf("redefine: %v", err)
	}

	dt, err := r.Lookup("bills", "invoice")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if dt.PublicName != "Second invoice" {
		t.Errorf("resolved type %q, want the second definition", dt.PublicName)
	}
	attrs, err := r.Classify("bills", "invoice", testDoc("x"))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got := attrs.String("v"); got != "second" {
		t.Errorf("extractor output = %q, want the second definition's", got)
	}
	if types := mustCollection(t, r, "bills").DocumentTypes(); len(types) != 1 {
		t.Errorf("collection holds %d types, want the one replaced entry", len(types))
	}
}

func mustCollection(t *testing.T, r *Registry, name string) *Collection {
	t.Helper()
	c, err := r.Collection(name)
	if err != nil {
		t.Fatalf("collection %s: %v", name, err)
	}
	return c
}

func TestDefineDocumentTypeRequiresExtractor(t *testing.T) {
	r := New(nil)
	r.Register(NewCollection("bills", "Bills", ""))

	err := r.DefineDocumentType("bills", "broken", DocumentTypeSpec{PublicName: "Broken"})
	if !errors.Is(err, ErrMissingExtractor) {
		t.Fatalf("err = %v, want ErrMissingExtractor", err)
	}
	if _, err := r.Lookup("bills", "broken"); !errors.Is(err, ErrNotFound) {
		t.Errorf("a type without an extractor must not be installed, lookup err = %v", err)
	}

	// The sibling type installs regardless.
	if err := r.DefineDocumentType("bills", "ok", DocumentTypeSpec{
		Extractor: staticExtractor(attr.Map{}),
	}); err != nil {
		t.Fatalf("define sibling: %v", err)
	}
	if _, err := r.Lookup("bills", "ok"); err != nil {
		t.Errorf("sibling lookup: %v", err)
	}
}

func TestClassify(t *testing.T) {
	r := New(nil)
	r.Register(NewCollection("bills", "Bills", ""))
	when := time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)
	if err := r.DefineDocumentType("bills", "invoice", DocumentTypeSpec{
		Extractor: staticExtractor(attr.Map{"date": when, "amount": int64(1234)}),
	}); err != nil {
		t.Fatalf("define: %v", err)
	}

	attrs, err := r.Classify("bills", "invoice", testDoc("whatever"))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if n, ok := attrs.Number("amount"); !ok || n != 1234 {
		t.Errorf("amount = %d (%v), want 1234", n, ok)
	}

	if _, err := r.Classify("bills", "nope", testDoc("x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown type err = %v, want ErrNotFound", err)
	}
}

func TestClassifyNilAttrs(t *testing.T) {
	r := New(nil)
	r.Register(NewCollection("bills", "Bills", ""))
	if err := r.DefineDocumentType("bills", "invoice", DocumentTypeSpec{
		Extractor: ExtractorFunc(func(doc *document.Document) (attr.Map, error) {
			return nil, nil
		}),
	}); err != nil {
		t.Fatalf("define: %v", err)
	}
	attrs, err := r.Classify("bills", "invoice", testDoc("x"))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if attrs == nil {
		t.Error("classify returned a nil map for a successful extraction")
	}
}

func TestClassifyExtractionErrorIsScoped(t *testing.T) {
	r := New(nil)
	r.Register(NewCollection("bills", "Bills", ""))
	boom := errors.New("no total line")
	if err := r.DefineDocumentType("bills", "invoice", DocumentTypeSpec{
		Extractor: ExtractorFunc(func(doc *document.Document) (attr.Map, error) {
			if strings.Contains(doc.Text, "bad") {
				return nil, boom
			}
			return attr.Map{"ok": "yes"}, nil
		}),
	}); err != nil {
		t.Fatalf("define: %v", err)
	}

	_, err := r.Classify("bills", "invoice", testDoc("bad input"))
	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("err = %v, want *ExtractionError", err)
	}
	if xerr.Collection != "bills" || xerr.Type != "invoice" {
		t.Errorf("error names %s/%s, want bills/invoice", xerr.Collection, xerr.Type)
	}
	if !errors.Is(err, boom) {
		t.Error("ExtractionError does not unwrap to the extractor's error")
	}

	// The failure is per-document: the next classification succeeds.
	if _, err := r.Classify("bills", "invoice", testDoc("good input")); err != nil {
		t.Errorf("classify after failure: %v", err)
	}
}

func TestClassifyContainsPanic(t *testing.T) {
	r := New(nil)
	r.Register(NewCollection("bills", "Bills", ""))
	if err := r.DefineDocumentType("bills", "invoice", DocumentTypeSpec{
		Extractor: ExtractorFunc(func(doc *document.Document) (attr.Map, error) {
			panic("index out of range")
		}),
	}); err != nil {
		t.Fatalf("define: %v", err)
	}

	attrs, err := r.Classify("bills", "invoice", testDoc("x"))
	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("err = %v, want *ExtractionError", err)
	}
	if attrs != nil {
		t.Error("panicking extraction returned attributes")
	}
}

func TestScoreForTransactionWithoutMatcher(t *testing.T) {
	dt := &DocumentType{Name: "note"}
	tx := document.Transaction{Date: time.Now(), Amount: 100}
	if got := dt.ScoreForTransaction(tx, attr.Map{"amount": int64(100)}); got >= 0 {
		t.Errorf("matcher-less type scored %d, want a rejection", got)
	}
	if _, ok := dt.RelevantDateRange(attr.Map{}); ok {
		t.Error("matcher-less type reported a relevant date range")
	}
}

// Package collections ships the generic collection definitions usable out of
// the box. Source-specific definitions are data maintained elsewhere and
// registered the same way.
package collections

import (
	"regexp"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
	"github.com/cabinet-go/cabinet/internal/match"
	"github.com/cabinet-go/cabinet/internal/registry"
)

var (
	invoiceDateRE  = regexp.MustCompile(`(?i)invoice\s+(?:date|of)\s*:?\s*(\d{1,2})/(\d{1,2})/(\d{4})`)
	anyDateRE      = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	totalRE        = regexp.MustCompile(`(?i)total\s*(?:due|amount)?\s*:?\s*(-?\d+)[.,](\d{2})`)
	issuerRE       = regexp.MustCompile(`(?i)(?:issued by|from)\s*:?\s*(\S+)`)
	referenceRE    = regexp.MustCompile(`(?i)(?:invoice|reference)\s*(?:no|number|#)\s*\.?\s*:?\s*(\S+)`)
	payPeriodRE    = regexp.MustCompile(`(?i)pay period\s*:?\s*(\d{1,2})/(\d{1,2})/(\d{4})`)
	netPayRE       = regexp.MustCompile(`(?i)net\s+pay\s*:?\s*(\d+)[.,](\d{2})`)
	employerRE     = regexp.MustCompile(`(?i)employer\s*:?\s*(\S+)`)
	payReferenceRE = regexp.MustCompile(`(?i)payslip\s*(?:no|number|#)\s*\.?\s*:?\s*(\S+)`)
)

// RegisterBase installs the "base" collection: a generic invoice and a
// generic payslip, extracted with forgiving patterns over the plain text
// view. Sources with firmer layouts should register their own types instead.
func RegisterBase(r *registry.Registry) {
	r.Register(registry.NewCollection("base", "General documents",
		"Generic bills and payslips with no source-specific extraction rules."))

	invoiceMatcher := match.New("date", "amount", 4)
	_ = r.DefineDocumentType("base", "invoice", registry.DocumentTypeSpec{
		PublicName:         "Bill",
		DisplayTemplate:    "Bill from %{who}, dating from %{date%date}: %{amount%A}",
		FormatTemplate:     "Bill-%{who}-%{date%date:yyyy-MM}.pdf",
		RequiredAttributes: []string{"amount", "date", "who"},
		Matcher:            invoiceMatcher,
		Extractor:          registry.ExtractorFunc(extractInvoice),
	})

	payslipMatcher := match.New("date", "amount", 20)
	_ = r.DefineDocumentType("base", "payslip", registry.DocumentTypeSpec{
		PublicName:         "Payslip",
		DisplayTemplate:    "Payslip from %{who}, period %{date%date:MM/yyyy}: %{amount%A}",
		FormatTemplate:     "Payslip-%{who}-%{date%date:yyyy-MM}.pdf",
		RequiredAttributes: []string{"amount", "date", "who"},
		Matcher:            payslipMatcher,
		Extractor:          registry.ExtractorFunc(extractPayslip),
	})
}

func extractInvoice(doc *document.Document) (attr.Map, error) {
	res := attr.Map{}
	if m := invoiceDateRE.FindStringSubmatch(doc.Text); m != nil {
		if t, ok := parseDayMonthYear(m[1], m[2], m[3]); ok {
			res["date"] = t
		}
	} else if m := anyDateRE.FindStringSubmatch(doc.Text); m != nil {
		if t, ok := parseDayMonthYear(m[1], m[2], m[3]); ok {
			res["date"] = t
		}
	}
	if m := totalRE.FindStringSubmatch(doc.Text); m != nil {
		if cents, ok := parseAmount(m[1], m[2]); ok {
			res["amount"] = cents
		}
	}
	if m := issuerRE.FindStringSubmatch(doc.Text); m != nil {
		res["who"] = m[1]
	}
	if m := referenceRE.FindStringSubmatch(doc.Text); m != nil {
		res["reference"] = m[1]
	}
	return res, nil
}

func extractPayslip(doc *document.Document) (attr.Map, error) {
	res := attr.Map{}
	text := doc.TextLayout
	if text == "" {
		text = doc.Text
	}
	if m := payPeriodRE.FindStringSubmatch(text); m != nil {
		if t, ok := parseDayMonthYear(m[1], m[2], m[3]); ok {
			res["date"] = t
		}
	}
	if m := netPayRE.FindStringSubmatch(text); m != nil {
		if cents, ok := parseAmount(m[1], m[2]); ok {
			res["amount"] = cents
		}
	}
	if m := employerRE.FindStringSubmatch(text); m != nil {
		res["who"] = m[1]
	}
	if m := payReferenceRE.FindStringSubmatch(text); m != nil {
		res["reference"] = m[1]
	}
	return res, nil
}

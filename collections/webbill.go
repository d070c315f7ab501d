package collections

import (
	"context"
	"fmt"
	"strings"

	"github.com/cabinet-go/cabinet/internal/fetch"
	"github.com/cabinet-go/cabinet/internal/registry"
)

// RegisterWebBill installs the "webbill" collection: a bill source with a
// form login and a listing page of PDF links. The fetch script walks the
// login, pages through the listing and downloads every bill not already
// known.
func RegisterWebBill(r *registry.Registry) {
	r.Register(registry.NewCollection("webbill", "Web billing portal",
		"Bills downloaded from a portal with form login and a PDF listing."))

	_ = r.DefineDocumentType("webbill", "bill", registry.DocumentTypeSpec{
		PublicName:         "Bill",
		DisplayTemplate:    "Bill dated %{date%date:dd/MM/yyyy}: %{amount%A} (%{reference})",
		FormatTemplate:     "Webbill-%{date%date:yyyy-MM}.pdf",
		RequiredAttributes: []string{"amount", "date"},
		Extractor:          registry.ExtractorFunc(extractInvoice),
	})
}

// FetchWebBill is the collection's fetch script. Credentials: "base_url",
// "login" and "password". The procedure is plain sequential code; every Get
// and Post suspends until the transport delivers.
func FetchWebBill(ctx context.Context, s *fetch.Session) error {
	base := strings.TrimRight(s.Credential("base_url"), "/")
	if base == "" {
		return fmt.Errorf("webbill: base_url credential is required")
	}

	// The login page carries hidden session fields that must be posted back.
	loginPage, err := s.Get(base + "/login")
	if err != nil {
		return err
	}
	form := loginPage.HiddenFields("form")
	form["username"] = s.Credential("login")
	form["password"] = s.Credential("password")
	action := loginPage.FormAction("form")
	if action == "" {
		action = base + "/login"
	}
	if _, err := s.Post(action, form); err != nil {
		return err
	}

	known := make(map[string]bool)
	for _, attrs := range s.Existing() {
		if ref := attrs.String("reference"); ref != "" {
			known[ref] = true
		}
	}

	listing, err := s.Get(base + "/bills")
	if err != nil {
		return err
	}
	for _, link := range listing.Links() {
		if !strings.Contains(link.Target, ".pdf") {
			continue
		}
		ref := link.Target
		if i := strings.LastIndex(ref, "/"); i >= 0 {
			ref = ref[i+1:]
		}
		if known[ref] {
			continue
		}
		res, err := s.Get(link.AbsoluteTarget)
		if err != nil {
			return err
		}
		doc, err := s.AddDocument(res, "bill")
		if err != nil {
			// Rejected by classification; skip the item, keep fetching.
			continue
		}
		doc.Reference = ref
	}
	return nil
}

// Scripts maps collection names to their fetch procedures. Collections
// without an entry are fetched manually.
func Scripts() map[string]fetch.Script {
	return map[string]fetch.Script{
		"webbill": FetchWebBill,
	}
}

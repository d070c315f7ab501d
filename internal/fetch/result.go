package fetch

import (
	"bytes"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Result is the payload of one successful exchange: the final URL (which may
// differ from the requested one after redirects) and the raw body, with lazy
// HTML selection on top for walking multi-step login and listing flows.
type Result struct {
	URL        string
	StatusCode int
	Body       []byte

	docOnce sync.Once
	doc     *goquery.Document
	docErr  error
}

// Contents returns the body as a string.
func (r *Result) Contents() string { return string(r.Body) }

// IsPDF reports whether the body carries the PDF magic.
func (r *Result) IsPDF() bool { return bytes.HasPrefix(r.Body, []byte("%PDF")) }

// SaveTo writes the body to path, for payloads that need a file on disk.
func (r *Result) SaveTo(path string) error {
	return os.WriteFile(path, r.Body, 0o644)
}

func (r *Result) document() (*goquery.Document, error) {
	r.docOnce.Do(func() {
		r.doc, r.docErr = goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	})
	return r.doc, r.docErr
}

// Find exposes CSS selection over the body for fetch procedures that need
// more than Links and form helpers. Returns an empty selection on non-HTML
// bodies.
func (r *Result) Find(selector string) *goquery.Selection {
	doc, err := r.document()
	if err != nil {
		return new(goquery.Selection)
	}
	return doc.Find(selector)
}

// Link is one anchor found in an HTML result.
type Link struct {
	// Target is the href as written in the page.
	Target string
	// Text is the anchor's visible text.
	Text string
	// AbsoluteTarget is the href resolved against the result's URL.
	AbsoluteTarget string
}

// Links enumerates the anchors of an HTML result. Anchors without an href are
// skipped.
func (r *Result) Links() []Link {
	doc, err := r.document()
	if err != nil {
		return nil
	}
	base, _ := url.Parse(r.URL)
	var links []Link
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		l := Link{Target: href, Text: strings.TrimSpace(sel.Text()), AbsoluteTarget: href}
		if base != nil {
			if ref, err := url.Parse(href); err == nil {
				l.AbsoluteTarget = base.ResolveReference(ref).String()
			}
		}
		links = append(links, l)
	})
	return links
}

// HiddenFields collects the hidden input fields of the form matched by
// selector, for scraping session tokens out of login pages. Use "form" to
// match the first form on the page.
func (r *Result) HiddenFields(selector string) map[string]string {
	fields := make(map[string]string)
	r.Find(selector).First().Find(`input[type="hidden"]`).Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok {
			return
		}
		fields[name], _ = sel.Attr("value")
	})
	return fields
}

// FormAction returns the submission target of the form matched by selector,
// resolved against the result's URL. Empty when there is no such form.
func (r *Result) FormAction(selector string) string {
	action, ok := r.Find(selector).First().Attr("action")
	if !ok {
		return ""
	}
	base, err := url.Parse(r.URL)
	if err != nil {
		return action
	}
	ref, err := url.Parse(action)
	if err != nil {
		return action
	}
	return base.ResolveReference(ref).String()
}

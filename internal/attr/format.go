package attr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Templates are literal text interspersed with %{key} and %{key%spec}
// placeholders. Keys containing '%' or '}' cannot be referenced.
var placeholderRE = regexp.MustCompile(`%\{([^%}]+)(%[^}]+)?\}`)

// Format substitutes every %{...} placeholder in template with the
// corresponding attribute value. Missing keys and malformed directives render
// as the empty string: templates are data written by many independent
// collaborators and must degrade instead of failing. Same template and same
// map always produce the same string.
func Format(template string, attrs Map) string {
	return placeholderRE.ReplaceAllStringFunc(template, func(ph string) string {
		m := placeholderRE.FindStringSubmatch(ph)
		key, spec := m[1], m[2]
		v, ok := attrs[key]
		if !ok {
			return ""
		}
		if spec == "" {
			return stringify(v)
		}
		return formatValue(v, spec[1:])
	})
}

// formatValue applies a single format directive:
//
//	A          amount in minor units, rendered as major.minor
//	M          zero-padded month of a timestamp
//	y          4-digit year of a timestamp
//	date:FMT   timestamp under the token language of formatDate
//	date       shorthand for date:dd/MM/yyyy
//
// Directives applied to a value of the wrong kind, and directives not listed
// above, render as the empty string.
func formatValue(v any, spec string) string {
	switch spec {
	case "A":
		n, ok := asInt64(v)
		if !ok {
			return ""
		}
		return FormatAmount(n)
	case "M":
		t, ok := v.(time.Time)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%02d", int(t.Month()))
	case "y":
		t, ok := v.(time.Time)
		if !ok {
			return ""
		}
		return strconv.Itoa(t.Year())
	case "date":
		spec = "date:dd/MM/yyyy"
	}
	if layout, found := strings.CutPrefix(spec, "date:"); found {
		t, ok := v.(time.Time)
		if !ok {
			return ""
		}
		return formatDate(t, layout)
	}
	return ""
}

// formatDate renders t under a small token language: yyyy, yy, MM, M, dd and
// d are substituted, any other byte is copied through literally. Tokens may
// appear in any order.
func formatDate(t time.Time, layout string) string {
	var b strings.Builder
	for i := 0; i < len(layout); {
		rest := layout[i:]
		switch {
		case strings.HasPrefix(rest, "yyyy"):
			fmt.Fprintf(&b, "%04d", t.Year())
			i += 4
		case strings.HasPrefix(rest, "yy"):
			fmt.Fprintf(&b, "%02d", t.Year()%100)
			i += 2
		case strings.HasPrefix(rest, "MM"):
			fmt.Fprintf(&b, "%02d", int(t.Month()))
			i += 2
		case strings.HasPrefix(rest, "M"):
			b.WriteString(strconv.Itoa(int(t.Month())))
			i++
		case strings.HasPrefix(rest, "dd"):
			fmt.Fprintf(&b, "%02d", t.Day())
			i += 2
		case strings.HasPrefix(rest, "d"):
			b.WriteString(strconv.Itoa(t.Day()))
			i++
		default:
			b.WriteByte(layout[i])
			i++
		}
	}
	return b.String()
}

// RequiredAttributes scans a template and reports the keys it references
// together with the value kind each directive expects. Used to diagnose
// document type definitions whose templates disagree with their declared
// attributes.
func RequiredAttributes(template string) map[string]Type {
	req := make(map[string]Type)
	for _, m := range placeholderRE.FindAllStringSubmatch(template, -1) {
		key, spec := m[1], m[2]
		t := TypeString
		if spec != "" {
			switch s := spec[1:]; {
			case s == "A":
				t = TypeNumber
			case s == "M", s == "y", s == "date", strings.HasPrefix(s, "date:"):
				t = TypeTime
			}
		}
		req[key] = t
	}
	return req
}

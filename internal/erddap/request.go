package erddap

import (
	"strings"
)

// Protocol is the path segment selecting an ERDDAP service.
type Protocol string

const (
	Tabledap Protocol = "tabledap"
	Griddap  Protocol = "griddap"
	Info     Protocol = "info"
)

// Request describes one ERDDAP download URL. It is a plain value: build it,
// pass it around, call URL. Nothing is shared between requests.
type Request struct {
	Server    string
	Protocol  Protocol
	DatasetID string
	Response  string

	// Variables are comma-joined into the first query term. For griddap they
	// carry the index subsetting, e.g. "temp[(last):1:(last)]".
	Variables []string

	// Constraints are "&"-joined after the variables, e.g. "time>=...".
	Constraints []string
}

// URL renders the request following ERDDAP's query-string conventions.
func (r Request) URL() string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(r.Server, "/"))
	b.WriteByte('/')
	b.WriteString(string(r.Protocol))
	b.WriteByte('/')
	b.WriteString(r.DatasetID)
	if r.Response != "" {
		b.WriteByte('.')
		b.WriteString(r.Response)
	}

	terms := make([]string, 0, 1+len(r.Constraints))
	if len(r.Variables) > 0 {
		vars := make([]string, len(r.Variables))
		for i, v := range r.Variables {
			vars[i] = EncodeQueryTerm(v)
		}
		terms = append(terms, strings.Join(vars, ","))
	}
	for _, c := range r.Constraints {
		terms = append(terms, EncodeQueryTerm(c))
	}
	if len(terms) > 0 {
		b.WriteByte('?')
		b.WriteString(strings.Join(terms, "&"))
	}
	return b.String()
}

// EncodeQueryTerm percent-encodes s the way ERDDAP documents for query
// values: everything except A-Za-z0-9 and -_.!~*'(), is escaped.
func EncodeQueryTerm(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func keepUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'(),", c) >= 0
}

package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain is the subject-matter tag used to partition paper search.
// The label is sent to the backend verbatim.
type Domain string

const (
	DomainFinance       Domain = "금융"
	DomainTelecom       Domain = "통신"
	DomainManufacturing Domain = "제조"
	DomainLogistics     Domain = "유통/물류"
	DomainAI            Domain = "AI"
	DomainCloud         Domain = "클라우드"
)

var domainOrder = []Domain{
	DomainFinance,
	DomainTelecom,
	DomainManufacturing,
	DomainLogistics,
	DomainAI,
	DomainCloud,
}

var domainAliases = map[string]Domain{
	"finance":       DomainFinance,
	"telecom":       DomainTelecom,
	"manufacturing": DomainManufacturing,
	"logistics":     DomainLogistics,
	"ai":            DomainAI,
	"cloud":         DomainCloud,
}

// Domains returns every domain in display order.
func Domains() []Domain {
	out := make([]Domain, len(domainOrder))
	copy(out, domainOrder)
	return out
}

// Alias returns the English alias accepted by ParseDomain.
func (d Domain) Alias() string {
	for alias, domain := range domainAliases {
		if domain == d {
			return alias
		}
	}
	return ""
}

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	for _, known := range domainOrder {
		if known == d {
			return true
		}
	}
	return false
}

// ParseDomain accepts a domain label or its English alias.
// Input is NFC-normalized first so decomposed Hangul from some terminals still matches.
func ParseDomain(value string) (Domain, error) {
	cleaned := norm.NFC.String(strings.TrimSpace(value))
	if d := Domain(cleaned); d.Valid() {
		return d, nil
	}
	if d, ok := domainAliases[strings.ToLower(cleaned)]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, value)
}

// Paper is a research paper as shown to the user. Values are never mutated after fetch.
type Paper struct {
	ID          string
	Domain      Domain
	Title       string
	Authors     []string
	Abstract    string
	PublishedAt string
	Source      string
	URL         string
	PDFURL      string
	ArxivURL    string
}

// CanDownload reports whether the paper carries both URLs the download endpoint needs.
func (p Paper) CanDownload() bool {
	return p.PDFURL != "" && p.URL != ""
}

// DownloadRecord is the storage path the backend reported for a paper title.
type DownloadRecord struct {
	Title string
	Path  string
}

// NormalizedPath returns Path with every separator converted to a forward slash.
func (r DownloadRecord) NormalizedPath() string {
	return NormalizePath(r.Path)
}

// Filename returns the last path segment of Path.
func (r DownloadRecord) Filename() string {
	return Basename(r.Path)
}

// NormalizePath converts backslash separators to forward slashes.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// Basename returns the last segment of path, splitting on either separator convention.
func Basename(path string) string {
	idx := strings.LastIndexAny(path, `/\`)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

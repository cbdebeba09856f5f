package scoring

import (
	"math"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/octobees/pharmacy-leads/internal/entity"
)

// Label and name may be separated by U+00A0 (&nbsp;) as well as ASCII whitespace.
var ownerPattern = regexp.MustCompile(`(?:Inhaber|Geschäftsführer|Gérant|Proprietario|Verantwortlich):[\s\x{00A0}]*([A-Z][a-z]+[\s\x{00A0}][A-Z][a-z]+)`)

// Result reports the category breakdown and feature flags derived from a page.
type Result struct {
	Overall    int
	Categories entity.CategoryScores
	HasWebshop bool
	Owner      *string
	// ImprintURL is the href of the first imprint link, if any. It is not fetched.
	ImprintURL *string
}

// Evaluate scores a fetched page with the default policy.
func Evaluate(doc *goquery.Document, rawHTML string, header http.Header) Result {
	return DefaultPolicy.Evaluate(doc, rawHTML, header)
}

// Evaluate runs every heuristic over the parsed document, its raw source and response headers.
func (p Policy) Evaluate(doc *goquery.Document, rawHTML string, header http.Header) Result {
	text := doc.Text()
	categories := entity.CategoryScores{
		Performance:   p.PerformanceBaseline,
		SEO:           p.SEO(doc),
		Accessibility: p.AccessibilityBaseline,
		Security:      p.Security(header),
		Conversion:    p.conversion(doc, text),
	}

	return Result{
		Overall:    p.Overall(categories),
		Categories: categories,
		HasWebshop: HasWebshop(doc, rawHTML),
		Owner:      detectOwner(text),
		ImprintURL: ImprintURL(doc),
	}
}

// SEO starts from a perfect score and deducts for missing on-page basics.
func (p Policy) SEO(doc *goquery.Document) int {
	score := p.SEOStart
	if doc.Find("h1").Length() == 0 {
		score -= p.SEOMissingH1
	}
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	if strings.TrimSpace(description) == "" {
		score -= p.SEOMissingDescription
	}
	if strings.TrimSpace(doc.Find("title").Text()) == "" {
		score -= p.SEOMissingTitle
	}
	return max(score, 0)
}

// Conversion adds points for contact signals, call-to-action buttons and a Swiss phone number.
func (p Policy) Conversion(doc *goquery.Document) int {
	return p.conversion(doc, doc.Text())
}

func (p Policy) conversion(doc *goquery.Document, text string) int {
	score := 0
	if containsAny(strings.ToLower(text), contactKeywords) {
		score += p.ConversionContactKeyword
	}
	if doc.Find(buttonSelector).Length() >= p.ConversionButtonMinimum {
		score += p.ConversionButtons
	}
	if strings.Contains(text, swissPhonePrefix) {
		score += p.ConversionSwissPhone
	}
	return score
}

// Security rewards hardening headers on top of a base for a reachable site.
func (p Policy) Security(header http.Header) int {
	score := p.SecurityBase
	if header.Get("Strict-Transport-Security") != "" {
		score += p.SecurityHSTS
	}
	if header.Get("Content-Security-Policy") != "" {
		score += p.SecurityCSP
	}
	return score
}

// Overall combines category scores into the 0-10 band and clamps it.
func (p Policy) Overall(c entity.CategoryScores) int {
	weighted := float64(c.Performance)*p.Weights.Performance +
		float64(c.SEO)*p.Weights.SEO +
		float64(c.Accessibility)*p.Weights.Accessibility +
		float64(c.Security)*p.Weights.Security +
		float64(c.Conversion)*p.Weights.Conversion

	overall := int(math.Round(weighted / p.OverallDivisor))
	return min(max(overall, p.OverallMin), p.OverallMax)
}

// HasWebshop looks for cart markup or shop vocabulary anywhere in the page source.
func HasWebshop(doc *goquery.Document, rawHTML string) bool {
	if doc.Find(cartSelector).Length() > 0 {
		return true
	}
	return containsAny(strings.ToLower(rawHTML), shopKeywords)
}

// DetectOwner extracts a proprietor name from labels such as "Inhaber: Anna Muster".
// Only the landing page is read; owners named exclusively on the imprint page are not found.
func DetectOwner(doc *goquery.Document) *string {
	return detectOwner(doc.Text())
}

func detectOwner(text string) *string {
	match := ownerPattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return nil
	}
	owner := strings.ReplaceAll(match[1], "\u00a0", " ")
	return &owner
}

// ImprintURL returns the href of the first anchor labelled as an imprint.
func ImprintURL(doc *goquery.Document) *string {
	link := doc.Find("a").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return containsAny(strings.ToLower(sel.Text()), imprintKeywords)
	}).First()
	if link.Length() == 0 {
		return nil
	}
	href := strings.TrimSpace(link.AttrOr("href", ""))
	return &href
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

package payroll

import (
	"regexp"
	"strings"
)

// Rule is a named text pattern. Group selects the capture group that holds the value;
// zero selects the whole match.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Group   int
}

// Find returns the value captured by the first match of the rule in text
func (r Rule) Find(text string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil || r.Group >= len(m) {
		return "", false
	}
	return m[r.Group], true
}

// Rules is an ordered list of rules. Earlier rules take precedence.
type Rules []Rule

// First applies the rules in order and returns the value and name of the first one that matches
func (rs Rules) First(text string) (value, rule string, ok bool) {
	for _, r := range rs {
		if v, found := r.Find(text); found {
			return v, r.Name, true
		}
	}
	return "", "", false
}

// Identifier rules
var (
	// LabeledFolio matches the "No. DE COMPROBANTE" label followed, possibly on the
	// next line, by the receipt number.
	LabeledFolio = Rule{
		Name:    "labeled-folio",
		Pattern: regexp.MustCompile(`(?i)COMPROBANTE\s*(\d+)`),
		Group:   1,
	}

	// EightDigitToken matches the first standalone 8-digit number, the usual folio
	// length on templates that print it without a label.
	EightDigitToken = Rule{
		Name:    "eight-digit-token",
		Pattern: regexp.MustCompile(`\b\d{8}\b`),
	}
)

// Amount rules
var (
	// EarningsHeading matches the PERCEPCIONES heading and the first money token on the line after it
	EarningsHeading = Rule{
		Name:    "earnings-heading",
		Pattern: regexp.MustCompile(`PERCEPCIONES.*?\n.*?\$?\s*([\d,]+\.\d{2})`),
		Group:   1,
	}

	// IncomeTaxWithheld matches the first money token following the ISR label on the same line.
	// The first number wins even when it is not the withheld amount.
	IncomeTaxWithheld = Rule{
		Name:    "income-tax-withheld",
		Pattern: regexp.MustCompile(`(?i)IMPUESTO SOBRE LA RENTA.*?([\d,]+\.\d{2})`),
		Group:   1,
	}
)

// BonusKeywords mark a receipt as a year-end bonus payment when present anywhere in the text
var BonusKeywords = []string{"aguinaldo", "gratificacion anual"}

// Extractor pulls receipt fields out of rendered text
type Extractor struct {
	Identifier    Rules
	Gross         Rules
	Tax           Rules
	BonusKeywords []string
}

// NewExtractor creates an Extractor with the rules for the standard receipt template
func NewExtractor() *Extractor {
	return &Extractor{
		Identifier:    Rules{LabeledFolio, EightDigitToken},
		Gross:         Rules{EarningsHeading},
		Tax:           Rules{IncomeTaxWithheld},
		BonusKeywords: BonusKeywords,
	}
}

// Extract reads the fields of one document. Values that no rule finds are left at
// their defaults: UnknownIdentifier, zero amounts and a non-bonus classification.
func (e *Extractor) Extract(text string) Fields {
	f := Fields{Identifier: UnknownIdentifier}

	if id, rule, ok := e.Identifier.First(text); ok {
		f.Identifier = id
		f.IdentifierRule = rule
	}
	if raw, rule, ok := e.Gross.First(text); ok {
		f.Gross = NormalizeAmount(raw)
		f.GrossRule = rule
	}
	if raw, rule, ok := e.Tax.First(text); ok {
		f.Tax = NormalizeAmount(raw)
		f.TaxRule = rule
	}
	f.Bonus = e.isBonus(text)

	return f
}

func (e *Extractor) isBonus(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range e.BonusKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

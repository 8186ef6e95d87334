package payroll

// UnknownIdentifier is the identifier given to a receipt when no identifier rule matches.
// Receipts carrying it are never deduplicated.
const UnknownIdentifier = "unknown"

// Document is the rendered text of one uploaded payroll receipt
type Document struct {
	Name string `json:"name"` // source filename
	Text string `json:"text"` // all pages, in page order
}

// Fields contains the values extracted from a single document
type Fields struct {
	Identifier string  `json:"identifier"`
	Gross      float64 `json:"gross"`
	Tax        float64 `json:"tax"`
	Bonus      bool    `json:"bonus"`

	// Names of the rules that produced each value; empty when the value defaulted
	IdentifierRule string `json:"identifier_rule,omitempty"`
	GrossRule      string `json:"gross_rule,omitempty"`
	TaxRule        string `json:"tax_rule,omitempty"`
}

// Receipt is a set of extracted fields tied to the file they came from
type Receipt struct {
	Source string `json:"source"`
	Fields
}

// Classification returns "bonus" for year-end bonus receipts and "ordinary" otherwise
func (r Receipt) Classification() string {
	if r.Bonus {
		return "bonus"
	}
	return "ordinary"
}

package payroll

import (
	"fmt"
	"maps"
)

// Status is the outcome of admitting a receipt into a batch
type Status int

const (
	Accepted Status = iota
	RejectedDuplicate
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case RejectedDuplicate:
		return "rejected_duplicate"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "accepted":
		*s = Accepted
	case "rejected_duplicate":
		*s = RejectedDuplicate
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Decision is the ledger's verdict on one receipt. Original names the file that first
// carried the identifier when Status is RejectedDuplicate.
type Decision struct {
	Status   Status `json:"status"`
	Original string `json:"original,omitempty"`
}

// Ledger remembers which file first carried each receipt identifier in a batch.
// It is not safe for concurrent use.
type Ledger struct {
	seen map[string]string
}

// NewLedger creates an empty Ledger
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]string)}
}

// Admit decides whether the receipt identified by id, read from source, is kept.
// The first file to carry an identifier wins; later ones are rejected and the ledger
// is left unchanged. UnknownIdentifier is always accepted and never recorded.
func (l *Ledger) Admit(id, source string) Decision {
	if id == UnknownIdentifier {
		return Decision{Status: Accepted}
	}
	if original, ok := l.seen[id]; ok {
		return Decision{Status: RejectedDuplicate, Original: original}
	}
	l.seen[id] = source
	return Decision{Status: Accepted}
}

// Lookup returns the source recorded for id
func (l *Ledger) Lookup(id string) (string, bool) {
	source, ok := l.seen[id]
	return source, ok
}

// Len returns the number of identifiers recorded
func (l *Ledger) Len() int {
	return len(l.seen)
}

// Entries returns a copy of the identifier to source mapping
func (l *Ledger) Entries() map[string]string {
	return maps.Clone(l.seen)
}

func (l *Ledger) clone() *Ledger {
	return &Ledger{seen: maps.Clone(l.seen)}
}

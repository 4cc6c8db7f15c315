package ingest

// Outcome tags the result of ingesting one transaction. Duplicates are a
// normal outcome, never an error.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeAlreadyPresent
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeAlreadyPresent:
		return "already_present"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Result couples the outcome with the rejection reason, set only for
// rejected transactions.
type Result struct {
	Outcome Outcome
	Reason  error
}

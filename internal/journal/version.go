package journal

// Version is one candidate state of an entry's content together with the
// logical timestamp of the write that produced it. Content fields are
// pointers so an explicitly empty field is distinguishable from an absent
// one; resolution replaces whole versions, never individual fields.
type Version struct {
	Person    *string
	Grace     *string
	Gratitude *string

	// UpdatedAt is the writer-supplied logical timestamp in milliseconds
	// since the Unix epoch. It is the sole ordering key.
	UpdatedAt int64
}

// Outcome classifies the result of resolving an incoming version against
// stored state.
type Outcome int

const (
	// OutcomeCreated means no stored version existed; the incoming version
	// was accepted outright.
	OutcomeCreated Outcome = iota

	// OutcomeUpdated means the incoming version strictly out-timestamped the
	// stored one and replaced its content in full.
	OutcomeUpdated

	// OutcomeNoOp means the incoming version was stale (or tied) and was
	// discarded, leaving stored state untouched. Replays land here, which is
	// what makes the sync protocol idempotent.
	OutcomeNoOp
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeNoOp:
		return "no-op"
	default:
		return "unknown"
	}
}

// StringPtr is a convenience for building Versions from literals.
func StringPtr(s string) *string { return &s }

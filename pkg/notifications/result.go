package notifications

// Status classifies a MutationResult.
type Status int

const (
	// StatusUnchanged: no store held the notification and nothing was sent.
	StatusUnchanged Status = iota
	// StatusLocal: local state changed; no server request was made.
	StatusLocal
	// StatusConfirmed: the server accepted the write.
	StatusConfirmed
	// StatusUnconfirmed: the server request failed. Local changes, if any,
	// were kept and may disagree with the server until the next fetch.
	StatusUnconfirmed
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusLocal:
		return "local"
	case StatusConfirmed:
		return "confirmed"
	case StatusUnconfirmed:
		return "unconfirmed"
	default:
		return "unknown"
	}
}

// MutationResult separates the optimistic local phase of a mutation from its
// persistence phase.
type MutationResult struct {
	// Stores lists, sorted, the stores whose state changed locally.
	Stores []string
	// Requested is set when a server request was issued.
	Requested bool
	// Persisted is set when that request succeeded.
	Persisted bool
	// Err is the request failure, if any.
	Err error
}

// Applied reports whether any store changed locally.
func (r MutationResult) Applied() bool { return len(r.Stores) > 0 }

func (r MutationResult) Status() Status {
	switch {
	case r.Requested && r.Err != nil:
		return StatusUnconfirmed
	case r.Persisted:
		return StatusConfirmed
	case r.Applied():
		return StatusLocal
	default:
		return StatusUnchanged
	}
}

// NeedsReconcile reports whether local state was changed but the server
// rejected the write; a fresh fetch restores agreement.
func (r MutationResult) NeedsReconcile() bool {
	return r.Applied() && r.Err != nil
}

package model

import "time"

// UpdatedAtField is the key stamped onto every snapshot when it is saved.
const UpdatedAtField = "updatedAt"

// Snapshot is a complete portfolio document for one user.
// Its contents (holdings, cashBalance, transactionHistory, ...) are owned by the client
// and stored as-is; a save always replaces the previous snapshot wholesale.
type Snapshot map[string]any

// Clone returns a shallow copy so callers can stamp fields without mutating the input.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Stamp returns a copy of the snapshot with UpdatedAtField set to t in RFC 3339 (UTC).
func (s Snapshot) Stamp(t time.Time) Snapshot {
	out := s.Clone()
	out[UpdatedAtField] = t.UTC().Format(time.RFC3339)
	return out
}

package journal

// Journal is an undo log giving top-level settlement operations
// all-or-nothing semantics. Components record an undo closure for every
// state write; an operation takes a snapshot on entry and reverts to it
// on failure, which unwinds every write made after the snapshot in
// reverse order. Snapshots nest: an inner operation may revert its own
// writes while the outer operation later reverts the rest.
type Journal struct {
	undos []func()
}

// New returns an empty journal.
func New() *Journal {
	return &Journal{}
}

// Snapshot marks the current journal position.
func (j *Journal) Snapshot() int {
	return len(j.undos)
}

// Append records an undo closure for a single state write.
func (j *Journal) Append(undo func()) {
	j.undos = append(j.undos, undo)
}

// RevertTo runs every undo recorded after the snapshot, newest first,
// and truncates the log back to the snapshot position.
func (j *Journal) RevertTo(snap int) {
	if snap < 0 {
		snap = 0
	}
	for i := len(j.undos) - 1; i >= snap; i-- {
		j.undos[i]()
	}
	j.undos = j.undos[:snap]
}

// Len returns the number of recorded undo entries.
func (j *Journal) Len() int {
	return len(j.undos)
}

// Reset drops all recorded entries without running them. Called after a
// top-level operation commits so the log does not grow without bound.
func (j *Journal) Reset() {
	j.undos = j.undos[:0]
}

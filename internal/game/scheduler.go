// internal/game/scheduler.go
//
// Round-robin turn scheduling. The pointer indexes into the flattened,
// stage-grouped signull order; it is inert (always empty) in free mode.
//
// Pointer rules:
//   - A newly created entry becomes the pointer target.
//   - When the pointed-to entry reaches any terminal status, the pointer
//     rotates forward (wrapping) to the next still-pending entry.
//   - With no pending entries left, the pointer clears; connects without
//     an explicit id then fail with NO_ACTIVE_SIGNULL.

package game

// pointTo aims the scheduler at a just-created entry.
func (r *Room) pointTo(id string) {
	if r.Settings.PlayMode != ModeRoundRobin {
		return
	}
	r.Signulls.ActiveID = id
}

// advancePointer moves past a no-longer-pending target. Safe to call after
// every status change; it is a no-op while the target is still pending or
// in free mode.
func (r *Room) advancePointer() {
	if r.Settings.PlayMode != ModeRoundRobin || r.Signulls.ActiveID == "" {
		return
	}
	cur := r.Signulls.Entry(r.Signulls.ActiveID)
	if cur != nil && cur.Status == StatusPending {
		return
	}
	flat := r.Signulls.Flatten()
	start := 0
	for i, id := range flat {
		if id == r.Signulls.ActiveID {
			start = i + 1
			break
		}
	}
	for off := 0; off < len(flat); off++ {
		id := flat[(start+off)%len(flat)]
		if e := r.Signulls.Entry(id); e != nil && e.Status == StatusPending {
			r.Signulls.ActiveID = id
			return
		}
	}
	r.Signulls.ActiveID = ""
}

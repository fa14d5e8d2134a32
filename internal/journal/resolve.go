package journal

// Resolve applies the last-writer-wins rule to a stored version (nil if the
// entry does not exist yet) and an incoming candidate. It is a pure
// decision: the caller performs the single write the outcome authorizes.
//
// Rules:
//   - no stored version: incoming accepted, OutcomeCreated.
//   - incoming.UpdatedAt <= stored.UpdatedAt: incoming discarded,
//     OutcomeNoOp, stored returned unchanged. Equal timestamps never
//     produce a second write.
//   - incoming.UpdatedAt > stored.UpdatedAt: incoming replaces the content
//     in full, OutcomeUpdated.
//
// Applying two versions with distinct timestamps in either order converges
// on the higher one, so no lock beyond per-record write atomicity is needed.
func Resolve(stored *Version, incoming Version) (Outcome, Version) {
	if stored == nil {
		return OutcomeCreated, incoming
	}
	if incoming.UpdatedAt <= stored.UpdatedAt {
		return OutcomeNoOp, *stored
	}
	return OutcomeUpdated, incoming
}

// DisplayView is the result of reconciling a device-local copy with a
// fetched server copy for presentation. SyncedAt nil means the view still
// carries local changes that must be pushed.
type DisplayView struct {
	Version  Version
	SyncedAt *int64
}

// ReconcileDisplay decides what a device shows (and persists back locally)
// for one date, given its local copy and the server's copy, either of which
// may be absent. now is the device wall clock in milliseconds, used only
// for the synced-at bookkeeping marker.
//
// The timestamp comparison is the same as Resolve; the extra bookkeeping is
// which side's victory marks the view synced: a strictly newer local copy
// stays unsynced, while a server win or tie is synced as of now. A copy
// present on only one side resolves to that side — local keeps its current
// marker, server-only is synced (there is nothing to push).
func ReconcileDisplay(local *Version, localSyncedAt *int64, server *Version, now int64) DisplayView {
	switch {
	case local == nil && server == nil:
		return DisplayView{}
	case server == nil:
		return DisplayView{Version: *local, SyncedAt: localSyncedAt}
	case local == nil:
		return DisplayView{Version: *server, SyncedAt: &now}
	case local.UpdatedAt > server.UpdatedAt:
		return DisplayView{Version: *local, SyncedAt: nil}
	default:
		return DisplayView{Version: *server, SyncedAt: &now}
	}
}

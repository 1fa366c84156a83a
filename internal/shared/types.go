package shared

// Task type names shared between the API (enqueue side) and the
// worker (handler side).
const (
	TypeCleanupOrphanArchive = "export:cleanup_orphan_archive"
)

// CleanupOrphanArchivePayload identifies an uploaded archive that no
// book references: either its export transaction failed to commit, or
// a re-export replaced it. The blob can be removed at leisure.
type CleanupOrphanArchivePayload struct {
	Key string `json:"key"`
}

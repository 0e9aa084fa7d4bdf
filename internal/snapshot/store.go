// internal/snapshot/store.go
package snapshot

import "gymnexus/internal/membership"

var (
	_ membership.SnapshotStore = (*FileStore)(nil)
	_ membership.SnapshotStore = (*PostgresStore)(nil)
)

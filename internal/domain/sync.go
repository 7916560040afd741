package domain

type EntityKind string

const (
	KindPost    EntityKind = "post"
	KindComment EntityKind = "comment"
)

type Resolution string

const (
	// ResolutionServerWins keeps the server copy and discards the client update.
	ResolutionServerWins Resolution = "server"
	// ResolutionLocalWins overwrites every field of the server record with the
	// client's submission (last-writer-wins at record granularity).
	ResolutionLocalWins Resolution = "local"
)

// PostChangeSet is one batch of client changes for the post collection.
// An id must appear in at most one of the three lists; the engine does not
// check disjointness and the last list processed wins if a caller violates it.
type PostChangeSet struct {
	Created []*Post  `json:"created"`
	Updated []*Post  `json:"updated"`
	Deleted []string `json:"deleted"`
}

type CommentChangeSet struct {
	Created []*Comment `json:"created"`
	Updated []*Comment `json:"updated"`
	Deleted []string   `json:"deleted"`
}

type SyncChanges struct {
	Posts    PostChangeSet    `json:"posts"`
	Comments CommentChangeSet `json:"comments"`
}

// SyncRequest is the push payload. LastPulledAt is the epoch-millisecond
// watermark through which the client has previously received server state.
type SyncRequest struct {
	LastPulledAt int64       `json:"lastPulledAt"`
	Changes      SyncChanges `json:"changes"`
}

// SyncResponse describes what the server accepted (push) or what changed
// since the watermark (pull). Timestamp is the instant the response was
// generated; the client stores it as its next LastPulledAt.
type SyncResponse struct {
	Changes   SyncChanges `json:"changes"`
	Timestamp int64       `json:"timestamp"`
}

// PostConflict is the outcome of comparing a client post against the server
// copy. Ephemeral: produced and consumed within a single update, never stored.
type PostConflict struct {
	Kind       EntityKind
	EntityID   string
	Local      *Post
	Server     *Post
	Resolution Resolution
}

type CommentConflict struct {
	Kind       EntityKind
	EntityID   string
	Local      *Comment
	Server     *Comment
	Resolution Resolution
}

// SyncState is the per-user bookkeeping behind the status endpoint, updated
// at the end of every push and pull. PendingChanges counts records the client
// submitted on its last push that the server could not accept and that must
// be resubmitted on the next cycle.
type SyncState struct {
	LastSyncAt     int64  `json:"lastSyncAt"`
	Status         string `json:"status"`
	PendingChanges int    `json:"pendingChanges"`
	LastError      string `json:"lastError,omitempty"`
}

const (
	SyncStatusSynced  = "synced"
	SyncStatusPending = "pending"
	SyncStatusError   = "error"
)

type SyncStatusResponse struct {
	LastSync       int64  `json:"lastSync"`
	Status         string `json:"status"`
	PendingChanges int    `json:"pendingChanges"`
	LastError      string `json:"lastError,omitempty"`
}

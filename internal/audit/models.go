package audit

import "time"

// LogEntry is one append-only audit row in MongoDB. Entries are never
// updated or deleted once written.
type LogEntry struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    int64     `bson:"user_id" json:"userId"`
	Entity    string    `bson:"entity" json:"entity"`
	EntityID  int64     `bson:"entity_id" json:"entityId"`
	Action    string    `bson:"action" json:"action"`
	Deleted   bool      `bson:"deleted" json:"deleted"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ListFilter narrows the audit log query. Zero values mean "no filter".
type ListFilter struct {
	UserID   int64
	Entity   string
	EntityID int64
	Action   string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

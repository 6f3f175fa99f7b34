package models

// Collection names one of the keyed entity collections.
type Collection string

const (
	CollectionUsers         Collection = "users"
	CollectionEvents        Collection = "events"
	CollectionRegistrations Collection = "registrations"
)

type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change describes one committed write. Registration changes also carry the
// event and user they belong to so live queries can be filtered without a
// store round trip.
type Change struct {
	Collection Collection `json:"collection"`
	Op         ChangeOp   `json:"op"`
	ID         string     `json:"id"`
	EventID    string     `json:"event_id,omitempty"`
	UserID     string     `json:"user_id,omitempty"`
}

// Resync returns the change that forces every live query to re-evaluate.
func Resync() Change {
	return Change{}
}

func (c Change) IsResync() bool {
	return c.Collection == ""
}

func RegistrationChange(op ChangeOp, r *Registration) Change {
	return Change{
		Collection: CollectionRegistrations,
		Op:         op,
		ID:         r.ID,
		EventID:    r.EventID,
		UserID:     r.UserID,
	}
}

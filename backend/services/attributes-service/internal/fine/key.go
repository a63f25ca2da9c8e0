package fine

import "github.com/google/uuid"

// NamesKey addresses the attribute name index of one session. Two keys are
// equal iff their session ids are equal.
type NamesKey struct {
	SessionID string
}

// String renders the remote-cache key for the name index.
func (k NamesKey) String() string {
	return "session:" + k.SessionID + ":attributes"
}

// AttributeKey addresses a single attribute value. The attribute id is
// random, generated once per (session, name) pair, and unique within the
// session for the lifetime of its name.
type AttributeKey struct {
	SessionID   string
	AttributeID uuid.UUID
}

// String renders the remote-cache key for the attribute value.
func (k AttributeKey) String() string {
	return "session:" + k.SessionID + ":attribute:" + k.AttributeID.String()
}

package dedup

// SessionSeen tracks identities accepted during one acquisition call.
// It is never shared across sessions.
type SessionSeen struct {
	store *SeenStore
}

func NewSessionSeen() *SessionSeen {
	return &SessionSeen{store: NewSeenStore()}
}

func (s *SessionSeen) Seen(k Key) bool {
	return s.store.IsSeen(k)
}

func (s *SessionSeen) Add(k Key) {
	s.store.Add(k)
}

func (s *SessionSeen) Len() int {
	return s.store.Links.Cardinality()
}

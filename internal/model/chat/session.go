package chat

import "time"

// SessionType labels one practice conversation's focus.
type SessionType string

const (
	Technical  SessionType = "Technical"
	Behavioral SessionType = "Behavioral"
	General    SessionType = "General"
	Leadership SessionType = "Leadership"
)

// SessionTypes returns the fixed label set a new session is drawn from.
func SessionTypes() []SessionType {
	return []SessionType{Technical, Behavioral, General, Leadership}
}

// Session captures one practice conversation. Replaced wholesale on each new
// session; MessageCount grows by 2 per completed exchange and is the only
// field mutated after creation.
type Session struct {
	ID           string      `json:"id"`
	Type         SessionType `json:"type"`
	StartedAt    time.Time   `json:"startedAt"`
	MessageCount int         `json:"messageCount"`
}

package valueobject

// Participant identifies one side of a chat turn (immutable).
// A participant is either a registered human account or the seeded
// AI persona; messages reference participants, never account rows.
type Participant struct {
	id       string
	username string
	bot      bool
}

// NewParticipant creates a participant value object.
func NewParticipant(id, username string, bot bool) Participant {
	return Participant{
		id:       id,
		username: username,
		bot:      bot,
	}
}

// ID returns the participant's account id.
func (p Participant) ID() string {
	return p.id
}

// Username returns the display handle.
func (p Participant) Username() string {
	return p.username
}

// IsBot reports whether this participant is the AI persona.
func (p Participant) IsBot() bool {
	return p.bot
}

// IsZero reports whether the participant is unset (deleted sender).
func (p Participant) IsZero() bool {
	return p.id == "" && p.username == ""
}

// Equals compares two participants by value.
func (p Participant) Equals(other Participant) bool {
	return p.id == other.id && p.username == other.username && p.bot == other.bot
}

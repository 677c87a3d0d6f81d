package agent

// Transcript roles.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// maxTurns caps the transcript at the 10 most recent user/agent pairs.
// Older context is irrecoverably dropped; an accepted approximation.
const maxTurns = 20

// Turn is one entry in the conversation transcript.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// transcript is a FIFO-truncated conversation history. Turns are always
// appended as a user/agent pair, so truncation evicts whole pairs.
type transcript struct {
	turns []Turn
}

func (t *transcript) append(question, answer string) {
	t.turns = append(t.turns,
		Turn{Role: RoleUser, Text: question},
		Turn{Role: RoleAgent, Text: answer},
	)
	if len(t.turns) > maxTurns {
		t.turns = t.turns[len(t.turns)-maxTurns:]
	}
}

func (t *transcript) snapshot() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

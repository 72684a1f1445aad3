package coach

import (
	"context"
	"fmt"
	"log"

	"github.com/luoxingyu/mockview/internal/analysis/delivery"
	"github.com/luoxingyu/mockview/internal/model/chat"
	"github.com/luoxingyu/mockview/internal/model/interview"
)

// Responder produces the interviewer's next reply for the practice endpoint.
type Responder interface {
	Respond(ctx context.Context, message string, history []chat.Message) (string, error)
}

// ScriptedResponder walks a profile's question bank in order, prefixing each
// question with a short acknowledgment tuned to how the last answer landed.
// It needs no credentials, which makes it the default for local development.
type ScriptedResponder struct {
	profiles interview.Store
	session  chat.SessionType
}

// NewScriptedResponder returns a responder scripted for the given session type.
func NewScriptedResponder(profiles interview.Store, session chat.SessionType) *ScriptedResponder {
	return &ScriptedResponder{profiles: profiles, session: session}
}

// Respond picks the next question based on how many interviewer turns the
// history already holds. The history is client-supplied and trusted as-is.
func (r *ScriptedResponder) Respond(_ context.Context, message string, history []chat.Message) (string, error) {
	profile, ok := r.profiles.FindByType(r.session)
	if !ok {
		return "", fmt.Errorf("no interviewer profile for session type %q", r.session)
	}
	if len(profile.Questions) == 0 {
		return "", fmt.Errorf("interviewer profile %q has an empty question bank", profile.Title)
	}

	asked, lastQuestion := interviewerTurns(history)
	decision := delivery.Analyze(lastQuestion, message)
	log.Printf("[coach] scripted reply: session=%s asked=%d delivery=%s score=%d",
		r.session, asked, decision.Delivery, decision.Score)

	next := profile.Questions[asked%len(profile.Questions)]
	if asked == 0 {
		return profile.OpeningLine + " " + next, nil
	}
	return acknowledge(decision.Delivery) + " " + next, nil
}

// interviewerTurns 统计历史中的面试官发言次数，并返回最近一次提问。
func interviewerTurns(history []chat.Message) (int, string) {
	count := 0
	last := ""
	for _, msg := range history {
		if msg.IsBot {
			count++
			last = msg.Text
		}
	}
	return count, last
}

func acknowledge(label delivery.Label) string {
	switch label {
	case delivery.Concrete:
		return "That's a useful level of detail."
	case delivery.Confident:
		return "Clear ownership there, noted."
	case delivery.Hedging:
		return "Let's make that more concrete next time."
	case delivery.Vague:
		return "I'd push for a specific example on that one."
	case delivery.Rambling:
		return "Let's keep the next one tighter."
	default:
		return "Okay, thanks."
	}
}

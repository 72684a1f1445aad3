package conversation

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luoxingyu/mockview/internal/model/chat"
)

const (
	// historyWindow bounds the prior context sent with each message. The
	// window is captured before the new user message is appended.
	historyWindow = 5

	greetingText = "Hi! I'm your interview coach. Answer as you would in a real interview, and start a focused session whenever you're ready."
	fallbackText = "Interesting. Could you walk me through that in a bit more detail?"
	errorText    = "Sorry, I lost the connection for a moment. Please send that again."
)

// Responder produces the interviewer's reply for one user message plus the
// bounded prior context. An empty reply with a nil error means the endpoint
// answered but carried no usable text; the widget substitutes fallback copy.
type Responder interface {
	Reply(ctx context.Context, message string, history []chat.Message) (string, error)
}

// Recognizer is a one-shot speech capture capability: each call records a
// single utterance and returns the best final transcript. An empty transcript
// with a nil error is a natural end without speech.
type Recognizer interface {
	Capture(ctx context.Context) (string, error)
}

// Synthesizer speaks interviewer replies aloud. Playback is fire-and-forget;
// the widget never waits on it.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Widget owns the conversation state: transcript, composer, optional session
// metadata and the voice adapters. Recognizer and synthesizer may be nil when
// the host environment lacks the capability; the corresponding controls are
// then inert.
type Widget struct {
	mu         sync.Mutex
	transcript *Transcript
	session    *chat.Session

	input     string
	sending   bool
	listening bool
	speakOut  bool

	responder  Responder
	recognizer Recognizer
	synth      Synthesizer

	captureSeq    int
	captureCancel context.CancelFunc
}

// New builds a widget seeded with a greeting. recognizer and synth are
// optional capabilities and may be nil.
func New(responder Responder, recognizer Recognizer, synth Synthesizer) *Widget {
	return &Widget{
		transcript: NewTranscript(chat.NewBotMessage(greetingText)),
		responder:  responder,
		recognizer: recognizer,
		synth:      synth,
	}
}

// Transcript exposes the message log for the presentation layer.
func (w *Widget) Transcript() *Transcript {
	return w.transcript
}

// SetInput replaces the composer's pending text.
func (w *Widget) SetInput(text string) {
	w.mu.Lock()
	w.input = text
	w.mu.Unlock()
}

// Input returns the composer's pending text.
func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// Sending reports whether a send is in flight.
func (w *Widget) Sending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sending
}

// Listening reports whether a voice capture is active.
func (w *Widget) Listening() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.listening
}

// SpeechOutputEnabled reports the speak-replies toggle.
func (w *Widget) SpeechOutputEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.speakOut
}

// SetSpeechOutput toggles audible playback of interviewer replies.
func (w *Widget) SetSpeechOutput(enabled bool) {
	w.mu.Lock()
	w.speakOut = enabled
	w.mu.Unlock()
}

// Session returns a copy of the active session metadata, if any.
func (w *Widget) Session() (chat.Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return chat.Session{}, false
	}
	return *w.session, true
}

// Send runs one full exchange: it moves the pipeline from Idle to Sending,
// issues exactly one request, and settles back to Idle on either outcome.
// It reports false when the transition is gated (empty input or a send
// already in flight). No retry: the user resends manually after a failure.
func (w *Widget) Send(ctx context.Context) bool {
	w.mu.Lock()
	text := strings.TrimSpace(w.input)
	if text == "" || w.sending {
		w.mu.Unlock()
		return false
	}

	// Prior context only: the window is taken before the new user message
	// joins the transcript.
	history := w.transcript.Tail(historyWindow)
	w.input = ""
	w.sending = true
	w.mu.Unlock()

	w.transcript.Append(chat.NewUserMessage(text))

	reply, err := w.responder.Reply(ctx, text, history)

	w.mu.Lock()
	w.sending = false
	if err != nil {
		w.mu.Unlock()
		log.Printf("[widget] send failed: %v", err)
		w.transcript.Append(chat.NewBotMessage(errorText))
		return true
	}

	if strings.TrimSpace(reply) == "" {
		reply = fallbackText
	}
	if w.session != nil {
		// One user turn plus one interviewer turn.
		w.session.MessageCount += 2
	}
	speak := w.speakOut && w.synth != nil
	w.mu.Unlock()

	w.transcript.Append(chat.NewBotMessage(reply))

	if speak {
		go func() {
			if err := w.synth.Speak(context.Background(), reply); err != nil {
				log.Printf("[widget] speech synthesis failed: %v", err)
			}
		}()
	}
	return true
}

// StartSession begins a fresh practice session of a uniformly random type,
// replacing any prior session and transcript outright.
func (w *Widget) StartSession() chat.Session {
	types := chat.SessionTypes()
	picked := types[rand.IntN(len(types))]

	session := chat.Session{
		ID:        uuid.NewString(),
		Type:      picked,
		StartedAt: time.Now().UTC(),
	}

	w.mu.Lock()
	w.session = &session
	w.mu.Unlock()

	seed := chat.NewBotMessage(fmt.Sprintf(
		"Let's begin a %s practice session. Take a breath — first question: tell me a little about yourself.",
		strings.ToLower(string(picked))))
	w.transcript.Reset(seed)

	return session
}

// StartListening begins a one-shot voice capture. It is a no-op when no
// recognizer is available or a capture is already active.
func (w *Widget) StartListening() bool {
	w.mu.Lock()
	if w.recognizer == nil || w.listening {
		w.mu.Unlock()
		return false
	}
	w.listening = true
	w.captureSeq++
	seq := w.captureSeq

	ctx, cancel := context.WithCancel(context.Background())
	w.captureCancel = cancel
	w.mu.Unlock()

	go func() {
		text, err := w.recognizer.Capture(ctx)
		cancel()
		w.finishCapture(seq, text, err)
	}()
	return true
}

// StopListening cancels an active capture. Partial transcripts are discarded.
func (w *Widget) StopListening() {
	w.mu.Lock()
	if !w.listening {
		w.mu.Unlock()
		return
	}
	w.listening = false
	w.captureSeq++ // any late result is now stale
	cancel := w.captureCancel
	w.captureCancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// finishCapture applies the single result/error/end event of one capture.
// A result replaces the pending input verbatim; errors and empty ends only
// drop the listening flag.
func (w *Widget) finishCapture(seq int, text string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.captureSeq {
		return
	}
	w.listening = false
	w.captureCancel = nil

	if err != nil {
		log.Printf("[widget] voice capture ended: %v", err)
		return
	}
	if text == "" {
		return
	}
	w.input = text
}

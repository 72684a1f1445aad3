package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/luoxingyu/mockview/internal/model/chat"
)

type fakeResponder struct {
	fn    func(message string, history []chat.Message) (string, error)
	calls int
}

func (f *fakeResponder) Reply(_ context.Context, message string, history []chat.Message) (string, error) {
	f.calls++
	if f.fn == nil {
		return "noted, next question", nil
	}
	return f.fn(message, history)
}

type fakeRecognizer struct {
	results chan captureResult
}

type captureResult struct {
	text string
	err  error
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{results: make(chan captureResult, 1)}
}

func (f *fakeRecognizer) Capture(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-f.results:
		return res.text, res.err
	}
}

type fakeSynth struct {
	spoken chan string
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{spoken: make(chan string, 4)}
}

func (f *fakeSynth) Speak(_ context.Context, text string) error {
	f.spoken <- text
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewWidgetSeedsGreeting(t *testing.T) {
	w := New(&fakeResponder{}, nil, nil)

	if w.Transcript().Len() != 1 {
		t.Fatalf("expected 1 seeded message, got %d", w.Transcript().Len())
	}
	last, _ := w.Transcript().Last()
	if !last.IsBot {
		t.Fatal("expected the greeting to come from the interviewer")
	}
}

func TestSendAppendsBothTurns(t *testing.T) {
	w := New(&fakeResponder{}, nil, nil)
	w.SetInput("I rebuilt our ingestion pipeline last year.")

	if !w.Send(context.Background()) {
		t.Fatal("expected send to run")
	}

	messages := w.Transcript().Messages()
	if len(messages) != 3 {
		t.Fatalf("expected greeting + user + reply, got %d messages", len(messages))
	}
	if messages[1].IsBot || messages[1].Text != "I rebuilt our ingestion pipeline last year." {
		t.Fatalf("unexpected user turn: %+v", messages[1])
	}
	if !messages[2].IsBot {
		t.Fatal("expected interviewer reply last")
	}
	if w.Input() != "" {
		t.Fatalf("expected composer cleared, got %q", w.Input())
	}
	if w.Sending() {
		t.Fatal("expected pipeline settled after send")
	}
}

func TestSendRejectsBlankInput(t *testing.T) {
	responder := &fakeResponder{}
	w := New(responder, nil, nil)
	w.SetInput("   \t ")

	if w.Send(context.Background()) {
		t.Fatal("expected blank input to be rejected")
	}
	if responder.calls != 0 {
		t.Fatalf("expected no request, got %d", responder.calls)
	}
	if w.Transcript().Len() != 1 {
		t.Fatalf("expected transcript untouched, got %d messages", w.Transcript().Len())
	}
}

func TestSendHistoryExcludesCurrentMessage(t *testing.T) {
	var got []chat.Message
	responder := &fakeResponder{fn: func(message string, history []chat.Message) (string, error) {
		got = history
		return "ok", nil
	}}
	w := New(responder, nil, nil)

	// Build up more turns than the window holds.
	for i := 0; i < 4; i++ {
		w.SetInput("answer number " + string(rune('a'+i)))
		w.Send(context.Background())
	}

	w.SetInput("the newest answer")
	w.Send(context.Background())

	if len(got) != 5 {
		t.Fatalf("expected a 5-message window, got %d", len(got))
	}
	for _, msg := range got {
		if msg.Text == "the newest answer" {
			t.Fatal("window must not include the message being sent")
		}
	}
	// The window is the tail of the prior transcript.
	prior := w.Transcript().Messages()
	if got[len(got)-1].Text != prior[len(prior)-3].Text {
		t.Fatalf("window out of order: last window entry %q", got[len(got)-1].Text)
	}
}

func TestSendWhileInFlightIsGated(t *testing.T) {
	release := make(chan struct{})
	responder := &fakeResponder{fn: func(string, []chat.Message) (string, error) {
		<-release
		return "done", nil
	}}
	w := New(responder, nil, nil)
	w.SetInput("first")

	done := make(chan bool)
	go func() {
		done <- w.Send(context.Background())
	}()

	waitFor(t, w.Sending)

	w.SetInput("second")
	if w.Send(context.Background()) {
		t.Fatal("expected concurrent send to be gated")
	}

	close(release)
	if !<-done {
		t.Fatal("expected the first send to complete")
	}
	if responder.calls != 1 {
		t.Fatalf("expected exactly one request, got %d", responder.calls)
	}
}

func TestSendEmptyReplyUsesFallback(t *testing.T) {
	responder := &fakeResponder{fn: func(string, []chat.Message) (string, error) {
		return "   ", nil
	}}
	w := New(responder, nil, nil)
	w.StartSession()
	w.SetInput("my answer")
	w.Send(context.Background())

	last, _ := w.Transcript().Last()
	if last.Text != fallbackText {
		t.Fatalf("expected fallback copy, got %q", last.Text)
	}
	session, _ := w.Session()
	if session.MessageCount != 2 {
		t.Fatalf("fallback still counts as an exchange, got count %d", session.MessageCount)
	}
}

func TestSendFailureAppendsApologyWithoutCounting(t *testing.T) {
	responder := &fakeResponder{fn: func(string, []chat.Message) (string, error) {
		return "", errors.New("connection refused")
	}}
	w := New(responder, nil, nil)
	w.StartSession()
	w.SetInput("my answer")

	if !w.Send(context.Background()) {
		t.Fatal("expected the attempt to run")
	}

	last, _ := w.Transcript().Last()
	if last.Text != errorText {
		t.Fatalf("expected apology copy, got %q", last.Text)
	}
	session, _ := w.Session()
	if session.MessageCount != 0 {
		t.Fatalf("failed exchanges must not count, got %d", session.MessageCount)
	}
	if w.Sending() {
		t.Fatal("expected pipeline settled after failure")
	}
}

func TestStartSessionResetsStateAndPicksKnownType(t *testing.T) {
	w := New(&fakeResponder{}, nil, nil)
	for i := 0; i < 3; i++ {
		w.SetInput("warm-up")
		w.Send(context.Background())
	}

	session := w.StartSession()

	valid := false
	for _, typ := range chat.SessionTypes() {
		if session.Type == typ {
			valid = true
		}
	}
	if !valid {
		t.Fatalf("unknown session type %q", session.Type)
	}
	if session.ID == "" {
		t.Fatal("expected a session id")
	}
	if session.MessageCount != 0 {
		t.Fatalf("expected fresh count, got %d", session.MessageCount)
	}
	if w.Transcript().Len() != 1 {
		t.Fatalf("expected transcript reset to one seed, got %d", w.Transcript().Len())
	}
	seed, _ := w.Transcript().Last()
	if !strings.Contains(seed.Text, strings.ToLower(string(session.Type))) {
		t.Fatalf("seed should name the session type, got %q", seed.Text)
	}
}

func TestCaptureResultReplacesInput(t *testing.T) {
	recognizer := newFakeRecognizer()
	w := New(&fakeResponder{}, recognizer, nil)
	w.SetInput("typed draft")

	if !w.StartListening() {
		t.Fatal("expected listening to start")
	}
	if !w.Listening() {
		t.Fatal("expected listening flag set")
	}

	recognizer.results <- captureResult{text: "spoken answer"}

	waitFor(t, func() bool { return !w.Listening() })
	if w.Input() != "spoken answer" {
		t.Fatalf("expected capture to replace the draft, got %q", w.Input())
	}
}

func TestCaptureErrorLeavesInputAlone(t *testing.T) {
	recognizer := newFakeRecognizer()
	w := New(&fakeResponder{}, recognizer, nil)
	w.SetInput("typed draft")

	w.StartListening()
	recognizer.results <- captureResult{err: errors.New("mic unavailable")}

	waitFor(t, func() bool { return !w.Listening() })
	if w.Input() != "typed draft" {
		t.Fatalf("expected draft preserved, got %q", w.Input())
	}
}

func TestStopListeningDiscardsLateResult(t *testing.T) {
	recognizer := newFakeRecognizer()
	w := New(&fakeResponder{}, recognizer, nil)

	w.StartListening()
	w.StopListening()
	if w.Listening() {
		t.Fatal("expected listening cleared")
	}

	// A result arriving after cancellation must not surface.
	select {
	case recognizer.results <- captureResult{text: "too late"}:
	default:
	}
	time.Sleep(50 * time.Millisecond)
	if w.Input() != "" {
		t.Fatalf("stale capture leaked into the composer: %q", w.Input())
	}
}

func TestStartListeningWithoutRecognizerIsInert(t *testing.T) {
	w := New(&fakeResponder{}, nil, nil)
	if w.StartListening() {
		t.Fatal("expected listening to be unavailable")
	}
	if w.Listening() {
		t.Fatal("expected listening flag unset")
	}
}

func TestSpeechOutputGatesSynthesis(t *testing.T) {
	synth := newFakeSynth()
	w := New(&fakeResponder{}, nil, synth)

	w.SetInput("first answer")
	w.Send(context.Background())
	select {
	case text := <-synth.spoken:
		t.Fatalf("synthesis ran while disabled: %q", text)
	case <-time.After(50 * time.Millisecond):
	}

	w.SetSpeechOutput(true)
	w.SetInput("second answer")
	w.Send(context.Background())

	select {
	case text := <-synth.spoken:
		if text == "" {
			t.Fatal("expected the reply text to be spoken")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected synthesis after enabling speech output")
	}
}

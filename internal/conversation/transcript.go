package conversation

import (
	"sync"

	"github.com/luoxingyu/mockview/internal/model/chat"
)

// Transcript is the ordered log of exchanged messages. It only grows by
// appending or resets to exactly one seed entry; messages are never removed
// individually.
type Transcript struct {
	mu       sync.RWMutex
	messages []chat.Message

	// onAppend 通知展示层滚动到最新消息。回调在追加方的 goroutine 上执行，
	// 不得回调 Widget 的加锁方法。
	onAppend func(chat.Message)
}

// NewTranscript returns a transcript seeded with a single opening message.
func NewTranscript(seed chat.Message) *Transcript {
	return &Transcript{messages: []chat.Message{seed}}
}

// SetOnAppend registers the scroll-to-latest notification hook.
func (t *Transcript) SetOnAppend(fn func(chat.Message)) {
	t.mu.Lock()
	t.onAppend = fn
	t.mu.Unlock()
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(m chat.Message) {
	t.mu.Lock()
	t.messages = append(t.messages, m)
	notify := t.onAppend
	t.mu.Unlock()

	if notify != nil {
		notify(m)
	}
}

// Reset replaces the entire sequence with a single seed message. Used when a
// new practice session starts.
func (t *Transcript) Reset(seed chat.Message) {
	t.mu.Lock()
	t.messages = []chat.Message{seed}
	notify := t.onAppend
	t.mu.Unlock()

	if notify != nil {
		notify(seed)
	}
}

// Messages returns a copy of the full transcript.
func (t *Transcript) Messages() []chat.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	copied := make([]chat.Message, len(t.messages))
	copy(copied, t.messages)
	return copied
}

// Tail returns a copy of the most recent n messages.
func (t *Transcript) Tail(n int) []chat.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > len(t.messages) {
		n = len(t.messages)
	}
	tail := make([]chat.Message, n)
	copy(tail, t.messages[len(t.messages)-n:])
	return tail
}

// Len reports the number of messages in the transcript.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Last returns the most recent message.
func (t *Transcript) Last() (chat.Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.messages) == 0 {
		return chat.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

package speech

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	speechmodel "github.com/luoxingyu/mockview/internal/model/speech"
)

// ReplySpeaker 把面试官回复合成并播放。语速固定取自配置；音色可随
// 面试官档案切换，未设置时回退到配置默认。
// 实现 conversation.Synthesizer。
type ReplySpeaker struct {
	client *TTSClient
	player AudioPlayer
	config *speechmodel.Config

	mu    sync.Mutex
	voice string
}

// NewReplySpeaker 组合TTS客户端与播放器。
func NewReplySpeaker(config *speechmodel.Config, player AudioPlayer) *ReplySpeaker {
	return &ReplySpeaker{
		client: NewTTSClient(config),
		player: player,
		config: config,
	}
}

// SetVoice 切换当前音色，空字符串恢复配置默认。Speak可能在后台goroutine
// 上执行，因此切换加锁。
func (s *ReplySpeaker) SetVoice(voice string) {
	s.mu.Lock()
	s.voice = strings.TrimSpace(voice)
	s.mu.Unlock()
}

// currentVoice 返回生效音色：档案音色优先，其次配置默认。
func (s *ReplySpeaker) currentVoice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice != "" {
		return s.voice
	}
	return s.config.TTSVoice
}

// Speak 合成并播放一条回复。
func (s *ReplySpeaker) Speak(ctx context.Context, text string) error {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.Timeout)*time.Second)
		defer cancel()
	}

	resp, err := s.client.Synthesize(ctx, &speechmodel.TTSRequest{
		SessionID: uuid.NewString(),
		Text:      text,
		Voice:     s.currentVoice(),
		Speed:     s.config.TTSSpeed,
		Volume:    s.config.TTSVolume,
		Language:  s.config.TTSLanguage,
	})
	if err != nil {
		return err
	}
	return s.player.Play(ctx, resp.AudioData)
}

package speech

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	speechmodel "github.com/luoxingyu/mockview/internal/model/speech"
)

// UtteranceRecognizer 单次发声的语音识别适配器：录一段音，取一条最终文本。
// 实现 conversation.Recognizer。
type UtteranceRecognizer struct {
	client *ASRClient
	source AudioSource
	config *speechmodel.Config
}

// NewUtteranceRecognizer 组合ASR客户端与音频源。
func NewUtteranceRecognizer(config *speechmodel.Config, source AudioSource) *UtteranceRecognizer {
	return &UtteranceRecognizer{
		client: NewASRClient(config),
		source: source,
		config: config,
	}
}

// Capture 录制一次发声并返回最终识别文本。空文本且无错误代表自然结束。
func (r *UtteranceRecognizer) Capture(ctx context.Context) (string, error) {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.config.Timeout)*time.Second)
		defer cancel()
	}

	audio, err := r.source.Record(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to record utterance: %w", err)
	}
	defer audio.Close()

	resp, err := r.client.Transcribe(ctx, &speechmodel.ASRRequest{
		SessionID: uuid.NewString(),
		AudioData: audio,
		Format:    r.config.ASRFormat,
		Language:  r.config.ASRLanguage,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

package speech

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	speechmodel "github.com/luoxingyu/mockview/internal/model/speech"
)

// TestTranscribeHonorsDeadlineAfterSend 发送完成后识别结果迟迟不到时，
// Transcribe必须按context截止时间退出，而不是一直等服务端。
func TestTranscribeHonorsDeadlineAfterSend(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// 收下全部音频但永不应答。
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client := NewASRClient(&speechmodel.Config{
		AppID:       "test-app-id",
		AccessToken: "test-access-token",
	})
	client.url = "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Transcribe(ctx, &speechmodel.ASRRequest{
		SessionID: "test-session",
		AudioData: bytes.NewReader(make([]byte, 1024)), // 单包即发送完毕
		Format:    "wav",
	})
	if err == nil {
		t.Fatal("expected a deadline error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("transcribe ignored the deadline, took %v", elapsed)
	}
}

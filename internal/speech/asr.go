package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	speechmodel "github.com/luoxingyu/mockview/internal/model/speech"
)

// asrEndpoint 大模型一句话识别（非流式返回）的正式地址。
const asrEndpoint = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"

// ASRClient 火山引擎ASR WebSocket客户端，按单次发声、只取最终结果的方式工作。
type ASRClient struct {
	config *speechmodel.Config
	dialer *websocket.Dialer
	url    string
}

// NewASRClient 创建ASR客户端
func NewASRClient(config *speechmodel.Config) *ASRClient {
	return &ASRClient{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
		url: asrEndpoint,
	}
}

// asrWireRequest 火山引擎ASR请求结构（按文档格式）
type asrWireRequest struct {
	User struct {
		UID string `json:"uid,omitempty"`
	} `json:"user,omitempty"`
	Audio struct {
		Language string `json:"language,omitempty"`
		Format   string `json:"format"`
		Codec    string `json:"codec,omitempty"`
		Rate     int    `json:"rate,omitempty"`
		Bits     int    `json:"bits,omitempty"`
		Channel  int    `json:"channel,omitempty"`
	} `json:"audio"`
	Request struct {
		ModelName      string `json:"model_name"`
		EnableITN      bool   `json:"enable_itn,omitempty"`
		EnablePunc     bool   `json:"enable_punc,omitempty"`
		ShowUtterances bool   `json:"show_utterances,omitempty"`
		ResultType     string `json:"result_type,omitempty"`
		EndWindowSize  int    `json:"end_window_size,omitempty"`
	} `json:"request"`
}

type asrWireResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Result   struct {
		Text       string `json:"text"`
		Utterances []struct {
			Text      string `json:"text"`
			StartTime int64  `json:"start_time"`
			EndTime   int64  `json:"end_time"`
			Definite  bool   `json:"definite"`
		} `json:"utterances,omitempty"`
	} `json:"result,omitempty"`
	AudioInfo struct {
		Duration int64 `json:"duration"`
	} `json:"audio_info,omitempty"`
}

// Transcribe 通过WebSocket协议完成一次语音识别
func (c *ASRClient) Transcribe(ctx context.Context, req *speechmodel.ASRRequest) (*speechmodel.ASRResponse, error) {
	appID, token, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)

	resourceID := "volc.bigasr.sauc.duration" // 小时版
	if c.config.ConcurrentMode {
		resourceID = "volc.bigasr.sauc.concurrent" // 并发版
	}
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", req.SessionID)

	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ASR WebSocket: %w", err)
	}
	defer conn.Close()

	if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
		log.Printf("[ASR] connected with logid: %s", logid)
	}

	payloadData, err := json.Marshal(c.buildWireRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ASR request: %w", err)
	}

	compressedPayload, err := CompressPayload(payloadData, GzipCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}

	msgBytes, err := EncodeMessage(NewFullClientRequest(compressedPayload, GzipCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, msgBytes); err != nil {
		return nil, fmt.Errorf("failed to send ASR request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 并发收发：服务端提前返回错误时可以及时停止推送音频
	respCh := make(chan *speechmodel.ASRResponse, 1)
	recvErrCh := make(chan error, 1)
	go func() {
		result, err := c.receiveResults(ctx, conn, req.SessionID)
		if err != nil {
			recvErrCh <- err
			return
		}
		respCh <- result
	}()

	sendErrCh := make(chan error, 1)
	go func() {
		sendErrCh <- c.sendAudio(ctx, conn, req)
	}()

	for {
		select {
		case err := <-sendErrCh:
			if err != nil {
				cancel()
				return nil, fmt.Errorf("failed to send audio data: %w", err)
			}
		case result := <-respCh:
			return result, nil
		case err := <-recvErrCh:
			return nil, err
		case <-ctx.Done():
			// 发送完成后同样受context约束；挂起的读由deferred Close解除。
			return nil, ctx.Err()
		}
	}
}

func (c *ASRClient) buildWireRequest(req *speechmodel.ASRRequest) *asrWireRequest {
	wire := &asrWireRequest{}
	wire.User.UID = req.SessionID

	wire.Audio.Format = req.Format
	if wire.Audio.Format == "" {
		wire.Audio.Format = "wav"
	}
	wire.Audio.Language = req.Language
	if wire.Audio.Language == "" {
		wire.Audio.Language = c.config.ASRLanguage
	}
	wire.Audio.Codec = "raw" // PCM
	wire.Audio.Rate = 16000
	wire.Audio.Bits = 16
	wire.Audio.Channel = 1

	wire.Request.ModelName = "bigmodel"
	wire.Request.EnableITN = true
	wire.Request.EnablePunc = true
	wire.Request.ShowUtterances = true
	wire.Request.ResultType = "full"
	wire.Request.EndWindowSize = 800 // 强制判停800ms

	return wire
}

// sendAudio 将整段发声分包推送，节奏模拟实时音频流
func (c *ASRClient) sendAudio(ctx context.Context, conn *websocket.Conn, req *speechmodel.ASRRequest) error {
	audioData := make([]byte, 0)
	buf := make([]byte, 1024)
	for {
		n, err := req.AudioData.Read(buf)
		if n > 0 {
			audioData = append(audioData, buf[:n]...)
		}
		if err != nil {
			break
		}
	}

	if len(audioData) == 0 {
		return fmt.Errorf("no audio data to send")
	}

	const chunkSize = 6400 // 16kHz, 16bit, mono, 200ms
	sequence := int32(2)   // FullClientRequest占用序号1，音频从2开始

	for i := 0; i < len(audioData); i += chunkSize {
		end := i + chunkSize
		if end > len(audioData) {
			end = len(audioData)
		}
		chunk := audioData[i:end]
		isLast := end >= len(audioData)

		compressedChunk, err := CompressPayload(chunk, GzipCompression)
		if err != nil {
			return fmt.Errorf("failed to compress audio chunk: %w", err)
		}

		msgBytes, err := EncodeMessage(NewAudioOnlyRequest(compressedChunk, sequence, isLast, GzipCompression))
		if err != nil {
			return fmt.Errorf("failed to encode audio message: %w", err)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, msgBytes); err != nil {
			return fmt.Errorf("failed to send audio chunk: %w", err)
		}

		sequence++
		if isLast {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}

	return nil
}

func (c *ASRClient) receiveResults(ctx context.Context, conn *websocket.Conn, sessionID string) (*speechmodel.ASRResponse, error) {
	var (
		finalText string
		duration  int64
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			_, data, err := conn.ReadMessage()
			if err != nil {
				return nil, fmt.Errorf("failed to read ASR response: %w", err)
			}

			msg, err := DecodeMessage(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("failed to decode ASR message: %w", err)
			}

			switch msg.Header.MessageType {
			case ErrorMessage:
				payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
				if err != nil {
					return nil, fmt.Errorf("ASR error message decode failed: %w", err)
				}
				return nil, fmt.Errorf("ASR error: %s", string(payload))

			case FullServerResponse:
				payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
				if err != nil {
					return nil, fmt.Errorf("failed to decompress ASR payload: %w", err)
				}

				var wire asrWireResponse
				if err := json.Unmarshal(payload, &wire); err != nil {
					log.Printf("[ASR] failed to unmarshal response: %v", err)
					continue
				}

				if wire.Code != 0 && wire.Code != 20000000 {
					return nil, fmt.Errorf("ASR API error %d: %s", wire.Code, wire.Message)
				}

				text := wire.Result.Text
				if text == "" && len(wire.Result.Utterances) > 0 {
					parts := make([]string, 0, len(wire.Result.Utterances))
					for _, u := range wire.Result.Utterances {
						parts = append(parts, u.Text)
					}
					text = strings.Join(parts, " ")
				}
				if text != "" {
					finalText = text
				}
				if wire.AudioInfo.Duration > 0 {
					duration = wire.AudioInfo.Duration
				}

				if msg.IsLastPacket() || wire.Sequence < 0 {
					if finalText == "" {
						log.Printf("[ASR] empty transcript for session %s", sessionID)
					}
					return &speechmodel.ASRResponse{
						SessionID:  sessionID,
						Text:       finalText,
						Confidence: estimateConfidence(finalText),
						Duration:   duration,
						RequestID:  sessionID,
						CreatedAt:  time.Now(),
					}, nil
				}

			default:
				// 其他类型（如音频ACK）直接忽略
			}
		}
	}
}

func estimateConfidence(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return 0.95
}

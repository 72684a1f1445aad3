package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	speechmodel "github.com/luoxingyu/mockview/internal/model/speech"
)

// defaultVoice 中性音色，作为未配置TTSVoice时的兜底。
const defaultVoice = "en_female_amy_jupiter_bigtts"

// TTSClient 火山引擎TTS WebSocket客户端
type TTSClient struct {
	config *speechmodel.Config
	dialer *websocket.Dialer
}

// NewTTSClient 创建TTS客户端
func NewTTSClient(config *speechmodel.Config) *TTSClient {
	return &TTSClient{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
	}
}

type ttsWireRequest struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string             `json:"speaker"`
		Text        string             `json:"text"`
		AudioParams ttsWireAudioParams `json:"audio_params"`
		Language    string             `json:"language,omitempty"`
	} `json:"req_params"`
}

type ttsWireAudioParams struct {
	Format          string  `json:"format"`
	SampleRate      int     `json:"sample_rate"`
	EnableTimestamp bool    `json:"enable_timestamp"`
	SpeedRatio      float32 `json:"speed_ratio,omitempty"`
	VolumeRatio     float32 `json:"volume_ratio,omitempty"`
}

type ttsWireResponse struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

// Synthesize 通过WebSocket协议完成一次语音合成
func (c *TTSClient) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	const wsURL = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"

	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("TTS text is empty")
	}

	appKey, accessKey, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	encoding := strings.TrimSpace(req.Format)
	if encoding == "" || encoding == "wav" {
		encoding = "mp3"
	}

	speaker := strings.TrimSpace(req.Voice)
	if speaker == "" {
		speaker = strings.TrimSpace(c.config.TTSVoice)
	}
	if speaker == "" {
		speaker = defaultVoice
	}

	// 不同系列音色挂在不同的资源ID下，挨个尝试兼容的候选。
	var lastMismatch error
	for idx, resourceID := range resolveResourceCandidates(speaker) {
		resp, attemptErr := c.synthesizeWithResource(ctx, wsURL, req, appKey, accessKey, speaker, encoding, resourceID)
		if attemptErr == nil {
			if idx > 0 {
				log.Printf("[TTS] voice %s succeeded with fallback resource %s", speaker, resourceID)
			}
			return resp, nil
		}
		if isResourceMismatchError(attemptErr) {
			log.Printf("[TTS] voice %s resource %s mismatch: %v", speaker, resourceID, attemptErr)
			lastMismatch = attemptErr
			continue
		}
		return nil, attemptErr
	}

	if lastMismatch != nil {
		return nil, lastMismatch
	}
	return nil, fmt.Errorf("TTS synthesis failed: no compatible resource id for voice %s", speaker)
}

func (c *TTSClient) synthesizeWithResource(
	ctx context.Context,
	wsURL string,
	req *speechmodel.TTSRequest,
	appKey, accessKey, speaker, encoding, resourceID string,
) (*speechmodel.TTSResponse, error) {
	connectID := uuid.NewString()

	header := http.Header{}
	header.Set("X-Api-App-Key", appKey)
	header.Set("X-Api-Access-Key", accessKey)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", connectID)

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TTS WebSocket: %w", err)
	}
	defer conn.Close()

	if resp != nil {
		if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
			log.Printf("[TTS] connected with logid: %s", logid)
		}
	}

	wireReq, userUID := c.buildWireRequest(req, speaker, encoding)

	payloadData, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %w", err)
	}

	msgBytes, err := EncodeMessage(NewFullClientRequest(payloadData, NoCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, msgBytes); err != nil {
		return nil, fmt.Errorf("failed to send TTS request: %w", err)
	}

	var (
		audioBuffer bytes.Buffer
		reqID       string
		duration    int64
	)

	responseSessionID := strings.TrimSpace(req.SessionID)
	if responseSessionID == "" {
		responseSessionID = userUID
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			_, data, err := conn.ReadMessage()
			if err != nil {
				return nil, fmt.Errorf("failed to read TTS response: %w", err)
			}

			msg, err := DecodeMessage(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("failed to decode TTS message: %w", err)
			}

			switch msg.Header.MessageType {
			case ErrorMessage:
				payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
				if err != nil {
					return nil, fmt.Errorf("TTS error message decode failed: %w", err)
				}
				return nil, fmt.Errorf("TTS error: %s", string(payload))

			case AudioOnlyServerResponse:
				chunk, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
				if err != nil {
					return nil, fmt.Errorf("failed to decompress audio chunk: %w", err)
				}
				audioBuffer.Write(chunk)

			case FullServerResponse:
				payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
				if err != nil {
					return nil, fmt.Errorf("failed to decompress TTS response payload: %w", err)
				}

				if msg.Header.MessageFlags == WithEvent && msg.EventType != EventTypeSessionFinished {
					log.Printf("[TTS] server event: %d", msg.EventType)
				}

				var wire ttsWireResponse
				if len(payload) > 0 {
					if err := json.Unmarshal(payload, &wire); err != nil {
						log.Printf("[TTS] failed to unmarshal response payload: %v", err)
					} else {
						if wire.Code != 0 && wire.Code != 3000 {
							return nil, fmt.Errorf("TTS API error %d: %s", wire.Code, wire.Message)
						}
						if wire.ReqID != "" {
							reqID = wire.ReqID
						}
						if wire.Addition.Duration != "" {
							if parsed, err := strconv.ParseInt(wire.Addition.Duration, 10, 64); err == nil {
								duration = parsed
							}
						}
						if wire.Data != "" {
							chunk, err := base64.StdEncoding.DecodeString(wire.Data)
							if err != nil {
								return nil, fmt.Errorf("failed to decode base64 audio chunk: %w", err)
							}
							audioBuffer.Write(chunk)
						}
					}
				}

				finalizedByEvent := msg.Header.MessageFlags == WithEvent && msg.EventType == EventTypeSessionFinished
				finalizedBySequence := msg.IsLastPacket() || wire.Sequence < 0

				if finalizedByEvent || finalizedBySequence {
					if audioBuffer.Len() == 0 {
						return nil, fmt.Errorf("TTS audio is empty")
					}
					if reqID == "" {
						reqID = connectID
					}
					return &speechmodel.TTSResponse{
						SessionID: responseSessionID,
						AudioData: audioBuffer.Bytes(),
						Duration:  duration,
						Format:    encoding,
						RequestID: reqID,
						CreatedAt: time.Now(),
					}, nil
				}

			default:
				log.Printf("[TTS] unexpected message type: %d", msg.Header.MessageType)
			}
		}
	}
}

// buildWireRequest 构建符合火山引擎API格式的TTS请求
func (c *TTSClient) buildWireRequest(req *speechmodel.TTSRequest, speaker, encoding string) (*ttsWireRequest, string) {
	wire := &ttsWireRequest{}

	userUID := strings.TrimSpace(req.SessionID)
	if userUID == "" {
		userUID = uuid.NewString()
	}
	wire.User.UID = userUID

	wire.ReqParams.Speaker = speaker
	wire.ReqParams.Text = req.Text
	wire.ReqParams.AudioParams.Format = encoding
	wire.ReqParams.AudioParams.SampleRate = 24000
	wire.ReqParams.AudioParams.EnableTimestamp = true

	speed := req.Speed
	if speed <= 0 && c.config.TTSSpeed > 0 {
		speed = c.config.TTSSpeed
	}
	if speed > 0 && speed != 1.0 {
		wire.ReqParams.AudioParams.SpeedRatio = speed
	}

	volume := req.Volume
	if volume <= 0 && c.config.TTSVolume > 0 {
		volume = c.config.TTSVolume
	}
	if volume > 0 && volume != 1.0 {
		wire.ReqParams.AudioParams.VolumeRatio = volume
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = strings.TrimSpace(c.config.TTSLanguage)
	}
	if language != "" {
		wire.ReqParams.Language = language
	}

	return wire, userUID
}

func resolveResourceCandidates(voice string) []string {
	const (
		defaultResource = "volc.service_type.10029"
		megaResource    = "volc.megatts.default"
		seedResource    = "seed-tts-2.0"
	)

	voice = strings.TrimSpace(voice)
	if voice == "" {
		return []string{defaultResource, seedResource}
	}
	if strings.HasPrefix(voice, "S_") {
		return []string{megaResource}
	}

	normalized := strings.ToLower(voice)
	seedHints := []string{"bigtts", "seed", "megatts", "jupiter", "venus", "uranus", "mars", "saturn", "neptune", "mercury", "pluto"}
	for _, hint := range seedHints {
		if strings.Contains(normalized, hint) {
			return []string{seedResource, defaultResource}
		}
	}
	return []string{defaultResource, seedResource}
}

func isResourceMismatchError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "resource ID is mismatched with speaker related resource")
}

package speech

// Config 语音服务配置
type Config struct {
	// Volcengine 凭证
	AppID          string `json:"appId"`            // 火山引擎 APP ID
	AccessToken    string `json:"accessToken"`      // 火山引擎 Access Token
	APIKey         string `json:"apiKey,omitempty"` // 兼容旧配置的 API Key
	ConcurrentMode bool   `json:"concurrentMode"`   // ASR并发模式（false为小时版）

	// ASR 配置：单次采集、只取最终结果、固定语言
	ASRLanguage string `json:"asrLanguage"`
	ASRFormat   string `json:"asrFormat"`

	// TTS 配置：固定语速（略低于常速）与中性音色
	TTSVoice    string  `json:"ttsVoice"`
	TTSSpeed    float32 `json:"ttsSpeed"`
	TTSVolume   float32 `json:"ttsVolume"`
	TTSLanguage string  `json:"ttsLanguage"`

	Timeout int `json:"timeout"` // seconds
}

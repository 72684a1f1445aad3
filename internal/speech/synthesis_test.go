package speech

import (
	"testing"

	speechmodel "github.com/luoxingyu/mockview/internal/model/speech"
)

func TestReplySpeakerVoiceOverride(t *testing.T) {
	speaker := NewReplySpeaker(&speechmodel.Config{TTSVoice: "en_female_amy_jupiter_bigtts"}, nil)

	if got := speaker.currentVoice(); got != "en_female_amy_jupiter_bigtts" {
		t.Fatalf("expected config default voice, got %q", got)
	}

	speaker.SetVoice("en_male_glen_emo_v2_mars_bigtts")
	if got := speaker.currentVoice(); got != "en_male_glen_emo_v2_mars_bigtts" {
		t.Fatalf("expected profile voice, got %q", got)
	}

	// 空字符串回退到配置默认。
	speaker.SetVoice("  ")
	if got := speaker.currentVoice(); got != "en_female_amy_jupiter_bigtts" {
		t.Fatalf("expected fallback to config default, got %q", got)
	}
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/luoxingyu/mockview/internal/apiclient"
	"github.com/luoxingyu/mockview/internal/config"
	"github.com/luoxingyu/mockview/internal/conversation"
	"github.com/luoxingyu/mockview/internal/model/chat"
	"github.com/luoxingyu/mockview/internal/model/interview"
	speechmodel "github.com/luoxingyu/mockview/internal/model/speech"
	"github.com/luoxingyu/mockview/internal/speech"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	client := apiclient.New(cfg.Client.ChatBaseURL)
	recognizer, speaker := buildVoiceAdapters(cfg.Speech)

	// 保持接口nil语义：speaker缺失时不能把带类型的nil指针塞进接口。
	var synth conversation.Synthesizer
	if speaker != nil {
		synth = speaker
	}

	widget := conversation.New(client, recognizer, synth)
	widget.Transcript().SetOnAppend(printMessage)

	// Replay the greeting that seeded the transcript before the hook existed.
	if last, ok := widget.Transcript().Last(); ok {
		printMessage(last)
	}

	fmt.Println()
	fmt.Println("Commands: /new  /listen  /speak on|off  /quit")
	fmt.Println("Anything else is sent to the interviewer. An empty line sends the pending composer text.")
	fmt.Println()

	runLoop(widget, speaker, interview.NewMemoryStore(interview.Seed()))
}

// buildVoiceAdapters 按配置组装语音适配器，缺少凭证或外部命令时返回nil。
func buildVoiceAdapters(cfg config.SpeechConfig) (conversation.Recognizer, *speech.ReplySpeaker) {
	if !cfg.Enabled {
		log.Println("语音服务凭证未配置，语音控件保持禁用")
		return nil, nil
	}

	speechCfg := &speechmodel.Config{
		AppID:          cfg.AppID,
		AccessToken:    cfg.AccessToken,
		APIKey:         cfg.APIKey,
		ConcurrentMode: cfg.ConcurrentMode,
		ASRLanguage:    cfg.ASRLanguage,
		ASRFormat:      cfg.ASRFormat,
		TTSVoice:       cfg.TTSVoice,
		TTSSpeed:       cfg.TTSSpeed,
		TTSVolume:      cfg.TTSVolume,
		TTSLanguage:    cfg.TTSLanguage,
		Timeout:        cfg.Timeout,
	}

	var recognizer conversation.Recognizer
	if cfg.MicCommand != "" {
		source, err := speech.NewCommandSource(cfg.MicCommand)
		if err != nil {
			log.Printf("warning: invalid SPEECH_MIC_COMMAND: %v", err)
		} else {
			recognizer = speech.NewUtteranceRecognizer(speechCfg, source)
		}
	} else {
		log.Println("SPEECH_MIC_COMMAND 未设置，语音输入禁用")
	}

	var speaker *speech.ReplySpeaker
	if cfg.PlayerCommand != "" {
		player, err := speech.NewCommandPlayer(cfg.PlayerCommand)
		if err != nil {
			log.Printf("warning: invalid SPEECH_PLAYER_COMMAND: %v", err)
		} else {
			speaker = speech.NewReplySpeaker(speechCfg, player)
		}
	} else {
		log.Println("SPEECH_PLAYER_COMMAND 未设置，语音播报禁用")
	}

	return recognizer, speaker
}

func printMessage(msg chat.Message) {
	speaker := "you"
	if msg.IsBot {
		speaker = "coach"
	}
	fmt.Printf("%s [%s] %s\n", msg.CreatedAt.Format("15:04:05"), speaker, msg.Text)
}

func runLoop(widget *conversation.Widget, speaker *speech.ReplySpeaker, profiles interview.Store) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return

		case line == "/new":
			session := widget.StartSession()
			// 面试官档案带各自的音色，随会话类型切换。
			if speaker != nil {
				if profile, ok := profiles.FindByType(session.Type); ok {
					speaker.SetVoice(profile.VoiceID)
				}
			}
			fmt.Printf("-- session %s (%s) started --\n", session.ID[:8], session.Type)

		case line == "/listen":
			if !widget.StartListening() {
				fmt.Println("-- voice input unavailable or already listening --")
				continue
			}
			fmt.Println("-- listening (recorder decides when the utterance ends) --")
			waitForCapture(widget)

		case strings.HasPrefix(line, "/speak"):
			arg := strings.TrimSpace(strings.TrimPrefix(line, "/speak"))
			widget.SetSpeechOutput(arg == "on")
			fmt.Printf("-- speech output: %v --\n", widget.SpeechOutputEnabled())

		case line == "":
			if widget.Input() == "" {
				continue
			}
			widget.Send(context.Background())

		default:
			widget.SetInput(line)
			widget.Send(context.Background())
		}

		if session, ok := widget.Session(); ok && session.MessageCount > 0 && session.MessageCount%10 == 0 {
			fmt.Printf("-- %d messages exchanged this session --\n", session.MessageCount)
		}
	}
}

// waitForCapture 阻塞到本次录音结束，并回显识别结果。
func waitForCapture(widget *conversation.Widget) {
	for widget.Listening() {
		time.Sleep(100 * time.Millisecond)
	}
	if text := widget.Input(); text != "" {
		fmt.Printf("-- captured: %q (empty line sends it) --\n", text)
	} else {
		fmt.Println("-- no speech captured --")
	}
}

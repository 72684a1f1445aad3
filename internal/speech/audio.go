package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// AudioSource 提供一段待识别的音频。Record返回的Reader读尽即代表一次发声结束。
type AudioSource interface {
	Record(ctx context.Context) (io.ReadCloser, error)
}

// AudioPlayer 播放一段合成音频。
type AudioPlayer interface {
	Play(ctx context.Context, audio []byte) error
}

// CommandSource 通过外部录音命令采集单次发声，命令需自行结束
// （例如 "arecord -f S16_LE -r 16000 -c 1 -d 10 -t wav -"）。
type CommandSource struct {
	name string
	args []string
}

// NewCommandSource 解析录音命令行。
func NewCommandSource(command string) (*CommandSource, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("recorder command is empty")
	}
	return &CommandSource{name: fields[0], args: fields[1:]}, nil
}

// Record 启动录音命令并把stdout作为音频流返回。
func (s *CommandSource) Record(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, s.name, s.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open recorder pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start recorder %q: %w", s.name, err)
	}
	return &commandReader{ReadCloser: stdout, cmd: cmd}, nil
}

type commandReader struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (r *commandReader) Close() error {
	err := r.ReadCloser.Close()
	// 录音命令被提前关闭时的退出码无意义。
	_ = r.cmd.Wait()
	return err
}

// FileSource 从固定文件读取音频，供工具与测试使用。
type FileSource string

// Record 打开音频文件。
func (s FileSource) Record(_ context.Context) (io.ReadCloser, error) {
	file, err := os.Open(string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	return file, nil
}

// CommandPlayer 把音频通过stdin交给外部播放命令（例如 "mpg123 -q -"）。
type CommandPlayer struct {
	name string
	args []string
}

// NewCommandPlayer 解析播放命令行。
func NewCommandPlayer(command string) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("player command is empty")
	}
	return &CommandPlayer{name: fields[0], args: fields[1:]}, nil
}

// Play 同步播放整段音频。
func (p *CommandPlayer) Play(ctx context.Context, audio []byte) error {
	cmd := exec.CommandContext(ctx, p.name, p.args...)
	cmd.Stdin = bytes.NewReader(audio)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("player %q failed: %w", p.name, err)
	}
	return nil
}

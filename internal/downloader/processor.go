package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"lingq_upload/internal/deps"
	"lingq_upload/internal/fileutil"
	"lingq_upload/internal/logging"
	"lingq_upload/internal/services"
)

const m4bToolInstallHint = "install m4b-tool (macOS: brew install sandreas/tap/m4b-tool; Linux: see https://github.com/sandreas/m4b-tool; Docker: docker pull sandreas/m4b-tool:latest) and verify with m4b-tool --version"

// CommandRunner executes an external command in dir.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) error

// AudioProcessor splits a single-file audiobook into chapter MP3s using its
// CUE sheet.
type AudioProcessor struct {
	M4bToolPath     string
	OutputFormat    string
	AudioBitrate    string
	AudioChannels   int
	AudioSamplerate int

	runner CommandRunner
	logger *slog.Logger
}

// ProcessResult captures what Process did.
type ProcessResult struct {
	Processed     bool
	SplitFilesDir string
	OriginalFile  string
	CueFile       string
}

// NewAudioProcessor creates an AudioProcessor with settings tuned for
// spoken-word chapters.
func NewAudioProcessor(m4bToolPath string, logger *slog.Logger) *AudioProcessor {
	if strings.TrimSpace(m4bToolPath) == "" {
		m4bToolPath = "m4b-tool"
	}
	return &AudioProcessor{
		M4bToolPath:     m4bToolPath,
		OutputFormat:    "mp3",
		AudioBitrate:    "96k",
		AudioChannels:   1,
		AudioSamplerate: 22050,
		runner:          defaultCommandRunner,
		logger:          logging.NewComponentLogger(logger, "audio-split"),
	}
}

// WithRunner replaces the command runner, for tests.
func (p *AudioProcessor) WithRunner(runner CommandRunner) *AudioProcessor {
	if runner != nil {
		p.runner = runner
	}
	return p
}

// NeedsSplitting reports whether dir holds exactly one MP3 and at least one
// CUE sheet.
func NeedsSplitting(mp3Files, cueFiles []string) bool {
	return len(mp3Files) == 1 && len(cueFiles) > 0
}

// Process splits the audiobook in outputDir when NeedsSplitting holds. The
// chapters end up in <outputDir>/<dirname>_splitted so discovery finds them.
func (p *AudioProcessor) Process(ctx context.Context, outputDir string) (*ProcessResult, error) {
	result := &ProcessResult{}

	cueFiles, err := findFilesByExt(outputDir, ".cue")
	if err != nil {
		return nil, fmt.Errorf("find CUE files: %w", err)
	}
	mp3Files, err := findFilesByExt(outputDir, ".mp3")
	if err != nil {
		return nil, fmt.Errorf("find MP3 files: %w", err)
	}

	if !NeedsSplitting(mp3Files, cueFiles) {
		p.logger.Debug("no audio splitting needed",
			logging.Int("mp3_files", len(mp3Files)),
			logging.Int("cue_files", len(cueFiles)),
		)
		return result, nil
	}

	mp3File := mp3Files[0]
	result.OriginalFile = mp3File
	result.CueFile = cueFiles[0]

	p.logger.Info("splitting audiobook",
		logging.String("mp3", filepath.Base(mp3File)),
		logging.String("cue", filepath.Base(result.CueFile)),
	)
	if err := p.splitAudio(ctx, mp3File); err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(mp3File), filepath.Ext(mp3File))
	produced := filepath.Join(outputDir, base+SplitSuffix)
	want := filepath.Join(outputDir, filepath.Base(outputDir)+SplitSuffix)
	if produced != want {
		if err := moveSplitFiles(produced, want); err != nil {
			return nil, fmt.Errorf("move split files: %w", err)
		}
	}

	result.Processed = true
	result.SplitFilesDir = want
	p.logger.Info("audiobook split", logging.String("dir", want))
	return result, nil
}

func (p *AudioProcessor) splitAudio(ctx context.Context, mp3File string) error {
	if err := deps.Require(deps.Requirement{
		Name:        "m4b-tool",
		Command:     p.M4bToolPath,
		Description: "Required for splitting audiobooks into chapters",
	}); err != nil {
		return services.Wrap(services.ErrExternalTool, "download", "split audio", m4bToolInstallHint, err)
	}

	args := []string{
		"split",
		"--audio-format", p.OutputFormat,
		"--audio-bitrate", p.AudioBitrate,
		"--audio-channels", strconv.Itoa(p.AudioChannels),
		"--audio-samplerate", strconv.Itoa(p.AudioSamplerate),
		mp3File,
	}
	dir := filepath.Dir(mp3File)
	p.logger.Debug("running m4b-tool", logging.String("command", p.M4bToolPath+" "+strings.Join(args, " ")))

	if err := p.runner(ctx, dir, p.M4bToolPath, args...); err != nil {
		hint := fmt.Sprintf("retry manually: cd %s && %s %s", dir, p.M4bToolPath, strings.Join(args[:len(args)-1], " ")+" "+filepath.Base(mp3File))
		return services.Wrap(services.ErrExternalTool, "download", "split audio", hint, err)
	}
	return nil
}

func moveSplitFiles(from, to string) error {
	entries, err := os.ReadDir(from)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := fileutil.MoveFile(filepath.Join(from, entry.Name()), filepath.Join(to, entry.Name())); err != nil {
			return err
		}
	}
	return os.Remove(from)
}

// findFilesByExt lists files in dir with ext, matched case-insensitively.
func findFilesByExt(dir string, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	ext = strings.ToLower(ext)
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ext) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func defaultCommandRunner(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, tail(strings.TrimSpace(string(output)), 2048))
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

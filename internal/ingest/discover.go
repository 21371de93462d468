package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lingq_upload/internal/logging"
)

const (
	// DefaultMaxAudioBytes is the size above which an MP3 is treated as an
	// unsplit recording rather than a chapter.
	DefaultMaxAudioBytes int64 = 100 << 20
	// DefaultSplitSuffix names the chapter subdirectory: <dir>/<basename(dir)><suffix>.
	DefaultSplitSuffix = "_splitted"
	// DefaultMetadataFile is the sidecar file name.
	DefaultMetadataFile = "metadata.json"
	// DefaultCoverName is the cover base name searched with image extensions.
	DefaultCoverName = "cover"
)

var coverExtensions = []string{".jpg", ".jpeg", ".png"}

// Source identifies a book on disk. EPUBPath and AudioDir, when set, replace
// the corresponding search.
type Source struct {
	Dir      string
	EPUBPath string
	AudioDir string
}

// DiscoveryOptions tunes asset discovery. Zero values use the package defaults.
type DiscoveryOptions struct {
	MaxAudioBytes int64
	SplitSuffix   string
	MetadataFile  string
	CoverName     string
	Logger        *slog.Logger
}

func (o DiscoveryOptions) withDefaults() DiscoveryOptions {
	if o.MaxAudioBytes <= 0 {
		o.MaxAudioBytes = DefaultMaxAudioBytes
	}
	if o.SplitSuffix == "" {
		o.SplitSuffix = DefaultSplitSuffix
	}
	if o.MetadataFile == "" {
		o.MetadataFile = DefaultMetadataFile
	}
	if o.CoverName == "" {
		o.CoverName = DefaultCoverName
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	return o
}

// SkippedFile is an audio file excluded from the chapter set.
type SkippedFile struct {
	Path   string
	Size   int64
	Reason string
}

// Assets is the result of discovery. AudioPaths is sorted by file name and
// fixes the narrative order for the rest of the pipeline.
type Assets struct {
	Dir          string
	EPUBPath     string
	MetadataPath string
	AudioDir     string
	AudioPaths   []string
	CoverPath    string
	Skipped      []SkippedFile
	Notes        []string
}

// SplitDir returns the conventional chapter subdirectory for dir.
func SplitDir(dir, suffix string) string {
	if suffix == "" {
		suffix = DefaultSplitSuffix
	}
	clean := filepath.Clean(dir)
	return filepath.Join(clean, filepath.Base(clean)+suffix)
}

// Discover locates the assets of the book in src.
func Discover(src Source, opts DiscoveryOptions) (Assets, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	dir := strings.TrimSpace(src.Dir)
	if dir == "" {
		return Assets{}, &MissingAssetError{Asset: AssetDirectory, Detail: "no directory given"}
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Assets{}, &MissingAssetError{Asset: AssetDirectory, Path: dir}
		}
		return Assets{}, fmt.Errorf("stat source directory: %w", err)
	}
	if !info.IsDir() {
		return Assets{}, &MissingAssetError{Asset: AssetDirectory, Path: dir, Detail: "not a directory"}
	}

	assets := Assets{Dir: dir}
	splitDir := SplitDir(dir, opts.SplitSuffix)

	metadataPath, err := findMetadata(dir, src.AudioDir, opts.MetadataFile)
	if err != nil {
		return Assets{}, err
	}
	assets.MetadataPath = metadataPath

	epubPath, notes, err := findEPUB(dir, src.EPUBPath)
	if err != nil {
		return Assets{}, err
	}
	assets.EPUBPath = epubPath
	assets.Notes = append(assets.Notes, notes...)

	audioDirs := []string{dir, splitDir}
	if src.AudioDir != "" {
		audioDirs = []string{src.AudioDir}
	}
	if err := findAudio(&assets, audioDirs, opts.MaxAudioBytes); err != nil {
		return Assets{}, err
	}

	coverDirs := []string{dir, splitDir}
	if src.AudioDir != "" {
		coverDirs = append(coverDirs, src.AudioDir)
	}
	assets.CoverPath = findCover(coverDirs, opts.CoverName)

	for _, note := range assets.Notes {
		logging.WarnWithContext(logger, "discovery ambiguity", "discovery_note",
			logging.String("note", note),
			logging.String(logging.FieldErrorHint, "pass --epub to choose explicitly"),
			logging.String(logging.FieldImpact, "first candidate in sorted order is used"),
		)
	}
	for _, skipped := range assets.Skipped {
		logger.Info("audio file skipped",
			logging.String("file", filepath.Base(skipped.Path)),
			logging.Int64("size_bytes", skipped.Size),
			logging.String("reason", skipped.Reason),
		)
	}
	logger.Debug("assets discovered",
		logging.String("epub", assets.EPUBPath),
		logging.String("audio_dir", assets.AudioDir),
		logging.Int("audio_files", len(assets.AudioPaths)),
		logging.String("cover", assets.CoverPath),
	)
	return assets, nil
}

func findMetadata(dir, audioDir, name string) (string, error) {
	candidates := []string{filepath.Join(dir, name)}
	if audioDir != "" {
		candidates = append(candidates, filepath.Join(audioDir, name))
	}
	for _, candidate := range candidates {
		if isRegularFile(candidate) {
			return candidate, nil
		}
	}
	return "", &MissingAssetError{Asset: AssetMetadata, Path: dir, Detail: name + " not found"}
}

func findEPUB(dir, explicit string) (string, []string, error) {
	if explicit != "" {
		if !isRegularFile(explicit) {
			return "", nil, &MissingAssetError{Asset: AssetEPUB, Path: explicit}
		}
		return explicit, nil, nil
	}
	matches, err := listByExtension(dir, ".epub")
	if err != nil {
		return "", nil, err
	}
	if len(matches) == 0 {
		return "", nil, &MissingAssetError{Asset: AssetEPUB, Path: dir, Detail: "no .epub file"}
	}
	var notes []string
	if len(matches) > 1 {
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, filepath.Base(m))
		}
		notes = append(notes, fmt.Sprintf("found %d EPUB files (%s); using %s",
			len(matches), strings.Join(names, ", "), filepath.Base(matches[0])))
	}
	return matches[0], notes, nil
}

// findAudio takes the first directory that yields at least one usable MP3.
// Oversized files are reported as skipped wherever they are found.
func findAudio(assets *Assets, dirs []string, maxBytes int64) error {
	searched := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		searched = append(searched, dir)
		matches, err := listByExtension(dir, ".mp3")
		if err != nil {
			return err
		}
		var usable []string
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat audio file: %w", err)
			}
			if info.Size() > maxBytes {
				assets.Skipped = append(assets.Skipped, SkippedFile{
					Path:   path,
					Size:   info.Size(),
					Reason: fmt.Sprintf("larger than %d MiB, likely an unsplit recording", maxBytes>>20),
				})
				continue
			}
			usable = append(usable, path)
		}
		if len(usable) > 0 {
			assets.AudioDir = dir
			assets.AudioPaths = usable
			return nil
		}
	}
	detail := "no .mp3 files"
	if len(assets.Skipped) > 0 {
		detail = fmt.Sprintf("all %d .mp3 files exceed the size limit", len(assets.Skipped))
	}
	return &MissingAssetError{Asset: AssetAudio, Path: strings.Join(searched, ", "), Detail: detail}
}

func findCover(dirs []string, base string) string {
	seen := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		byName := make(map[string]string, len(entries))
		for _, entry := range entries {
			if !entry.IsDir() {
				byName[strings.ToLower(entry.Name())] = entry.Name()
			}
		}
		for _, ext := range coverExtensions {
			if name, ok := byName[strings.ToLower(base)+ext]; ok {
				return filepath.Join(dir, name)
			}
		}
	}
	return ""
}

// listByExtension returns regular files in dir with the extension, sorted by
// name. A missing directory yields no matches.
func listByExtension(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ListAudio returns the MP3 files directly inside dir, sorted by name.
func ListAudio(dir string) ([]string, error) {
	return listByExtension(dir, ".mp3")
}

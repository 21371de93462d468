package ingest_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"lingq_upload/internal/ingest"
	"lingq_upload/internal/testsupport"
)

const sidecarJSON = `{"title":"T","level":"Beginner 1","tags":["a","b"]}`

func newBookDir(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	testsupport.WriteText(t, filepath.Join(dir, "metadata.json"), sidecarJSON)
	testsupport.WriteEPUB(t, filepath.Join(dir, "book.epub"), testsupport.EPUBBook{
		Title:     "T",
		Documents: testsupport.SplitChapters(3),
	})
	return dir
}

func assertMissing(t *testing.T, err error, asset ingest.Asset) {
	t.Helper()
	if !errors.Is(err, ingest.ErrMissingAsset) {
		t.Fatalf("expected missing asset error, got %v", err)
	}
	var missing *ingest.MissingAssetError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingAssetError, got %T", err)
	}
	if missing.Asset != asset {
		t.Fatalf("expected missing %s, got %s (%v)", asset, missing.Asset, err)
	}
}

func TestDiscoverFindsAssetsInRoot(t *testing.T) {
	dir := newBookDir(t, "alice")
	for _, name := range []string{"ch3.mp3", "ch1.mp3", "ch2.mp3"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), 1024)
	}
	testsupport.WriteFile(t, filepath.Join(dir, "cover.jpg"), 10)

	assets, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if assets.EPUBPath != filepath.Join(dir, "book.epub") {
		t.Fatalf("unexpected epub path %q", assets.EPUBPath)
	}
	if assets.MetadataPath != filepath.Join(dir, "metadata.json") {
		t.Fatalf("unexpected metadata path %q", assets.MetadataPath)
	}
	want := []string{"ch1.mp3", "ch2.mp3", "ch3.mp3"}
	if len(assets.AudioPaths) != len(want) {
		t.Fatalf("expected %d audio files, got %v", len(want), assets.AudioPaths)
	}
	for i, path := range assets.AudioPaths {
		if filepath.Base(path) != want[i] {
			t.Fatalf("audio %d: expected %s, got %s", i, want[i], path)
		}
	}
	if assets.CoverPath != filepath.Join(dir, "cover.jpg") {
		t.Fatalf("unexpected cover %q", assets.CoverPath)
	}
	if len(assets.Notes) != 0 || len(assets.Skipped) != 0 {
		t.Fatalf("expected no notes or skipped files, got %v %v", assets.Notes, assets.Skipped)
	}
}

func TestDiscoverFallsBackToSplitDirectory(t *testing.T) {
	dir := newBookDir(t, "alice")
	split := filepath.Join(dir, "alice_splitted")
	testsupport.WriteFile(t, filepath.Join(split, "001.mp3"), 1024)
	testsupport.WriteFile(t, filepath.Join(split, "002.mp3"), 1024)
	testsupport.WriteFile(t, filepath.Join(split, "cover.png"), 10)

	assets, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if assets.AudioDir != split || len(assets.AudioPaths) != 2 {
		t.Fatalf("expected audio from %s, got %s %v", split, assets.AudioDir, assets.AudioPaths)
	}
	if assets.CoverPath != filepath.Join(split, "cover.png") {
		t.Fatalf("expected cover from split dir, got %q", assets.CoverPath)
	}
}

func TestDiscoverDoesNotMergeLocations(t *testing.T) {
	dir := newBookDir(t, "alice")
	testsupport.WriteFile(t, filepath.Join(dir, "root.mp3"), 1024)
	testsupport.WriteFile(t, filepath.Join(dir, "alice_splitted", "001.mp3"), 1024)

	assets, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(assets.AudioPaths) != 1 || filepath.Base(assets.AudioPaths[0]) != "root.mp3" {
		t.Fatalf("expected only root audio, got %v", assets.AudioPaths)
	}
}

func TestDiscoverSkipsOversizedAudio(t *testing.T) {
	dir := newBookDir(t, "alice")
	testsupport.WriteFile(t, filepath.Join(dir, "a.mp3"), 1024)
	testsupport.WriteFile(t, filepath.Join(dir, "b.mp3"), 1024)
	testsupport.WriteFile(t, filepath.Join(dir, "full.mp3"), 150<<20)

	assets, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(assets.AudioPaths) != 2 {
		t.Fatalf("expected two usable files, got %v", assets.AudioPaths)
	}
	for _, path := range assets.AudioPaths {
		if filepath.Base(path) == "full.mp3" {
			t.Fatal("oversized file must be excluded")
		}
	}
	if len(assets.Skipped) != 1 || filepath.Base(assets.Skipped[0].Path) != "full.mp3" {
		t.Fatalf("expected full.mp3 reported as skipped, got %v", assets.Skipped)
	}
	if assets.Skipped[0].Size != 150<<20 {
		t.Fatalf("unexpected skipped size %d", assets.Skipped[0].Size)
	}
}

func TestDiscoverUnsplitRootFallsThroughToSplitDirectory(t *testing.T) {
	dir := newBookDir(t, "alice")
	testsupport.WriteFile(t, filepath.Join(dir, "alice.mp3"), 2048)
	testsupport.WriteFile(t, filepath.Join(dir, "alice_splitted", "001.mp3"), 512)

	assets, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{MaxAudioBytes: 1024})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(assets.AudioPaths) != 1 || filepath.Base(assets.AudioPaths[0]) != "001.mp3" {
		t.Fatalf("expected split chapter, got %v", assets.AudioPaths)
	}
	if len(assets.Skipped) != 1 {
		t.Fatalf("expected unsplit recording to be reported, got %v", assets.Skipped)
	}
}

func TestDiscoverFailsWhenExclusionEmptiesAudio(t *testing.T) {
	dir := newBookDir(t, "alice")
	testsupport.WriteFile(t, filepath.Join(dir, "full.mp3"), 2048)

	_, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{MaxAudioBytes: 1024})
	assertMissing(t, err, ingest.AssetAudio)
	if !strings.Contains(err.Error(), "exceed the size limit") {
		t.Fatalf("expected size detail in %q", err.Error())
	}
}

func TestDiscoverMissingAssets(t *testing.T) {
	t.Run("directory", func(t *testing.T) {
		_, err := ingest.Discover(ingest.Source{Dir: filepath.Join(t.TempDir(), "nope")}, ingest.DiscoveryOptions{})
		assertMissing(t, err, ingest.AssetDirectory)
	})
	t.Run("metadata", func(t *testing.T) {
		dir := t.TempDir()
		testsupport.WriteFile(t, filepath.Join(dir, "book.epub"), 10)
		testsupport.WriteFile(t, filepath.Join(dir, "ch1.mp3"), 10)
		_, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{})
		assertMissing(t, err, ingest.AssetMetadata)
	})
	t.Run("epub", func(t *testing.T) {
		dir := t.TempDir()
		testsupport.WriteText(t, filepath.Join(dir, "metadata.json"), sidecarJSON)
		testsupport.WriteFile(t, filepath.Join(dir, "ch1.mp3"), 10)
		_, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{})
		assertMissing(t, err, ingest.AssetEPUB)
	})
	t.Run("explicit epub", func(t *testing.T) {
		dir := newBookDir(t, "alice")
		testsupport.WriteFile(t, filepath.Join(dir, "ch1.mp3"), 10)
		_, err := ingest.Discover(ingest.Source{Dir: dir, EPUBPath: filepath.Join(dir, "other.epub")}, ingest.DiscoveryOptions{})
		assertMissing(t, err, ingest.AssetEPUB)
	})
	t.Run("audio", func(t *testing.T) {
		dir := newBookDir(t, "alice")
		_, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{})
		assertMissing(t, err, ingest.AssetAudio)
	})
}

func TestDiscoverRecordsEPUBAmbiguity(t *testing.T) {
	dir := newBookDir(t, "alice")
	testsupport.WriteFile(t, filepath.Join(dir, "another.EPUB"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "ch1.mp3"), 10)

	assets, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if filepath.Base(assets.EPUBPath) != "another.EPUB" {
		t.Fatalf("expected first EPUB in sorted order, got %q", assets.EPUBPath)
	}
	if len(assets.Notes) != 1 || !strings.Contains(assets.Notes[0], "found 2 EPUB files") {
		t.Fatalf("expected ambiguity note, got %v", assets.Notes)
	}
}

func TestDiscoverExplicitAudioDirectory(t *testing.T) {
	dir := newBookDir(t, "alice")
	testsupport.WriteFile(t, filepath.Join(dir, "root.mp3"), 10)
	audioDir := filepath.Join(t.TempDir(), "chapters")
	testsupport.WriteFile(t, filepath.Join(audioDir, "01.mp3"), 10)
	testsupport.WriteFile(t, filepath.Join(audioDir, "cover.jpeg"), 10)

	assets, err := ingest.Discover(ingest.Source{Dir: dir, AudioDir: audioDir}, ingest.DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if assets.AudioDir != audioDir || len(assets.AudioPaths) != 1 {
		t.Fatalf("expected explicit audio dir to win, got %s %v", assets.AudioDir, assets.AudioPaths)
	}
	if assets.CoverPath != filepath.Join(audioDir, "cover.jpeg") {
		t.Fatalf("expected cover from explicit audio dir, got %q", assets.CoverPath)
	}
}

func TestDiscoverWithoutCoverLeavesItUnset(t *testing.T) {
	dir := newBookDir(t, "alice")
	testsupport.WriteFile(t, filepath.Join(dir, "ch1.mp3"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "poster.jpg"), 10)

	assets, err := ingest.Discover(ingest.Source{Dir: dir}, ingest.DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if assets.CoverPath != "" {
		t.Fatalf("expected no cover, got %q", assets.CoverPath)
	}
}

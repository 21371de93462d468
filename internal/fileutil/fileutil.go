package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// rename is swapped in tests to force the cross-device path.
var rename = os.Rename

// MoveFile moves a chapter file into place, creating dst's parent directory.
// When src and dst sit on different filesystems the bytes are copied to a
// partial file beside dst, checked against the source digest, then renamed
// over dst before src is removed.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	err := rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyAcross(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyAcross(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", filepath.Base(src), err)
	}

	partial := dst + ".partial"
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	want := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, want))
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written != info.Size() {
		err = fmt.Errorf("short copy of %s: %d of %d bytes", filepath.Base(src), written, info.Size())
	}
	if err == nil {
		err = verifyDigest(partial, want.Sum(nil))
	}
	if err == nil {
		err = os.Rename(partial, dst)
	}
	if err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("move %s: %w", filepath.Base(src), err)
	}
	return nil
}

// verifyDigest re-reads path from disk and compares it with sum.
func verifyDigest(path string, sum []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	got := sha256.New()
	if _, err := io.Copy(got, f); err != nil {
		return err
	}
	if !bytes.Equal(got.Sum(nil), sum) {
		return errors.New("copied bytes do not match the source")
	}
	return nil
}

package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/kbukum/whisperd/errors"
)

// DefaultChunkSize is the read size used when the caller passes a non-positive chunk size.
const DefaultChunkSize = 30 * 1024

// ErrInvalidFilename is the cause attached to uploads whose filename has no usable basename.
var ErrInvalidFilename = errors.New("upload: filename has no usable basename")

// SanitizeFilename reduces a client-supplied filename to a basename that is
// safe to join onto a directory. Both slash styles count as separators.
func SanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return "", apperrors.UploadFailed("filename is required", nil)
	}
	base := filepath.Base(filepath.Clean("/" + name))
	base = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, base)
	switch base {
	case "", ".", "..", "/":
		return "", apperrors.UploadFailed("invalid filename "+quote(name), ErrInvalidFilename)
	}
	return base, nil
}

// Receive streams src into dir/<basename(filename)> in chunkSize reads and
// returns the written path. A partially written file is removed on failure.
func Receive(ctx context.Context, src io.Reader, filename, dir string, chunkSize int) (string, error) {
	if src == nil {
		return "", apperrors.UploadFailed("no file in request", nil)
	}
	base, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	path := filepath.Join(dir, base)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", apperrors.UploadFailed("create upload file", err)
	}

	if err := copyChunks(ctx, f, src, chunkSize); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", apperrors.UploadFailed("flush upload file", err)
	}
	return path, nil
}

func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, chunkSize int) error {
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return apperrors.UploadFailed("upload interrupted", err)
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return apperrors.UploadFailed("write upload chunk", werr)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return apperrors.UploadFailed("read upload", rerr)
		}
	}
}

func quote(s string) string {
	const limit = 64
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return "\"" + s + "\""
}

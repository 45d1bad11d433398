package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bromosky/aventra/config"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

var allowedExt = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
}

var (
	ErrExtension = errors.New("Format bukti transfer harus gambar (jpg/png/jpeg/webp).")
	ErrContent   = errors.New("File bukti transfer bukan gambar yang valid.")
	ErrTooLarge  = errors.New("Ukuran bukti transfer terlalu besar.")
)

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// AllowedFile reports whether filename has one of the accepted image extensions.
func AllowedFile(filename string) bool {
	_, ok := allowedExt[Extension(filename)]
	return ok
}

// ProofStore keeps proof-of-payment images on local disk, one file per invoice.
type ProofStore struct {
	dir       string
	urlPrefix string
	maxBytes  int64
	maxWidth  int
}

func NewProofStore(cfg config.UploadConfig) (*ProofStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ProofStore{
		dir:       cfg.Dir,
		urlPrefix: strings.TrimSuffix(cfg.URLPrefix, "/"),
		maxBytes:  cfg.MaxBytes,
		maxWidth:  cfg.MaxWidth,
	}, nil
}

// Save writes the image as <invoiceID>_bukti.<ext> and returns its public URL.
// JPEG and PNG wider than the configured width are scaled down.
func (s *ProofStore) Save(ctx context.Context, invoiceID, filename string, content io.Reader) (string, error) {
	ext := Extension(filename)
	wantMIME, ok := allowedExt[ext]
	if !ok {
		return "", ErrExtension
	}

	data, err := s.read(content)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !mimetype.Detect(data).Is(wantMIME) {
		return "", ErrContent
	}

	name := fmt.Sprintf("%s_bukti.%s", invoiceID, ext)
	dst := filepath.Join(s.dir, name)

	if ext == "webp" {
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return "", ErrContent
		}
		err = os.WriteFile(dst, data, 0o644)
	} else {
		err = s.saveImage(dst, data)
	}
	if err != nil {
		return "", err
	}

	return path.Join(s.urlPrefix, name), nil
}

// Remove deletes the file behind a URL returned by Save. A file that is already gone is not an error.
func (s *ProofStore) Remove(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := path.Base(url)
	if !strings.HasPrefix(url, s.urlPrefix+"/") || name == "." || name == "/" || name == ".." {
		return fmt.Errorf("not an upload url: %q", url)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *ProofStore) read(content io.Reader) ([]byte, error) {
	if s.maxBytes <= 0 {
		return io.ReadAll(content)
	}
	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func (s *ProofStore) saveImage(dst string, data []byte) error {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return ErrContent
	}
	if s.maxWidth <= 0 || img.Bounds().Dx() <= s.maxWidth {
		return os.WriteFile(dst, data, 0o644)
	}

	resized := imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	if err := imaging.Save(resized, dst, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("save resized upload: %w", err)
	}
	return nil
}

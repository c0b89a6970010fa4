// Package media keeps uploaded images on the local disk under random keys.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/google/uuid"
)

var _ ports.MediaStore = (*LocalStore)(nil)

// keyPattern accepts only keys produced by Save / N'accepte que les clés produites par Save
var keyPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.[a-z0-9]{2,5}$`)

// ErrInvalidKey is returned for keys that Save never produces.
var ErrInvalidKey = errors.New("invalid media key")

// LocalStore stores files in one directory / Stocke les fichiers dans un répertoire
type LocalStore struct {
	root string
}

// NewLocalStore creates the directory when missing / Crée le répertoire si besoin
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save writes r under a new key with the given extension / Écrit r sous une nouvelle clé
func (s *LocalStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	key := uuid.NewString() + "." + ext
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: extension %q", ErrInvalidKey, ext)
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, key)); err != nil {
		return "", err
	}
	return key, nil
}

// Open returns the stored file / Retourne le fichier stocké
func (s *LocalStore) Open(_ context.Context, key string) (io.ReadSeekCloser, error) {
	if !keyPattern.MatchString(key) {
		return nil, ports.ErrMediaNotFound
	}
	f, err := os.Open(filepath.Join(s.root, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.ErrMediaNotFound
	}
	return f, err
}

// Delete removes a stored file / Supprime un fichier stocké
func (s *LocalStore) Delete(_ context.Context, key string) error {
	if !keyPattern.MatchString(key) {
		return ports.ErrMediaNotFound
	}
	err := os.Remove(filepath.Join(s.root, key))
	if errors.Is(err, fs.ErrNotExist) {
		return ports.ErrMediaNotFound
	}
	return err
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

package ports

import (
	"context"
	"errors"
	"io"
)

// ErrMediaNotFound is returned for unknown media keys / Retourné pour une clé média inconnue
var ErrMediaNotFound = errors.New("media not found")

// MediaStore stores uploaded files / Stocke les fichiers téléversés
type MediaStore interface {
	// Save writes content under a generated key / Écrit le contenu sous une clé générée
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	// Open returns a reader for a key / Retourne un lecteur pour une clé
	Open(ctx context.Context, key string) (io.ReadSeekCloser, error)
	Delete(ctx context.Context, key string) error
}

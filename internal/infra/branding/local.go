// Package branding stores the optional logo shown on the quiz pages and certificates.
package branding

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"forklift-training-service/internal/domain"
)

const logoName = "logo"

// LocalStore keeps the logo as a single file in a directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create branding dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) GetLogo(_ context.Context) (domain.Logo, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Logo{}, domain.ErrNoLogo
	}
	if err != nil {
		return domain.Logo{}, fmt.Errorf("read logo: %w", err)
	}
	return domain.Logo{Data: data, ContentType: http.DetectContentType(data)}, nil
}

func (s *LocalStore) PutLogo(_ context.Context, logo domain.Logo) error {
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, logo.Data, 0o644); err != nil {
		return fmt.Errorf("write logo: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return fmt.Errorf("replace logo: %w", err)
	}
	return nil
}

func (s *LocalStore) DeleteLogo(_ context.Context) error {
	err := os.Remove(s.path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove logo: %w", err)
	}
	return nil
}

func (s *LocalStore) path() string {
	return filepath.Join(s.dir, logoName)
}

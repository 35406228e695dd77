package branding

import (
	"context"
	"errors"
	"testing"

	"forklift-training-service/internal/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLocalStoreLifecycle(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.GetLogo(ctx); !errors.Is(err, domain.ErrNoLogo) {
		t.Fatalf("expected ErrNoLogo, got %v", err)
	}

	if err := store.PutLogo(ctx, domain.Logo{Data: pngHeader, ContentType: "image/png"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	logo, err := store.GetLogo(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if logo.ContentType != "image/png" || len(logo.Data) != len(pngHeader) {
		t.Fatalf("unexpected logo: %s %d bytes", logo.ContentType, len(logo.Data))
	}

	if err := store.DeleteLogo(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteLogo(ctx); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.GetLogo(ctx); !errors.Is(err, domain.ErrNoLogo) {
		t.Fatalf("expected ErrNoLogo after delete, got %v", err)
	}
}

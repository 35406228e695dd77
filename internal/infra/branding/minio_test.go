package branding

import (
	"errors"
	"testing"

	"forklift-training-service/internal/domain"
	"github.com/minio/minio-go/v7"
)

func TestMapMinioErr(t *testing.T) {
	for _, code := range []string{"NoSuchKey", "NoSuchBucket"} {
		err := mapMinioErr(minio.ErrorResponse{Code: code, StatusCode: 404})
		if !errors.Is(err, domain.ErrNoLogo) {
			t.Fatalf("%s: expected ErrNoLogo, got %v", code, err)
		}
	}

	denied := mapMinioErr(minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403})
	if errors.Is(denied, domain.ErrNoLogo) {
		t.Fatalf("access denied must not look like a missing logo")
	}
	var resp minio.ErrorResponse
	if !errors.As(denied, &resp) || resp.Code != "AccessDenied" {
		t.Fatalf("expected wrapped minio error, got %v", denied)
	}

	netErr := errors.New("connection refused")
	if err := mapMinioErr(netErr); !errors.Is(err, netErr) {
		t.Fatalf("expected transport error to be wrapped, got %v", err)
	}
}

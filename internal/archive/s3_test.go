package archive

import (
	"context"
	"testing"
	"time"

	"healthreport/internal/config"
	"healthreport/internal/model"
)

func TestObjectKey(t *testing.T) {
	r := model.Report{RunID: "abc", GeneratedAt: time.Date(2024, 1, 15, 23, 30, 0, 0, time.FixedZone("X", -2*3600))}
	tests := []struct {
		prefix string
		want   string
	}{
		{"reports/", "reports/2024/01/16/abc.txt"},
		{"", "2024/01/16/abc.txt"},
		{"a/b", "a/b/2024/01/16/abc.txt"},
	}
	for _, tc := range tests {
		if got := ObjectKey(tc.prefix, r); got != tc.want {
			t.Fatalf("ObjectKey(%q) = %q, want %q", tc.prefix, got, tc.want)
		}
	}
}

func TestNewS3(t *testing.T) {
	a, err := NewS3(config.ArchiveConfig{Endpoint: "localhost:9000", Bucket: "reports", AccessKey: "k", SecretKey: "s"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.bucket != "reports" {
		t.Fatalf("bucket: %s", a.bucket)
	}
}

func TestUploadUninitialized(t *testing.T) {
	var a *S3Archive
	if err := a.Upload(context.Background(), model.Report{}); err == nil {
		t.Fatalf("expected error from nil archive")
	}
}

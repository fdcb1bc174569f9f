package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestUploadAndDownload(t *testing.T) {
	store := NewInMemoryBlobStore()
	ctx := context.Background()

	content := "care plan for week 24"
	meta, err := store.Upload(ctx, BlobMetadata{
		FileName:    "pflegeplan.pdf",
		ContentType: "application/pdf",
	}, strings.NewReader(content))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if meta.ID == "" {
		t.Fatal("no ID assigned")
	}
	if meta.Size != int64(len(content)) {
		t.Errorf("size = %d", meta.Size)
	}
	if meta.Hash == "" {
		t.Error("hash not computed")
	}

	rc, got, err := store.Download(ctx, meta.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q", data)
	}
	if got.FileName != "pflegeplan.pdf" {
		t.Errorf("file name = %q", got.FileName)
	}
}

func TestUpload_RequiresFileName(t *testing.T) {
	store := NewInMemoryBlobStore()

	_, err := store.Upload(context.Background(), BlobMetadata{}, strings.NewReader("x"))
	if !errors.Is(err, ErrMissingFileName) {
		t.Errorf("err = %v, want ErrMissingFileName", err)
	}
}

func TestUpload_RejectsOversizedContent(t *testing.T) {
	store := NewInMemoryBlobStore()

	big := bytes.NewReader(make([]byte, MaxFileSize+1))
	_, err := store.Upload(context.Background(), BlobMetadata{FileName: "big.pdf"}, big)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestDelete(t *testing.T) {
	store := NewInMemoryBlobStore()
	ctx := context.Background()

	meta, err := store.Upload(ctx, BlobMetadata{FileName: "x.pdf"}, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := store.Delete(ctx, meta.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := store.Download(ctx, meta.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("download after delete err = %v", err)
	}
	if err := store.Delete(ctx, meta.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("double delete err = %v", err)
	}
}

func TestGetMetadata(t *testing.T) {
	store := NewInMemoryBlobStore()
	ctx := context.Background()

	meta, err := store.Upload(ctx, BlobMetadata{FileName: "report.pdf", ContentType: "application/pdf"},
		strings.NewReader("befund"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	got, err := store.GetMetadata(ctx, meta.ID)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got.ContentType != "application/pdf" || got.Size != 6 {
		t.Errorf("metadata = %+v", got)
	}

	if _, err := store.GetMetadata(ctx, "missing"); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("missing blob err = %v", err)
	}
}

package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"chatpipe/internal/models"
)

type fakeUploader struct {
	failFor map[string]bool
}

func (f *fakeUploader) uploadFile(_ context.Context, att models.Attachment) (*models.UploadedFile, error) {
	if f.failFor[att.Name] {
		return nil, fmt.Errorf("upload %s: simulated failure", att.Name)
	}
	return &models.UploadedFile{
		RemoteURI:   "files/" + att.Name,
		MimeType:    att.MimeType,
		DisplayName: att.Name,
	}, nil
}

func TestUploadBatchKeepsOrder(t *testing.T) {
	atts := []models.Attachment{
		{Name: "a.pdf", MimeType: "application/pdf"},
		{Name: "b.pdf", MimeType: "application/pdf"},
		{Name: "c.pdf", MimeType: "application/pdf"},
	}
	got := uploadBatch(context.Background(), &fakeUploader{}, atts)
	if len(got) != 3 {
		t.Fatalf("expected 3 handles, got %d", len(got))
	}
	for i, att := range atts {
		if got[i].DisplayName != att.Name {
			t.Fatalf("handle %d = %s, want %s", i, got[i].DisplayName, att.Name)
		}
	}
}

func TestUploadBatchDropsFailures(t *testing.T) {
	atts := []models.Attachment{
		{Name: "a.pdf", MimeType: "application/pdf"},
		{Name: "b.pdf", MimeType: "application/pdf"},
		{Name: "c.pdf", MimeType: "application/pdf"},
	}
	up := &fakeUploader{failFor: map[string]bool{"b.pdf": true}}
	got := uploadBatch(context.Background(), up, atts)
	if len(got) != 2 {
		t.Fatalf("expected 2 handles after one failure, got %d", len(got))
	}
	if got[0].DisplayName != "a.pdf" || got[1].DisplayName != "c.pdf" {
		t.Fatalf("order not preserved: %+v", got)
	}
}

func TestUploadBatchEmpty(t *testing.T) {
	if got := uploadBatch(context.Background(), &fakeUploader{}, nil); got != nil {
		t.Fatalf("expected nil for empty batch, got %+v", got)
	}
}

func TestContentPartsPlainText(t *testing.T) {
	parts, err := contentParts(models.TextContent("xin chào"))
	if err != nil {
		t.Fatalf("contentParts: %v", err)
	}
	if len(parts) != 1 || parts[0].Text != "xin chào" {
		t.Fatalf("unexpected parts: %+v", parts)
	}
}

func TestContentPartsMixed(t *testing.T) {
	img := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	parts, err := contentParts(models.PartsContent(
		models.Part{Kind: models.PartKindText, Text: "ảnh này là gì"},
		models.Part{Kind: models.PartKindImage, Data: img, MimeType: "image/png"},
		models.Part{Kind: models.PartKindFile, URI: "files/abc", MimeType: "application/pdf"},
	))
	if err != nil {
		t.Fatalf("contentParts: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/png" {
		t.Fatalf("image part not inlined: %+v", parts[1])
	}
	if parts[2].FileData == nil || parts[2].FileData.FileURI != "files/abc" {
		t.Fatalf("file part missing uri: %+v", parts[2])
	}
}

func TestContentPartsBadImage(t *testing.T) {
	_, err := contentParts(models.PartsContent(
		models.Part{Kind: models.PartKindImage, Data: "not-base64!!!", MimeType: "image/png"},
	))
	if err == nil {
		t.Fatal("expected error for invalid base64 image data")
	}
}

func TestNewGeminiAnswerRequiresKey(t *testing.T) {
	_, err := NewGeminiAnswer(context.Background(), "", "")
	perr, ok := err.(*Error)
	if !ok || perr.Kind != KindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

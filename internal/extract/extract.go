// Package extract implements the file-content extraction collaborator: it
// turns a raw attachment into tagged content so the pipeline can decide
// whether to inline it, upload it, or fold its text into the prompt.
package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/gabriel-vasile/mimetype"

	"chatpipe/internal/models"
)

type Kind string

const (
	KindText  Kind = "text"
	KindTable Kind = "table"
	KindImage Kind = "image"
	KindError Kind = "error"
)

// Result is the tagged extraction outcome plus the sniffed MIME type.
type Result struct {
	Kind     Kind
	Text     string
	MimeType string
	Err      string
}

type Extractor interface {
	Extract(ctx context.Context, att models.Attachment) (*Result, error)
}

// FileExtractor reads attachment bytes through the extension-dispatching
// document parser, falling back to plain text.
type FileExtractor struct {
	loader *file.FileLoader
}

func NewFileExtractor(ctx context.Context) (*FileExtractor, error) {
	extParser, err := parser.NewExtParser(ctx, &parser.ExtParserConfig{
		FallbackParser: parser.TextParser{},
	})
	if err != nil {
		return nil, fmt.Errorf("init ext parser: %w", err)
	}
	loader, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
		UseNameAsID: true,
		Parser:      extParser,
	})
	if err != nil {
		return nil, fmt.Errorf("init file loader: %w", err)
	}
	return &FileExtractor{loader: loader}, nil
}

func (e *FileExtractor) Extract(ctx context.Context, att models.Attachment) (*Result, error) {
	if att.Data == "" {
		return &Result{Kind: KindError, Err: "attachment has no inline payload"}, nil
	}
	data, err := base64.StdEncoding.DecodeString(att.Data)
	if err != nil {
		return &Result{Kind: KindError, Err: fmt.Sprintf("decode payload: %v", err)}, nil
	}

	mime := strings.ToLower(strings.TrimSpace(att.MimeType))
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return &Result{Kind: KindImage, MimeType: mime}, nil
	case att.NeedsUpload():
		return &Result{Kind: KindError, MimeType: mime, Err: "document type requires provider upload"}, nil
	}

	text, err := e.loadText(ctx, att.Name, data)
	if err != nil {
		return &Result{Kind: KindError, MimeType: mime, Err: err.Error()}, nil
	}
	if text == "" {
		return &Result{Kind: KindError, MimeType: mime, Err: "file has no readable text content"}, nil
	}
	kind := KindText
	if isTabular(mime, att.Name) {
		kind = KindTable
	}
	return &Result{Kind: kind, Text: text, MimeType: mime}, nil
}

// loadText round-trips through a temp file because the loader addresses
// documents by URI.
func (e *FileExtractor) loadText(ctx context.Context, name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".txt"
	}
	tmp, err := os.CreateTemp("", "chatpipe-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	docs, err := e.loader.Load(ctx, document.Source{URI: tmp.Name()})
	if err != nil {
		return "", fmt.Errorf("load file: %w", err)
	}
	var b strings.Builder
	for _, doc := range docs {
		content := strings.TrimSpace(doc.Content)
		if content == "" {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}

func isTabular(mime, name string) bool {
	if strings.Contains(mime, "csv") || strings.Contains(mime, "tab-separated") {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv":
		return true
	}
	return false
}

package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"chatpipe/internal/models"
)

const (
	defaultAnswerModel = "gemini-2.0-flash"
	attachmentHTTPGet  = 30 * time.Second
)

// Usage carries the answer provider's token accounting.
type Usage struct {
	PromptTokens int32 `json:"prompt_tokens"`
	OutputTokens int32 `json:"output_tokens"`
	TotalTokens  int32 `json:"total_tokens"`
}

// AnswerResult is the normalized output of one generation call.
type AnswerResult struct {
	Text         string                `json:"text"`
	FinishReason string                `json:"finish_reason,omitempty"`
	Truncated    bool                  `json:"truncated,omitempty"`
	Usage        Usage                 `json:"usage"`
	Uploaded     []models.UploadedFile `json:"uploaded,omitempty"`
}

// AnswerProvider generates the final answer from the full conversation plus
// attachments. The last message must already carry the composed prompt.
type AnswerProvider interface {
	Answer(ctx context.Context, modelName string, messages []models.Message, attachments []models.Attachment) (*AnswerResult, error)
}

// fileUploader is the side-channel that materializes upload-class
// attachments before the model can reference them.
type fileUploader interface {
	uploadFile(ctx context.Context, att models.Attachment) (*models.UploadedFile, error)
}

type geminiAnswerer struct {
	client       *genai.Client
	defaultModel string
	httpClient   *http.Client
}

// NewGeminiAnswer builds the answer adapter. Unlike rewrite, a missing key
// here is fatal configuration: there is no pipeline without an answer model.
func NewGeminiAnswer(ctx context.Context, apiKey, modelName string) (AnswerProvider, error) {
	if apiKey == "" {
		return nil, NewError(KindConfiguration, "gemini api key is not configured")
	}
	if modelName == "" {
		modelName = defaultAnswerModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, WrapError(KindConfiguration, "init gemini client", err)
	}
	return &geminiAnswerer{
		client:       client,
		defaultModel: modelName,
		httpClient:   &http.Client{Timeout: attachmentHTTPGet},
	}, nil
}

func (g *geminiAnswerer) Answer(ctx context.Context, modelName string, messages []models.Message, attachments []models.Attachment) (*AnswerResult, error) {
	if len(messages) == 0 {
		return nil, NewError(KindValidation, "conversation is empty")
	}
	if modelName == "" {
		modelName = g.defaultModel
	}

	var toUpload, toInline []models.Attachment
	for _, att := range attachments {
		switch {
		case att.NeedsUpload():
			toUpload = append(toUpload, att)
		case att.IsImage():
			toInline = append(toInline, att)
		}
	}
	uploaded := uploadBatch(ctx, g, toUpload)

	contents := make([]*genai.Content, 0, len(messages))
	for i, msg := range messages {
		// canonical assistant role maps to the provider role name only here
		role := string(genai.RoleUser)
		if msg.Role == models.RoleAssistant {
			role = string(genai.RoleModel)
		}
		parts, err := contentParts(msg.Content)
		if err != nil {
			return nil, WrapError(KindValidation, "bad message content", err)
		}
		if i == len(messages)-1 {
			parts = append(parts, attachmentParts(uploaded, toInline)...)
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelName, contents, nil)
	if err != nil {
		return nil, ClassifyUpstream(err, "answer provider")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, NewError(KindUpstream, "answer provider returned empty response")
	}

	result := &AnswerResult{Text: text, Uploaded: uploaded}
	if len(resp.Candidates) > 0 {
		fr := resp.Candidates[0].FinishReason
		result.FinishReason = string(fr)
		// truncated output is returned as-is, no continuation attempt
		result.Truncated = fr == genai.FinishReasonMaxTokens
	}
	if resp.UsageMetadata != nil {
		result.Usage = Usage{
			PromptTokens: resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		}
	}
	return result, nil
}

func contentParts(c models.Content) ([]*genai.Part, error) {
	if c.Parts == nil {
		return []*genai.Part{genai.NewPartFromText(c.Text)}, nil
	}
	parts := make([]*genai.Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		switch p.Kind {
		case models.PartKindText:
			parts = append(parts, genai.NewPartFromText(p.Text))
		case models.PartKindImage:
			data, err := base64.StdEncoding.DecodeString(p.Data)
			if err != nil {
				return nil, fmt.Errorf("decode inline image: %w", err)
			}
			parts = append(parts, genai.NewPartFromBytes(data, p.MimeType))
		case models.PartKindFile:
			parts = append(parts, genai.NewPartFromURI(p.URI, p.MimeType))
		default:
			return nil, fmt.Errorf("unknown part kind %q", p.Kind)
		}
	}
	return parts, nil
}

func attachmentParts(uploaded []models.UploadedFile, inline []models.Attachment) []*genai.Part {
	parts := make([]*genai.Part, 0, len(uploaded)+len(inline))
	for _, f := range uploaded {
		parts = append(parts, genai.NewPartFromURI(f.RemoteURI, f.MimeType))
	}
	for _, att := range inline {
		data, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			log.Printf("attachment %s dropped: decode image: %v", att.Name, err)
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(data, att.MimeType))
	}
	return parts
}

func (g *geminiAnswerer) uploadFile(ctx context.Context, att models.Attachment) (*models.UploadedFile, error) {
	reader, err := g.attachmentReader(ctx, att)
	if err != nil {
		return nil, err
	}
	file, err := g.client.Files.Upload(ctx, reader, &genai.UploadFileConfig{
		MIMEType:    att.MimeType,
		DisplayName: att.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", att.Name, err)
	}
	return &models.UploadedFile{
		RemoteURI:   file.URI,
		MimeType:    file.MIMEType,
		DisplayName: att.Name,
	}, nil
}

func (g *geminiAnswerer) attachmentReader(ctx context.Context, att models.Attachment) (io.Reader, error) {
	if att.Data != "" {
		data, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", att.Name, err)
		}
		return strings.NewReader(string(data)), nil
	}
	if att.URL == "" {
		return nil, fmt.Errorf("attachment %s has no payload", att.Name)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", att.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", att.Name, resp.Status)
	}
	const maxAttachmentBytes = 20 << 20
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", att.Name, err)
	}
	return strings.NewReader(string(data)), nil
}

// uploadBatch dispatches the uploads concurrently and waits for the whole
// batch. A single failed upload drops that attachment only.
func uploadBatch(ctx context.Context, up fileUploader, attachments []models.Attachment) []models.UploadedFile {
	if len(attachments) == 0 {
		return nil
	}
	type outcome struct {
		idx    int
		handle *models.UploadedFile
		err    error
	}
	ch := make(chan outcome, len(attachments))
	for i, att := range attachments {
		go func(idx int, att models.Attachment) {
			handle, err := up.uploadFile(ctx, att)
			ch <- outcome{idx: idx, handle: handle, err: err}
		}(i, att)
	}
	handles := make([]*models.UploadedFile, len(attachments))
	for range attachments {
		out := <-ch
		if out.err != nil {
			log.Printf("attachment %s dropped: %v", attachments[out.idx].Name, out.err)
			continue
		}
		handles[out.idx] = out.handle
	}
	// keep the caller's attachment order
	uploaded := make([]models.UploadedFile, 0, len(attachments))
	for _, h := range handles {
		if h != nil {
			uploaded = append(uploaded, *h)
		}
	}
	return uploaded
}

package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"chatpipe/internal/extract"
	"chatpipe/internal/models"
	"chatpipe/internal/provider"
	"chatpipe/internal/textutil"
)

// Request is the pipeline input: conversation (oldest first, last message is
// the one being answered), optional model override, workflow id, and
// attachments.
type Request struct {
	Messages []models.Message    `json:"messages"`
	Model    string              `json:"model"`
	Workflow Workflow            `json:"workflow"`
	Files    []models.Attachment `json:"files"`
}

// Response is the success envelope; exactly one of Response / *provider.Error
// is authoritative for a request.
type Response struct {
	AnswerText string               `json:"answer_text"`
	StageTrace []models.StageResult `json:"stage_trace"`
	Search     *models.SearchData   `json:"search_results,omitempty"`
	Workflow   Workflow             `json:"workflow"`
	Usage      provider.Usage       `json:"usage"`
}

// Executor runs the resolved stage sequence against the provider adapters.
// One request is one sequential run; nothing here is shared mutable state.
type Executor struct {
	searchers     map[string]provider.SearchProvider
	rewriter      provider.RewriteProvider
	answerer      provider.AnswerProvider
	extractor     extract.Extractor
	allowedModels map[string]struct{}
}

func NewExecutor(searchers map[string]provider.SearchProvider, rewriter provider.RewriteProvider, answerer provider.AnswerProvider, extractor extract.Extractor, allowedModels []string) *Executor {
	var allowed map[string]struct{}
	if len(allowedModels) > 0 {
		allowed = make(map[string]struct{}, len(allowedModels))
		for _, m := range allowedModels {
			allowed[m] = struct{}{}
		}
	}
	return &Executor{
		searchers:     searchers,
		rewriter:      rewriter,
		answerer:      answerer,
		extractor:     extractor,
		allowedModels: allowed,
	}
}

// Run executes the workflow's stages in order, feeding each stage's output
// into the next stage's input. A SEARCH or ANSWER failure halts the run;
// REWRITE failures degrade to passthrough.
func (e *Executor) Run(ctx context.Context, req *Request) (*Response, error) {
	stages, err := StagesFor(req.Workflow)
	if err != nil {
		return nil, err
	}
	if err := e.validateModel(req.Model); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, provider.NewError(provider.KindValidation, "messages are required")
	}
	question := strings.TrimSpace(req.Messages[len(req.Messages)-1].Content.PlainText())
	if question == "" {
		return nil, provider.NewError(provider.KindValidation, "question must not be empty")
	}

	contextText := conversationContext(req.Messages)
	prompt := question
	searchText := ""
	var searchData *models.SearchData
	var usage provider.Usage
	var uploaded []models.UploadedFile
	answerText := ""
	trace := make([]models.StageResult, 0, len(stages))

	for _, stage := range stages {
		switch stage {
		case models.StageSearch:
			backend := req.Workflow.SearchBackend()
			searcher, ok := e.searchers[backend]
			if !ok || searcher == nil {
				return nil, provider.NewError(provider.KindConfiguration, fmt.Sprintf("search backend %q is not configured", backend))
			}
			data, err := searcher.Search(ctx, question)
			if err != nil {
				// search grounds the final answer; its failure is fatal
				return nil, asProviderError(err)
			}
			if data == nil {
				return nil, provider.NewError(provider.KindUpstream, fmt.Sprintf("search backend %q returned no data", backend))
			}
			searchData = data
			searchText = searchSection(data)
			prompt = groundedPrompt(question, searchText)
			trace = append(trace, models.StageResult{
				Stage:        models.StageSearch,
				InputPreview: preview(question),
				Output:       data.Summary,
				Meta:         map[string]any{"result_count": len(data.Results)},
			})

		case models.StageRewrite:
			input := rewriteInput(contextText, searchText, question)
			out, err := e.rewriter.Rewrite(ctx, input)
			if err != nil || strings.TrimSpace(out) == "" {
				if err != nil {
					log.Printf("rewrite stage degraded to passthrough: %v", err)
				}
				out = input
			}
			prompt = out
			trace = append(trace, models.StageResult{
				Stage:        models.StageRewrite,
				InputPreview: preview(input),
				Output:       out,
				Meta:         map[string]any{"prompt_length": len([]rune(out))},
			})

		case models.StageAnswer:
			finalPrompt := e.composeAnswerPrompt(ctx, prompt, req.Files)
			messages := replaceLastContent(req.Messages, finalPrompt)
			result, err := e.answerer.Answer(ctx, req.Model, messages, req.Files)
			if err != nil {
				return nil, asProviderError(err)
			}
			answerText = textutil.StripReferenceSection(textutil.Sanitize(result.Text))
			usage = result.Usage
			uploaded = result.Uploaded
			meta := map[string]any{"total_tokens": result.Usage.TotalTokens}
			if result.FinishReason != "" {
				meta["finish_reason"] = result.FinishReason
			}
			if result.Truncated {
				meta["truncated"] = true
			}
			trace = append(trace, models.StageResult{
				Stage:        models.StageAnswer,
				InputPreview: preview(finalPrompt),
				Output:       answerText,
				Meta:         meta,
			})
		}
	}

	if searchData != nil {
		block := textutil.FormatReferences(citations(searchData, uploaded))
		answerText = answerText + "\n\n" + block
	}

	return &Response{
		AnswerText: answerText,
		StageTrace: trace,
		Search:     searchData,
		Workflow:   req.Workflow,
		Usage:      usage,
	}, nil
}

func (e *Executor) validateModel(model string) error {
	if model == "" || e.allowedModels == nil {
		return nil
	}
	if _, ok := e.allowedModels[model]; !ok {
		return provider.NewError(provider.KindValidation, fmt.Sprintf("unsupported model %q", model))
	}
	return nil
}

// composeAnswerPrompt folds extracted text of non-image, non-upload
// attachments into the prompt. Per-attachment failures drop the attachment.
func (e *Executor) composeAnswerPrompt(ctx context.Context, prompt string, files []models.Attachment) string {
	if e.extractor == nil {
		return prompt
	}
	sections := []string{prompt}
	for _, att := range files {
		if att.IsImage() || att.NeedsUpload() {
			continue
		}
		res, err := e.extractor.Extract(ctx, att)
		if err != nil {
			log.Printf("attachment %s dropped: %v", att.Name, err)
			continue
		}
		switch res.Kind {
		case extract.KindText, extract.KindTable:
			sections = append(sections, attachmentSection(att.Name, res.Text))
		case extract.KindError:
			log.Printf("attachment %s dropped: %s", att.Name, res.Err)
		}
	}
	return strings.Join(sections, "\n\n")
}

// replaceLastContent swaps the final message's content for the composed
// prompt, leaving earlier turns untouched.
func replaceLastContent(messages []models.Message, prompt string) []models.Message {
	out := make([]models.Message, len(messages))
	copy(out, messages)
	out[len(out)-1].Content = models.TextContent(prompt)
	return out
}

func citations(data *models.SearchData, uploaded []models.UploadedFile) []textutil.Citation {
	cits := make([]textutil.Citation, 0, len(data.Results)+len(uploaded))
	for _, r := range data.Results {
		cits = append(cits, textutil.Citation{Title: r.Title, Ref: r.URL})
	}
	for _, f := range uploaded {
		cits = append(cits, textutil.Citation{Title: f.DisplayName, Ref: f.RemoteURI})
	}
	return cits
}

func asProviderError(err error) *provider.Error {
	if perr, ok := err.(*provider.Error); ok {
		return perr
	}
	return provider.WrapError(provider.KindUpstream, "pipeline stage failed", err)
}

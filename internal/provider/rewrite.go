package provider

import (
	"context"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// rewriteInstruction steers the rewrite model toward a single, complete
// instruction the answer model can act on directly.
const rewriteInstruction = "Bạn là trợ lý tối ưu hóa câu lệnh. Hãy viết lại nội dung người dùng cung cấp " +
	"thành một câu lệnh duy nhất, rõ ràng và đầy đủ ngữ cảnh cho một mô hình AI khác trả lời. " +
	"Giữ nguyên ngôn ngữ gốc của câu hỏi. Chỉ trả về câu lệnh đã viết lại, không giải thích."

// RewriteProvider turns a raw question (plus composed context) into a
// refined instruction. Rewriting is an optimization: implementations must
// return the input unchanged instead of failing.
type RewriteProvider interface {
	Rewrite(ctx context.Context, input string) (string, error)
}

type openaiRewriter struct {
	chatModel model.BaseChatModel
}

// NewOpenAIRewrite builds the rewrite adapter on the OpenAI chat model. A
// construction failure (missing key, bad base URL) yields an adapter that
// passes input through, not an error: the pipeline must keep working.
func NewOpenAIRewrite(ctx context.Context, apiKey, baseURL, modelName string) RewriteProvider {
	if apiKey == "" {
		log.Printf("rewrite disabled: openai api key is not configured")
		return &openaiRewriter{}
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		Model:   modelName,
		APIKey:  apiKey,
	})
	if err != nil {
		log.Printf("rewrite disabled: init openai chat model: %v", err)
		return &openaiRewriter{}
	}
	return &openaiRewriter{chatModel: chatModel}
}

func (r *openaiRewriter) Rewrite(ctx context.Context, input string) (string, error) {
	if r.chatModel == nil {
		return input, nil
	}
	out, err := r.chatModel.Generate(ctx, []*schema.Message{
		{Role: schema.System, Content: rewriteInstruction},
		{Role: schema.User, Content: input},
	})
	if err != nil {
		log.Printf("rewrite degraded to passthrough: %v", err)
		return input, nil
	}
	rewritten := strings.TrimSpace(out.Content)
	if rewritten == "" {
		return input, nil
	}
	return rewritten, nil
}

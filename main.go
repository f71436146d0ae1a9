package main

import (
	"context"
	"log"
	"os"
	"time"

	"chatpipe/internal/api"
	"chatpipe/internal/config"
	"chatpipe/internal/extract"
	"chatpipe/internal/pipeline"
	"chatpipe/internal/provider"
	"chatpipe/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CHATPIPE_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	tavily := cfg.Provider("tavily")
	perplexity := cfg.Provider("perplexity")
	searchers := map[string]provider.SearchProvider{
		pipeline.BackendTavily:     provider.NewTavilySearch(tavily.APIKey, tavily.BaseURL),
		pipeline.BackendPerplexity: provider.NewPerplexitySearch(perplexity.APIKey, perplexity.BaseURL, perplexity.Model),
	}

	openaiCfg := cfg.Provider("openai")
	rewriter := provider.NewOpenAIRewrite(ctx, openaiCfg.APIKey, openaiCfg.BaseURL, openaiCfg.Model)

	geminiCfg := cfg.Provider("gemini")
	answerer, err := provider.NewGeminiAnswer(ctx, geminiCfg.APIKey, geminiCfg.Model)
	if err != nil {
		log.Fatalf("init answer provider: %v", err)
	}

	var extractor extract.Extractor
	if fe, err := extract.NewFileExtractor(ctx); err != nil {
		log.Printf("attachment text extraction disabled: %v", err)
	} else {
		extractor = fe
	}

	executor := pipeline.NewExecutor(searchers, rewriter, answerer, extractor, cfg.BasicConfig.AllowedModels)
	history := store.NewMemoryStore(cfg.BasicConfig.HistoryLimit)

	timeout := time.Duration(cfg.BasicConfig.RequestTimeout) * time.Second
	handlers := api.NewHandler(executor, history, timeout)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":8090"
	}

	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

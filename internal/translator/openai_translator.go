package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

// ChatCompleter is the slice of the chat model surface the translator needs.
type ChatCompleter interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// OpenAITranslator OpenAI 翻译器
// Talks to an OpenAI-compatible chat completion endpoint. A nil cache
// disables caching. Individual failures degrade to the original text so a
// single bad item never aborts a document run.
type OpenAITranslator struct {
	chatModel  ChatCompleter
	cache      *Cache
	sourceLang string
	targetLang string
	sourceName string
	targetName string
	modelName  string
}

// OpenAIConfig holds configuration options for the OpenAI translator.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	SourceLang string
	TargetLang string
	Cache      *Cache
}

// NewOpenAITranslator creates an OpenAITranslator backed by a real chat model.
func NewOpenAITranslator(ctx context.Context, cfg OpenAIConfig) (*OpenAITranslator, error) {
	if cfg.APIKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "OpenAI API key is required", nil)
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	chatModelConfig := &openai.ChatModelConfig{
		Model:  modelName,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		chatModelConfig.BaseURL = cfg.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, chatModelConfig)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create chat model", err)
	}

	return newWithModel(chatModel, modelName, cfg)
}

// NewOpenAITranslatorWithModel creates an OpenAITranslator over an existing
// chat model.
func NewOpenAITranslatorWithModel(chatModel ChatCompleter, cfg OpenAIConfig) (*OpenAITranslator, error) {
	return newWithModel(chatModel, cfg.Model, cfg)
}

func newWithModel(chatModel ChatCompleter, modelName string, cfg OpenAIConfig) (*OpenAITranslator, error) {
	sourceLang := cfg.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}
	targetLang := cfg.TargetLang
	if targetLang == "" {
		targetLang = "es"
	}

	sourceName, ok := languageName(sourceLang)
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown source language", sourceLang, nil)
	}
	targetName, ok := languageName(targetLang)
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown target language", targetLang, nil)
	}

	return &OpenAITranslator{
		chatModel:  chatModel,
		cache:      cfg.Cache,
		sourceLang: sourceLang,
		targetLang: targetLang,
		sourceName: sourceName,
		targetName: targetName,
		modelName:  modelName,
	}, nil
}

// Name returns the backend name.
func (t *OpenAITranslator) Name() string {
	return "openai"
}

// SupportsLanguagePair reports whether both codes parse as languages.
func (t *OpenAITranslator) SupportsLanguagePair(source, target string) bool {
	_, okSource := languageName(source)
	_, okTarget := languageName(target)
	return okSource && okTarget
}

// Translate translates a single text, consulting the cache first.
func (t *OpenAITranslator) Translate(ctx context.Context, text string) (string, error) {
	if isBlank(text) {
		return text, nil
	}

	if t.cache != nil {
		if cached, ok := t.cache.Get(t.sourceLang, t.targetLang, text); ok {
			return cached, nil
		}
	}

	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Only return the translation, no quotes or explanations.\n\n%s",
		t.sourceName, t.targetName, text)

	resp, err := t.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage("You are a professional translator for academic documents. Preserve placeholder tokens such as __FORMULA0__ exactly as they appear."),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", types.NewAppError(types.ErrTranslateFailed, "chat completion failed", err)
	}

	translation := stripWrappingQuotes(strings.TrimSpace(resp.Content))
	if translation == "" {
		return "", types.NewAppError(types.ErrTranslateFailed, "empty translation response", nil)
	}

	if t.cache != nil {
		t.cache.Put(t.sourceLang, t.targetLang, text, translation)
	}
	return translation, nil
}

// TranslateBatch translates texts sequentially, preserving order. Failed
// items keep their original text; the first error is logged per item but
// does not stop the batch. Context cancellation does stop the batch.
func (t *OpenAITranslator) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	results := make([]string, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, types.NewAppError(types.ErrTranslateFailed, "translation cancelled", err)
		}

		translated, err := t.Translate(ctx, text)
		if err != nil {
			logger.Warn("translation failed, keeping original text",
				logger.Int("index", i), logger.Err(err))
			results[i] = text
			continue
		}
		results[i] = translated
	}
	return results, nil
}

// languageName resolves a BCP 47 code to its English display name.
func languageName(code string) (string, bool) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return "", false
	}
	return name, true
}

// stripWrappingQuotes removes one layer of matching quotes the model
// sometimes wraps short answers in.
func stripWrappingQuotes(text string) string {
	if len(text) < 2 {
		return text
	}
	pairs := [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}, {"‘", "’"}}
	for _, p := range pairs {
		if strings.HasPrefix(text, p[0]) && strings.HasSuffix(text, p[1]) {
			return strings.TrimSpace(text[len(p[0]) : len(text)-len(p[1])])
		}
	}
	return text
}

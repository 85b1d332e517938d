package translator

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

const (
	// DefaultMarianCommand is the Marian NMT decoder binary.
	DefaultMarianCommand = "marian-decoder"
	// marianMaxChunk is the longest input the decoder handles well; longer
	// texts are split at sentence boundaries.
	marianMaxChunk = 400
)

// MarianTranslator MarianMT 本地翻译器
// Runs a local Marian NMT decoder process instead of calling an API. The
// decoder reads one source sentence per stdin line and writes one
// translation per stdout line. A Marian model is trained for a single
// language pair, so SupportsLanguagePair only accepts the configured one.
type MarianTranslator struct {
	command     string
	modelConfig string
	cache       *Cache
	sourceLang  string
	targetLang  string
}

// MarianConfig holds configuration options for the Marian translator.
type MarianConfig struct {
	// Command is the decoder binary. Defaults to marian-decoder.
	Command string
	// ModelConfig is an optional decoder config file, passed as -c.
	ModelConfig string
	SourceLang  string
	TargetLang  string
	Cache       *Cache
}

// NewMarianTranslator creates a MarianTranslator.
func NewMarianTranslator(cfg MarianConfig) (*MarianTranslator, error) {
	command := cfg.Command
	if command == "" {
		command = DefaultMarianCommand
	}
	sourceLang := cfg.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}
	targetLang := cfg.TargetLang
	if targetLang == "" {
		targetLang = "es"
	}

	if _, ok := languageName(sourceLang); !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown source language", sourceLang, nil)
	}
	if _, ok := languageName(targetLang); !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown target language", targetLang, nil)
	}

	return &MarianTranslator{
		command:     command,
		modelConfig: cfg.ModelConfig,
		cache:       cfg.Cache,
		sourceLang:  sourceLang,
		targetLang:  targetLang,
	}, nil
}

// Name returns the backend name.
func (t *MarianTranslator) Name() string {
	return "marianmt"
}

// SupportsLanguagePair reports whether the loaded model covers the pair.
func (t *MarianTranslator) SupportsLanguagePair(source, target string) bool {
	return source == t.sourceLang && target == t.targetLang
}

// Translate translates a single text, consulting the cache first.
func (t *MarianTranslator) Translate(ctx context.Context, text string) (string, error) {
	if isBlank(text) {
		return text, nil
	}

	if t.cache != nil {
		if cached, ok := t.cache.Get(t.sourceLang, t.targetLang, text); ok {
			return cached, nil
		}
	}

	var translation string
	var err error
	if len(text) > marianMaxChunk {
		translation, err = t.translateLong(ctx, text)
	} else {
		translation, err = t.decodeOne(ctx, text)
	}
	if err != nil {
		return "", err
	}

	if t.cache != nil {
		t.cache.Put(t.sourceLang, t.targetLang, text, translation)
	}
	return translation, nil
}

// TranslateBatch translates texts in a single decoder invocation, preserving
// order. Blank and cached items are not sent to the decoder. When the batch
// invocation fails, items fall back to one-by-one translation and failed
// items keep their original text.
func (t *MarianTranslator) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewAppError(types.ErrTranslateFailed, "translation cancelled", err)
	}

	results := make([]string, len(texts))
	var batch, long []int
	for i, text := range texts {
		results[i] = text
		if isBlank(text) {
			continue
		}
		if len(text) > marianMaxChunk {
			// Long texts need sentence chunking, handled per item below.
			long = append(long, i)
			continue
		}
		if t.cache != nil {
			if cached, ok := t.cache.Get(t.sourceLang, t.targetLang, text); ok {
				results[i] = cached
				continue
			}
		}
		batch = append(batch, i)
	}

	if len(batch) > 0 {
		lines := make([]string, len(batch))
		for i, idx := range batch {
			lines[i] = flattenLine(texts[idx])
		}
		translated, err := t.decode(ctx, lines)
		if err != nil {
			logger.Warn("batch decode failed, retrying items one by one", logger.Err(err))
			for _, idx := range batch {
				results[idx] = t.translateOrKeep(ctx, texts[idx], idx)
				if err := ctx.Err(); err != nil {
					return nil, types.NewAppError(types.ErrTranslateFailed, "translation cancelled", err)
				}
			}
		} else {
			for i, idx := range batch {
				results[idx] = translated[i]
				if t.cache != nil {
					t.cache.Put(t.sourceLang, t.targetLang, texts[idx], translated[i])
				}
			}
		}
	}

	for _, i := range long {
		if err := ctx.Err(); err != nil {
			return nil, types.NewAppError(types.ErrTranslateFailed, "translation cancelled", err)
		}
		results[i] = t.translateOrKeep(ctx, texts[i], i)
	}

	return results, nil
}

func (t *MarianTranslator) translateOrKeep(ctx context.Context, text string, index int) string {
	translated, err := t.Translate(ctx, text)
	if err != nil {
		logger.Warn("translation failed, keeping original text",
			logger.Int("index", index), logger.Err(err))
		return text
	}
	return translated
}

// translateLong splits text at sentence boundaries into decoder-sized
// chunks and joins the translated chunks.
func (t *MarianTranslator) translateLong(ctx context.Context, text string) (string, error) {
	chunks := splitChunks(text, marianMaxChunk)
	translated, err := t.decode(ctx, chunks)
	if err != nil {
		return "", err
	}
	return strings.Join(translated, " "), nil
}

func (t *MarianTranslator) decodeOne(ctx context.Context, text string) (string, error) {
	out, err := t.decode(ctx, []string{flattenLine(text)})
	if err != nil {
		return "", err
	}
	return out[0], nil
}

// decode runs the decoder once over one input line per text.
func (t *MarianTranslator) decode(ctx context.Context, lines []string) ([]string, error) {
	var args []string
	if t.modelConfig != "" {
		args = append(args, "-c", t.modelConfig)
	}

	cmd := exec.CommandContext(ctx, t.command, args...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrTranslateFailed,
			"decoder invocation failed", strings.TrimSpace(stderr.String()), err)
	}

	translated := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(translated) != len(lines) {
		return nil, types.NewAppErrorWithDetails(types.ErrTranslateFailed,
			"decoder output line count mismatch", t.command, nil)
	}
	for i, line := range translated {
		line = strings.TrimSpace(line)
		if line == "" {
			return nil, types.NewAppError(types.ErrTranslateFailed, "empty translation response", nil)
		}
		translated[i] = line
	}
	return translated, nil
}

// flattenLine collapses whitespace so each text occupies one decoder line.
func flattenLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitChunks groups sentences into chunks of at most maxLen characters.
// A single sentence longer than maxLen becomes its own chunk.
func splitChunks(text string, maxLen int) []string {
	sentences := splitSentences(flattenLine(text))

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		if current == "" {
			current = sentence
			continue
		}
		if len(current)+1+len(sentence) < maxLen {
			current += " " + sentence
		} else {
			chunks = append(chunks, current)
			current = sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitSentences splits after sentence-final punctuation followed by space.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				sentences = append(sentences, text[start:i+1])
				start = i + 2
				i++
			}
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

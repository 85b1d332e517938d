package translator

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"pdf-translator/internal/types"
)

// writeDecoderScript installs a shell script standing in for the decoder
// binary. The script reads stdin lines and writes output lines.
func writeDecoderScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decoder.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("writing decoder script: %v", err)
	}
	return path
}

func TestMarianTranslate(t *testing.T) {
	command := writeDecoderScript(t, `sed 's/hello/hola/g'`)
	tr, err := NewMarianTranslator(MarianConfig{Command: command})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	got, err := tr.Translate(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "hola world" {
		t.Errorf("Translate() = %q, want %q", got, "hola world")
	}
}

func TestMarianTranslateBlankPassthrough(t *testing.T) {
	tr, err := NewMarianTranslator(MarianConfig{Command: "/nonexistent/decoder"})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	for _, text := range []string{"", "   ", "\n\t"} {
		got, err := tr.Translate(context.Background(), text)
		if err != nil {
			t.Errorf("Translate(%q) error = %v", text, err)
		}
		if got != text {
			t.Errorf("Translate(%q) = %q, want input unchanged", text, got)
		}
	}
}

func TestMarianTranslateMissingCommand(t *testing.T) {
	tr, err := NewMarianTranslator(MarianConfig{Command: "/nonexistent/decoder"})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	_, err = tr.Translate(context.Background(), "hello")
	if !types.IsCode(err, types.ErrTranslateFailed) {
		t.Errorf("Translate() error = %v, want ErrTranslateFailed", err)
	}
}

func TestMarianModelConfigPassedToDecoder(t *testing.T) {
	// The script ignores stdin and echoes its second argument, which decode
	// passes as the -c value.
	command := writeDecoderScript(t, "cat > /dev/null\necho \"$2\"")
	tr, err := NewMarianTranslator(MarianConfig{Command: command, ModelConfig: "/models/en-es.yml"})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	got, err := tr.Translate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "/models/en-es.yml" {
		t.Errorf("decoder received config %q, want %q", got, "/models/en-es.yml")
	}
}

func TestMarianTranslateOutputLineMismatch(t *testing.T) {
	command := writeDecoderScript(t, "cat > /dev/null\nprintf 'one\\ntwo\\n'")
	tr, err := NewMarianTranslator(MarianConfig{Command: command})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	_, err = tr.Translate(context.Background(), "hello")
	if !types.IsCode(err, types.ErrTranslateFailed) {
		t.Errorf("Translate() error = %v, want ErrTranslateFailed", err)
	}
}

func TestMarianTranslateBatch(t *testing.T) {
	command := writeDecoderScript(t, `sed 's/hello/hola/g; s/world/mundo/g'`)
	tr, err := NewMarianTranslator(MarianConfig{Command: command})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	got, err := tr.TranslateBatch(context.Background(), []string{"hello", "", "world"})
	if err != nil {
		t.Fatalf("TranslateBatch() error = %v", err)
	}
	want := []string{"hola", "", "mundo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TranslateBatch() = %v, want %v", got, want)
	}
}

func TestMarianTranslateBatchUsesCache(t *testing.T) {
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	cache.Put("en", "es", "hello", "hola")

	sent := filepath.Join(t.TempDir(), "sent.log")
	command := writeDecoderScript(t, "tee -a '"+sent+"' | sed 's/world/mundo/g'")
	tr, err := NewMarianTranslator(MarianConfig{Command: command, Cache: cache})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	got, err := tr.TranslateBatch(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("TranslateBatch() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"hola", "mundo"}) {
		t.Errorf("TranslateBatch() = %v", got)
	}

	data, err := os.ReadFile(sent)
	if err != nil {
		t.Fatalf("reading decoder input log: %v", err)
	}
	if strings.TrimSpace(string(data)) != "world" {
		t.Errorf("decoder received %q, want only the uncached item", data)
	}

	// The fresh result is cached too.
	if cached, ok := cache.Get("en", "es", "world"); !ok || cached != "mundo" {
		t.Errorf("cache.Get(world) = %q, %v", cached, ok)
	}
}

func TestMarianTranslateBatchFallsBackPerItem(t *testing.T) {
	// The script rejects multi-line batches but handles single items, so the
	// batch path fails and the per-item fallback succeeds.
	command := writeDecoderScript(t,
		"input=$(cat)\n"+
			"if [ \"$(printf '%s\\n' \"$input\" | wc -l)\" -gt 1 ]; then exit 1; fi\n"+
			"printf '%s\\n' \"$input\" | sed 's/hello/hola/g; s/world/mundo/g'")
	tr, err := NewMarianTranslator(MarianConfig{Command: command})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	got, err := tr.TranslateBatch(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("TranslateBatch() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"hola", "mundo"}) {
		t.Errorf("TranslateBatch() = %v", got)
	}
}

func TestMarianTranslateBatchCancelled(t *testing.T) {
	tr, err := NewMarianTranslator(MarianConfig{Command: "/nonexistent/decoder"})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tr.TranslateBatch(ctx, []string{"hello"}); !types.IsCode(err, types.ErrTranslateFailed) {
		t.Errorf("TranslateBatch() error = %v, want ErrTranslateFailed", err)
	}
}

func TestMarianTranslateLongText(t *testing.T) {
	command := writeDecoderScript(t, `sed 's/alpha/omega/g'`)
	tr, err := NewMarianTranslator(MarianConfig{Command: command})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	sentence := "alpha " + strings.Repeat("beta ", 30) + "gamma."
	text := strings.TrimSpace(strings.Repeat(sentence+" ", 4))
	if len(text) <= marianMaxChunk {
		t.Fatalf("fixture too short: %d", len(text))
	}

	got, err := tr.Translate(context.Background(), text)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if strings.Contains(got, "alpha") || !strings.Contains(got, "omega") {
		t.Errorf("long text not translated: %q", got)
	}
	if strings.Count(got, "gamma.") != 4 {
		t.Errorf("chunking lost sentences: %q", got)
	}
}

func TestMarianSupportsLanguagePair(t *testing.T) {
	tr, err := NewMarianTranslator(MarianConfig{SourceLang: "en", TargetLang: "de"})
	if err != nil {
		t.Fatalf("NewMarianTranslator() error = %v", err)
	}

	tests := []struct {
		source, target string
		want           bool
	}{
		{"en", "de", true},
		{"en", "es", false},
		{"de", "en", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := tr.SupportsLanguagePair(tt.source, tt.target); got != tt.want {
			t.Errorf("SupportsLanguagePair(%q, %q) = %v, want %v", tt.source, tt.target, got, tt.want)
		}
	}
}

func TestMarianInvalidLanguage(t *testing.T) {
	if _, err := NewMarianTranslator(MarianConfig{SourceLang: "not-a-lang"}); !types.IsCode(err, types.ErrConfig) {
		t.Errorf("NewMarianTranslator() error = %v, want ErrConfig", err)
	}
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{
			"short text stays whole",
			"One sentence. Another one.",
			100,
			[]string{"One sentence. Another one."},
		},
		{
			"splits at sentence boundary",
			"First part here. Second part here. Third part here.",
			40,
			[]string{"First part here. Second part here.", "Third part here."},
		},
		{
			"oversized sentence kept intact",
			"This single sentence runs far past the limit on its own.",
			20,
			[]string{"This single sentence runs far past the limit on its own."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitChunks(tt.text, tt.maxLen); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitChunks() = %q, want %q", got, tt.want)
			}
		})
	}
}

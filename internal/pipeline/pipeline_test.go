package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdf-translator/internal/document"
	"pdf-translator/internal/renderer"
	"pdf-translator/internal/results"
	"pdf-translator/internal/types"
)

type fakeExtractor struct {
	result *document.ExtractionResult
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, pdfPath string) (*document.ExtractionResult, error) {
	return f.result, f.err
}
func (f *fakeExtractor) Name() string      { return "fake" }
func (f *fakeExtractor) SupportsOCR() bool { return false }

type fakeTranslator struct {
	translate func(text string) string
	calls     []string
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) (string, error) {
	f.calls = append(f.calls, text)
	return f.translate(text), nil
}

func (f *fakeTranslator) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	for i, text := range texts {
		translated, err := f.Translate(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = translated
	}
	return out, nil
}

func (f *fakeTranslator) SupportsLanguagePair(source, target string) bool {
	return source != "" && target != ""
}
func (f *fakeTranslator) Name() string { return "fake" }

type fakeRenderer struct {
	blocks       []document.TextBlock
	translations document.TranslationMap
	err          error
	onRender     func()
}

func (f *fakeRenderer) Render(ctx context.Context, sourcePDF string, blocks []document.TextBlock,
	translations document.TranslationMap, outputPath string) (*renderer.RenderResult, error) {
	if f.onRender != nil {
		f.onRender()
	}
	if f.err != nil {
		return nil, f.err
	}
	f.blocks = blocks
	f.translations = translations
	return &renderer.RenderResult{
		OutputPath:     outputPath,
		RenderedBlocks: len(blocks),
		TotalPages:     1,
	}, nil
}
func (f *fakeRenderer) Name() string                { return "fake" }
func (f *fakeRenderer) PreservesOriginalText() bool { return true }

func extractionFixture() *document.ExtractionResult {
	return &document.ExtractionResult{
		TotalPages: 1,
		TextBlocks: []document.TextBlock{
			{Text: "Hello world", BBox: []float64{72, 100, 300, 120}, BlockType: "title", PageNum: 0},
			{
				Text:      "energy __FORMULA0__ here",
				BBox:      []float64{72, 140, 300, 160},
				BlockType: "text",
				PageNum:   0,
				Metadata:  &document.BlockMetadata{Formulas: map[string]string{"__FORMULA0__": "E=mc^2"}},
			},
			{Text: "ignored", BBox: []float64{72, 180, 300, 200}, BlockType: "table", PageNum: 0},
			{Text: "   ", BBox: []float64{72, 220, 300, 240}, BlockType: "text", PageNum: 0},
		},
	}
}

func newTestPipeline(t *testing.T, ex *fakeExtractor, tr *fakeTranslator, rd *fakeRenderer, runs *results.Manager) *Pipeline {
	t.Helper()
	p, err := New(Config{
		Extractor:  ex,
		Translator: tr,
		Renderer:   rd,
		Runs:       runs,
		SourceLang: "en",
		TargetLang: "es",
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func writeDummyPDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranslatePDF(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeDummyPDF(t, dir, "paper.pdf")

	ex := &fakeExtractor{result: extractionFixture()}
	tr := &fakeTranslator{translate: func(text string) string { return "ES:" + text }}
	rd := &fakeRenderer{}
	p := newTestPipeline(t, ex, tr, rd, nil)

	result, err := p.TranslatePDF(context.Background(), pdfPath, "")
	if err != nil {
		t.Fatalf("TranslatePDF() error = %v", err)
	}

	want := filepath.Join(dir, "paper_translated_es.pdf")
	if result.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, want)
	}

	// Table and blank blocks must not reach the translator.
	if len(tr.calls) != 2 {
		t.Fatalf("translator called %d times, want 2: %v", len(tr.calls), tr.calls)
	}
	for _, call := range tr.calls {
		if call == "ignored" || strings.TrimSpace(call) == "" {
			t.Errorf("non-translatable block reached translator: %q", call)
		}
	}

	// Formula placeholders are restored after translation.
	restored := rd.translations["energy __FORMULA0__ here"]
	if !strings.Contains(restored, "E=mc^2") {
		t.Errorf("formula not restored in %q", restored)
	}
	if strings.Contains(restored, "__FORMULA0__") {
		t.Errorf("placeholder survived restoration: %q", restored)
	}

	stats := result.Stats
	if stats.TotalBlocks != 4 || stats.TranslatedBlocks != 2 || stats.RenderedBlocks != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.SkippedBlocks != 2 {
		t.Errorf("SkippedBlocks = %d, want 2", stats.SkippedBlocks)
	}
	if stats.Elapsed <= 0 {
		t.Error("Elapsed not measured")
	}
}

func TestTranslatePDFRecordsRun(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeDummyPDF(t, dir, "paper.pdf")

	runs, err := results.NewManager(filepath.Join(dir, "runs"))
	if err != nil {
		t.Fatal(err)
	}
	ex := &fakeExtractor{result: extractionFixture()}
	tr := &fakeTranslator{translate: func(text string) string { return "ES:" + text }}
	p := newTestPipeline(t, ex, tr, &fakeRenderer{}, runs)

	result, err := p.TranslatePDF(context.Background(), pdfPath, "")
	if err != nil {
		t.Fatal(err)
	}
	if result.RunID == "" {
		t.Fatal("RunID not set")
	}

	run, err := runs.Load(result.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != results.StatusComplete {
		t.Errorf("run status = %q, want complete", run.Status)
	}
	if run.RenderedCount != 2 {
		t.Errorf("run RenderedCount = %d, want 2", run.RenderedCount)
	}
}

func TestTranslatePDFSurvivesRunRecordWriteFailure(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeDummyPDF(t, dir, "paper.pdf")

	runsDir := filepath.Join(dir, "runs")
	runs, err := results.NewManager(runsDir)
	if err != nil {
		t.Fatal(err)
	}
	ex := &fakeExtractor{result: extractionFixture()}
	tr := &fakeTranslator{translate: func(text string) string { return "ES:" + text }}
	rd := &fakeRenderer{}
	// Break the runs directory after the run record was created, so the
	// completion write fails.
	rd.onRender = func() {
		if err := os.RemoveAll(runsDir); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(runsDir, []byte("not a directory"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	p := newTestPipeline(t, ex, tr, rd, runs)

	result, err := p.TranslatePDF(context.Background(), pdfPath, "")
	if err != nil {
		t.Fatalf("TranslatePDF() error = %v, want run record failure swallowed", err)
	}
	if result.RunID == "" {
		t.Error("RunID not set despite successful run creation")
	}
	if result.Stats.RenderedBlocks != 2 {
		t.Errorf("RenderedBlocks = %d, want 2", result.Stats.RenderedBlocks)
	}
}

func TestTranslatePDFFailureRecordsRun(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeDummyPDF(t, dir, "paper.pdf")

	runs, err := results.NewManager(filepath.Join(dir, "runs"))
	if err != nil {
		t.Fatal(err)
	}
	ex := &fakeExtractor{err: types.NewAppError(types.ErrExtractFailed, "backend exploded", nil)}
	tr := &fakeTranslator{translate: func(text string) string { return text }}
	p := newTestPipeline(t, ex, tr, &fakeRenderer{}, runs)

	if _, err := p.TranslatePDF(context.Background(), pdfPath, ""); err == nil {
		t.Fatal("TranslatePDF() = nil error, want extraction failure")
	}

	list, err := runs.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Status != results.StatusError {
		t.Errorf("failed run not recorded: %+v", list)
	}
}

func TestTranslatePDFNoTranslatableBlocks(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeDummyPDF(t, dir, "paper.pdf")

	ex := &fakeExtractor{result: &document.ExtractionResult{
		TotalPages: 1,
		TextBlocks: []document.TextBlock{
			{Text: "figure content", BlockType: "figure", PageNum: 0},
		},
	}}
	tr := &fakeTranslator{translate: func(text string) string { return text }}
	p := newTestPipeline(t, ex, tr, &fakeRenderer{}, nil)

	_, err := p.TranslatePDF(context.Background(), pdfPath, "")
	if !types.IsCode(err, types.ErrTranslateFailed) {
		t.Errorf("error = %v, want code %v", err, types.ErrTranslateFailed)
	}
}

func TestResolveInputPath(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	direct := writeDummyPDF(t, dir, "direct.pdf")
	writeDummyPDF(t, dir, filepath.Join("pdfs", "inside.pdf"))

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "direct path", input: direct, want: direct, ok: true},
		{name: "missing extension", input: filepath.Join(dir, "direct"), want: direct, ok: true},
		{name: "bare name in pdfs dir", input: "inside", want: filepath.Join("pdfs", "inside.pdf"), ok: true},
		{name: "pdf name in pdfs dir", input: "inside.pdf", want: filepath.Join("pdfs", "inside.pdf"), ok: true},
		{name: "not found", input: "nowhere.pdf", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveInputPath(tt.input)
			if tt.ok {
				if err != nil {
					t.Fatalf("ResolveInputPath(%q) error = %v", tt.input, err)
				}
				if got != tt.want {
					t.Errorf("ResolveInputPath(%q) = %q, want %q", tt.input, got, tt.want)
				}
				return
			}
			if err == nil {
				t.Errorf("ResolveInputPath(%q) = %q, want error", tt.input, got)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		lang string
		want string
	}{
		{
			name: "sibling file",
			path: filepath.Join("docs", "paper.pdf"),
			lang: "es",
			want: filepath.Join("docs", "paper_translated_es.pdf"),
		},
		{
			name: "pdfs dir redirects to output_pdfs",
			path: filepath.Join("work", "pdfs", "paper.pdf"),
			lang: "zh",
			want: filepath.Join("work", "output_pdfs", "paper_translated_zh.pdf"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultOutputPath(tt.path, tt.lang); got != tt.want {
				t.Errorf("DefaultOutputPath(%q, %q) = %q, want %q", tt.path, tt.lang, got, tt.want)
			}
		})
	}
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pdf-translator/internal/config"
	"pdf-translator/internal/extractor"
	"pdf-translator/internal/pipeline"
	"pdf-translator/internal/renderer"
	"pdf-translator/internal/results"
	"pdf-translator/internal/translator"
	"pdf-translator/internal/types"
)

var (
	flagSourceLang   string
	flagTargetLang   string
	flagExtractor    string
	flagTranslator   string
	flagOutput       string
	flagModel        string
	flagAPIKey       string
	flagBaseURL      string
	flagMarianCmd    string
	flagNoCache      bool
	flagForceExtract bool
	flagOutputDir    string
)

var translateCmd = &cobra.Command{
	Use:   "translate <input.pdf>",
	Short: "Translate a PDF document, preserving its layout",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&flagSourceLang, "source-lang", "", "source language code (default en)")
	translateCmd.Flags().StringVar(&flagTargetLang, "target-lang", "", "target language code (default es)")
	translateCmd.Flags().StringVar(&flagExtractor, "extractor", "", "extraction backend: text or structured")
	translateCmd.Flags().StringVar(&flagTranslator, "translator", "", "translation backend: openai or marianmt")
	translateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output PDF path (default derived from input)")
	translateCmd.Flags().StringVar(&flagModel, "model", "", "chat model name")
	translateCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "OpenAI API key")
	translateCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	translateCmd.Flags().StringVar(&flagMarianCmd, "marian-command", "", "Marian decoder binary for the marianmt backend")
	translateCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable the translation cache")
	translateCmd.Flags().BoolVar(&flagForceExtract, "force-extract", false, "re-run structured extraction even when cached")
	translateCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "working directory for structured extraction")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mergeFlags(cfg)

	ex, err := buildExtractor(cfg)
	if err != nil {
		return err
	}

	var cache *translator.Cache
	if cfg.UseCache && !flagNoCache {
		cache, err = translator.NewCache(cfg.CacheDir, time.Duration(cfg.CacheTTLDays)*24*time.Hour)
		if err != nil {
			return err
		}
	}

	tr, err := buildTranslator(cmd.Context(), cfg, cache)
	if err != nil {
		return err
	}

	runs, err := results.NewManager("")
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Config{
		Extractor:  ex,
		Translator: tr,
		Renderer:   renderer.NewOverlayRenderer(renderer.WithPadding(cfg.Padding)),
		Runs:       runs,
		SourceLang: cfg.SourceLang,
		TargetLang: cfg.TargetLang,
	})
	if err != nil {
		return err
	}

	result, err := p.TranslatePDF(cmd.Context(), args[0], flagOutput)
	if err != nil {
		return err
	}

	stats := result.Stats
	fmt.Printf("Translated %s\n", result.OutputPath)
	fmt.Printf("  Blocks:     %d total, %d translated, %d skipped\n",
		stats.TotalBlocks, stats.TranslatedBlocks, stats.SkippedBlocks)
	fmt.Printf("  Rendered:   %d blocks across %d pages\n", stats.RenderedBlocks, stats.TotalPages)
	fmt.Printf("  Elapsed:    %s\n", stats.Elapsed.Round(time.Millisecond))
	return nil
}

// loadConfig reads the config file and applies environment overrides.
func loadConfig() (*types.Config, error) {
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	return mgr.Get(), nil
}

// mergeFlags lets command-line flags win over file and environment values.
func mergeFlags(cfg *types.Config) {
	if flagSourceLang != "" {
		cfg.SourceLang = flagSourceLang
	}
	if flagTargetLang != "" {
		cfg.TargetLang = flagTargetLang
	}
	if flagExtractor != "" {
		cfg.Extractor = flagExtractor
	}
	if flagTranslator != "" {
		cfg.Translator = flagTranslator
	}
	if flagMarianCmd != "" {
		cfg.MarianCommand = flagMarianCmd
	}
	if flagModel != "" {
		cfg.OpenAIModel = flagModel
	}
	if flagAPIKey != "" {
		cfg.OpenAIAPIKey = flagAPIKey
	}
	if flagBaseURL != "" {
		cfg.OpenAIBaseURL = flagBaseURL
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
}

// buildTranslator selects the translation backend.
func buildTranslator(ctx context.Context, cfg *types.Config, cache *translator.Cache) (translator.Translator, error) {
	switch cfg.Translator {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, types.NewAppError(types.ErrConfig,
				"OpenAI API key is not set (use --api-key, the config file, or "+config.EnvOpenAIAPIKey+")", nil)
		}
		return translator.NewOpenAITranslator(ctx, translator.OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIModel,
			SourceLang: cfg.SourceLang,
			TargetLang: cfg.TargetLang,
			Cache:      cache,
		})
	case "marianmt":
		return translator.NewMarianTranslator(translator.MarianConfig{
			Command:     cfg.MarianCommand,
			ModelConfig: cfg.MarianModelConfig,
			SourceLang:  cfg.SourceLang,
			TargetLang:  cfg.TargetLang,
			Cache:       cache,
		})
	default:
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown translator", cfg.Translator, nil)
	}
}

// buildExtractor selects the extraction backend.
func buildExtractor(cfg *types.Config) (extractor.Extractor, error) {
	switch cfg.Extractor {
	case "", "text":
		return extractor.NewTextExtractor(), nil
	case "structured":
		return extractor.NewStructuredExtractor(extractor.StructuredConfig{
			OutputDir: cfg.OutputDir,
			ForceRun:  flagForceExtract,
		}), nil
	default:
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown extractor", cfg.Extractor, nil)
	}
}

// Package types defines core data types and enums for the PDF translator application.
package types

import "errors"

// Config 应用配置
type Config struct {
	OpenAIAPIKey      string  `json:"openai_api_key"`
	OpenAIBaseURL     string  `json:"openai_base_url"` // OpenAI 兼容 API 的 Base URL
	OpenAIModel       string  `json:"openai_model"`
	Translator        string  `json:"translator"` // "openai" 或 "marianmt"
	MarianCommand     string  `json:"marian_command"`
	MarianModelConfig string  `json:"marian_model_config"` // marian-decoder 的 -c 配置文件
	SourceLang        string  `json:"source_lang"`
	TargetLang        string  `json:"target_lang"`
	Extractor         string  `json:"extractor"` // "text" 或 "structured"
	UseCache          bool    `json:"use_cache"`
	CacheDir          string  `json:"cache_dir"`
	CacheTTLDays      int     `json:"cache_ttl_days"` // -1 关闭过期
	OutputDir         string  `json:"output_dir"` // 结构化提取的中间结果目录
	Padding           float64 `json:"padding"`    // 渲染时 bbox 的扩展量
}

// ProcessPhase 处理阶段枚举
type ProcessPhase string

const (
	PhaseIdle        ProcessPhase = "idle"
	PhaseExtracting  ProcessPhase = "extracting"
	PhaseTranslating ProcessPhase = "translating"
	PhaseRendering   ProcessPhase = "rendering"
	PhaseComplete    ProcessPhase = "complete"
	PhaseError       ProcessPhase = "error"
)

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrInvalidGeometry ErrorCode = "INVALID_GEOMETRY"
	ErrEmptyInput      ErrorCode = "EMPTY_INPUT"
	ErrFileNotFound    ErrorCode = "FILE_NOT_FOUND"
	ErrExtractFailed   ErrorCode = "EXTRACT_FAILED"
	ErrTranslateFailed ErrorCode = "TRANSLATE_FAILED"
	ErrRenderFailed    ErrorCode = "RENDER_FAILED"
	ErrCacheFailed     ErrorCode = "CACHE_FAILED"
	ErrConfig          ErrorCode = "CONFIG_ERROR"
	ErrInternal        ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Page    int       `json:"page,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// NewAppErrorWithPage creates a new AppError carrying page information
func NewAppErrorWithPage(code ErrorCode, message string, page int, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Page:    page,
		Cause:   cause,
	}
}

// IsCode reports whether err is (or wraps) an *AppError with the given code
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

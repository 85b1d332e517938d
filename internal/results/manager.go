// Package results provides translation run management functionality.
// It handles storing, listing, and removing run records so past document
// translations can be inspected and re-opened.
package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"pdf-translator/internal/types"
)

// RunStatus represents the status of a translation run
type RunStatus string

const (
	// StatusRunning indicates the run is in progress
	StatusRunning RunStatus = "running"
	// StatusComplete indicates the run finished successfully
	StatusComplete RunStatus = "complete"
	// StatusError indicates the run failed
	StatusError RunStatus = "error"
)

// RunInfo represents metadata about one translation run
type RunInfo struct {
	ID              string    `json:"id"`
	SourcePDF       string    `json:"source_pdf"`
	OutputPDF       string    `json:"output_pdf,omitempty"`
	SourceLang      string    `json:"source_lang"`
	TargetLang      string    `json:"target_lang"`
	Extractor       string    `json:"extractor"`
	Status          RunStatus `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	TotalBlocks     int       `json:"total_blocks"`
	TranslatedCount int       `json:"translated_count"`
	RenderedCount   int       `json:"rendered_count"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at,omitempty"`
}

// Manager manages run records stored in the user directory
type Manager struct {
	baseDir string
}

// NewManager creates a Manager rooted at baseDir. An empty baseDir uses a
// default location under the user's home directory.
func NewManager(baseDir string) (*Manager, error) {
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, types.NewAppError(types.ErrConfig, "cannot resolve home directory", err)
		}
		baseDir = filepath.Join(homeDir, "pdf-translator-runs")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "cannot create runs directory", baseDir, err)
	}

	return &Manager{baseDir: baseDir}, nil
}

// BaseDir returns the directory run records are stored in.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// NewRun creates and persists a new run record in the running state.
func (m *Manager) NewRun(sourcePDF, sourceLang, targetLang, extractorName string) (*RunInfo, error) {
	info := &RunInfo{
		ID:         uuid.NewString(),
		SourcePDF:  sourcePDF,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Extractor:  extractorName,
		Status:     StatusRunning,
		StartedAt:  time.Now(),
	}
	if err := m.Save(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Save persists a run record as JSON.
func (m *Manager) Save(info *RunInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrInternal, "cannot encode run record", err)
	}
	return os.WriteFile(m.runPath(info.ID), data, 0644)
}

// Load reads a run record by id.
func (m *Manager) Load(id string) (*RunInfo, error) {
	data, err := os.ReadFile(m.runPath(id))
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrFileNotFound, "run record not found", id, err)
	}

	var info RunInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrInternal, "malformed run record", id, err)
	}
	return &info, nil
}

// List returns all run records, newest first. Unreadable records are skipped.
func (m *Manager) List() ([]*RunInfo, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*RunInfo{}, nil
		}
		return nil, types.NewAppErrorWithDetails(types.ErrInternal, "cannot read runs directory", m.baseDir, err)
	}

	var runs []*RunInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var info RunInfo
		if err := json.Unmarshal(data, &info); err != nil {
			continue
		}
		runs = append(runs, &info)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// Complete marks a run as finished and records its counters.
func (m *Manager) Complete(info *RunInfo, outputPDF string, total, translated, rendered int) error {
	info.Status = StatusComplete
	info.OutputPDF = outputPDF
	info.TotalBlocks = total
	info.TranslatedCount = translated
	info.RenderedCount = rendered
	info.FinishedAt = time.Now()
	return m.Save(info)
}

// Fail marks a run as failed with an error message.
func (m *Manager) Fail(info *RunInfo, errMsg string) error {
	info.Status = StatusError
	info.ErrorMessage = errMsg
	info.FinishedAt = time.Now()
	return m.Save(info)
}

// Delete removes a run record.
func (m *Manager) Delete(id string) error {
	if err := os.Remove(m.runPath(id)); err != nil && !os.IsNotExist(err) {
		return types.NewAppErrorWithDetails(types.ErrInternal, "cannot delete run record", id, err)
	}
	return nil
}

func (m *Manager) runPath(id string) string {
	return filepath.Join(m.baseDir, id+".json")
}

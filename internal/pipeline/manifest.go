package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"salesetl/pkg/contracts"
)

// Run and stage statuses recorded in the manifest.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	// StatusPartial marks a run that reached the load stage with at least
	// one failed loader.
	StatusPartial = "completed_with_errors"
)

// RunManifest is the persisted record of one pipeline run.
type RunManifest struct {
	mu sync.RWMutex `json:"-"`

	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	DataFormat  string    `json:"data_format"`
	StartTime   time.Time `json:"start_time"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
	Error       string    `json:"error,omitempty"`

	Inputs  map[string]*DataInfo `json:"inputs"`
	Outputs map[string]*DataInfo `json:"outputs"`
	Stages  []StageExecution     `json:"stages"`
}

// DataInfo describes one input or output of the run
type DataInfo struct {
	Location string `json:"location"`
	Records  int    `json:"records"`
	Error    string `json:"error,omitempty"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	StageID   string         `json:"stage_id"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Duration  string         `json:"duration"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewRunManifest creates a pending manifest for runID
func NewRunManifest(runID string) *RunManifest {
	now := time.Now()
	return &RunManifest{
		RunID:       runID,
		Version:     contracts.Version,
		DataFormat:  contracts.DataFormatVersion,
		StartTime:   now,
		Status:      StatusPending,
		LastUpdated: now,
		Inputs:      make(map[string]*DataInfo),
		Outputs:     make(map[string]*DataInfo),
		Stages:      []StageExecution{},
	}
}

// AddInput records an input source
func (m *RunManifest) AddInput(name string, info *DataInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Inputs[name] = info
	m.LastUpdated = time.Now()
}

// AddOutput records a loader target
func (m *RunManifest) AddOutput(name string, info *DataInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Outputs[name] = info
	m.LastUpdated = time.Now()
}

// RecordStageStart marks stageID as running
func (m *RunManifest) RecordStageStart(stageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Status = StatusRunning
	m.Stages = append(m.Stages, StageExecution{
		StageID:   stageID,
		StartTime: time.Now(),
		Status:    StatusRunning,
	})
	m.LastUpdated = time.Now()
}

// RecordStageCompletion marks stageID as completed
func (m *RunManifest) RecordStageCompletion(stageID string, metadata map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stage := m.stage(stageID); stage != nil {
		stage.EndTime = time.Now()
		stage.Duration = stage.EndTime.Sub(stage.StartTime).String()
		stage.Status = StatusCompleted
		stage.Metadata = metadata
	}
	m.LastUpdated = time.Now()
}

// RecordStageFailure marks stageID and the run as failed
func (m *RunManifest) RecordStageFailure(stageID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stage := m.stage(stageID); stage != nil {
		stage.EndTime = time.Now()
		stage.Duration = stage.EndTime.Sub(stage.StartTime).String()
		stage.Status = StatusFailed
		stage.Error = err.Error()
	}
	m.Status = StatusFailed
	m.Error = fmt.Sprintf("stage %s failed: %v", stageID, err)
	m.LastUpdated = time.Now()
}

// Finish sets the final status unless a stage already failed the run
func (m *RunManifest) Finish(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status != StatusFailed {
		m.Status = status
	}
	m.LastUpdated = time.Now()
}

// IsStageCompleted checks if a stage has been completed
func (m *RunManifest) IsStageCompleted(stageID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, stage := range m.Stages {
		if stage.StageID == stageID && stage.Status == StatusCompleted {
			return true
		}
	}
	return false
}

func (m *RunManifest) stage(stageID string) *StageExecution {
	for i := range m.Stages {
		if m.Stages[i].StageID == stageID {
			return &m.Stages[i]
		}
	}
	return nil
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// LoadManifestFromFile reads a manifest written by SaveToFile
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &manifest, nil
}

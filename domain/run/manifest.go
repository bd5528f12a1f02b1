package run

import (
	"crypto/sha256"
	"fmt"

	"gosubgroup/domain/core"
)

// CodeVersion is stamped into every manifest
const CodeVersion = "0.3.0"

// Manifest records everything needed to reproduce a run and check that a
// replay produced the same subgroups.
type Manifest struct {
	RunID       core.RunID             `json:"run_id"`
	DatasetName string                 `json:"dataset_name"`
	DatasetHash core.DatasetHash       `json:"dataset_hash"`
	Rows        int                    `json:"rows"`
	Target      string                 `json:"target"`
	Strategy    string                 `json:"strategy"`
	Options     map[string]interface{} `json:"options"`
	OptionsHash core.OptionsHash       `json:"options_hash"`
	ResultsHash core.ResultsHash       `json:"results_hash,omitempty"`
	CodeVersion string                 `json:"code_version"`
	CreatedAt   core.Timestamp         `json:"created_at"`
}

// NewManifest creates a manifest for a new run
func NewManifest(datasetName string, datasetHash core.DatasetHash, rows int, target, strategy string, options map[string]interface{}) *Manifest {
	return &Manifest{
		RunID:       core.NewRunID(),
		DatasetName: datasetName,
		DatasetHash: datasetHash,
		Rows:        rows,
		Target:      target,
		Strategy:    strategy,
		Options:     options,
		OptionsHash: core.ComputeOptionsHash(options),
		CodeVersion: CodeVersion,
		CreatedAt:   core.Now(),
	}
}

// Seal stores the hash of the ranked subgroups
func (m *Manifest) Seal(subgroups []SubgroupRecord) {
	lines := make([]string, len(subgroups))
	for i, s := range subgroups {
		lines[i] = s.Line()
	}
	m.ResultsHash = core.ComputeResultsHash(lines)
}

// Fingerprint identifies the inputs of the run: two runs with the same
// fingerprint must produce the same results hash.
func (m *Manifest) Fingerprint() core.Hash {
	data := fmt.Sprintf("dataset:%s|target:%s|strategy:%s|options:%s|code:%s",
		m.DatasetHash, m.Target, m.Strategy, m.OptionsHash, m.CodeVersion)
	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("run_manifest", "run_id cannot be empty")
	}
	if m.DatasetHash == "" {
		return core.NewValidationError("run_manifest", "dataset_hash cannot be empty")
	}
	if m.Target == "" {
		return core.NewValidationError("run_manifest", "target cannot be empty")
	}
	if m.Strategy == "" {
		return core.NewValidationError("run_manifest", "strategy cannot be empty")
	}
	if m.CodeVersion == "" {
		return core.NewValidationError("run_manifest", "code_version cannot be empty")
	}
	return nil
}

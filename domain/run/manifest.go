package run

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"time"

	"abtest/domain/core"
)

// CodeVersion is recorded in every manifest; bump it when results can change
const CodeVersion = "1.0.0"

// Hash is a hex-encoded SHA-256 digest
type Hash string

// Short returns the first 12 characters for display
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Fingerprint ensures deterministic replay: same input bytes and settings, same hash
type Fingerprint struct {
	InputHash    Hash    `json:"input_hash"`
	ControlSheet string  `json:"control_sheet"`
	TestSheet    string  `json:"test_sheet"`
	Alpha        float64 `json:"alpha"`
	LeveneCenter string  `json:"levene_center"`
	CodeVersion  string  `json:"code_version"`
	Fingerprint  Hash    `json:"fingerprint"` // Hash of all above
}

// NewFingerprint creates a fingerprint from the determinism parameters
func NewFingerprint(inputHash Hash, controlSheet, testSheet string, alpha float64, leveneCenter, codeVersion string) Fingerprint {
	return Fingerprint{
		InputHash:    inputHash,
		ControlSheet: controlSheet,
		TestSheet:    testSheet,
		Alpha:        alpha,
		LeveneCenter: leveneCenter,
		CodeVersion:  codeVersion,
		Fingerprint:  computeFingerprint(inputHash, controlSheet, testSheet, alpha, leveneCenter, codeVersion),
	}
}

func computeFingerprint(inputHash Hash, controlSheet, testSheet string, alpha float64, leveneCenter, codeVersion string) Hash {
	data := fmt.Sprintf("input:%s|control:%s|test:%s|alpha:%g|center:%s|code:%s",
		inputHash, controlSheet, testSheet, alpha, leveneCenter, codeVersion)
	sum := sha256.Sum256([]byte(data))
	return Hash(fmt.Sprintf("%x", sum))
}

// Manifest describes one run of the pipeline
type Manifest struct {
	RunID       core.RunID  `json:"run_id"`
	Input       string      `json:"input"`
	Fingerprint Fingerprint `json:"fingerprint"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewManifest creates a manifest stamped with the current time
func NewManifest(runID core.RunID, input string, fp Fingerprint) *Manifest {
	return &Manifest{
		RunID:       runID,
		Input:       input,
		Fingerprint: fp,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if m.RunID.IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if m.Fingerprint.InputHash == "" {
		return fmt.Errorf("run manifest: input_hash cannot be empty")
	}
	if m.Fingerprint.CodeVersion == "" {
		return fmt.Errorf("run manifest: code_version cannot be empty")
	}
	return nil
}

// HashFiles digests the contents of the files in order
func HashFiles(paths ...string) (Hash, error) {
	h := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
	}
	return Hash(fmt.Sprintf("%x", h.Sum(nil))), nil
}

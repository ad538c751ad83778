package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vishakh-Neelakantan/Mnemic/internal/encoding"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/features"
)

// ErrArtifactMismatch means the loaded artifacts disagree with each other
// or with the expected feature width, so predictions would be garbage.
var ErrArtifactMismatch = errors.New("model artifacts disagree on feature dimensions")

// Artifact file names inside a model directory.
const (
	networkFile           = "model.json"
	scalerFile            = "scaler.json"
	difficultyEncoderFile = "difficulty_encoder.json"
	subjectEncoderFile    = "subject_encoder.json"
)

// Bundle holds the fitted collaborators loaded from a model directory.
// It is loaded once at startup and read-only afterwards.
type Bundle struct {
	Scorer            Scorer
	Scaler            Scaler
	DifficultyEncoder *encoding.Encoder
	SubjectEncoder    *encoding.Encoder
}

type encoderArtifact struct {
	Classes []string `json:"classes"`
}

// Load reads all four artifacts from dir and checks that their dimensions
// agree. It fails rather than constructing a bundle that would mis-predict.
func Load(dir string) (*Bundle, error) {
	var net Network
	if err := readJSON(filepath.Join(dir, networkFile), &net); err != nil {
		return nil, err
	}

	var scaler StandardScaler
	if err := readJSON(filepath.Join(dir, scalerFile), &scaler); err != nil {
		return nil, err
	}

	difficultyEnc, err := loadEncoder(filepath.Join(dir, difficultyEncoderFile))
	if err != nil {
		return nil, err
	}
	subjectEnc, err := loadEncoder(filepath.Join(dir, subjectEncoderFile))
	if err != nil {
		return nil, err
	}

	if len(scaler.Mean) != len(scaler.Scale) {
		return nil, fmt.Errorf("%w: scaler has %d means and %d scales",
			ErrArtifactMismatch, len(scaler.Mean), len(scaler.Scale))
	}
	if len(scaler.Mean) != features.Count {
		return nil, fmt.Errorf("%w: scaler fitted on %d features, expected %d",
			ErrArtifactMismatch, len(scaler.Mean), features.Count)
	}
	if net.InputWidth() != features.Count {
		return nil, fmt.Errorf("%w: network expects %d inputs, expected %d",
			ErrArtifactMismatch, net.InputWidth(), features.Count)
	}

	return &Bundle{
		Scorer:            &net,
		Scaler:            &scaler,
		DifficultyEncoder: difficultyEnc,
		SubjectEncoder:    subjectEnc,
	}, nil
}

func loadEncoder(path string) (*encoding.Encoder, error) {
	var art encoderArtifact
	if err := readJSON(path, &art); err != nil {
		return nil, err
	}
	if len(art.Classes) == 0 {
		return nil, fmt.Errorf("encoder %s has no classes", filepath.Base(path))
	}
	return encoding.New(art.Classes), nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

package swara

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToSerialized encodes the piece as JSON, the storage format.
func (p *Piece) ToSerialized() ([]byte, error) {
	return json.Marshal(p)
}

// ToYAML encodes the piece as YAML.
func (p *Piece) ToYAML() ([]byte, error) {
	return yaml.Marshal(p)
}

// FromSerialized decodes a JSON encoded piece and restores its invariants.
func FromSerialized(data []byte) (*Piece, error) {
	var p Piece
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("piece could not be unmarshaled: %w", err)
	}
	if err := p.restore(); err != nil {
		return nil, err
	}
	return &p, nil
}

// UnmarshalPiece decodes a piece from JSON or, failing that, YAML.
func UnmarshalPiece(data []byte) (*Piece, error) {
	var p Piece
	if errJSON := json.Unmarshal(data, &p); errJSON != nil {
		p = Piece{}
		if errYaml := yaml.Unmarshal(data, &p); errYaml != nil {
			return nil, fmt.Errorf("piece could not be unmarshaled as a .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if err := p.restore(); err != nil {
		return nil, err
	}
	return &p, nil
}

// restore validates a freshly decoded piece, points every group at the
// trajectories of its phrase and recomputes the derived fields.
func (p *Piece) restore() error {
	if p.Raga == nil {
		return fmt.Errorf("piece raga: %w", ErrMissingField)
	}
	if err := p.Raga.Validate(); err != nil {
		return fmt.Errorf("piece raga: %w", err)
	}
	if len(p.PhraseGrid) == 0 {
		return fmt.Errorf("piece phraseGrid: %w", ErrMissingField)
	}
	for track, phrases := range p.PhraseGrid {
		for i, ph := range phrases {
			if ph == nil {
				return fmt.Errorf("phrase %v of track %v: %w", i, track, ErrMissingField)
			}
			if err := ph.restore(); err != nil {
				return fmt.Errorf("phrase %v of track %v: %w", i, track, err)
			}
		}
	}
	for i, m := range p.Meters {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("meter %v: %w", i, err)
		}
	}
	return p.Reset()
}

func (ph *Phrase) restore() error {
	if len(ph.TrajectoryGrid) == 0 {
		return fmt.Errorf("trajectoryGrid: %w", ErrMissingField)
	}
	for _, row := range ph.TrajectoryGrid {
		for i, t := range row {
			if t == nil {
				return fmt.Errorf("trajectory %v: %w", i, ErrMissingField)
			}
			if err := t.Validate(); err != nil {
				return fmt.Errorf("trajectory %v: %w", i, err)
			}
			if t.Articulations == nil {
				t.Articulations = Articulations{}
			}
		}
	}
	for i, c := range ph.CategorizationGrid {
		if c.Categories == nil {
			ph.CategorizationGrid[i] = DefaultPhraseCategorization()
		}
	}
	if len(ph.CategorizationGrid) == 0 {
		ph.CategorizationGrid = []Categorization{DefaultPhraseCategorization()}
	}
	ph.Reset()
	return ph.relinkGroups()
}

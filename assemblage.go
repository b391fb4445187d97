package swara

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

type (
	// Assemblage gathers phrases of one instrument into labelled strands,
	// irrespective of where they occur in the piece. Phrases not assigned to
	// a strand are loose. A phrase appears at most once per assemblage.
	Assemblage struct {
		Instrument   string
		Name         string
		ID           string
		Strands      []*Strand
		LoosePhrases []*Phrase
	}

	Strand struct {
		Label   string
		ID      string
		Phrases []*Phrase
	}

	// AssemblageDescriptor is the stored form of an assemblage: phrases are
	// referred to by unique id.
	AssemblageDescriptor struct {
		Instrument     string             `json:"instrument" yaml:"instrument"`
		Name           string             `json:"name" yaml:"name"`
		ID             string             `json:"id" yaml:"id"`
		Strands        []StrandDescriptor `json:"strands" yaml:"strands"`
		LoosePhraseIDs []string           `json:"loosePhraseIDs" yaml:"loosePhraseIDs"`
	}

	StrandDescriptor struct {
		Label     string   `json:"label" yaml:"label"`
		ID        string   `json:"id" yaml:"id"`
		PhraseIDs []string `json:"phraseIDs" yaml:"phraseIDs"`
	}
)

func NewAssemblage(instrument, name string) *Assemblage {
	return &Assemblage{Instrument: instrument, Name: name, ID: uuid.NewString()}
}

// AddStrand appends an empty strand. Labels are unique within an
// assemblage.
func (a *Assemblage) AddStrand(label string) (*Strand, error) {
	for _, s := range a.Strands {
		if s.Label == label {
			return nil, fmt.Errorf("strand label %q: %w", label, ErrDuplicate)
		}
	}
	s := &Strand{Label: label, ID: uuid.NewString()}
	a.Strands = append(a.Strands, s)
	return s, nil
}

// RemoveStrand deletes a strand; its phrases become loose.
func (a *Assemblage) RemoveStrand(id string) error {
	for i, s := range a.Strands {
		if s.ID == id {
			a.LoosePhrases = append(a.LoosePhrases, s.Phrases...)
			a.Strands = append(a.Strands[:i], a.Strands[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("strand %v: %w", id, ErrNotFound)
}

func (a *Assemblage) strand(id string) (*Strand, error) {
	for _, s := range a.Strands {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("strand %v: %w", id, ErrNotFound)
}

// Contains reports whether the phrase is anywhere in the assemblage.
func (a *Assemblage) Contains(p *Phrase) bool {
	for _, q := range a.Phrases() {
		if q.UniqueID == p.UniqueID {
			return true
		}
	}
	return false
}

// AddPhrase adds a phrase to a strand, or as a loose phrase when strandID is
// empty.
func (a *Assemblage) AddPhrase(p *Phrase, strandID string) error {
	if a.Contains(p) {
		return fmt.Errorf("phrase %v in assemblage %v: %w", p.UniqueID, a.Name, ErrDuplicate)
	}
	if strandID == "" {
		a.LoosePhrases = append(a.LoosePhrases, p)
		return nil
	}
	s, err := a.strand(strandID)
	if err != nil {
		return err
	}
	s.Phrases = append(s.Phrases, p)
	sort.SliceStable(s.Phrases, func(i, j int) bool { return s.Phrases[i].StartTime < s.Phrases[j].StartTime })
	return nil
}

// RemovePhrase takes a phrase out of whichever strand, or the loose
// phrases, hold it.
func (a *Assemblage) RemovePhrase(p *Phrase) error {
	remove := func(list []*Phrase) ([]*Phrase, bool) {
		for i, q := range list {
			if q.UniqueID == p.UniqueID {
				return append(list[:i], list[i+1:]...), true
			}
		}
		return list, false
	}
	var ok bool
	if a.LoosePhrases, ok = remove(a.LoosePhrases); ok {
		return nil
	}
	for _, s := range a.Strands {
		if s.Phrases, ok = remove(s.Phrases); ok {
			return nil
		}
	}
	return fmt.Errorf("phrase %v in assemblage %v: %w", p.UniqueID, a.Name, ErrNotFound)
}

// MovePhraseToStrand moves a phrase already in the assemblage to another
// strand, or makes it loose when strandID is empty.
func (a *Assemblage) MovePhraseToStrand(p *Phrase, strandID string) error {
	if strandID != "" {
		if _, err := a.strand(strandID); err != nil {
			return err
		}
	}
	if err := a.RemovePhrase(p); err != nil {
		return err
	}
	return a.AddPhrase(p, strandID)
}

// Phrases lists every phrase, strand by strand, then the loose ones.
func (a *Assemblage) Phrases() []*Phrase {
	var ret []*Phrase
	for _, s := range a.Strands {
		ret = append(ret, s.Phrases...)
	}
	return append(ret, a.LoosePhrases...)
}

func (a *Assemblage) Descriptor() AssemblageDescriptor {
	d := AssemblageDescriptor{
		Instrument:     a.Instrument,
		Name:           a.Name,
		ID:             a.ID,
		Strands:        make([]StrandDescriptor, len(a.Strands)),
		LoosePhraseIDs: make([]string, len(a.LoosePhrases)),
	}
	for i, s := range a.Strands {
		d.Strands[i] = StrandDescriptor{Label: s.Label, ID: s.ID, PhraseIDs: make([]string, len(s.Phrases))}
		for j, p := range s.Phrases {
			d.Strands[i].PhraseIDs[j] = p.UniqueID
		}
	}
	for i, p := range a.LoosePhrases {
		d.LoosePhraseIDs[i] = p.UniqueID
	}
	return d
}

// AssemblageFromDescriptor resolves the phrase ids of a descriptor against
// the given phrases. Unknown ids are an error.
func AssemblageFromDescriptor(d AssemblageDescriptor, phrases []*Phrase) (*Assemblage, error) {
	byID := make(map[string]*Phrase, len(phrases))
	for _, p := range phrases {
		byID[p.UniqueID] = p
	}
	lookup := func(id string) (*Phrase, error) {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("phrase %v of assemblage %v: %w", id, d.Name, ErrNotFound)
		}
		return p, nil
	}
	a := &Assemblage{Instrument: d.Instrument, Name: d.Name, ID: d.ID}
	for _, sd := range d.Strands {
		s := &Strand{Label: sd.Label, ID: sd.ID}
		for _, id := range sd.PhraseIDs {
			p, err := lookup(id)
			if err != nil {
				return nil, err
			}
			s.Phrases = append(s.Phrases, p)
		}
		a.Strands = append(a.Strands, s)
	}
	for _, id := range d.LoosePhraseIDs {
		p, err := lookup(id)
		if err != nil {
			return nil, err
		}
		a.LoosePhrases = append(a.LoosePhrases, p)
	}
	return a, nil
}

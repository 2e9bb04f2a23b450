package domain

// LookupResult is one dictionary entry for a single word, exactly as the
// lookup service returned it. It is never mutated after construction; holders
// hand out copies via Clone.
//
// Unlike the rest of the domain package, these types carry JSON tags: the same
// shape is the lookup wire format, the persisted favorites blob, and the REST
// payload.
type LookupResult struct {
	Word       string     `json:"word"`
	Phonetic   string     `json:"phonetic,omitempty"`
	Phonetics  []Phonetic `json:"phonetics"`
	Meanings   []Meaning  `json:"meanings"`
	License    License    `json:"license"`
	SourceURLs []string   `json:"sourceUrls"`
}

// Phonetic is a single transcription with optional audio. An empty Audio means
// there is no recording for this transcription.
type Phonetic struct {
	Text      string  `json:"text,omitempty"`
	Audio     string  `json:"audio"`
	SourceURL string  `json:"sourceUrl,omitempty"`
	License   License `json:"license"`
}

// Meaning groups definitions that share a part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
	Synonyms     []string     `json:"synonyms"`
	Antonyms     []string     `json:"antonyms"`
}

// Definition is one sense inside a Meaning.
type Definition struct {
	Definition string   `json:"definition"`
	Example    string   `json:"example,omitempty"`
	Synonyms   []string `json:"synonyms"`
	Antonyms   []string `json:"antonyms"`
}

// License is provenance metadata, opaque to the core.
type License struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AudioURL returns the first non-empty audio URL among the phonetics,
// or "" when the entry has no recording.
func (r LookupResult) AudioURL() string {
	for _, ph := range r.Phonetics {
		if ph.Audio != "" {
			return ph.Audio
		}
	}
	return ""
}

// DisplayPhonetic returns the transcription shown next to the headword:
// the first phonetic's text, then the second's, then the top-level phonetic.
func (r LookupResult) DisplayPhonetic() string {
	for i := 0; i < len(r.Phonetics) && i < 2; i++ {
		if r.Phonetics[i].Text != "" {
			return r.Phonetics[i].Text
		}
	}
	return r.Phonetic
}

// Normalize replaces nil slices with empty ones at every level so the entry
// always serializes with arrays, never null.
func (r LookupResult) Normalize() LookupResult {
	out := r.Clone()
	if out.Phonetics == nil {
		out.Phonetics = []Phonetic{}
	}
	if out.Meanings == nil {
		out.Meanings = []Meaning{}
	}
	if out.SourceURLs == nil {
		out.SourceURLs = []string{}
	}
	for i := range out.Meanings {
		m := &out.Meanings[i]
		m.Synonyms = nonNil(m.Synonyms)
		m.Antonyms = nonNil(m.Antonyms)
		if m.Definitions == nil {
			m.Definitions = []Definition{}
		}
		for j := range m.Definitions {
			d := &m.Definitions[j]
			d.Synonyms = nonNil(d.Synonyms)
			d.Antonyms = nonNil(d.Antonyms)
		}
	}
	return out
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (r LookupResult) Clone() LookupResult {
	out := r
	out.SourceURLs = cloneStrings(r.SourceURLs)

	if r.Phonetics != nil {
		out.Phonetics = make([]Phonetic, len(r.Phonetics))
		copy(out.Phonetics, r.Phonetics)
	}

	if r.Meanings != nil {
		out.Meanings = make([]Meaning, len(r.Meanings))
		for i, m := range r.Meanings {
			mc := m
			mc.Synonyms = cloneStrings(m.Synonyms)
			mc.Antonyms = cloneStrings(m.Antonyms)
			if m.Definitions != nil {
				mc.Definitions = make([]Definition, len(m.Definitions))
				for j, d := range m.Definitions {
					dc := d
					dc.Synonyms = cloneStrings(d.Synonyms)
					dc.Antonyms = cloneStrings(d.Antonyms)
					mc.Definitions[j] = dc
				}
			}
			out.Meanings[i] = mc
		}
	}

	return out
}

// CloneResults deep-copies a slice of entries. A nil input yields nil.
func CloneResults(in []LookupResult) []LookupResult {
	if in == nil {
		return nil
	}
	out := make([]LookupResult, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

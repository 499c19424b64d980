package review

import (
	"sort"
	"strings"

	"github.com/ericksa/contractreview/internal/kb"
)

// Candidate is one ranked classification outcome.
type Candidate struct {
	Profile    *kb.ContractTypeProfile `json:"profile"`
	Confidence float64                 `json:"confidence"`
	Matched    int                     `json:"matched"` // signature entries that hit
}

// Classifier identifies the contract type by scoring each profile's
// signature against the document. Pure over the knowledge base, no state
// beyond the tuning knobs.
type Classifier struct {
	kb        *kb.KnowledgeBase
	threshold float64 // minimum confidence to accept a profile
	boost     float64 // multiplier when cues appear in headings
}

func NewClassifier(base *kb.KnowledgeBase, threshold, boost float64) *Classifier {
	return &Classifier{kb: base, threshold: threshold, boost: boost}
}

// Identify returns profiles ranked by confidence, best first. When nothing
// clears the threshold the generic profile is returned alone at confidence 0
// so downstream stages always have a profile to key off.
func (c *Classifier) Identify(doc *Document) []Candidate {
	body := strings.ToLower(doc.Raw)
	headings := strings.ToLower(doc.HeadingText())

	var ranked []Candidate
	for i := range c.kb.Profiles {
		p := &c.kb.Profiles[i]
		if p.ID == kb.GenericProfileID {
			continue
		}
		cand := c.scoreProfile(p, body, headings)
		if cand.Matched > 0 {
			ranked = append(ranked, cand)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		if ranked[i].Matched != ranked[j].Matched {
			return ranked[i].Matched > ranked[j].Matched
		}
		return ranked[i].Profile.Order() < ranked[j].Profile.Order()
	})

	if len(ranked) == 0 || ranked[0].Confidence < c.threshold {
		return []Candidate{{Profile: c.kb.Generic(), Confidence: 0}}
	}
	return ranked
}

// scoreProfile computes matched signature entries over signature size, with
// the heading boost applied when a structural cue shows up in a heading.
func (c *Classifier) scoreProfile(p *kb.ContractTypeProfile, body, headings string) Candidate {
	size := p.SignatureSize()
	if size == 0 {
		return Candidate{Profile: p}
	}

	matched := 0
	boosted := false
	for _, kw := range p.Keywords {
		if strings.Contains(body, strings.ToLower(kw)) {
			matched++
		}
	}
	for _, cue := range p.StructuralCues {
		lc := strings.ToLower(cue)
		if strings.Contains(headings, lc) {
			matched++
			boosted = true
		} else if strings.Contains(body, lc) {
			matched++
		}
	}

	conf := float64(matched) / float64(size)
	if boosted {
		conf *= c.boost
	}
	if conf > 1 {
		conf = 1
	}
	return Candidate{Profile: p, Confidence: conf, Matched: matched}
}

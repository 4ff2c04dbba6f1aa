// Package compare implements the structural signature comparator: scoring
// how well a parsed query matches a candidate item's declared signature
// (spec.md §4.C).
package compare

// DiscreteSimilarity is a three-level match verdict for atoms that don't
// have a natural continuous distance.
type DiscreteSimilarity int

const (
	Equivalent DiscreteSimilarity = iota
	Subequal
	Different
)

// score mirrors the original's Similarity::score mapping: an exact match
// costs nothing, a partial/coerced match costs a quarter point, and an
// outright mismatch costs the full point (spec.md §4.C scoring table).
func (d DiscreteSimilarity) score() float64 {
	switch d {
	case Equivalent:
		return 0.0
	case Subequal:
		return 0.25
	default:
		return 1.0
	}
}

// Similarity is one atom of comparison between a query fragment and a
// candidate fragment, carrying a human-readable reason for why it scored
// the way it did (surfaced in debug/trace output, never in the final Hit).
type Similarity struct {
	Reason     string
	IsDiscrete bool
	Discrete   DiscreteSimilarity
	Continuous float64 // only meaningful when !IsDiscrete, already in [0,1]
}

func DiscreteSim(kind DiscreteSimilarity, reason string) Similarity {
	return Similarity{Reason: reason, IsDiscrete: true, Discrete: kind}
}

func ContinuousSim(value float64, reason string) Similarity {
	return Similarity{Reason: reason, IsDiscrete: false, Continuous: value}
}

func (s Similarity) Score() float64 {
	if s.IsDiscrete {
		return s.Discrete.score()
	}
	return s.Continuous
}

// Similarities is an ordered collection of atoms produced by one Compare
// call; its Score is their mean (spec.md §4.C, "final score = mean of atom
// scores"). An empty Similarities scores 0 (perfect match by default).
type Similarities []Similarity

func (s Similarities) Score() float64 {
	if len(s) == 0 {
		return 0
	}
	total := 0.0
	for _, sim := range s {
		total += sim.Score()
	}
	return total / float64(len(s))
}

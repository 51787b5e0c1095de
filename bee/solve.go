package bee

import (
	"sort"
)

// DefaultMinLength is the shortest acceptable answer under the standard
// rules.
const DefaultMinLength = 4

const pangramBonus = 7

// A Query is one request to the solver.
type Query struct {
	Mandatory string
	Allowed   string
	// MinLength is the shortest word to return. Zero means
	// DefaultMinLength.
	MinLength int
	// PuzzleOnly limits the solution to words that were answers in a
	// past puzzle.
	PuzzleOnly bool
}

// A Result is a single valid word for a query.
type Result struct {
	Word      string `json:"word"`
	Length    int    `json:"length"`
	Points    int    `json:"points"`
	Count     int    `json:"bee_count"`
	InBee     bool   `json:"in_bee"`
	InEnglish bool   `json:"in_english_words"`
	Pangram   bool   `json:"is_pangram"`
}

// A Solution holds every valid word for a query in alphabetical order,
// and the pangrams among them in the same order.
type Solution struct {
	Words    []Result `json:"valid_words"`
	Pangrams []Result `json:"pangrams"`
}

// Score returns the points for a valid word: 1 for a four-letter word,
// otherwise one point per letter plus a bonus of 7 for a pangram.
// Words shorter than four letters are worth nothing.
func Score(word string, pangram bool) int {
	switch n := len(word); {
	case n < 4:
		return 0
	case n == 4:
		return 1
	default:
		if pangram {
			return n + pangramBonus
		}
		return n
	}
}

// A Solver answers queries against one Index, optionally through a Cache
// of the words containing each mandatory letter.
type Solver struct {
	idx   *Index
	cache *Cache
}

// NewSolver returns a Solver for idx. The cache may be nil; if not, it
// must have been created for idx.
func NewSolver(idx *Index, cache *Cache) *Solver {
	if cache != nil && cache.idx != idx {
		panic("bee: cache belongs to a different index")
	}
	return &Solver{idx: idx, cache: cache}
}

// Index returns the index s searches.
func (s *Solver) Index() *Index { return s.idx }

// Solve validates the query letters and returns every matching word.
// Invalid letters are reported as ErrInvalidMandatory or
// ErrInvalidAllowed before the index is consulted. A Solver without an
// index returns an *IndexMissingError.
func (s *Solver) Solve(q Query) (Solution, error) {
	p, err := ParsePuzzle(q.Mandatory, q.Allowed)
	if err != nil {
		return Solution{}, err
	}
	if s.idx == nil {
		return Solution{}, new(IndexMissingError)
	}
	minLength := q.MinLength
	if minLength == 0 {
		minLength = DefaultMinLength
	}

	groups := s.idx.groups
	if s.cache != nil {
		groups = s.cache.groups(p.Mandatory())
	}
	var sol Solution
	for _, group := range groups {
		if !p.matches(group.letters) {
			continue
		}
		pangram := p.covers(group.letters)
		for _, rec := range group.records {
			if len(rec.Word) < minLength {
				continue
			}
			sol.Words = append(sol.Words, Result{
				Word:      rec.Word,
				Length:    len(rec.Word),
				Points:    Score(rec.Word, pangram),
				Count:     rec.Count,
				InBee:     rec.InBee,
				InEnglish: rec.InEnglish,
				Pangram:   pangram,
			})
		}
	}
	sort.Slice(sol.Words, func(i, j int) bool {
		return sol.Words[i].Word < sol.Words[j].Word
	})
	for _, r := range sol.Words {
		if r.Pangram {
			sol.Pangrams = append(sol.Pangrams, r)
		}
	}
	if q.PuzzleOnly {
		sol = sol.PuzzleOnly()
	}
	return sol, nil
}

// Solve solves q against idx without a cache.
func Solve(idx *Index, q Query) (Solution, error) {
	return NewSolver(idx, nil).Solve(q)
}

// PuzzleOnly returns the part of sol made up of words that were answers
// in a past puzzle.
func (sol Solution) PuzzleOnly() Solution {
	return Solution{
		Words:    seenInPuzzle(sol.Words),
		Pangrams: seenInPuzzle(sol.Pangrams),
	}
}

func seenInPuzzle(results []Result) []Result {
	var seen []Result
	for _, r := range results {
		if r.InBee {
			seen = append(seen, r)
		}
	}
	return seen
}

// TotalPoints sums the points of all the words in sol.
func (sol Solution) TotalPoints() int {
	var n int
	for _, r := range sol.Words {
		n += r.Points
	}
	return n
}

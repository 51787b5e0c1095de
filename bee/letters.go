package bee

import (
	"errors"
	"math/bits"
	"strings"
)

// NumAllowed is the number of letters a puzzle offers besides the
// mandatory letter.
const NumAllowed = 6

var (
	ErrInvalidMandatory = errors.New("mandatory letter must be a single alphabetic character")
	ErrInvalidAllowed   = errors.New("you must specify exactly 6 allowed letters")
)

// A LetterSet is a set of the letters a through z, one bit per letter.
type LetterSet uint32

// Letters returns the set of letters a-z that occur in s.
// Any other bytes are ignored.
func Letters(s string) LetterSet {
	var set LetterSet
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			set |= 1 << (c - 'a')
		}
	}
	return set
}

// wordLetters is like Letters but reports false if word contains
// anything other than a-z.
func wordLetters(word string) (LetterSet, bool) {
	var set LetterSet
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < 'a' || c > 'z' {
			return 0, false
		}
		set |= 1 << (c - 'a')
	}
	return set, true
}

// Has reports whether c is in s.
func (s LetterSet) Has(c byte) bool {
	if c < 'a' || c > 'z' {
		return false
	}
	return s&(1<<(c-'a')) != 0
}

// Contains reports whether every letter of t is also in s.
func (s LetterSet) Contains(t LetterSet) bool {
	return s&t == t
}

// Len returns the number of letters in s.
func (s LetterSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// String returns the letters of s in alphabetical order.
func (s LetterSet) String() string {
	var b strings.Builder
	for c := byte('a'); c <= 'z'; c++ {
		if s.Has(c) {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// A Puzzle is the letter set of a single query: the mandatory (center)
// letter and the full set of letters words may use. The same Puzzle value
// is used for validating words and for scoring them.
type Puzzle struct {
	mandatory byte
	center    LetterSet
	all       LetterSet
}

// ParsePuzzle validates the user-supplied letters and builds a Puzzle.
// Surrounding whitespace is ignored and letters are lowercased. The
// mandatory letter must be exactly one letter (ErrInvalidMandatory is
// checked first), and allowed must be exactly six letters
// (ErrInvalidAllowed). The six letters need not be distinct from each
// other or from the mandatory letter.
func ParsePuzzle(mandatory, allowed string) (Puzzle, error) {
	mandatory = strings.ToLower(strings.TrimSpace(mandatory))
	allowed = strings.ToLower(strings.TrimSpace(allowed))
	if len(mandatory) != 1 || !isLetters(mandatory) {
		return Puzzle{}, ErrInvalidMandatory
	}
	if len(allowed) != NumAllowed || !isLetters(allowed) {
		return Puzzle{}, ErrInvalidAllowed
	}
	return newPuzzle(mandatory[0], allowed), nil
}

func newPuzzle(mandatory byte, allowed string) Puzzle {
	center := Letters(string(mandatory))
	return Puzzle{
		mandatory: mandatory,
		center:    center,
		all:       center | Letters(allowed),
	}
}

func isLetters(s string) bool {
	_, ok := wordLetters(s)
	return ok
}

// Mandatory returns the letter every word must contain.
func (p Puzzle) Mandatory() byte { return p.mandatory }

// Letters returns the full set of letters words may use.
func (p Puzzle) Letters() LetterSet { return p.all }

// matches reports whether a word using exactly the given letters uses the
// center letter and nothing outside the puzzle.
func (p Puzzle) matches(letters LetterSet) bool {
	return p.center != 0 && letters.Contains(p.center) && p.all.Contains(letters)
}

// covers reports whether letters include every puzzle letter.
func (p Puzzle) covers(letters LetterSet) bool {
	return letters.Contains(p.all)
}

// Valid reports whether word is at least minLength long, contains the
// mandatory letter, and uses only puzzle letters.
func (p Puzzle) Valid(word string, minLength int) bool {
	if len(word) < minLength {
		return false
	}
	letters, ok := wordLetters(word)
	if !ok {
		return false
	}
	return p.matches(letters)
}

// IsPangram reports whether word uses every puzzle letter at least once.
func (p Puzzle) IsPangram(word string) bool {
	return p.covers(Letters(word))
}

// IsValidWord reports whether word is an acceptable answer for the puzzle
// with the given mandatory letter and allowed letters.
func IsValidWord(word string, mandatory byte, allowed string, minLength int) bool {
	return newPuzzle(mandatory, allowed).Valid(word, minLength)
}

// IsPangram reports whether word contains every letter in letters.
func IsPangram(word, letters string) bool {
	return Letters(word).Contains(Letters(letters))
}

package bee

import (
	"errors"
	"testing"
)

func TestLetters(t *testing.T) {
	for _, tt := range []struct {
		s    string
		want string
		n    int
	}{
		{"", "", 0},
		{"hasty", "ahsty", 5},
		{"aaaa", "a", 1},
		{"don't", "dnot", 4},
		{"central", "acelnrt", 7},
	} {
		got := Letters(tt.s)
		if got.String() != tt.want {
			t.Errorf("Letters(%q): got %q; want %q", tt.s, got, tt.want)
		}
		if got.Len() != tt.n {
			t.Errorf("Letters(%q).Len(): got %d; want %d", tt.s, got.Len(), tt.n)
		}
	}
}

func TestParsePuzzle(t *testing.T) {
	for _, tt := range []struct {
		mandatory string
		allowed   string
		wantErr   error
		want      string
	}{
		{"a", "tyshfl", nil, "afhlsty"},
		{" E ", "ABCDFG\n", nil, "abcdefg"},
		{"e", "aaaaaa", nil, "ae"},
		{"e", "eeeeee", nil, "e"},
		{"", "tyshfl", ErrInvalidMandatory, ""},
		{"ab", "tyshfl", ErrInvalidMandatory, ""},
		{"1", "tyshfl", ErrInvalidMandatory, ""},
		{"é", "tyshfl", ErrInvalidMandatory, ""},
		{"e", "abcd", ErrInvalidAllowed, ""},
		{"e", "abcdefg", ErrInvalidAllowed, ""},
		{"e", "abc1ef", ErrInvalidAllowed, ""},
		{"e", "abc ef", ErrInvalidAllowed, ""},
		{"12", "abcd", ErrInvalidMandatory, ""},
	} {
		p, err := ParsePuzzle(tt.mandatory, tt.allowed)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParsePuzzle(%q, %q): got err %v; want %v",
				tt.mandatory, tt.allowed, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if got := p.Letters().String(); got != tt.want {
			t.Errorf("ParsePuzzle(%q, %q): got letters %q; want %q",
				tt.mandatory, tt.allowed, got, tt.want)
		}
	}
}

func TestIsValidWord(t *testing.T) {
	for _, tt := range []struct {
		word      string
		mandatory byte
		allowed   string
		minLength int
		want      bool
	}{
		{"hasty", 'a', "tyshfl", 4, true},
		{"aata", 'a', "tyshfl", 4, true},
		{"stay", 'a', "tyshfl", 4, true},
		{"has", 'a', "tyshfl", 4, false},
		{"has", 'a', "tyshfl", 3, true},
		{"hastily", 'a', "tyshfl", 4, false},
		{"shhh", 'a', "tyshfl", 4, false},
		{"salty", 's', "tyahfl", 4, true},
		{"salty", 'y', "tsahfl", 6, false},
		{"hasty", 'A', "tyshfl", 4, false},
		{"ha-sty", 'a', "tyshfl", 4, false},
		{"", 'a', "tyshfl", 0, false},
	} {
		got := IsValidWord(tt.word, tt.mandatory, tt.allowed, tt.minLength)
		if got != tt.want {
			t.Errorf("IsValidWord(%q, %q, %q, %d): got %t; want %t",
				tt.word, tt.mandatory, tt.allowed, tt.minLength, got, tt.want)
		}
	}
}

func TestIsPangram(t *testing.T) {
	for _, tt := range []struct {
		word    string
		letters string
		want    bool
	}{
		{"central", "caelnrt", true},
		{"centrally", "caelnrt", true},
		{"centrals", "caelnrt", true},
		{"cent", "caelnrt", false},
		{"trance", "caelnrt", false},
		{"aata", "aaaaat", true},
	} {
		if got := IsPangram(tt.word, tt.letters); got != tt.want {
			t.Errorf("IsPangram(%q, %q): got %t; want %t", tt.word, tt.letters, got, tt.want)
		}
	}
}

func TestPuzzlePangramAgreesWithIsPangram(t *testing.T) {
	p, err := ParsePuzzle("c", "aelnrt")
	if err != nil {
		t.Fatal(err)
	}
	for _, word := range []string{"central", "cent", "recant", "centrally", "tranc"} {
		got := p.IsPangram(word)
		want := IsPangram(word, "caelnrt")
		if got != want {
			t.Errorf("Puzzle.IsPangram(%q): got %t; want %t", word, got, want)
		}
	}
}

func TestScore(t *testing.T) {
	for _, tt := range []struct {
		word    string
		pangram bool
		want    int
	}{
		{"has", false, 0},
		{"aata", false, 1},
		{"stay", false, 1},
		{"hasty", false, 5},
		{"nectar", false, 6},
		{"central", true, 14},
		{"centrally", true, 16},
		{"centrally", false, 9},
	} {
		if got := Score(tt.word, tt.pangram); got != tt.want {
			t.Errorf("Score(%q, %t): got %d; want %d", tt.word, tt.pangram, got, tt.want)
		}
	}
}

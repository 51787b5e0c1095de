package bee

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/lib/pq"
)

func TestLoadIndex(t *testing.T) {
	idx := loadTestIndex(t)
	if got, want := idx.Len(), 17; got != want {
		t.Errorf("Len: got %d; want %d", got, want)
	}
	if _, ok := idx.Lookup("zzzz"); ok {
		t.Error("zzzz is in neither source but was indexed")
	}
	rec, ok := idx.Lookup("cent")
	if !ok {
		t.Fatal("cent not indexed")
	}
	// The later of the two cent lines wins.
	if rec.Count != 21 {
		t.Errorf("cent: got count %d; want 21", rec.Count)
	}
	rec, ok = idx.Lookup("lance")
	if !ok {
		t.Fatal("lance not indexed")
	}
	want := Record{Word: "lance", InEnglish: true}
	if rec != want {
		t.Errorf("lance: got %+v; want %+v", rec, want)
	}
}

func TestLoadIndexMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "word_comparison.jsonl")
	_, err := LoadIndex(path)
	if !errors.Is(err, ErrIndexMissing) {
		t.Fatalf("got err %v; want ErrIndexMissing", err)
	}
	var missing *IndexMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("got err %T; want *IndexMissingError", err)
	}
	if missing.Path != path {
		t.Errorf("got path %q; want %q", missing.Path, path)
	}
	if !strings.Contains(err.Error(), "beemerge") {
		t.Errorf("error %q doesn't say how to regenerate the index", err)
	}
}

func TestReadIndex(t *testing.T) {
	for _, tt := range []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name: "filter",
			input: `{"word": "bee", "in_bee": true, "in_english_words": false, "bee_count": 1}
{"word": "honey", "in_bee": false, "in_english_words": true, "bee_count": 0}
{"word": "qqqq", "in_bee": false, "in_english_words": false, "bee_count": 0}
`,
			want: []string{"bee", "honey"},
		},
		{
			name:  "no trailing newline",
			input: `{"word": "hive", "in_bee": true, "in_english_words": true, "bee_count": 2}`,
			want:  []string{"hive"},
		},
		{
			name: "malformed",
			input: `{"word": "hive", "in_bee": true, "in_english_words": true, "bee_count": 2}
{"word": "comb", "in_bee": tru
`,
			wantErr: true,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := ReadIndex(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("got nil error")
				}
				if !strings.Contains(err.Error(), "line 2") {
					t.Errorf("error %q doesn't name the bad line", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if idx.Len() != len(tt.want) {
				t.Errorf("got %d words; want %d", idx.Len(), len(tt.want))
			}
			for _, w := range tt.want {
				if _, ok := idx.Lookup(w); !ok {
					t.Errorf("%q not indexed", w)
				}
			}
		})
	}
}

func TestNewIndexKeepsNonLetterWordsOutOfGroups(t *testing.T) {
	idx := NewIndex([]Record{
		{Word: "can't", InEnglish: true},
		{Word: "cant", InEnglish: true},
	})
	if idx.Len() != 2 {
		t.Fatalf("got %d words; want 2", idx.Len())
	}
	sol, err := Solve(idx, Query{Mandatory: "c", Allowed: "antxyz"})
	if err != nil {
		t.Fatal(err)
	}
	if got := words(sol.Words); len(got) != 1 || got[0] != "cant" {
		t.Errorf("got %v; want [cant]", got)
	}
}

// TestLoadIndexDB runs against a scratch Postgres database named by
// BEE_TEST_POSTGRES (for example postgres://localhost/beetest?sslmode=disable).
func TestLoadIndexDB(t *testing.T) {
	dsn := os.Getenv("BEE_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("BEE_TEST_POSTGRES not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	const setup = `
DROP TABLE IF EXISTS words;
CREATE TABLE words (
  word text PRIMARY KEY,
  in_bee boolean NOT NULL,
  in_english_words boolean NOT NULL,
  bee_count integer NOT NULL
);
INSERT INTO words VALUES
  ('hasty', true, true, 12),
  ('salty', false, true, 0),
  ('zzzz', false, false, 0);
`
	if _, err := db.Exec(setup); err != nil {
		t.Fatal(err)
	}
	idx, err := LoadIndexDB(context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 {
		t.Errorf("got %d words; want 2", idx.Len())
	}
	rec, ok := idx.Lookup("hasty")
	if !ok || rec.Count != 12 || !rec.InBee {
		t.Errorf("hasty: got %+v (ok=%t)", rec, ok)
	}

	idx, err = Open(context.Background(), dsn)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 {
		t.Errorf("Open: got %d words; want 2", idx.Len())
	}
}

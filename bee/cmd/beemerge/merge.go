package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/cp"
	"github.com/cespare/spellingbee/bee"
	"github.com/dustin/go-humanize"
	"github.com/lib/pq"
)

// scraped is one line of beescrape output.
type scraped struct {
	Word   string `json:"word"`
	Count  int    `json:"count"`
	Letter string `json:"letter"`
}

// entry is one line of the merged index. Letter is the lexicon page the
// word was found on (or its first letter); bee ignores it.
type entry struct {
	bee.Record
	Letter string `json:"letter"`
}

func loadScraped(name string) (map[string]scraped, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := readScraped(f)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	return m, nil
}

// readScraped reads beescrape output. Later lines for the same word
// replace earlier ones.
func readScraped(r io.Reader) (map[string]scraped, error) {
	m := make(map[string]scraped)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		b := scanner.Bytes()
		if len(strings.TrimSpace(string(b))) == 0 {
			continue
		}
		var s scraped
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s.Word = strings.ToLower(strings.TrimSpace(s.Word))
		if s.Word == "" {
			continue
		}
		m[s.Word] = s
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func loadWordList(name string) (map[string]struct{}, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := readWordList(f)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	return m, nil
}

func readWordList(r io.Reader) (map[string]struct{}, error) {
	m := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w != "" {
			m[w] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

type stats struct {
	both        int
	beeOnly     int
	englishOnly int
	dropped     int
	perLetter   map[string]int
}

func (st *stats) total() int { return st.both + st.beeOnly + st.englishOnly }

// merge returns the sorted union of both sources. Words with anything other
// than the letters a-z are dropped; bee relies on that.
func merge(beeWords map[string]scraped, english map[string]struct{}) ([]entry, *stats) {
	st := &stats{perLetter: make(map[string]int)}
	all := make(map[string]struct{}, len(english))
	for w := range english {
		all[w] = struct{}{}
	}
	for w := range beeWords {
		all[w] = struct{}{}
	}
	words := make([]string, 0, len(all))
	for w := range all {
		if !isWord(w) {
			st.dropped++
			continue
		}
		words = append(words, w)
	}
	sort.Strings(words)

	entries := make([]entry, len(words))
	for i, w := range words {
		s, inBee := beeWords[w]
		_, inEnglish := english[w]
		e := entry{
			Record: bee.Record{
				Word:      w,
				InBee:     inBee,
				InEnglish: inEnglish,
			},
			Letter: w[:1],
		}
		if inBee {
			e.Count = s.Count
			if s.Letter != "" {
				e.Letter = s.Letter
			}
		}
		switch {
		case inBee && inEnglish:
			st.both++
		case inBee:
			st.beeOnly++
		default:
			st.englishOnly++
		}
		st.perLetter[e.Letter]++
		entries[i] = e
	}
	return entries, st
}

func isWord(w string) bool {
	if w == "" {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

func (st *stats) print(w io.Writer) {
	comma := func(n int) string { return humanize.Comma(int64(n)) }
	fmt.Fprintln(w, "\nStatistics:")
	fmt.Fprintf(w, "Words in both sources: %s\n", comma(st.both))
	fmt.Fprintf(w, "Words only in Spelling Bee: %s\n", comma(st.beeOnly))
	fmt.Fprintf(w, "Words only in the word list: %s\n", comma(st.englishOnly))
	fmt.Fprintf(w, "Total unique words: %s\n", comma(st.total()))
	if st.dropped > 0 {
		fmt.Fprintf(w, "Dropped (not a-z): %s\n", comma(st.dropped))
	}
	fmt.Fprintln(w, "\nWords per letter:")
	letters := make([]string, 0, len(st.perLetter))
	for l := range st.perLetter {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	for _, l := range letters {
		fmt.Fprintf(w, "  %s: %s\n", l, comma(st.perLetter[l]))
	}
}

// writeIndex replaces the index at name with entries. Any existing file is
// first copied to name.bak. Readers never see a partially written index.
func writeIndex(name string, entries []entry) error {
	if err := cp.CopyFile(name+".bak", name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error backing up old index: %s", err)
	}
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".beemerge-")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name()) // no-op after the rename
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(f.Name(), name)
}

const createWords = `
DROP TABLE IF EXISTS words;
CREATE TABLE words (
  word             text PRIMARY KEY,
  in_bee           boolean NOT NULL,
  in_english_words boolean NOT NULL,
  bee_count        integer NOT NULL
);
`

// writePostgres replaces the words table in a single transaction.
func writePostgres(ctx context.Context, dsn string, entries []entry) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, createWords); err != nil {
		return fmt.Errorf("error creating words table: %s", err)
	}
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("words", "word", "in_bee", "in_english_words", "bee_count"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Word, e.InBee, e.InEnglish, e.Count); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	return tx.Commit()
}

package bee

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// ErrIndexMissing is matched (with errors.Is) by the error returned when
// the word index source does not exist.
var ErrIndexMissing = errors.New("word index not found")

// An IndexMissingError reports that the merged word index is absent.
// The operator needs to regenerate it with beemerge.
type IndexMissingError struct {
	Path string
}

func (e *IndexMissingError) Error() string {
	name := e.Path
	if name == "" {
		name = "word index"
	}
	return fmt.Sprintf("%s not found; run beemerge first to generate the word index", name)
}

func (e *IndexMissingError) Unwrap() error { return ErrIndexMissing }

// A Record is the index entry for a single word.
type Record struct {
	Word      string `json:"word"`
	InBee     bool   `json:"in_bee"`
	InEnglish bool   `json:"in_english_words"`
	// Count is the number of past puzzles that had Word as an answer.
	Count int `json:"bee_count"`
}

// A wordGroup is all the indexed words that use exactly the same letters.
type wordGroup struct {
	letters LetterSet
	records []Record // sorted by word
}

// An Index is the dictionary the solver searches. It is read-only once
// built and safe for concurrent use.
type Index struct {
	records map[string]Record
	groups  []wordGroup // sorted by letters
}

func newIndex(records map[string]Record) *Index {
	groupsBySet := make(map[LetterSet]*wordGroup)
	for _, rec := range records {
		letters, ok := wordLetters(rec.Word)
		if !ok {
			// Can never be an answer.
			continue
		}
		group, ok := groupsBySet[letters]
		if !ok {
			group = &wordGroup{letters: letters}
			groupsBySet[letters] = group
		}
		group.records = append(group.records, rec)
	}
	idx := &Index{records: records}
	for _, group := range groupsBySet {
		sort.Slice(group.records, func(i, j int) bool {
			return group.records[i].Word < group.records[j].Word
		})
		idx.groups = append(idx.groups, *group)
	}
	sort.Slice(idx.groups, func(i, j int) bool {
		return idx.groups[i].letters < idx.groups[j].letters
	})
	return idx
}

// NewIndex builds an index from records. Records that are neither puzzle
// answers nor dictionary words are dropped, and a later record for the
// same word replaces an earlier one.
func NewIndex(records []Record) *Index {
	m := make(map[string]Record, len(records))
	for _, rec := range records {
		add(m, rec)
	}
	return newIndex(m)
}

func add(m map[string]Record, rec Record) {
	if rec.InBee || rec.InEnglish {
		m[rec.Word] = rec
	}
}

// LoadIndex reads the merged word index written by beemerge: one JSON
// record per line. If the file does not exist, the error is an
// *IndexMissingError.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &IndexMissingError{Path: path}
		}
		return nil, err
	}
	defer f.Close()
	idx, err := ReadIndex(f)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return idx, nil
}

// ReadIndex is like LoadIndex but reads the records from r.
func ReadIndex(r io.Reader) (*Index, error) {
	m := make(map[string]Record)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		add(m, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return newIndex(m), nil
}

// LoadIndexDB reads the index from the words table that beemerge -pg
// writes. The caller must register a database/sql driver.
func LoadIndexDB(ctx context.Context, db *sql.DB) (*Index, error) {
	const query = `
SELECT word, in_bee, in_english_words, bee_count
FROM words
`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying words: %w", err)
	}
	defer rows.Close()
	m := make(map[string]Record)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Word, &rec.InBee, &rec.InEnglish, &rec.Count); err != nil {
			return nil, err
		}
		add(m, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newIndex(m), nil
}

// Open loads an index from source, which is either the path of a merged
// index file or a postgres:// URL. Using a URL requires the postgres
// driver (github.com/lib/pq) to be linked in.
func Open(ctx context.Context, source string) (*Index, error) {
	if !strings.HasPrefix(source, "postgres://") && !strings.HasPrefix(source, "postgresql://") {
		return LoadIndex(source)
	}
	db, err := sql.Open("postgres", source)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return LoadIndexDB(ctx, db)
}

// Len returns the number of words in the index.
func (idx *Index) Len() int { return len(idx.records) }

// Lookup returns the record for word, if it is indexed.
func (idx *Index) Lookup(word string) (Record, bool) {
	rec, ok := idx.records[word]
	return rec, ok
}

// groupsWith returns the groups whose words contain c.
func (idx *Index) groupsWith(c byte) []wordGroup {
	var groups []wordGroup
	for _, group := range idx.groups {
		if group.letters.Has(c) {
			groups = append(groups, group)
		}
	}
	return groups
}

// Bee solves the Spelling Bee puzzle.
//
// Usage:
//
//	bee -m a -a tyshfl
//	bee -i
//
// By default only words that were answers in some past puzzle are shown;
// use -all-words to see every dictionary word that fits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cespare/spellingbee/bee"
	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	_ "github.com/lib/pq"
	"golang.org/x/sys/unix"
)

func main() {
	log.SetFlags(0)
	var (
		mandatory   = flag.String("m", "", "The mandatory letter that must appear in all words")
		allowed     = flag.String("a", "", "The 6 other allowed letters")
		minLength   = flag.Int("l", bee.DefaultMinLength, "Minimum word length")
		allWords    = flag.Bool("all-words", false, "Show all possible words, including those that have never appeared in Spelling Bee")
		indexSource = flag.String("index", "data/word_comparison.jsonl", "Word index file or postgres:// URL")
		sortByScore = flag.Bool("s", false, "Sort by score (rather than alphabetically)")
		interactive = flag.Bool("i", false, "Read puzzles interactively")
		verbose     = flag.Bool("v", false, "Print index loading statistics")
	)
	flag.Parse()

	if !*interactive {
		// Check the letters before spending time on the index.
		if _, err := bee.ParsePuzzle(*mandatory, *allowed); err != nil {
			log.Fatalln("Error:", err)
		}
	}

	start := time.Now()
	idx, err := bee.Open(context.Background(), *indexSource)
	if err != nil {
		if errors.Is(err, bee.ErrIndexMissing) {
			log.Fatalf("Error: %s\nPlease run beemerge first to generate the word list.", err)
		}
		log.Fatal(err)
	}
	if *verbose {
		log.Printf("Loaded %s words in %s (max RSS %s)",
			humanize.Comma(int64(idx.Len())),
			time.Since(start).Round(time.Millisecond),
			humanize.Bytes(maxRSS()),
		)
	}

	s := bee.NewSolver(idx, bee.NewCache(idx))
	p := printer{sortByScore: *sortByScore}
	if *interactive {
		if err := repl(s, p, *minLength, *allWords); err != nil {
			log.Fatal(err)
		}
		return
	}
	q := bee.Query{
		Mandatory:  *mandatory,
		Allowed:    *allowed,
		MinLength:  wordLength(*minLength),
		PuzzleOnly: !*allWords,
	}
	sol, err := s.Solve(q)
	if err != nil {
		log.Fatalln("Error:", err)
	}
	p.print(os.Stdout, sol)
}

func repl(s *bee.Solver, p printer, minLength int, allWords bool) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:      "> ",
		HistoryFile: filepath.Join(os.TempDir(), "bee_history.txt"),
	})
	if err != nil {
		return err
	}
	defer l.Close()
	fmt.Fprintln(l.Stdout(), `Enter the mandatory letter and the 6 allowed letters (e.g. "a tyshfl").`)
	fmt.Fprintln(l.Stdout(), `Add "+all" to include words never seen in a puzzle.`)

	for {
		line, err := l.Readline()
		switch err {
		case nil:
		case readline.ErrInterrupt:
			continue
		case io.EOF:
			return nil
		default:
			return err
		}
		q, ok, err := parseLine(line, minLength, allWords)
		if err != nil {
			fmt.Fprintln(l.Stdout(), "Error:", err)
			continue
		}
		if !ok {
			continue
		}
		sol, err := s.Solve(q)
		if err != nil {
			fmt.Fprintln(l.Stdout(), "Error:", err)
			continue
		}
		p.print(l.Stdout(), sol)
	}
}

// parseLine reads a query typed at the prompt. It returns ok=false for
// blank lines.
func parseLine(line string, minLength int, allWords bool) (q bee.Query, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return q, false, nil
	}
	q.MinLength = wordLength(minLength)
	var letters []string
	for _, f := range fields {
		switch f {
		case "+all":
			allWords = true
		case "-all":
			allWords = false
		default:
			letters = append(letters, f)
		}
	}
	q.PuzzleOnly = !allWords
	switch len(letters) {
	case 2:
		q.Mandatory, q.Allowed = letters[0], letters[1]
	case 1:
		// "atyshfl": the first letter is the mandatory one.
		if s := letters[0]; len(s) > 0 {
			q.Mandatory, q.Allowed = s[:1], s[1:]
		}
	default:
		return q, false, fmt.Errorf("expected <mandatory> <allowed>; got %d fields", len(letters))
	}
	return q, true, nil
}

// wordLength converts the -l flag to a Query.MinLength. A zero
// MinLength means the default, so -l 0 (or less) is taken as 1.
func wordLength(n int) int {
	return max(n, 1)
}

type printer struct {
	sortByScore bool
}

func (p printer) print(w io.Writer, sol bee.Solution) {
	fmt.Fprintf(w, "\nFound %d valid words\n", len(sol.Words))
	fmt.Fprintf(w, "Found %d pangrams (words using all 7 letters)\n", len(sol.Pangrams))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(sol.Pangrams) > 0 {
		fmt.Fprintln(tw, "\nPangrams:")
		p.writeResults(tw, sol.Pangrams)
	}
	if p.sortByScore {
		fmt.Fprintln(tw, "\nAll valid words (sorted by score):")
	} else {
		fmt.Fprintln(tw, "\nAll valid words (sorted alphabetically):")
	}
	p.writeResults(tw, sol.Words)
	fmt.Fprintf(tw, "\tTotal\t\t%d points\t\n", sol.TotalPoints())
	tw.Flush()
}

func (p printer) writeResults(w io.Writer, results []bee.Result) {
	if p.sortByScore {
		results = append([]bee.Result(nil), results...)
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Points > results[j].Points
		})
	}
	for _, r := range results {
		status := "×"
		if r.InBee {
			status = "✓"
		}
		var star string
		if r.Pangram {
			star = "*"
		}
		fmt.Fprintf(w, "%s\t%s%s\t(%d times)\t%d points\t\n", status, r.Word, star, r.Count, r.Points)
	}
}

// maxRSS reports the peak resident set size of this process.
func maxRSS() uint64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	// Linux reports kilobytes.
	return uint64(ru.Maxrss) * 1024
}

// Beescrape downloads the Spelling Bee answer lexicon, one page per letter,
// and writes every word with the number of puzzles it appeared in as JSON
// lines. Its output is the -bee input of beemerge.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	log.SetFlags(0)
	var (
		base        = flag.String("base", "https://sbhinter.com", "Lexicon site")
		out         = flag.String("o", "data/spelling_bee_words.jsonl", "Output file")
		concurrency = flag.Int("c", 2, "Number of letters to fetch at once")
		delay       = flag.Duration("delay", 500*time.Millisecond, "Pause before each request")
	)
	flag.Parse()

	start := time.Now()
	s := &scraper{
		client:  &http.Client{Timeout: time.Minute},
		base:    *base,
		delay:   *delay,
		backoff: time.Second,
	}
	letters := make([]string, 26)
	for i := range letters {
		letters[i] = string(rune('a' + i))
	}
	results := s.scrapeAll(letters, max(*concurrency, 1))

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	total, err := writeResults(f, letters, results)
	if err != nil {
		log.Fatalf("Error writing %s: %s", *out, err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}

	log.Println("\nScraping complete!")
	log.Printf("Total words collected: %d", total)
	log.Printf("Time taken: %s", time.Since(start).Round(time.Millisecond))
	log.Printf("Results saved to %s", *out)
}

// writeResults writes the words in letter order and reports per-letter
// counts. It returns the total number of words written.
func writeResults(w io.Writer, letters []string, results [][]scraped) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	var total int
	for i, words := range results {
		log.Printf("Found %d words for letter %s", len(words), letters[i])
		for _, word := range words {
			if err := enc.Encode(word); err != nil {
				return total, err
			}
		}
		total += len(words)
	}
	return total, bw.Flush()
}

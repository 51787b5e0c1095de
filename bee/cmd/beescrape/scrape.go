package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/cespare/wait"
	"golang.org/x/net/html"
)

// scraped is one answer from the lexicon. beemerge reads these.
type scraped struct {
	Word   string `json:"word"`
	Count  int    `json:"count"`
	Letter string `json:"letter"`
}

var (
	statsBox  = cascadia.MustCompile(`div[class*="stats-box"]`)
	wordCell  = cascadia.MustCompile(`div.bee-cell-first`)
	countCell = cascadia.MustCompile(`div.bee-count-fixed`)
)

// parseLexicon extracts the words and their answer counts from one
// lexicon page.
func parseLexicon(r io.Reader, letter string) ([]scraped, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	var words []scraped
	for _, box := range statsBox.MatchAll(doc) {
		wn := wordCell.MatchFirst(box)
		cn := countCell.MatchFirst(box)
		if wn == nil || cn == nil {
			return nil, errors.New("stats box without a word and count")
		}
		word := strings.TrimSpace(text(wn))
		count, err := strconv.Atoi(strings.TrimSpace(text(cn)))
		if err != nil {
			return nil, fmt.Errorf("bad count for %q: %s", word, err)
		}
		words = append(words, scraped{Word: word, Count: count, Letter: letter})
	}
	return words, nil
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

type scraper struct {
	client *http.Client
	base   string
	// delay is how long each worker waits before every request.
	delay time.Duration
	// backoff is the wait before the first retry; it doubles after that.
	backoff time.Duration
}

type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.url, e.code, http.StatusText(e.code))
}

func (e *statusError) temporary() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func (s *scraper) fetch(letter string) ([]scraped, error) {
	url := strings.TrimSuffix(s.base, "/") + "/spelling-bee-lexicon/" + letter
	resp, err := s.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{url: url, code: resp.StatusCode}
	}
	return parseLexicon(resp.Body, letter)
}

// scrapeLetter fetches one letter's page, retrying transient failures.
func (s *scraper) scrapeLetter(letter string) ([]scraped, error) {
	var words []scraped
	var err error
	for r := (&retries{base: s.backoff}); r.attempt(); r.sleep() {
		time.Sleep(s.delay)
		words, err = s.fetch(letter)
		if err == nil {
			return words, nil
		}
		var se *statusError
		if errors.As(err, &se) && !se.temporary() {
			return nil, err
		}
		log.Printf("Error scraping letter %s (attempt %d): %s", letter, r.attempts, err)
	}
	return nil, err
}

// scrapeAll scrapes each letter using the given number of workers. The
// result is in the same order as letters. Letters that fail are logged and
// have no words.
func (s *scraper) scrapeAll(letters []string, workers int) [][]scraped {
	results := make([][]scraped, len(letters))
	work := make(chan int)
	var wg wait.Group
	for i := 0; i < workers; i++ {
		wg.Go(func(quit <-chan struct{}) error {
			for {
				select {
				case <-quit:
					return nil
				case j, ok := <-work:
					if !ok {
						return nil
					}
					words, err := s.scrapeLetter(letters[j])
					if err != nil {
						log.Printf("Giving up on letter %s: %s", letters[j], err)
						continue
					}
					results[j] = words
				}
			}
		})
	}
	wg.Go(func(quit <-chan struct{}) error {
		defer close(work)
		for i := range letters {
			select {
			case work <- i:
			case <-quit:
				return nil
			}
		}
		return nil
	})
	wg.Wait()
	return results
}

const maxAttempts = 5

type retries struct {
	base     time.Duration
	attempts int
	delay    time.Duration
}

func (r *retries) attempt() bool {
	if r.attempts >= maxAttempts {
		return false
	}
	if r.attempts == 0 {
		r.delay = r.base
	} else {
		r.delay *= 2
	}
	r.attempts++
	return true
}

func (r *retries) sleep() {
	time.Sleep(r.delay)
}

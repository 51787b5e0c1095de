// Beemerge builds the word index used by bee and beeserver.
//
// It combines the scraped Spelling Bee answers (see beescrape) with a plain
// English word list:
//
//	beemerge -bee data/spelling_bee_words.jsonl -words /usr/share/dict/web2
//
// The result is written as JSON lines to -o and, with -pg, loaded into the
// words table of a Postgres database.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"
)

func main() {
	log.SetFlags(0)
	var (
		beeFile   = flag.String("bee", "data/spelling_bee_words.jsonl", "Scraped Spelling Bee answers (JSON lines)")
		wordsFile = flag.String("words", "/usr/share/dict/web2", "English word list, one word per line")
		out       = flag.String("o", "data/word_comparison.jsonl", "Output index file")
		dsn       = flag.String("pg", "", "If set, also replace the words table in this Postgres database")
	)
	flag.Parse()

	beeWords, err := loadScraped(*beeFile)
	if err != nil {
		log.Fatal(err)
	}
	english, err := loadWordList(*wordsFile)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Comparing words from both sources...")
	entries, st := merge(beeWords, english)
	if err := writeIndex(*out, entries); err != nil {
		log.Fatalf("Error writing %s: %s", *out, err)
	}
	log.Printf("Results saved to %s", *out)

	if *dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := writePostgres(ctx, *dsn, entries); err != nil {
			log.Fatalf("Error loading Postgres: %s", err)
		}
		log.Println("Replaced the words table")
	}
	st.print(os.Stdout)
}

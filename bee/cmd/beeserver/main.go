// Beeserver serves a web interface for the Spelling Bee solver.
//
// Puzzles can be submitted with the form or as URL parameters:
//
//	http://localhost:8080/?mandatory=a&allowed=tyshfl&all-words=true
//
// Sending SIGHUP makes the server reload the word index.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/cespare/spellingbee/bee"
	_ "github.com/lib/pq"
)

type config struct {
	Addr    string `env:"BEE_ADDR" envDefault:"0.0.0.0:8080"`
	Index   string `env:"BEE_INDEX" envDefault:"data/word_comparison.jsonl"`
	LogFile string `env:"BEE_LOG_FILE"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Error reading environment: %s", err)
	}
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.Index, "index", cfg.Index, "Word index file or postgres:// URL")
	flag.StringVar(&cfg.LogFile, "logfile", cfg.LogFile, "Also write logs to this file")
	flag.Parse()

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	load := func() (*bee.Index, error) {
		return bee.Open(context.Background(), cfg.Index)
	}
	s, err := newServer(load)
	if err != nil {
		log.Fatal(err)
	}
	s.reload()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			s.reload()
		}
	}()

	log.Printf("Listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, s.handler()))
}

package main

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
)

func writeFile(t *testing.T, name, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSharedConfig(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".aws", "credentials"), `[default]
aws_access_key_id = AKIDEXAMPLE
aws_secret_access_key = secret
`)
	writeFile(t, filepath.Join(home, ".aws", "config"), `[default]
region = us-west-2
output = json
`)
	config, err := LoadSharedConfig(home)
	if err != nil {
		t.Fatal(err)
	}
	if got := aws.StringValue(config.Region); got != "us-west-2" {
		t.Errorf("got region %q; want us-west-2", got)
	}
	if got := aws.IntValue(config.MaxRetries); got != 5 {
		t.Errorf("got MaxRetries %d; want 5", got)
	}
	v, err := config.Credentials.Get()
	if err != nil {
		t.Fatal(err)
	}
	if v.AccessKeyID != "AKIDEXAMPLE" {
		t.Errorf("got access key %q; want AKIDEXAMPLE", v.AccessKeyID)
	}
}

func TestLoadSharedConfigErrors(t *testing.T) {
	home := t.TempDir()
	if _, err := LoadSharedConfig(home); err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Errorf("no credentials file: got error %v", err)
	}

	writeFile(t, filepath.Join(home, ".aws", "credentials"), "[default]\n")
	if _, err := LoadSharedConfig(home); err == nil || !strings.Contains(err.Error(), "aws config") {
		t.Errorf("no config file: got error %v", err)
	}

	writeFile(t, filepath.Join(home, ".aws", "config"), "[other]\nregion = eu-west-1\n")
	if _, err := LoadSharedConfig(home); err == nil || !strings.Contains(err.Error(), "no region") {
		t.Errorf("no default region: got error %v", err)
	}
}

func TestPublish(t *testing.T) {
	var mu sync.Mutex
	var gotMethod, gotPath, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotMethod, gotPath, gotBody = r.Method, r.URL.Path, string(b)
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
	}))
	defer ts.Close()

	const index = `{"word":"hasty","in_bee":true,"in_english_words":true,"bee_count":12}` + "\n"
	file := filepath.Join(t.TempDir(), "word_comparison.jsonl")
	writeFile(t, file, index)

	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials("id", "secret", ""),
		Region:           aws.String("us-east-1"),
		Endpoint:         aws.String(ts.URL),
		S3ForcePathStyle: aws.Bool(true),
		HTTPClient:       &http.Client{Transport: uploadTransport()},
	}
	size, err := publish(config, file, "bucket", "bee/word_comparison.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(len(index)) {
		t.Errorf("got size %d; want %d", size, len(index))
	}
	mu.Lock()
	defer mu.Unlock()
	if gotMethod != "PUT" || gotPath != "/bucket/bee/word_comparison.jsonl" {
		t.Errorf("got %s %s; want PUT /bucket/bee/word_comparison.jsonl", gotMethod, gotPath)
	}
	if gotBody != index {
		t.Errorf("got body %q; want %q", gotBody, index)
	}
}

func TestStallConn(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	c := &stallConn{Conn: a, timeout: 20 * time.Millisecond}

	// Nobody writes to b, so the read stalls.
	if _, err := c.Read(make([]byte, 1)); !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Errorf("Read: got error %v; want a deadline error", err)
	}

	// Progress resets the deadline.
	go func() {
		time.Sleep(10 * time.Millisecond)
		b.Write([]byte("x"))
	}()
	c.timeout = time.Second
	buf := make([]byte, 1)
	if _, err := c.Read(buf); err != nil || buf[0] != 'x' {
		t.Errorf("Read: got (%q, %v); want x", buf, err)
	}
	// Nobody reads from b, so the write stalls.
	c.timeout = 20 * time.Millisecond
	if _, err := c.Write([]byte("y")); !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Errorf("Write: got error %v; want a deadline error", err)
	}
}

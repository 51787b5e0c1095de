// Beepublish uploads a word index to S3 so that servers can fetch it.
//
//	beepublish data/word_comparison.jsonl my-bucket bee/word_comparison.jsonl
//
// Credentials come from ~/.aws/credentials and the region from
// ~/.aws/config (the default profile in both).
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/dustin/go-humanize"
	"github.com/vaughan0/go-ini"
)

const concurrency = 8

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) != 4 {
		log.Fatal("usage: beepublish file bucket key")
	}
	file, bucket, key := os.Args[1], os.Args[2], os.Args[3]

	u, err := user.Current()
	if err != nil {
		log.Fatalf("Cannot get current user: %s", err)
	}
	if u.HomeDir == "" {
		log.Fatalf("Current user (%s) has no home dir", u.Username)
	}
	config, err := LoadSharedConfig(u.HomeDir)
	if err != nil {
		log.Fatal(err)
	}
	config.HTTPClient = &http.Client{Transport: uploadTransport()}

	start := time.Now()
	size, err := publish(config, file, bucket, key)
	if err != nil {
		log.Fatalf("S3 upload error: %s", err)
	}
	log.Printf("Uploaded %s (%s) to s3://%s/%s in %s",
		file, humanize.Bytes(uint64(size)), bucket, key, time.Since(start).Round(time.Millisecond))
}

// LoadSharedConfig reads the default AWS profile from the .aws directory in
// home.
func LoadSharedConfig(home string) (*aws.Config, error) {
	credsFile := filepath.Join(home, ".aws", "credentials")
	// The credentials returned by NewSharedCredentials don't report errors
	// until they're used, so check that the file is there.
	if _, err := os.Stat(credsFile); err != nil {
		return nil, fmt.Errorf("error statting credentials file (%s): %s", credsFile, err)
	}
	creds := credentials.NewSharedCredentials(credsFile, "default")

	configFile := filepath.Join(home, ".aws", "config")
	config, err := ini.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config (%s): %s", configFile, err)
	}
	region, ok := config.Get("default", "region")
	if !ok {
		return nil, fmt.Errorf("no region in the default section of %s", configFile)
	}
	return &aws.Config{
		Credentials: creds,
		Region:      aws.String(region),
		MaxRetries:  aws.Int(5),
	}, nil
}

// publish uploads the named file and returns its size.
func publish(config *aws.Config, file, bucket, key string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	sess, err := session.NewSession(config)
	if err != nil {
		return 0, err
	}
	uploader := s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
		u.Concurrency = concurrency
		u.PartSize = 20e6
	})
	_, err = uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// An index upload is a handful of large parts on a few connections. A part
// may take minutes in total, but a connection that makes no progress for
// stallTimeout is dropped and the SDK retries the part.
const (
	dialTimeout  = 10 * time.Second
	stallTimeout = time.Minute
)

func uploadTransport() *http.Transport {
	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}
	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &stallConn{Conn: conn, timeout: stallTimeout}, nil
		},
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConnsPerHost:   concurrency,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: stallTimeout,
	}
}

// stallConn fails any Read or Write that makes no progress within timeout.
type stallConn struct {
	net.Conn
	timeout time.Duration
}

func (c *stallConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *stallConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}

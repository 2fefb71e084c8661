package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

// SourceStdin reads the report from standard input.
const SourceStdin = "-"

// Loader fetches a report document from a file, an http(s) URL or stdin.
type Loader struct {
	// RetryMax is the number of retries for URL sources.
	RetryMax int
	Stdin    io.Reader
}

// NewLoader creates a Loader with the default retry policy.
func NewLoader() *Loader {
	return &Loader{RetryMax: 5, Stdin: os.Stdin}
}

// Load fetches and parses the document. Sources ending in .xz are decompressed.
func (l *Loader) Load(ctx context.Context, source string) (*ReportDocument, error) {
	raw, err := l.fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrFetch, source, err)
	}
	if strings.HasSuffix(source, ".xz") {
		raw, err = decompressXZ(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a valid xz stream: %v", ErrMalformedReport, source, err)
		}
	}
	log.Debugf("Loaded %d bytes from %s", len(raw), source)
	return Parse(raw)
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	switch {
	case source == SourceStdin:
		if l.Stdin == nil {
			return nil, fmt.Errorf("stdin is not available")
		}
		return io.ReadAll(l.Stdin)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.fetchURL(ctx, source)
	default:
		return os.ReadFile(source)
	}
}

func (l *Loader) fetchURL(ctx context.Context, url string) ([]byte, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = l.RetryMax
	retryLogger := log.New()
	retryLogger.SetLevel(log.WarnLevel)
	retryClient.Logger = retryLogger

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	client := retryClient.StandardClient()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	log.Debug("Report source response code: ", resp.Status)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected response: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func decompressXZ(raw []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

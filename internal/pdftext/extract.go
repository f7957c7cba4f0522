package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const (
	// maxDownloadBytes caps how much of a remote PDF gets read; anything
	// larger is refused rather than truncated mid-document.
	maxDownloadBytes = 32 << 20 // 32MiB
	fetchTimeout     = 60 * time.Second
)

// Extractor downloads a PDF by URL and extracts its plain text.
type Extractor struct {
	httpClient *http.Client
}

func NewExtractor() *Extractor {
	return &Extractor{httpClient: &http.Client{Timeout: fetchTimeout}}
}

// ExtractURL fetches the PDF at rawURL and returns its concatenated page
// text. Pages that fail to extract are skipped; a document yielding no text
// at all (scanned or image-based) is an error.
func (e *Extractor) ExtractURL(ctx context.Context, rawURL string) (string, error) {
	if e == nil || e.httpClient == nil {
		return "", fmt.Errorf("pdftext: extractor is not configured")
	}
	data, err := e.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return Extract(data)
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("pdftext: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("pdftext: unsupported url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pdftext: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdftext: fetch %s: status %d", rawURL, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("pdftext: read body: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("pdftext: document exceeds %d bytes", maxDownloadBytes)
	}
	return data, nil
}

// Extract pulls plain text out of an in-memory PDF document.
func Extract(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdftext: open document: %w", err)
	}

	var sb strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip pages that fail to extract
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("pdftext: no extractable text, document may be scanned or image-based")
	}
	return text, nil
}

// Truncate bounds text to at most budget runes, cutting at the last word
// boundary inside the budget when there is one.
func Truncate(text string, budget int) string {
	if budget <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	cut := string(runes[:budget])
	next := runes[budget]
	if next != ' ' && next != '\t' && next != '\n' {
		if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
			cut = cut[:idx]
		}
	}
	return strings.TrimSpace(cut)
}

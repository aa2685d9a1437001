// Package download streams remote artifacts to disk.
//
// [HTTPDownloader] writes to a uniquely named ".part" file next to the
// destination and renames it into place once the body has been read in
// full, so an interrupted download never leaves a file under the final
// name. Progress is reported as a percentage with one decimal.
package download

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/httputil"
	"github.com/matzehuels/mcbuilder/pkg/integrations"
)

// PartSuffix marks in-progress downloads.
const PartSuffix = ".part"

// ProgressFunc receives the completed percentage (0..100, one decimal).
type ProgressFunc func(percent float64)

// Downloader fetches url into dest.
type Downloader interface {
	Download(ctx context.Context, dest, url string, onProgress ProgressFunc) error
}

// HTTPDownloader downloads over HTTP.
//
// Downloads have no timeout; cancel the context to abort one. Transient
// failures (connection errors, 5xx) are retried with backoff.
type HTTPDownloader struct {
	client    *http.Client
	userAgent string
}

// NewHTTPDownloader creates a downloader. A nil client uses a default
// client without timeout.
func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPDownloader{client: client, userAgent: integrations.UserAgent}
}

// Download implements [Downloader]. Parent directories of dest are created
// as needed. Failures carry the TRANSPORT_FAILURE code.
func (d *HTTPDownloader) Download(ctx context.Context, dest, url string, onProgress ProgressFunc) error {
	if onProgress == nil {
		onProgress = func(float64) {}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeTransportFailure, err, "create directory for %s", filepath.Base(dest))
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		return d.download(ctx, dest, url, onProgress)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeTransportFailure, err, "download %s", filepath.Base(dest))
	}
	return nil
}

func (d *HTTPDownloader) download(ctx context.Context, dest, url string, onProgress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return httputil.Retryable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return httputil.Retryable(fmt.Errorf("status %d", resp.StatusCode))
	default:
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	part := PartName(dest)
	out, err := os.OpenFile(part, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer os.Remove(part)

	pw := &progressWriter{total: resp.ContentLength, report: onProgress}
	if _, err := io.Copy(out, io.TeeReader(resp.Body, pw)); err != nil {
		out.Close()
		return httputil.Retryable(err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Rename(part, dest); err != nil {
		return err
	}
	pw.finish()
	return nil
}

// PartName returns a unique in-progress name for dest.
func PartName(dest string) string {
	return dest + "." + uuid.NewString() + PartSuffix
}

// IsPart reports whether name is an in-progress download.
func IsPart(name string) bool {
	return strings.HasSuffix(name, PartSuffix)
}

// progressWriter reports whole-percent steps of a body of known length.
type progressWriter struct {
	total    int64
	received int64
	last     float64
	report   ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.received += int64(len(b))
	if p.total > 0 {
		pct := Percent(p.received, p.total)
		if pct >= p.last+1 && pct < 100 {
			p.last = pct
			p.report(pct)
		}
	}
	return len(b), nil
}

func (p *progressWriter) finish() {
	p.report(100)
}

// Percent returns received/total as a percentage rounded to one decimal.
func Percent(received, total int64) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(received) * 100 / float64(total)
	return math.Min(100, math.Round(pct*10)/10)
}

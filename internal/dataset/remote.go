package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Fetch downloads an xlsx export and opens it in memory. Network errors and
// 5xx answers are retried with exponential backoff until maxElapsed; other
// non-2xx answers fail at once.
func Fetch(ctx context.Context, url string, maxElapsed time.Duration, log *logrus.Entry) (*Workbook, error) {
	body, err := download(ctx, url, maxElapsed, log)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("open fetched workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

func download(ctx context.Context, url string, maxElapsed time.Duration, log *logrus.Entry) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error: %s", resp.Status)
		}
		if resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("download failed: %s", resp.Status))
		}
		if len(b) == 0 {
			return fmt.Errorf("empty body")
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		if log != nil {
			log.WithField("url", url).WithField("retry_in", wait.String()).WithError(err).Warn("workbook download failed")
		}
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, fmt.Errorf("fetch workbook: %w", err)
	}
	return body, nil
}

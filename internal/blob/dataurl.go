package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
)

// ErrRead is returned when the blob cannot be read.
var ErrRead = errors.New("blob: read failed")

const defaultMediaType = "application/octet-stream"

type readResult struct {
	url string
	err error
}

// ReadAsDataURL reads r to the end and returns data:<mediaType>;base64,<payload>.
// It suspends until the read completes, fails, or ctx is done.
func ReadAsDataURL(ctx context.Context, r io.Reader, mediaType string) (string, error) {
	done := make(chan readResult, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			done <- readResult{err: fmt.Errorf("%w: %w", ErrRead, err)}
			return
		}
		done <- readResult{url: encode(buf.Bytes(), mediaType)}
	}()

	select {
	case res := <-done:
		return res.url, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func encode(data []byte, mediaType string) string {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil || mt == "" {
		mt = defaultMediaType
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)
}

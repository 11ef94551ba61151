package stream

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPSource fetches a remote GRIB file over HTTP using Range requests, so
// a Framer can pull messages from a forecast archive without downloading
// the whole file up front.
type HTTPSource struct {
	url    string
	client *http.Client
	size   int64
	offset int64
}

// NewHTTPSource issues a HEAD request to learn the remote size and returns
// a source positioned at the start of the file.
func NewHTTPSource(url string) (*HTTPSource, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Head(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get content length")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP HEAD request failed: %s", resp.Status)
	}

	return &HTTPSource{
		url:    url,
		client: client,
		size:   resp.ContentLength,
	}, nil
}

// Size returns the remote file size in bytes.
func (h *HTTPSource) Size() int64 {
	return h.size
}

// Read implements the ReadFunc contract: it fills p from the current
// position via an HTTP Range request and advances. A read at or past the
// end of the remote file returns a zero count.
func (h *HTTPSource) Read(p []byte) (int, error) {
	if h.offset >= h.size {
		return 0, nil
	}

	end := h.offset + int64(len(p)) - 1
	if end >= h.size {
		end = h.size - 1
	}

	req, err := http.NewRequest("GET", h.url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", h.offset, end))

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP range request failed: %s", resp.Status)
	}

	n, err := io.ReadFull(resp.Body, p[:end-h.offset+1])
	h.offset += int64(n)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

// ReadFunc returns the source's Read method as a ReadFunc for NewFramer.
func (h *HTTPSource) ReadFunc() ReadFunc {
	return h.Read
}

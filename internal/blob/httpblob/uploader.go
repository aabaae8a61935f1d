// Package httpblob implements the evidence store against an HTTP upload
// endpoint that accepts multipart form posts, such as a Walrus publisher
// gateway.
package httpblob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/sainath5001/walrustruth/internal/domain"
)

const defaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of the upload response is read when
// decoding, which keeps a misbehaving gateway from exhausting memory.
const maxResponseBytes = 1 << 20

// Uploader posts evidence blobs as the "file" field of a multipart form and
// expects a JSON response naming the stored blob's URI.
type Uploader struct {
	uploadURL string
	client    *http.Client
}

// NewUploader creates an Uploader that posts to uploadURL. A nil client gets
// a default with a 30s timeout.
func NewUploader(uploadURL string, client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Uploader{uploadURL: uploadURL, client: client}
}

// uploadResponse matches the two field names gateways use interchangeably.
type uploadResponse struct {
	URI string `json:"uri"`
	URL string `json:"url"`
}

// Upload posts the blob and returns the URI the gateway assigned it.
func (u *Uploader) Upload(ctx context.Context, name string, data io.Reader, contentType string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("httpblob: build form: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("httpblob: read evidence %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("httpblob: finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("httpblob: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("httpblob: upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("httpblob: upload %s: unexpected status %d", name, resp.StatusCode)
	}

	var decoded uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("httpblob: decode upload response: %w", err)
	}

	uri := decoded.URI
	if uri == "" {
		uri = decoded.URL
	}
	if uri == "" {
		return "", fmt.Errorf("httpblob: upload response named no uri")
	}
	return uri, nil
}

// Compile-time interface check.
var _ domain.EvidenceStore = (*Uploader)(nil)

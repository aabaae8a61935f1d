package s3blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/sainath5001/walrustruth/internal/domain"
)

// Store implements domain.EvidenceStore on an S3-compatible bucket. Objects
// are keyed by upload date and a random id, so repeated uploads of the same
// file never collide and existing evidence is never overwritten.
type Store struct {
	client  *s3.Client
	bucket  string
	baseURI string
}

// NewStore creates a Store writing to the given client's configured bucket.
// baseURI is the public prefix the returned URIs are rooted at, for example
// "https://evidence.example.com" or "walrus://evidence".
func NewStore(c *Client, baseURI string) *Store {
	return &Store{
		client:  c.S3(),
		bucket:  c.Bucket(),
		baseURI: strings.TrimRight(baseURI, "/"),
	}
}

// Upload stores the evidence blob and returns its public URI. Evidence files
// are small (screenshots, documents), so a single PutObject is sufficient.
func (s *Store) Upload(ctx context.Context, name string, data io.Reader, contentType string) (string, error) {
	key := evidenceKey(name)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3blob: put evidence %s: %w", key, err)
	}

	return s.baseURI + "/" + key, nil
}

// evidenceKey builds a collision-free object key. Only the final path element
// of the client-supplied name is kept.
func evidenceKey(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "evidence"
	}
	return fmt.Sprintf("evidence/%s/%s-%s",
		time.Now().UTC().Format("2006-01-02"), uuid.New().String(), base)
}

// Compile-time interface check.
var _ domain.EvidenceStore = (*Store)(nil)

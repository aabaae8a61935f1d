package domain

import (
	"context"
	"io"
)

// EvidenceStore accepts an evidence file and returns the URI it can later be
// retrieved from. Implementations are external blob stores; failures degrade
// the evidence affordance only and never the rest of the view.
type EvidenceStore interface {
	Upload(ctx context.Context, name string, data io.Reader, contentType string) (uri string, err error)
}

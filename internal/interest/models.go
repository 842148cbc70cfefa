package interest

import (
	"strings"
	"time"

	dErrors "lifelink/pkg/domain-errors"
)

// Interest records a donor's expression of willingness toward a specific
// request. The composite key (RequestID, DonorID) admits at most one record;
// duplicates are rejected, never overwritten. Records are immutable once
// written.
type Interest struct {
	RequestID string    `json:"request_id"`
	DonorID   string    `json:"donor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Key returns the composite identity of the record.
func (i Interest) Key() string {
	return i.RequestID + "/" + i.DonorID
}

// New validates and constructs an interest record.
func New(requestID, donorID string, now time.Time) (Interest, error) {
	if strings.TrimSpace(requestID) == "" {
		return Interest{}, dErrors.New(dErrors.CodeInvalidInput, "request id is required")
	}
	if strings.TrimSpace(donorID) == "" {
		return Interest{}, dErrors.New(dErrors.CodeInvalidInput, "donor id is required")
	}
	return Interest{RequestID: requestID, DonorID: donorID, CreatedAt: now}, nil
}

package domain

import "fmt"

// CardMove describes a drag of one card, within a bucket or across two.
// The caller sends the full resulting order of every bucket it touched.
type CardMove struct {
	CardID         string
	SourceBucketID string
	SourceOrder    Sequence
	DestBucketID   string
	DestOrder      Sequence
	SourceVersion  *uint
	DestVersion    *uint
}

// SameBucket reports whether the card stays in its bucket.
func (m CardMove) SameBucket() bool {
	return m.DestBucketID == "" || m.DestBucketID == m.SourceBucketID
}

// Target returns the bucket the card ends up in.
func (m CardMove) Target() string {
	if m.SameBucket() {
		return m.SourceBucketID
	}
	return m.DestBucketID
}

// Validate checks the move against the current card and buckets.
// For a same-bucket move dst may be nil or equal to src.
//
// Same bucket: SourceOrder must be a permutation of the current order.
// Across buckets: the card leaves SourceOrder, appears in DestOrder, and the
// two new orders together hold exactly the ids the two buckets held before.
func (m CardMove) Validate(card *Card, src, dst *Bucket) error {
	if card == nil || src == nil {
		return fmt.Errorf("%w: missing card or source bucket", ErrInvalidOrder)
	}
	if card.BucketID != src.ID {
		return fmt.Errorf("%w: card %s is in bucket %s, not %s", ErrStaleBoard, card.ID, card.BucketID, src.ID)
	}
	if m.SourceVersion != nil && *m.SourceVersion != src.Version {
		return fmt.Errorf("%w: bucket %s is at version %d", ErrStaleBoard, src.ID, src.Version)
	}

	if m.SameBucket() {
		if !m.SourceOrder.Contains(card.ID) {
			return fmt.Errorf("%w: card %s missing from its bucket order", ErrInvalidOrder, card.ID)
		}
		return m.SourceOrder.PermutationOf(src.Order())
	}

	if dst == nil {
		return fmt.Errorf("%w: missing destination bucket", ErrInvalidOrder)
	}
	if m.DestVersion != nil && *m.DestVersion != dst.Version {
		return fmt.Errorf("%w: bucket %s is at version %d", ErrStaleBoard, dst.ID, dst.Version)
	}
	if m.SourceOrder.Contains(card.ID) {
		return fmt.Errorf("%w: card %s still listed in source bucket", ErrInvalidOrder, card.ID)
	}
	if !m.DestOrder.Contains(card.ID) {
		return fmt.Errorf("%w: card %s missing from destination bucket", ErrInvalidOrder, card.ID)
	}
	if err := m.SourceOrder.Validate(); err != nil {
		return err
	}
	if err := m.DestOrder.Validate(); err != nil {
		return err
	}

	combined := make(Sequence, 0, len(m.SourceOrder)+len(m.DestOrder))
	combined = append(combined, m.SourceOrder...)
	combined = append(combined, m.DestOrder...)
	before := make(Sequence, 0, len(src.CardOrder)+len(dst.CardOrder))
	before = append(before, src.Order()...)
	before = append(before, dst.Order()...)
	return combined.PermutationOf(before)
}

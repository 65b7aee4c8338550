package domain

import (
	"fmt"
	"regexp"
	"time"
)

var placementKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,63}$`)

// ParsePlacementKey validates a placement partition key such as HOME_MIDDLE.
func ParsePlacementKey(s string) (string, error) {
	if !placementKeyPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlacement, s)
	}
	return s, nil
}

// Banner is a promotional banner. Within a placement the positions of all
// banners are exactly 0..n-1.
type Banner struct {
	ID           string    `json:"id" bson:"_id"`
	PlacementKey string    `json:"placement_key" bson:"placement_key"`
	Position     int       `json:"position" bson:"position"`
	Title        string    `json:"title" bson:"title"`
	ImageURL     string    `json:"image_url" bson:"image_url"`
	LinkURL      string    `json:"link_url,omitempty" bson:"link_url,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Position assigns a banner its index within a placement.
type Position struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// PositionsFromOrder returns the positions implied by an ordered id list.
func PositionsFromOrder(ids []string) []Position {
	out := make([]Position, len(ids))
	for i, id := range ids {
		out[i] = Position{ID: id, Position: i}
	}
	return out
}

// ValidatePermutation checks that ids is exactly a reordering of members:
// same length, no duplicates, no foreign ids.
func ValidatePermutation(members, ids []string) error {
	if len(ids) != len(members) {
		return fmt.Errorf("%w: got %d ids, placement has %d", ErrOrderMismatch, len(ids), len(members))
	}
	known := make(map[string]bool, len(members))
	for _, id := range members {
		known[id] = false
	}
	for _, id := range ids {
		seen, ok := known[id]
		if !ok {
			return fmt.Errorf("%w: %q is not in the placement", ErrOrderMismatch, id)
		}
		if seen {
			return fmt.Errorf("%w: %q appears twice", ErrOrderMismatch, id)
		}
		known[id] = true
	}
	return nil
}

// ValidatePositions checks that positions form exactly {0..n-1} over a
// permutation of members.
func ValidatePositions(members []string, positions []Position) error {
	ids := make([]string, len(positions))
	taken := make([]bool, len(positions))
	for i, p := range positions {
		if p.Position < 0 || p.Position >= len(positions) || taken[p.Position] {
			return fmt.Errorf("%w: position %d is out of range or repeated", ErrOrderMismatch, p.Position)
		}
		taken[p.Position] = true
		ids[i] = p.ID
	}
	return ValidatePermutation(members, ids)
}

package models

import (
	"fmt"
	"strings"
	"unicode"
)

// PairSeparator joins the origin and destination keys of a distance cache
// entry. It is stripped by NormalizeAddress, so a crafted address can never
// collide with a pair key.
const PairSeparator = "|"

// AddressInput is a tagged variant: either free-text address or an already
// resolved coordinate pair. The zero value is an invalid empty text input.
type AddressInput struct {
	text     string
	coords   Coordinates
	isCoords bool
}

// TextInput wraps a free-text address.
func TextInput(address string) AddressInput {
	return AddressInput{text: address}
}

// CoordsInput wraps an already known coordinate pair.
func CoordsInput(coords Coordinates) AddressInput {
	return AddressInput{coords: coords, isCoords: true}
}

// Coords returns the coordinate pair and true when the input is the
// coordinate variant.
func (a AddressInput) Coords() (Coordinates, bool) {
	return a.coords, a.isCoords
}

// Text returns the raw address text of the text variant.
func (a AddressInput) Text() string {
	return a.text
}

// Key derives the cache key for this input: the normalized address text for
// the text variant, the stringified pair for the coordinate variant.
func (a AddressInput) Key() string {
	if a.isCoords {
		return a.coords.Key()
	}
	return NormalizeAddress(a.text)
}

// Validate rejects empty addresses and out-of-range coordinates.
func (a AddressInput) Validate() error {
	if a.isCoords {
		if !a.coords.Valid() {
			return fmt.Errorf("%w: coordinates %s out of WGS-84 range", ErrInvalidInput, a.coords.Key())
		}
		return nil
	}
	if NormalizeAddress(a.text) == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidInput)
	}
	return nil
}

// NormalizeAddress folds a free-text address into its cache key: lower-cased,
// whitespace collapsed to single spaces, punctuation stripped except letters,
// digits, commas and hyphens. Two spellings that normalize identically are
// the same cache subject. The function is idempotent.
func NormalizeAddress(address string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(address) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ',' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// PairKey builds the directional distance cache key for an origin and
// destination. Origin->destination and destination->origin are distinct
// entries: real routing is not symmetric even though the local algorithms
// are.
func PairKey(origin, destination AddressInput) string {
	return origin.Key() + PairSeparator + destination.Key()
}

package models

import (
	"errors"
	"fmt"

	"github.com/iudanet/tmasync/internal/validation"
)

// ErrInvalidSyncTag indicates a tag that is not "sync-<kind>" or "sync-all"
var ErrInvalidSyncTag = errors.New("invalid sync tag")

// ValidateSyncTag checks the tag format and returns the kind it addresses
func ValidateSyncTag(tag string) (string, error) {
	kind, ok := KindFromSyncTag(tag)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSyncTag, tag)
	}
	if kind != "" {
		if err := validation.ValidateKind(kind); err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidSyncTag, tag, err)
		}
	}
	return kind, nil
}

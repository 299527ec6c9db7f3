// Package reportcache memoises evaluated reports keyed by client and a hash
// of the inputs that produced them. A hit is only ever a shortcut: reports
// are always recomputable from the source records.
package reportcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	id "onboarding/pkg/domain"
)

// Memo stores opaque report payloads.
type Memo interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key builds "<clientID>:<sha256 of inputs as JSON>".
func Key(clientID id.ClientID, inputs any) (string, error) {
	raw, err := json.Marshal(inputs)
	if err != nil {
		return "", fmt.Errorf("hash report inputs: %w", err)
	}
	sum := sha256.Sum256(raw)
	return clientID.String() + ":" + hex.EncodeToString(sum[:]), nil
}

// Lookup decodes a memoised value into dst. A miss or undecodable payload
// returns false.
func Lookup(ctx context.Context, memo Memo, key string, dst any) (bool, error) {
	if memo == nil {
		return false, nil
	}
	raw, ok, err := memo.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, nil
	}
	return true, nil
}

// Store encodes value and saves it under key.
func Store(ctx context.Context, memo Memo, key string, value any) error {
	if memo == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return memo.Set(ctx, key, raw)
}

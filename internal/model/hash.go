package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. Version suffix enables
// future algorithm migration.
const (
	DomainFinding = "sealint/finding/v1"
	DomainSeeds   = "sealint/seeds/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FindingKey computes the content-addressed identity of a finding:
// rule + instruction + sorted slot set. Two findings with the same key are
// exact duplicates for aggregation purposes. Severity and message are
// intentionally excluded - they are derived presentation, not identity.
func FindingKey(f Finding) (string, error) {
	slots := f.SortedSlots()
	slotVals := make([]any, len(slots))
	for i, s := range slots {
		slotVals[i] = s
	}

	obj := map[string]any{
		"rule":        string(f.Rule),
		"instruction": f.Instruction,
		"slots":       slotVals,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("FindingKey: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainFinding, canonical), nil
}

// MustFindingKey is like FindingKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFindingKey(f Finding) string {
	key, err := FindingKey(f)
	if err != nil {
		panic(err)
	}
	return key
}

// SeedsKey computes the content-addressed identity of a seed literal list.
// Order is significant: ["vault", user] and [user, "vault"] derive
// different addresses on chain, so they hash differently here too.
func SeedsKey(seeds []string) (string, error) {
	seedVals := make([]any, len(seeds))
	for i, s := range seeds {
		seedVals[i] = s
	}

	canonical, err := MarshalCanonical([]any(seedVals))
	if err != nil {
		return "", fmt.Errorf("SeedsKey: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainSeeds, canonical), nil
}

// MustSeedsKey is like SeedsKey but panics on error.
func MustSeedsKey(seeds []string) string {
	key, err := SeedsKey(seeds)
	if err != nil {
		panic(err)
	}
	return key
}

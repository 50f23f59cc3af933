package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSignature = "pybridge/signature/v1"
	DomainBindings  = "pybridge/bindings/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SignatureID computes the content-addressed ID of a signature. Two
// signatures with the same module, names and types share an ID regardless of
// source location.
func SignatureID(sig *Signature) (string, error) {
	canonical, err := MarshalCanonical(sig.Describe())
	if err != nil {
		return "", fmt.Errorf("SignatureID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSignature, canonical), nil
}

// Digest fingerprints a whole set of signatures. Order matters: callers pass
// signatures in model traversal order. The digest is stamped into generated
// glue so stale output can be detected.
func Digest(sigs []*Signature) (string, error) {
	items := make([]any, len(sigs))
	for i, s := range sigs {
		items[i] = s.Describe()
	}
	canonical, err := MarshalCanonical(map[string]any{
		"glue_version": GlueVersion,
		"signatures":   items,
	})
	if err != nil {
		return "", fmt.Errorf("Digest: failed to marshal: %w", err)
	}
	return "sha256:" + hashWithDomain(DomainBindings, canonical), nil
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDigest(sigs []*Signature) string {
	d, err := Digest(sigs)
	if err != nil {
		panic(err)
	}
	return d
}

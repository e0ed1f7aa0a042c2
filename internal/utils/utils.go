package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/decoder"
)

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}

// DecodeJSON decodes a JSON stream into target using sonic.
func DecodeJSON(r io.Reader, target any) error {
	return decoder.NewStreamDecoder(r).Decode(target)
}

// MarshalString marshals v and returns it as a string, ignoring errors.
// Meant for log attributes only.
func MarshalString(v any) string {
	buf, err := sonic.Marshal(v)
	if err != nil {
		return ""
	}
	return string(buf)
}

// PromptFingerprint returns a short, non-reversible fingerprint of a prompt
// for log correlation. Not suitable for deduplication of near-identical prompts.
func PromptFingerprint(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:8])
}

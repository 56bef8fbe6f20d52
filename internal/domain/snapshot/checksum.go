package snapshot

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/bytedance/sonic"
	"github.com/gowebpki/jcs"
)

// checksum is the sha256 of the RFC 8785 canonical form of v, so producers
// that order keys or format numbers differently agree on it.
func checksum(v any) (string, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

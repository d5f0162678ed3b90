package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image/color"
)

// hashKey builds "prefix:sha256(json(parts))".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashColors fingerprints a colour list so two palettes with the same name
// but different entries never share frames.
func HashColors(colors []color.RGBA) string {
	buf := make([]byte, 0, 4*len(colors))
	for _, c := range colors {
		buf = append(buf, c.R, c.G, c.B, c.A)
	}
	return Hash(buf)
}

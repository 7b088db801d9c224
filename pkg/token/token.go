package token

import (
	"crypto/rand"
	"encoding/base64"
)

// RoomTokenBytes is the entropy of a room token. 16 bytes encodes to a
// 22-character URL-safe string.
const RoomTokenBytes = 16

// NewRoomToken returns a cryptographically random URL-safe token used as the
// shareable identifier of a published receipt's payment room.
func NewRoomToken() (string, error) {
	buf := make([]byte, RoomTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

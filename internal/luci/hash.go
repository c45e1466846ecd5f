package luci

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Protocol constants shared with the stock MiWiFi web client. PublicKey is
// baked into the router firmware; PasswordHash must match it byte for byte
// or the router rejects the login.
const (
	PublicKey = "a2ffa5c9be07488bbb04a3a47d3c5f6a"
	Username  = "admin"
	LoginType = 2

	nonceType = 0
)

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// macAddress renders the host's node ID the way the stock client renders a
// MAC address. The router never validates it; it only salts the nonce.
func macAddress() string {
	node := uuid.NodeID()

	buf := make([]byte, 0, len(node)*3)
	for i, b := range node {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = fmt.Appendf(buf, "%02x", b)
	}
	return string(buf)
}

// Nonce returns a fresh login nonce in the wire format
// "{type}_{mac}_{unixSeconds}_{random 0-999}". Uniqueness rides on the
// timestamp and random suffix; that is as strong a guarantee as the
// firmware itself relies on.
func Nonce() string {
	return fmt.Sprintf("%d_%s_%d_%d", nonceType, macAddress(), time.Now().Unix(), rand.Intn(1000))
}

// PasswordHash derives the challenge response sent in place of the raw
// password: sha1(nonce + sha1(password + PublicKey)).
func PasswordHash(nonce, password string) string {
	return sha1Hex(nonce + sha1Hex(password+PublicKey))
}

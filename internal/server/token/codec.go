package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	server "github.com/charadev96/corkboard/internal/server/domain"
)

const (
	// KeySize is the required length of the process-wide secret key.
	KeySize = 32

	boxNonceSize = 24
)

// Codec seals invitation payloads into opaque, tamper-evident tokens and
// opens them again. Validity of a token depends only on the key and the
// token bytes; the codec holds no other state.
type Codec struct {
	key  [KeySize]byte
	Rand io.Reader
}

func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid secret key length %d, must be %d bytes", len(key), KeySize)
	}
	c := &Codec{}
	copy(c.key[:], key)
	return c, nil
}

// Encode seals p under the secret key. The box nonce is random, so two
// encodings of the same payload produce different tokens; only the
// embedded invitation nonce identifies a payload.
func (c *Codec) Encode(p server.InvitePayload) (string, error) {
	plain, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to serialize invite payload: %w", err)
	}

	rnd := c.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	var nonce [boxNonceSize]byte
	if _, err := io.ReadFull(rnd, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate box nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plain, &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens tok and returns its payload. Every failure path returns
// ErrTokenInvalid so callers cannot tell tampering, truncation, and
// malformed input apart.
func (c *Codec) Decode(tok string) (server.InvitePayload, error) {
	p := server.InvitePayload{}

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) < boxNonceSize+secretbox.Overhead {
		return p, server.ErrTokenInvalid
	}

	var nonce [boxNonceSize]byte
	copy(nonce[:], raw[:boxNonceSize])
	plain, ok := secretbox.Open(nil, raw[boxNonceSize:], &nonce, &c.key)
	if !ok {
		return p, server.ErrTokenInvalid
	}

	if err := json.Unmarshal(plain, &p); err != nil {
		return p, server.ErrTokenInvalid
	}
	return p, nil
}

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/userbase/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argon2Algorithm = "argon2id"

	defaultArgon2Time    uint32 = 1
	defaultArgon2Memory  uint32 = 64 * 1024
	defaultArgon2Threads uint8  = 4
	defaultArgon2KeyLen  uint32 = 32
	defaultSaltLen              = 16

	// records asking for more memory than this (KiB) are refused on verify
	maxArgon2Memory uint32 = 1 << 20
)

// randomBytes is a test seam for the salt source.
var randomBytes = common.RandomBytes

// PasswordHasher turns plaintext passwords into self-describing argon2id
// records and checks candidates against them. It is safe for concurrent use.
//
// Record format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<base64 salt>$<base64 digest>
type PasswordHasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

type HasherOption func(*PasswordHasher)

// WithArgon2Time sets the number of passes over memory.
func WithArgon2Time(t uint32) HasherOption {
	return func(h *PasswordHasher) { h.time = t }
}

// WithArgon2Memory sets the memory cost in KiB.
func WithArgon2Memory(m uint32) HasherOption {
	return func(h *PasswordHasher) { h.memory = m }
}

// WithArgon2Threads sets the degree of parallelism.
func WithArgon2Threads(p uint8) HasherOption {
	return func(h *PasswordHasher) { h.threads = p }
}

func NewPasswordHasher(opts ...HasherOption) *PasswordHasher {
	h := &PasswordHasher{
		time:    defaultArgon2Time,
		memory:  defaultArgon2Memory,
		threads: defaultArgon2Threads,
		keyLen:  defaultArgon2KeyLen,
		saltLen: defaultSaltLen,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash derives a record for plaintext using a fresh random salt. It fails
// only when the system entropy source fails; the error wraps
// common.ErrHashingFailure.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	salt, err := randomBytes(h.saltLen)
	if err != nil {
		return "", fmt.Errorf("%w: generate salt: %v", common.ErrHashingFailure, err)
	}

	digest := argon2.IDKey([]byte(plaintext), salt, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Algorithm,
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether plaintext matches record. Records that cannot be
// decoded never verify.
func (h *PasswordHasher) Verify(plaintext, record string) bool {
	p, err := decodeRecord(record)
	if err != nil {
		return false
	}

	digest := argon2.IDKey([]byte(plaintext), p.salt, p.time, p.memory, p.threads, uint32(len(p.digest)))

	return subtle.ConstantTimeCompare(digest, p.digest) == 1
}

type argon2Record struct {
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	digest  []byte
}

func decodeRecord(record string) (*argon2Record, error) {
	parts := strings.Split(record, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2Algorithm {
		return nil, errors.New("unsupported record format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	r := &argon2Record{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &r.memory, &r.time, &r.threads); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	if r.time == 0 || r.threads == 0 || r.memory == 0 || r.memory > maxArgon2Memory {
		return nil, errors.New("params out of range")
	}

	var err error
	if r.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	if r.digest, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("decode digest: %w", err)
	}
	if len(r.salt) == 0 || len(r.digest) == 0 {
		return nil, errors.New("empty salt or digest")
	}

	return r, nil
}

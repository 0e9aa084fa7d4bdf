// internal/snapshot/codec.go
package snapshot

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"gymnexus/internal/membership"
)

const (
	Format    = "gymnexus.registry"
	Version   = 1
	Extension = ".gym"
)

var (
	ErrCorrupt            = errors.New("corrupt snapshot")
	ErrUnknownFormat      = errors.New("not a member registry snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// ErrSnapshotNotFound also matches membership.ErrNotFound.
var ErrSnapshotNotFound error = missingError("snapshot not found")

type missingError string

func (e missingError) Error() string { return string(e) }

func (e missingError) Is(target error) bool { return target == membership.ErrNotFound }

// Header describes a snapshot without its members.
type Header struct {
	ID        uuid.UUID `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Count     int       `json:"count"`
}

// envelope is the on-disk layout. Checksum is the BLAKE2b-256 of the
// compacted Members payload.
type envelope struct {
	Format    string          `json:"format"`
	Version   int             `json:"version"`
	ID        uuid.UUID       `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Count     int             `json:"count"`
	Checksum  string          `json:"checksum"`
	Members   json.RawMessage `json:"members"`
}

// Encode serialises the whole registry into a versioned snapshot.
func Encode(members []membership.Member, now time.Time) (Header, []byte, error) {
	if members == nil {
		members = []membership.Member{}
	}
	payload, err := json.Marshal(members)
	if err != nil {
		return Header{}, nil, fmt.Errorf("marshal members: %w", err)
	}
	sum := blake2b.Sum256(payload)

	env := envelope{
		Format:    Format,
		Version:   Version,
		ID:        uuid.New(),
		CreatedAt: now.UTC(),
		Count:     len(members),
		Checksum:  hex.EncodeToString(sum[:]),
		Members:   payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return Header{}, nil, fmt.Errorf("marshal envelope: %w", err)
	}

	return Header{ID: env.ID, Version: env.Version, CreatedAt: env.CreatedAt, Count: env.Count}, data, nil
}

// Decode verifies and deserialises a snapshot produced by Encode.
func Decode(data []byte) (Header, []membership.Member, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Header{}, nil, fmt.Errorf("%w: malformed envelope", ErrCorrupt)
	}
	if env.Format != Format {
		return Header{}, nil, fmt.Errorf("%w: format %q", ErrUnknownFormat, env.Format)
	}
	if env.Version != Version {
		return Header{}, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, env.Members); err != nil {
		return Header{}, nil, fmt.Errorf("%w: malformed members payload", ErrCorrupt)
	}
	sum := blake2b.Sum256(compact.Bytes())
	if hex.EncodeToString(sum[:]) != env.Checksum {
		return Header{}, nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	var members []membership.Member
	if err := json.Unmarshal(compact.Bytes(), &members); err != nil {
		return Header{}, nil, fmt.Errorf("%w: malformed member records", ErrCorrupt)
	}
	if len(members) != env.Count {
		return Header{}, nil, fmt.Errorf("%w: expected %d members, found %d", ErrCorrupt, env.Count, len(members))
	}
	for i := range members {
		if err := members[i].Validate(); err != nil {
			return Header{}, nil, fmt.Errorf("%w: record %d: %w", ErrCorrupt, i, err)
		}
	}

	return Header{ID: env.ID, Version: env.Version, CreatedAt: env.CreatedAt, Count: env.Count}, members, nil
}

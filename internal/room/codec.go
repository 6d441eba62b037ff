package room

import (
	"errors"

	"github.com/hearthlabs/hearth-core/internal/device"
	"github.com/hearthlabs/hearth-core/internal/wire"
)

// ErrMalformedSnapshot is returned when a room snapshot's header (name
// or member count) cannot be decoded.
var ErrMalformedSnapshot = errors.New("room: malformed snapshot")

// MarshalBinary encodes the room for persistence or transfer.
//
// Layout: name length (4 bytes) + name bytes, member count (4 bytes),
// then one fixed-width 8-byte identifier per member.
func (r *Room) MarshalBinary() ([]byte, error) {
	members := r.Members()

	data := wire.AppendString(nil, r.Name)
	data = wire.AppendUint32(data, uint32(len(members)))
	for _, id := range members {
		data = wire.AppendUint64(data, uint64(id))
	}
	return data, nil
}

// Decode reconstructs a room from its binary snapshot.
//
// Decoding degrades gracefully: if the member list is shorter than the
// declared count, the identifiers that did decode are kept and the
// rest are skipped — a corrupted member never discards the whole room.
// Only an undecodable header yields an error.
func Decode(data []byte) (*Room, error) {
	name, rest, err := wire.ConsumeString(data)
	if err != nil {
		return nil, ErrMalformedSnapshot
	}

	count, rest, err := wire.ConsumeUint32(rest)
	if err != nil {
		return nil, ErrMalformedSnapshot
	}

	r := New(name)
	for range count {
		var id uint64
		id, rest, err = wire.ConsumeUint64(rest)
		if err != nil {
			// Truncated member list: keep what decoded.
			break
		}
		r.AddMember(device.Identifier(id))
	}
	return r, nil
}

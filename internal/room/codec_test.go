package room

import (
	"errors"
	"testing"

	"github.com/hearthlabs/hearth-core/internal/device"
)

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		room    string
		members []device.Identifier
	}{
		{"empty room", "study", nil},
		{"single member", "kitchen", []device.Identifier{42}},
		{"several members", "living room", []device.Identifier{1, 2, 9001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := New(tt.room)
			for _, id := range tt.members {
				original.AddMember(id)
			}

			data, err := original.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary() error = %v", err)
			}

			decoded, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if decoded.Name != tt.room {
				t.Errorf("Name = %q, want %q", decoded.Name, tt.room)
			}
			if decoded.Count() != len(tt.members) {
				t.Errorf("Count() = %d, want %d", decoded.Count(), len(tt.members))
			}
			for _, id := range tt.members {
				if !decoded.Contains(id) {
					t.Errorf("decoded room missing member %d", id)
				}
			}
		})
	}
}

func TestDecode_TruncatedMemberListKeepsDecoded(t *testing.T) {
	original := New("hall")
	original.AddMember(1)
	original.AddMember(2)

	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}

	// Cut the last member short: the room and the first member must
	// survive.
	decoded, err := Decode(data[:len(data)-4])
	if err != nil {
		t.Fatalf("Decode(truncated) error = %v, want graceful decode", err)
	}
	if decoded.Name != "hall" {
		t.Errorf("Name = %q, want hall", decoded.Name)
	}
	if decoded.Count() != 1 {
		t.Errorf("Count() = %d, want 1 surviving member", decoded.Count())
	}
}

func TestDecode_MalformedHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short name length", []byte{0, 0}},
		{"missing member count", append([]byte{0, 0, 0, 4}, []byte("hall")...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, ErrMalformedSnapshot) {
				t.Errorf("Decode() error = %v, want ErrMalformedSnapshot", err)
			}
		})
	}
}

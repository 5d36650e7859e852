package codec

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/pkmsig/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string
	Amount  uint64
	Keys    [][]byte
	Flag    bool
	Payload []byte
}

func (s sample) Marshal() ([]byte, error) {
	return NewWriter().
		String(1, s.Name).
		Uint64(2, s.Amount).
		RepeatedBytes(3, s.Keys).
		Bool(4, s.Flag).
		Bytes(5, s.Payload).
		Result()
}

func (s *sample) Unmarshal(raw []byte) error {
	*s = sample{}
	r := NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			s.Name, err = r.String(wire)
		case 2:
			s.Amount, err = r.Uint64(wire)
		case 3:
			var k []byte
			k, err = r.Bytes(wire)
			s.Keys = append(s.Keys, k)
		case 4:
			s.Flag, err = r.Bool(wire)
		case 5:
			s.Payload, err = r.Bytes(wire)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func TestWriterMatchesProtoBuffer(t *testing.T) {
	raw, err := sample{Name: "ab", Amount: 300}.Marshal()
	require.NoError(t, err)

	b := proto.NewBuffer(nil)
	require.NoError(t, b.EncodeVarint(1<<3|WireBytes))
	require.NoError(t, b.EncodeStringBytes("ab"))
	require.NoError(t, b.EncodeVarint(2<<3|WireVarint))
	require.NoError(t, b.EncodeVarint(300))
	assert.Equal(t, b.Bytes(), raw)
}

func TestReaderRoundTrip(t *testing.T) {
	in := sample{
		Name:    "wallet",
		Amount:  1 << 40,
		Keys:    [][]byte{{1, 2}, {3}},
		Flag:    true,
		Payload: []byte("data"),
	}
	raw, err := in.Marshal()
	require.NoError(t, err)

	var out sample
	require.NoError(t, out.Unmarshal(raw))
	assert.Equal(t, in, out)
}

func TestReaderSkipsUnknownFields(t *testing.T) {
	raw, err := NewWriter().
		Uint64(9, 77).
		Bytes(10, []byte("ignored")).
		String(1, "kept").
		Result()
	require.NoError(t, err)

	var out sample
	require.NoError(t, out.Unmarshal(raw))
	assert.Equal(t, "kept", out.Name)
}

func TestReaderMalformed(t *testing.T) {
	cases := map[string][]byte{
		"truncated length": {1<<3 | WireBytes, 10, 'a'},
		"truncated varint": {2<<3 | WireVarint, 0x80},
		"zero field":       {0},
		"wrong wire type":  {2<<3 | WireBytes, 1, 'a'},
	}
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			var out sample
			err := out.Unmarshal(raw)
			assert.True(t, errors.ErrInput.Is(err), "got %v", err)
		})
	}
}

func TestSequence(t *testing.T) {
	v, err := DecodeSequence(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	v, err = DecodeSequence(EncodeSequence(513))
	require.NoError(t, err)
	assert.Equal(t, uint64(513), v)

	_, err = DecodeSequence([]byte{1})
	assert.True(t, errors.ErrInput.Is(err))
}

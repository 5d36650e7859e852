package multisig

import (
	"encoding/hex"
	"encoding/json"

	"github.com/iov-one/pkmsig/errors"
)

// hexBytes is a byte slice that is represented as a hex string in JSON.
type hexBytes []byte

func (h hexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func (h *hexBytes) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "hex value must be a string")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "invalid hex: %s", err)
	}
	*h = b
	return nil
}

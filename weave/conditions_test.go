package weave_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAddressPrinting(t *testing.T) {
	Convey("test hexademical address printing", t, func() {
		b := []byte("ABCD123456LHB")
		addr := weave.Address(b)

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", b))
	})

	Convey("test hexademical condition printing", t, func() {
		cond := weave.NewCondition("multisig", "wallet", []byte("ABCD123456LHB"))

		So(cond.String(), ShouldNotEqual, fmt.Sprintf("%X", []byte(cond)))
		So(cond.String(), ShouldStartWith, "multisig/wallet/")
	})

	Convey("test empty address printing", t, func() {
		So(weave.Address(nil).String(), ShouldEqual, "(nil)")
	})
}

func TestConditionParse(t *testing.T) {
	Convey("A valid condition", t, func() {
		cond := weave.NewCondition("multisig", "wallet", []byte{0x01, 0x02})

		Convey("parses back into its sections", func() {
			ext, typ, data, err := cond.Parse()
			So(err, ShouldBeNil)
			So(ext, ShouldEqual, "multisig")
			So(typ, ShouldEqual, "wallet")
			So(data, ShouldResemble, []byte{0x01, 0x02})
		})

		Convey("validates", func() {
			So(cond.Validate(), ShouldBeNil)
		})

		Convey("produces an address of the configured length", func() {
			So(len(cond.Address()), ShouldEqual, weave.AddressLength)
		})
	})

	Convey("An invalid condition", t, func() {
		cond := weave.Condition("no/data")

		Convey("fails to parse", func() {
			_, _, _, err := cond.Parse()
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})

		Convey("fails validation", func() {
			So(errors.ErrInput.Is(cond.Validate()), ShouldBeTrue)
		})
	})
}

func TestAddressUnmarshalJSON(t *testing.T) {
	valid := weave.NewCondition("multisig", "wallet", []byte("walletid")).Address()
	hexAddr := strings.ToUpper(fmt.Sprintf("%x", []byte(valid)))
	bech, err := valid.Bech32("pkm")
	if err != nil {
		t.Fatalf("cannot encode bech32: %s", err)
	}

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr weave.Address
	}{
		"default decoding": {
			json:     `"` + hexAddr + `"`,
			wantAddr: valid,
		},
		"hex decoding": {
			json:     `"hex:` + hexAddr + `"`,
			wantAddr: valid,
		},
		"cond decoding": {
			json:     `"cond:multisig/wallet/77616c6c65746964"`,
			wantAddr: valid,
		},
		"bech32 decoding": {
			json:     `"bech32:` + bech + `"`,
			wantAddr: valid,
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"too short hex": {
			json:    `"6865782d61646472"`,
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a weave.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !reflect.DeepEqual(a, tc.wantAddr) {
				t.Fatalf("got address: %q", a)
			}
		})
	}
}

func TestAddressMarshalJSON(t *testing.T) {
	addr := weave.NewAddress([]byte("something"))
	raw, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("cannot marshal: %s", err)
	}
	var back weave.Address
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("cannot unmarshal: %s", err)
	}
	if !bytes.Equal(addr, back) {
		t.Fatalf("want %s, got %s", addr, back)
	}
}

package stakeweave

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iov-one/stakeweave/crypto/bech32"
	"github.com/iov-one/stakeweave/errors"
	"golang.org/x/crypto/blake2b"
)

// AddressLength is the length of all addresses.
const AddressLength = 20

// AddressHRP is the human readable part used when an address is bech32
// encoded.
const AddressHRP = "stake"

// conditionFormat is extension/type/data. Data is binary and may hold any
// byte, newlines included.
var conditionFormat = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,8})/([a-zA-Z0-9_\-]{3,8})/(.+)$`)

// Condition names an entity the engine derives an address for: a pool of
// the router, a currency of the collateral model or an account. It reads
// extension/type/data, where the extension owning it and the type are
// short ascii words.
type Condition []byte

// NewCondition joins the three sections of a condition.
func NewCondition(ext, typ string, data []byte) Condition {
	c := make(Condition, 0, len(ext)+len(typ)+len(data)+2)
	c = append(c, ext...)
	c = append(c, '/')
	c = append(c, typ...)
	c = append(c, '/')
	return append(c, data...)
}

// Parse splits c into extension, type and data.
func (c Condition) Parse() (ext, typ string, data []byte, err error) {
	m := conditionFormat.FindSubmatch(c)
	if m == nil {
		return "", "", nil, errors.Wrapf(errors.ErrInput, "condition: %X", []byte(c))
	}
	return string(m[1]), string(m[2]), m[3], nil
}

func (c Condition) Address() Address {
	return NewAddress(c)
}

func (c Condition) Equals(other Condition) bool {
	return bytes.Equal(c, other)
}

// String prints the data section in hex.
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

func (c Condition) Validate() error {
	_, _, _, err := c.Parse()
	return err
}

// parseCondition reads the String form back.
func parseCondition(source string) (Condition, error) {
	sections := strings.SplitN(source, "/", 3)
	if len(sections) != 3 {
		return nil, errors.Wrapf(errors.ErrInput, "condition %q", source)
	}
	data, err := hex.DecodeString(sections[2])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "condition data: %s", err)
	}
	c := NewCondition(sections[0], sections[1], data)
	return c, c.Validate()
}

// Address is a fixed width identifier of a stakeholder or a pool.
// It is usually a one-way digest of a Condition.
type Address [AddressLength]byte

// NewAddress hashes data into an address.
func NewAddress(data []byte) Address {
	h, err := blake2b.New(AddressLength, nil)
	if err != nil {
		// only returned for invalid sizes
		panic(err)
	}
	_, _ = h.Write(data)
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// AddressFromBytes copies a raw address. It fails if the length does not
// match AddressLength.
func AddressFromBytes(raw []byte) (Address, error) {
	var a Address
	if len(raw) != AddressLength {
		return a, errors.Wrapf(errors.ErrInput, "address length %d", len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// Bytes returns a copy of the raw address, suitable for building keys.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// IsZero returns true for the unset address.
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Equals(b Address) bool {
	return a == b
}

// String returns the upper case hex representation.
func (a Address) String() string {
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// Bech32 returns the bech32 representation using AddressHRP.
func (a Address) Bech32() string {
	raw, err := bech32.Encode(AddressHRP, a[:])
	if err != nil {
		// only fails for invalid human readable parts
		panic(err)
	}
	return string(raw)
}

// MarshalJSON writes the hex form instead of a byte array.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress accepts an address in a human readable format. If the encoded
// string starts with a prefix ("hex:", "cond:" or "bech32:") the matching
// decoding is used, otherwise hex is assumed.
func ParseAddress(enc string) (Address, error) {
	chunks := strings.SplitN(enc, ":", 2)
	format := chunks[0]
	if len(chunks) == 1 {
		format = "hex"
	} else {
		enc = chunks[1]
	}

	switch format {
	case "hex":
		val, err := hex.DecodeString(enc)
		if err != nil {
			return Address{}, errors.Wrap(errors.ErrInput, "cannot decode hex")
		}
		return AddressFromBytes(val)
	case "cond":
		c, err := parseCondition(enc)
		if err != nil {
			return Address{}, err
		}
		return c.Address(), nil
	case "bech32":
		payload, err := bech32.DecodeHRP(enc, AddressHRP)
		if err != nil {
			return Address{}, err
		}
		return AddressFromBytes(payload)
	default:
		return Address{}, errors.Wrapf(errors.ErrType, "unknown format %q", format)
	}
}

package vm

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// NumRegisters is the size of the register bank.
const NumRegisters = 10

// Kind tags the value held by a Register.
type Kind uint8

const (
	KindInteger Kind = iota
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "integer":
		return KindInteger, nil
	case "string":
		return KindString, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrRegisterKind, s)
	}
}

// Register holds exactly one of an integer or a string. The zero value is integer 0.
type Register struct {
	kind    Kind
	integer uint32
	str     string
}

func IntegerRegister(v uint32) Register {
	return Register{kind: KindInteger, integer: v}
}

func StringRegister(s string) Register {
	return Register{kind: KindString, str: s}
}

func (r Register) Kind() Kind {
	return r.kind
}

// Integer returns the integer value, and false if the register holds a string.
func (r Register) Integer() (uint32, bool) {
	if r.kind != KindInteger {
		return 0, false
	}
	return r.integer, true
}

// Text returns the string value, and false if the register holds an integer.
func (r Register) Text() (string, bool) {
	if r.kind != KindString {
		return "", false
	}
	return r.str, true
}

func (r Register) String() string {
	if r.kind == KindString {
		return fmt.Sprintf("%q", r.str)
	}
	return fmt.Sprintf("0x%08x (%d)", r.integer, r.integer)
}

// registerEncoding is the serialized form of a Register, shared by JSON and CBOR.
type registerEncoding struct {
	Kind    string `json:"kind" cbor:"kind"`
	Integer uint32 `json:"integer,omitempty" cbor:"integer,omitempty"`
	String  string `json:"string,omitempty" cbor:"string,omitempty"`
}

func (r Register) encoding() registerEncoding {
	return registerEncoding{Kind: r.kind.String(), Integer: r.integer, String: r.str}
}

func (r *Register) fromEncoding(enc registerEncoding) error {
	kind, err := parseKind(enc.Kind)
	if err != nil {
		return err
	}
	switch kind {
	case KindInteger:
		*r = IntegerRegister(enc.Integer)
	case KindString:
		*r = StringRegister(enc.String)
	}
	return nil
}

func (r Register) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.encoding())
}

func (r *Register) UnmarshalJSON(data []byte) error {
	var enc registerEncoding
	if err := json.Unmarshal(data, &enc); err != nil {
		return err
	}
	return r.fromEncoding(enc)
}

func (r Register) MarshalCBOR() ([]byte, error) {
	return cborEncMode.Marshal(r.encoding())
}

func (r *Register) UnmarshalCBOR(data []byte) error {
	var enc registerEncoding
	if err := cbor.Unmarshal(data, &enc); err != nil {
		return err
	}
	return r.fromEncoding(enc)
}

// Registers is the register bank. Indexing outside [0, NumRegisters) panics
// with ErrRegisterIndex: it means the handler computed a bad register number.
type Registers [NumRegisters]Register

func (rs *Registers) at(i int) *Register {
	if i < 0 || i >= NumRegisters {
		panic(fmt.Errorf("%w: #%d", ErrRegisterIndex, i))
	}
	return &rs[i]
}

func (rs *Registers) Kind(i int) Kind {
	return rs.at(i).kind
}

func (rs *Registers) Integer(i int) (uint32, bool) {
	return rs.at(i).Integer()
}

func (rs *Registers) Text(i int) (string, bool) {
	return rs.at(i).Text()
}

// SetInteger retags register i as an integer, dropping any string it held.
func (rs *Registers) SetInteger(i int, v uint32) {
	*rs.at(i) = IntegerRegister(v)
}

// SetString retags register i as a string, replacing any previous value.
func (rs *Registers) SetString(i int, s string) {
	*rs.at(i) = StringRegister(s)
}

// StringBytes is the amount of string storage currently owned by the bank.
func (rs *Registers) StringBytes() int {
	n := 0
	for i := range rs {
		if rs[i].kind == KindString {
			n += len(rs[i].str)
		}
	}
	return n
}

// Clear resets every register to integer 0.
func (rs *Registers) Clear() {
	*rs = Registers{}
}

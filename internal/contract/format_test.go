package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// opaque is a Value the JSON encoder refuses.
type opaque struct{}

func (opaque) isValue() {}

func (opaque) MarshalJSON() ([]byte, error) { return nil, errors.New("opaque") }

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"nil", nil, ""},
		{"integer", NewInteger(-42), "-42"},
		{"zero integer", Integer{}, "0"},
		{"bool", Boolean(true), "true"},
		{"address", Address("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"), "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"},
		{"text", Text("hi"), "hi"},
		{"bytes", RawBytes("0x00ff"), "0x00ff"},
		{"sequence", Sequence{NewInteger(1), NewInteger(2)}, "[1, 2]"},
		{"empty sequence", Sequence{}, "[]"},
		{"nested sequence", Sequence{Sequence{Boolean(false)}, Text("x")}, "[[false], x]"},
		{"record", Record{NewInteger(1), Text("Alice")}, "[\n  \"1\",\n  \"Alice\"\n]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestFormatRecordFallsBack(t *testing.T) {
	rec := Record{opaque{}}
	out := Format(rec)
	assert.NotEmpty(t, out)
	assert.NotContains(t, out, "\n")
}

package espn

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{name: "float", in: 12.5, want: 12.5, ok: true},
		{name: "display with unit", in: "31.5 pts", want: 31.5, ok: true},
		{name: "negative", in: "-2", want: -2, ok: true},
		{name: "leading fraction", in: ".5", want: 0.5, ok: true},
		{name: "trailing dot", in: "7.", want: 7, ok: true},
		{name: "second dot ends number", in: "1.2.3", want: 1.2, ok: true},
		{name: "no digits", in: "DNP", ok: false},
		{name: "lone minus", in: "-", ok: false},
		{name: "double minus", in: "--5", ok: false},
		{name: "empty", in: "", ok: false},
		{name: "overflow", in: "1" + strings.Repeat("0", 400), ok: false},
		{name: "unsupported type", in: true, ok: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := toNumber(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

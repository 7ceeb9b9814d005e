package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simplevm/simplevm/svmgo/vm"
)

func TestStepMatcher(t *testing.T) {
	at := func(step uint64) *vm.VMState { return &vm.VMState{Step: step} }

	tests := []struct {
		pattern string
		matches []uint64
		misses  []uint64
	}{
		{"never", nil, []uint64{0, 1, 100}},
		{"", nil, []uint64{0, 7}},
		{"always", []uint64{0, 1, 12345}, nil},
		{"=10", []uint64{10}, []uint64{0, 9, 11, 20}},
		{"=0x10", []uint64{16}, []uint64{10}},
		{"%3", []uint64{0, 3, 300}, []uint64{1, 2, 301}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m, err := ParseStepMatcher(tt.pattern)
			require.NoError(t, err)
			for _, step := range tt.matches {
				require.True(t, m(at(step)), "step %d", step)
			}
			for _, step := range tt.misses {
				require.False(t, m(at(step)), "step %d", step)
			}
		})
	}

	for _, bad := range []string{"sometimes", "=x", "%", "%0"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseStepMatcher(bad)
			require.Error(t, err)
		})
	}
}

func TestStepMatcherFlag(t *testing.T) {
	f := MustStepMatcherFlag("=5")
	require.Equal(t, "=5", f.String())
	require.True(t, f.matcher(&vm.VMState{Step: 5}))

	require.Error(t, f.Set("bogus"))
	require.Equal(t, "=5", f.String(), "failed Set keeps the previous pattern")

	require.Panics(t, func() { MustStepMatcherFlag("bogus") })
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"

	"github.com/simplevm/simplevm/svmgo/vm"
)

var OutFilePerm = os.FileMode(0o755)

func isCBOR(path string) bool {
	return strings.HasSuffix(path, ".cbor")
}

// LoadState reads a VM state. Paths ending in .cbor are CBOR; anything else is
// JSON, gzip-compressed when the path ends in .gz.
func LoadState(path string) (*vm.VMState, error) {
	if isCBOR(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open state file %q: %w", path, err)
		}
		defer f.Close()
		var state vm.VMState
		if err := state.Deserialize(f); err != nil {
			return nil, fmt.Errorf("failed to decode state %q: %w", path, err)
		}
		return &state, nil
	}
	state, err := jsonutil.LoadJSON[vm.VMState](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load state %q: %w", path, err)
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("invalid state %q: %w", path, err)
	}
	return state, nil
}

// WriteState writes a VM state in the format selected by the path suffix.
// An empty path writes nothing.
func WriteState(path string, state *vm.VMState) error {
	if path == "" {
		return nil
	}
	if !isCBOR(path) {
		return jsonutil.WriteJSON(path, state, OutFilePerm)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, OutFilePerm)
	if err != nil {
		return fmt.Errorf("failed to create state file %q: %w", path, err)
	}
	if err := state.Serialize(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode state %q: %w", path, err)
	}
	return f.Close()
}

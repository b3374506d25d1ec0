package testutil

import (
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/value"
)

// DefaultUUID is the token returned by FixedBuiltins when none is given.
const DefaultUUID = "00000000-0000-7000-8000-000000000001"

// FixedBuiltins returns a context with the same names as
// params.Builtins, but every resolver returns a fixed value.
//
// This keeps embodiment deterministic so results can be compared against
// golden files. If token is empty, "uuid" resolves to DefaultUUID.
func FixedBuiltins(token string) *params.Context {
	if token == "" {
		token = DefaultUUID
	}
	return params.NewContext(nil).Register("uuid", func() value.Value {
		return value.String(token)
	})
}

package loader

import (
	"github.com/tidwall/jsonc"

	"github.com/roach88/embody/internal/value"
)

// decodeJSONC strips comments and trailing commas, then parses the result
// as JSON.
func decodeJSONC(data []byte) (value.Value, error) {
	return value.ParseJSON(jsonc.ToJSON(data))
}

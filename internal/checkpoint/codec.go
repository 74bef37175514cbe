package checkpoint

import (
	"github.com/fpasys/fpagpgen/pkg/persist"
)

// Codec defines how checkpoint state is serialized and deserialized; this
// package delegates to pkg/persist's codec machinery rather than
// duplicating it.
type Codec = persist.Codec

// NewJSONCodec creates a pretty-printed JSON codec.
func NewJSONCodec() Codec {
	return persist.NewJSONCodec()
}

// NewCompactJSONCodec creates a JSON codec with no indentation, for
// checkpoint state written frequently (e.g. per-tween progress) where
// pretty-printing overhead matters.
func NewCompactJSONCodec() Codec {
	return &persist.JSONCodec{Indent: ""}
}

// NewGobCodec creates a gob codec.
func NewGobCodec() Codec {
	return persist.NewGobCodec()
}

// SaveState saves state to a codec-named file under dir.
func SaveState(dir, basename string, codec Codec, state any) error {
	return persist.SaveState(dir, basename, codec, state)
}

// LoadState loads state from a codec-named file under dir.
func LoadState(dir, basename string, codec Codec, state any) error {
	return persist.LoadState(dir, basename, codec, state)
}

package blade

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const manifestVersion = 1

// CompiledView describes a view compiled by the engine.
type CompiledView struct {
	// Name is the dotted view name, e.g. "pages.home"
	Name string `cbor:"1,keyasint" json:"name"`
	// Path is the source file the view was compiled from
	Path string `cbor:"2,keyasint" json:"path"`
	// CompiledPath is the artifact in the cache directory
	CompiledPath string `cbor:"3,keyasint" json:"compiled_path"`
	// CompiledAt is when the artifact was last written by this engine
	CompiledAt time.Time `cbor:"4,keyasint" json:"compiled_at"`
}

// manifest is the on disk index of compiled views.
type manifest struct {
	Version int                     `cbor:"1,keyasint"`
	Views   map[string]CompiledView `cbor:"2,keyasint"`
}

// encodeManifest produces a deterministic CBOR encoding of views.
func encodeManifest(views map[string]CompiledView) ([]byte, error) {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	encMode, err := opts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR encoder: %w", err)
	}
	data, err := encMode.Marshal(manifest{Version: manifestVersion, Views: views})
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}

func decodeManifest(data []byte) (map[string]CompiledView, error) {
	var m manifest
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	if m.Views == nil {
		m.Views = map[string]CompiledView{}
	}
	return m.Views, nil
}

// Package sceneconfig persists the per-scene render-graph pass ordering
// (the "default" and "custom" ordered name lists described for scene pass
// ordering persistence) through a small external config store abstraction.
package sceneconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/rendergraph"
)

// Store is the external config-store surface the render graph's scene pass
// ordering reads and writes through. Keys are opaque strings so a host can
// namespace them however its own config system expects.
type Store interface {
	// Get returns the raw bytes stored at key, or ok=false if unset.
	Get(key string) (data []byte, ok bool)
	// Set stores data at key, overwriting any prior value.
	Set(key string, data []byte) error
}

const (
	keyPassOrderDefault = "rg.pass_order.default"
	keyPassOrderCustom  = "rg.pass_order.custom"
)

// SceneOrders is the pair of ordered pass-name lists tracked per scene ID.
type SceneOrders struct {
	Default []string `json:"default"`
	Custom  []string `json:"custom"`
}

// Orders wraps a Store with the scene-pass-ordering key convention,
// marshalling to/from the common.Name strings the render graph consumes.
type Orders struct {
	store Store
}

// New wraps store with the scene-pass-ordering convention.
func New(store Store) *Orders {
	return &Orders{store: store}
}

// Load reads the persisted default/custom pass orders. A missing key
// yields an empty list rather than an error, so a first-run scene starts
// with no persisted ordering.
func (o *Orders) Load() (SceneOrders, error) {
	var out SceneOrders
	if data, ok := o.store.Get(keyPassOrderDefault); ok {
		if err := json.Unmarshal(data, &out.Default); err != nil {
			return out, fmt.Errorf("sceneconfig: decode %s: %w", keyPassOrderDefault, err)
		}
	}
	if data, ok := o.store.Get(keyPassOrderCustom); ok {
		if err := json.Unmarshal(data, &out.Custom); err != nil {
			return out, fmt.Errorf("sceneconfig: decode %s: %w", keyPassOrderCustom, err)
		}
	}
	return out, nil
}

// ApplyCustom loads the persisted custom order (if any) and installs it on
// g via SetSceneOrder. A scene with no persisted custom order leaves g's
// ordering untouched.
func (o *Orders) ApplyCustom(g *rendergraph.Graph) error {
	orders, err := o.Load()
	if err != nil {
		return err
	}
	if len(orders.Custom) == 0 {
		return nil
	}
	g.SetSceneOrder(namesOf(orders.Custom))
	return nil
}

// namesOf hashes each persisted pass-name string into the identical
// common.Name AddPass would compute for a pass registered under that same
// source string.
func namesOf(strs []string) []common.Name {
	names := make([]common.Name, len(strs))
	for i, s := range strs {
		names[i] = common.NewName(s)
	}
	return names
}

// SaveDefault persists the default pass order as a list of pass-name
// strings. Names must be the original human-readable pass identifiers
// (the same strings passed to common.NewName when the pass was added) —
// common.Name does not retain its source string, so a Name round-tripped
// through its own hex String() would hash to something else entirely.
func (o *Orders) SaveDefault(order []string) error {
	return o.save(keyPassOrderDefault, order)
}

// SaveCustom persists the custom pass order as a list of pass-name
// strings; see SaveDefault for why these must be the original strings.
func (o *Orders) SaveCustom(order []string) error {
	return o.save(keyPassOrderCustom, order)
}

func (o *Orders) save(key string, order []string) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("sceneconfig: encode %s: %w", key, err)
	}
	if err := o.store.Set(key, data); err != nil {
		return fmt.Errorf("sceneconfig: write %s: %w", key, err)
	}
	return nil
}

// FileStore is a Store backed by a single JSON file on disk, holding a flat
// string-keyed map. Suitable for a standalone demo or dev host; production
// hosts wire their own Store over whatever config system they already run.
type FileStore struct {
	path string
	data map[string]json.RawMessage
}

var _ Store = &FileStore{}

// OpenFileStore loads path if it exists, or starts empty if it doesn't.
//
// Parameters:
//   - path: the JSON file to read/write
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, data: make(map[string]json.RawMessage)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("sceneconfig: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &fs.data); err != nil {
		return nil, fmt.Errorf("sceneconfig: parse %s: %w", path, err)
	}
	return fs, nil
}

func (f *FileStore) Get(key string) ([]byte, bool) {
	raw, ok := f.data[key]
	if !ok {
		return nil, false
	}
	var unquoted []byte
	if err := json.Unmarshal(raw, &unquoted); err == nil {
		return unquoted, true
	}
	return raw, true
}

func (f *FileStore) Set(key string, data []byte) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sceneconfig: encode value for %s: %w", key, err)
	}
	f.data[key] = encoded
	return f.flush()
}

func (f *FileStore) flush() error {
	out, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("sceneconfig: encode %s: %w", f.path, err)
	}
	if err := os.WriteFile(f.path, out, 0o644); err != nil {
		return fmt.Errorf("sceneconfig: write %s: %w", f.path, err)
	}
	return nil
}

package encoder

import (
	"fmt"
	"hash/crc32"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Extension encodes and decodes a type the core format does not understand.
//
// The CRC32 of Name identifies the extension on the wire, so it must be stable
// across releases and unique among the extensions registered on an Encoder.
type Extension interface {
	Name() string
	Encode(v any) ([]byte, error)
	Decode(data []byte) (any, error)
}

type registration struct {
	ext  Extension
	name string
	hash uint32
}

// registry maps source types and wire hashes to extensions.
// It is safe for concurrent use.
type registry struct {
	mu       sync.RWMutex
	byType   map[reflect.Type]*registration
	byHash   map[uint32]*registration
	hashName func(name string) uint32
	logger   *zap.Logger
}

func newRegistry(logger *zap.Logger) *registry {
	return &registry{
		byType:   make(map[reflect.Type]*registration),
		byHash:   make(map[uint32]*registration),
		hashName: extensionHash,
		logger:   logger,
	}
}

// extensionHash is the CRC32 (IEEE) of the UTF-8 encoded name.
func extensionHash(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(name))
}

func (r *registry) register(t reflect.Type, ext Extension) error {
	if t == nil || ext == nil {
		return fmt.Errorf("encoder: register extension: nil type or extension")
	}
	name := ext.Name()
	hash := r.hashName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.byHash[hash]; ok && owner.name != name {
		return fmt.Errorf(
			"%w: %q and %q both hash to 0x%08x",
			ErrDuplicateExtensionHash, owner.name, name, hash,
		)
	}
	if _, ok := r.byType[t]; ok {
		r.logger.Debug("extension type already registered",
			zap.Stringer("type", t), zap.String("extension", name))
		return nil
	}
	if _, ok := r.byHash[hash]; ok {
		r.logger.Debug("extension already registered",
			zap.Stringer("type", t), zap.String("extension", name))
		return nil
	}

	reg := &registration{ext: ext, name: name, hash: hash}
	r.byType[t] = reg
	r.byHash[hash] = reg
	r.logger.Debug("registered extension",
		zap.Stringer("type", t), zap.String("extension", name), zap.Uint32("hash", hash))
	return nil
}

func (r *registry) lookupType(t reflect.Type) (*registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byType[t]
	return reg, ok
}

func (r *registry) lookupHash(hash uint32) (*registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byHash[hash]
	return reg, ok
}

func (r *registry) empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byType) == 0
}

// Package keyfactory builds and parses the namespaced keys under which encoded
// documents are stored.
//
// Key structure: "__<namespace>__:<kind>:<id>". The namespace is optional.
// Kinds and namespaces are lowercased, IDs keep their case.
package keyfactory

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/holmberd/go-urine/keyfactory/internal/rediskey"
)

const (
	WildcardAnyChar            = rediskey.WildcardAnyChar   // Matches exactly one character.
	WildcardAnyString          = rediskey.WildcardAnyString // Matches zero or more characters.
	ReservedNamespaceDelimiter = "__"                       // Delimiter placed before and after each namespace.
)

func keyNamespace(ns string) string {
	if ns == "" {
		return ""
	}
	return ReservedNamespaceDelimiter + strings.ToLower(ns) + ReservedNamespaceDelimiter
}

// GenerateRandomKey generates a random 10-character string key.
// The generated string is a valid key fragment.
func GenerateRandomKey() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	key := make([]byte, 10)
	for i := range key {
		key[i] = letters[rand.IntN(len(letters))]
	}
	return string(key)
}

// ValidateKeyFragment validates that f can be used as a kind, ID or namespace.
func ValidateKeyFragment(f string) error {
	if strings.HasPrefix(f, ReservedNamespaceDelimiter) {
		return fmt.Errorf(
			"keyfactory: key fragment %q must not start with reserved namespace delimiter %q",
			f,
			ReservedNamespaceDelimiter,
		)
	}
	if err := rediskey.ValidateFragment(f); err != nil {
		return fmt.Errorf("keyfactory: %w", err)
	}
	return nil
}

// Key represents a fully qualified datastore key. The ID of a match key holds
// its glob pattern.
type Key struct {
	kind      string
	id        string
	namespace string // Wrapped in ReservedNamespaceDelimiter.
}

// NewKey returns a key without validating its fragments. Use a KeyBuilder for
// keys built from untrusted input.
func NewKey(kind, id, namespace string) *Key {
	if !strings.HasPrefix(namespace, ReservedNamespaceDelimiter) {
		namespace = keyNamespace(namespace)
	}
	return &Key{kind: strings.ToLower(kind), id: id, namespace: namespace}
}

func (k *Key) Kind() string {
	return k.kind
}

func (k *Key) ID() string {
	return k.id
}

func (k *Key) Namespace() string {
	return k.namespace
}

// RedisKey converts a key to a valid Redis key string.
func (k *Key) RedisKey() string {
	return rediskey.Join(k.namespace, k.kind, k.id)
}

// String returns "<kind>:<id>". It does not include the namespace.
func (k *Key) String() string {
	if k == nil {
		return ""
	}
	return rediskey.Join(k.kind, k.id)
}

// Equal returns whether two keys refer to the same Redis key.
func (k *Key) Equal(o *Key) bool {
	if k == nil || o == nil {
		return k == o
	}
	return *k == *o
}

// KeyBuilder builds a fully qualified datastore key.
//   - Either an ID or a wildcard must be set.
//   - A wildcard without a kind matches every key in the namespace.
type KeyBuilder struct {
	kind      string
	id        string
	wildcard  rediskey.GlobWildcard // For wildcard key matching.
	namespace string                // Optional key namespace.
}

func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{}
}

func (b *KeyBuilder) Clone() *KeyBuilder {
	c := *b
	return &c
}

func (b *KeyBuilder) WithKind(kind string) *KeyBuilder {
	b.kind = kind
	return b
}

func (b *KeyBuilder) WithID(id string) *KeyBuilder {
	b.id = id
	return b
}

func (b *KeyBuilder) WithWildcard(wc rediskey.GlobWildcard) *KeyBuilder {
	b.wildcard = wc
	return b
}

func (b *KeyBuilder) WithNamespace(ns string) *KeyBuilder {
	b.namespace = ns
	return b
}

func (b *KeyBuilder) Reset() {
	*b = KeyBuilder{}
}

// Build compiles the new key.
func (b *KeyBuilder) Build() (*Key, error) {
	return b.build()
}

// BuildAndReset compiles the new key and resets the builder state.
func (b *KeyBuilder) BuildAndReset() (*Key, error) {
	defer b.Reset()
	return b.build()
}

func (b *KeyBuilder) build() (*Key, error) {
	if err := validateOptionalFragments(b.kind, b.id, b.namespace); err != nil {
		return nil, err
	}
	switch {
	case b.wildcard != "":
		if b.kind == "" && b.id != "" {
			return nil, fmt.Errorf("keyfactory: match key with ID %q must have a kind", b.id)
		}
		if b.kind == "" {
			return NewKey("", string(b.wildcard), b.namespace), nil
		}
		return NewKey(b.kind, rediskey.MatchPattern(b.id, b.wildcard), b.namespace), nil
	case b.kind == "":
		return nil, fmt.Errorf("keyfactory: key kind must not be empty")
	case b.id == "":
		return nil, fmt.Errorf("keyfactory: key ID must not be empty")
	}
	return NewKey(b.kind, b.id, b.namespace), nil
}

// KeyBuilderWithNamespace represents a KeyBuilder with a fixed namespace across key constructions.
type KeyBuilderWithNamespace struct {
	*KeyBuilder
}

func NewKeyBuilderWithNamespace(namespace string) *KeyBuilderWithNamespace {
	return &KeyBuilderWithNamespace{KeyBuilder: &KeyBuilder{namespace: namespace}}
}

func (b *KeyBuilderWithNamespace) Clone() *KeyBuilderWithNamespace {
	return &KeyBuilderWithNamespace{KeyBuilder: b.KeyBuilder.Clone()}
}

func (b *KeyBuilderWithNamespace) WithKind(kind string) *KeyBuilderWithNamespace {
	b.KeyBuilder.WithKind(kind)
	return b
}

func (b *KeyBuilderWithNamespace) WithID(id string) *KeyBuilderWithNamespace {
	b.KeyBuilder.WithID(id)
	return b
}

func (b *KeyBuilderWithNamespace) WithWildcard(wc rediskey.GlobWildcard) *KeyBuilderWithNamespace {
	b.KeyBuilder.WithWildcard(wc)
	return b
}

func (b *KeyBuilderWithNamespace) Reset() {
	ns := b.namespace
	b.KeyBuilder.Reset()
	b.namespace = ns
}

func (b *KeyBuilderWithNamespace) BuildAndReset() (*Key, error) {
	defer b.Reset()
	return b.build()
}

// validateOptionalFragments validates fragments and ignores empty ones.
func validateOptionalFragments(fragments ...string) error {
	for _, f := range fragments {
		if f == "" {
			continue
		}
		if err := ValidateKeyFragment(f); err != nil {
			return err
		}
	}
	return nil
}

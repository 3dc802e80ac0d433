package keyfactory

import (
	"testing"

	"github.com/holmberd/go-urine/keyfactory/internal/rediskey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilder(t *testing.T) {
	tests := []struct {
		name         string
		keyNamespace string
		kind         string
		id           string
		wildcard     rediskey.GlobWildcard
		expectKey    string
		expectError  bool
	}{
		{
			name:      "Key without namespace",
			kind:      "user",
			id:        "42",
			expectKey: "user:42",
		},
		{
			name:         "Key with namespace",
			keyNamespace: "App1",
			kind:         "User",
			id:           "AbC",
			expectKey:    "__app1__:user:AbC",
		},
		{
			name:      "Kind with any string wildcard",
			kind:      "user",
			wildcard:  WildcardAnyString,
			expectKey: "user:*",
		},
		{
			name:         "ID prefix with any char wildcard",
			keyNamespace: "app1",
			kind:         "user",
			id:           "4",
			wildcard:     WildcardAnyChar,
			expectKey:    "__app1__:user:4:?",
		},
		{
			name:         "Namespace with wildcard only",
			keyNamespace: "app1",
			wildcard:     WildcardAnyString,
			expectKey:    "__app1__:*",
		},
		{
			name:        "Missing kind",
			id:          "42",
			expectError: true,
		},
		{
			name:        "Missing ID",
			kind:        "user",
			expectError: true,
		},
		{
			name:        "Wildcard with ID but no kind",
			id:          "42",
			wildcard:    WildcardAnyString,
			expectError: true,
		},
		{
			name:         "Invalid namespace",
			keyNamespace: "__app",
			kind:         "user",
			id:           "42",
			expectError:  true,
		},
		{
			name:        "Kind contains reserved namespace delimiter",
			kind:        "__user",
			id:          "42",
			expectError: true,
		},
		{
			name:        "ID contains delimiter",
			kind:        "user",
			id:          "4:2",
			expectError: true,
		},
		{
			name:        "ID contains invalid characters",
			kind:        "user",
			id:          "4 2",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := NewKeyBuilder().
				WithNamespace(tt.keyNamespace).
				WithKind(tt.kind).
				WithID(tt.id).
				WithWildcard(tt.wildcard).
				Build()
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectKey, key.RedisKey())
		})
	}
}

func TestKeyBuilderReset(t *testing.T) {
	t.Run("BuildAndReset clears all state", func(t *testing.T) {
		b := NewKeyBuilder().WithNamespace("app1").WithKind("user").WithID("1")
		key, err := b.BuildAndReset()
		require.NoError(t, err)
		assert.Equal(t, "__app1__:user:1", key.RedisKey())

		_, err = b.Build()
		assert.Error(t, err, "builder should be empty after reset")
	})

	t.Run("Namespace survives reset", func(t *testing.T) {
		b := NewKeyBuilderWithNamespace("app1")
		b.WithKind("user").WithID("1")
		_, err := b.BuildAndReset()
		require.NoError(t, err)

		b.WithKind("order").WithID("2")
		key, err := b.BuildAndReset()
		require.NoError(t, err)
		assert.Equal(t, "__app1__:order:2", key.RedisKey())
	})

	t.Run("Clone is independent", func(t *testing.T) {
		b := NewKeyBuilderWithNamespace("app1")
		b.WithKind("user")
		c := b.Clone()
		c.WithKind("order").WithID("1")
		b.WithID("2")

		bk, err := b.Build()
		require.NoError(t, err)
		ck, err := c.Build()
		require.NoError(t, err)
		assert.Equal(t, "__app1__:user:2", bk.RedisKey())
		assert.Equal(t, "__app1__:order:1", ck.RedisKey())
	})
}

func TestKey(t *testing.T) {
	k := NewKey("User", "42", "app1")
	assert.Equal(t, "user", k.Kind())
	assert.Equal(t, "42", k.ID())
	assert.Equal(t, "__app1__", k.Namespace())
	assert.Equal(t, "user:42", k.String())
	assert.Equal(t, "__app1__:user:42", k.RedisKey())

	assert.True(t, k.Equal(NewKey("user", "42", "__app1__")))
	assert.False(t, k.Equal(NewKey("user", "43", "app1")))
	assert.False(t, k.Equal(nil))
	assert.Empty(t, (*Key)(nil).String())
}

func TestParseRedisKey(t *testing.T) {
	tests := []struct {
		name            string
		redisKey        string
		expectKind      string
		expectID        string
		expectNamespace string
		expectError     bool
	}{
		{
			name:            "Namespaced key",
			redisKey:        "__app1__:user:42",
			expectKind:      "user",
			expectID:        "42",
			expectNamespace: "__app1__",
		},
		{
			name:       "Key without namespace",
			redisKey:   "user:42",
			expectKind: "user",
			expectID:   "42",
		},
		{
			name:            "Match key",
			redisKey:        "__app1__:user:4:*",
			expectKind:      "user",
			expectID:        "4:*",
			expectNamespace: "__app1__",
		},
		{
			name:        "Missing ID",
			redisKey:    "__app1__:user",
			expectError: true,
		},
		{
			name:        "Invalid key",
			redisKey:    "user:4 2",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseRedisKey(tt.redisKey)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectKind, key.Kind())
			assert.Equal(t, tt.expectID, key.ID())
			assert.Equal(t, tt.expectNamespace, key.Namespace())
			assert.Equal(t, tt.redisKey, key.RedisKey())
		})
	}
}

func TestGenerateRandomKey(t *testing.T) {
	key := GenerateRandomKey()
	assert.Len(t, key, 10)
	assert.NoError(t, ValidateKeyFragment(key))
	assert.NotEqual(t, key, GenerateRandomKey())
}

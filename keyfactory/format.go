package keyfactory

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/holmberd/go-urine/keyfactory/internal/rediskey"
)

var namespacePattern = regexp.MustCompile(`^__(\w+?)__:`)

// ParseRedisKey parses a Redis key into a Key.
//
// Example:
//
//	key, _ := ParseRedisKey("__app1__:user:42")
//	// key => *Key{kind: "user", id: "42", namespace: "__app1__"}
func ParseRedisKey(key string) (*Key, error) {
	if err := rediskey.Validate(key); err != nil {
		return nil, fmt.Errorf("keyfactory: failed to parse redis key %q: %w", key, err)
	}
	var namespace string
	rest := key
	if m := namespacePattern.FindStringSubmatch(key); m != nil {
		namespace = m[1]
		rest = strings.TrimPrefix(key, m[0])
	}
	parts := rediskey.Split(rest, 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("keyfactory: redis key %q is not of the form <kind>:<id>", key)
	}
	return NewKey(parts[0], parts[1], namespace), nil
}

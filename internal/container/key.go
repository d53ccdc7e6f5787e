package container

import (
	"fmt"
	"strings"
)

// Key kinds used by the engine runtime.
const (
	KindEngine  = "engine"
	KindService = "service"
)

// Key joins a kind and a name into a registration key.
func Key(kind, name string) string {
	return kind + ":" + name
}

// EngineKey returns "engine:<name>".
func EngineKey(name string) string {
	return Key(KindEngine, name)
}

// ServiceKey returns "service:<name>".
func ServiceKey(name string) string {
	return Key(KindService, name)
}

// ParseKey splits a registration key into kind and name.
func ParseKey(key string) (kind, name string, err error) {
	kind, name, ok := strings.Cut(key, ":")
	if !ok || strings.TrimSpace(kind) == "" || strings.TrimSpace(name) == "" {
		return "", "", fmt.Errorf("%w: %q (want <kind>:<name>)", ErrInvalidKey, key)
	}
	return kind, name, nil
}

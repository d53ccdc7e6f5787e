package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a later algorithm migration.
const (
	DomainDefinition = "enginehost/definition/v1"
	DomainHost       = "enginehost/host/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DefinitionHash fingerprints an engine definition.
// Two definitions hash equal iff they declare the same name, services
// (in order) and nested grants.
func DefinitionHash(def EngineDefinition) (string, error) {
	obj := map[string]any{
		"name":     def.Name,
		"services": servicesValue(def.Dependencies),
		"engines":  enginesValue(def.Engines),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("DefinitionHash: %w", err)
	}
	return hashWithDomain(DomainDefinition, canonical), nil
}

// HostHash fingerprints a host configuration.
func HostHash(host HostConfig) (string, error) {
	services := host.Services
	if services == nil {
		services = []string{}
	}
	obj := map[string]any{
		"name":     host.Name,
		"services": services,
		"engines":  enginesValue(host.Engines),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("HostHash: %w", err)
	}
	return hashWithDomain(DomainHost, canonical), nil
}

func servicesValue(deps *Dependencies) []any {
	entries := deps.ServiceList()
	out := make([]any, len(entries))
	for i, e := range entries {
		if e.Aliased {
			out[i] = map[string]any{e.External: e.Internal}
		} else {
			out[i] = e.External
		}
	}
	return out
}

func enginesValue(engines map[string]HostEngineConfig) map[string]any {
	out := make(map[string]any, len(engines))
	for name, cfg := range engines {
		out[name] = servicesValue(cfg.Dependencies)
	}
	return out
}

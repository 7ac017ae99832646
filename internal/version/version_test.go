package version

import (
	"strings"
	"testing"
)

func TestGenerateVersionedCacheKey(t *testing.T) {
	key := GenerateVersionedCacheKey("anscache", "Add 100 and 50, then say hello")

	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		t.Fatalf("key %q has %d segments, want 3", key, len(parts))
	}
	if parts[0] != "anscache" {
		t.Errorf("prefix = %q, want anscache", parts[0])
	}
	if len(parts[1]) != 64 {
		t.Errorf("hash segment length = %d, want 64 hex chars", len(parts[1]))
	}
	if !strings.Contains(parts[2], "tv") || !strings.Contains(parts[2], "pv") {
		t.Errorf("version segment %q missing component markers", parts[2])
	}
}

func TestCacheKeyIsDeterministic(t *testing.T) {
	a := GenerateVersionedCacheKey("anscache", "same prompt")
	b := GenerateVersionedCacheKey("anscache", "same prompt")
	if a != b {
		t.Errorf("same prompt produced different keys: %q vs %q", a, b)
	}

	c := GenerateVersionedCacheKey("anscache", "different prompt")
	if a == c {
		t.Error("different prompts produced the same key")
	}
}

func TestVersionBumpInvalidatesKeys(t *testing.T) {
	before := GenerateVersionedCacheKey("anscache", "prompt")

	orig := ComponentVersions.Tools
	ComponentVersions.Tools = "v9.9"
	defer func() { ComponentVersions.Tools = orig }()

	after := GenerateVersionedCacheKey("anscache", "prompt")
	if before == after {
		t.Error("bumping the tools version did not change the cache key")
	}
}

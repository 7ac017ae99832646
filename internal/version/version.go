// Package version centralizes the versioning for the logical components of
// the orchestrator.
//
// By including these version strings in cache keys, old cached answers are
// automatically invalidated whenever a piece of underlying logic changes. For
// example, fixing a bug in a tool and bumping Tools from "v1.0" to "v1.1"
// means cache keys containing the old version string no longer match, forcing
// fresh answers to be generated.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for different logical parts of
// the application. Manually increment a version here before deploying a
// change to that component.
var ComponentVersions = struct {
	// Tools should be updated whenever the logic of any built-in tool
	// changes (e.g., adder.go, hello.go).
	Tools string

	// PromptLogic should be updated whenever the system prompt template
	// or the decision format expected from the model changes.
	PromptLogic string
}{
	Tools:       "v1.0",
	PromptLogic: "v1.0",
}

// GenerateVersionedCacheKey creates a consistent, version-aware key for
// caching final answers.
//
// It combines a prefix, a hash of the user's prompt, and the current
// component versions, so a change to either the prompt or the underlying
// logic yields a new key.
//
// Example output: "anscache:a1b2c3d4...:tv1.0_pv1.0"
func GenerateVersionedCacheKey(prefix, prompt string) string {
	hasher := sha256.New()
	hasher.Write([]byte(prompt))
	promptHash := hex.EncodeToString(hasher.Sum(nil))

	versionString := fmt.Sprintf("tv%s_pv%s",
		ComponentVersions.Tools,
		ComponentVersions.PromptLogic,
	)

	return fmt.Sprintf("%s:%s:%s", prefix, promptHash, versionString)
}

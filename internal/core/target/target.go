// Package target contains the pure logic for resolving free-text recipient
// lists into addressable targets.
package target

import "strings"

// PseudoPrefix marks group-broadcast targets. Pseudo-targets cannot react to
// a message and are never escalated to directly.
const PseudoPrefix = "!"

// Directory maps lowercase display names to individual recipient IDs.
// It is injected per deployment rather than held as process-wide state.
type Directory map[string]string

// pseudoAliases maps recognized group-broadcast spellings to their marker.
var pseudoAliases = map[string]string{
	"channel":   PseudoPrefix + "channel",
	"@channel":  PseudoPrefix + "channel",
	"here":      PseudoPrefix + "here",
	"@here":     PseudoPrefix + "here",
	"everyone":  PseudoPrefix + "everyone",
	"@everyone": PseudoPrefix + "everyone",
}

// IsPseudo reports whether t is a group-broadcast pseudo-target.
func IsPseudo(t string) bool {
	return strings.HasPrefix(t, PseudoPrefix)
}

// Resolve maps a comma-separated list of names into targets. Entries are
// trimmed and lowercased before lookup. The result preserves input order and
// keeps duplicates. Unrecognized entries are collected into unknown rather
// than failing on the first one; the caller decides how to surface them.
func Resolve(text string, dir Directory) (resolved []string, unknown []string) {
	for _, raw := range strings.Split(text, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}

		if pseudo, ok := pseudoAliases[name]; ok {
			resolved = append(resolved, pseudo)
			continue
		}
		if id, ok := dir[name]; ok {
			resolved = append(resolved, id)
			continue
		}
		unknown = append(unknown, name)
	}
	return resolved, unknown
}

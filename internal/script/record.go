package script

import (
	"fmt"
	"strings"
	"time"
)

// Record is a stored script's metadata row. ID and CreatedAt are assigned
// by the record store on insert, never by the caller.
type Record struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	StorageKey string    `json:"storage_key"`
	Personas   []string  `json:"personas"`
	CreatedAt  time.Time `json:"created_at"`
}

// Metadata carries the caller-supplied fields of a Record.
type Metadata struct {
	Name       string
	StorageKey string
	Personas   []string
}

// StorageKey derives the blob key for a script from its human-supplied name
// and a creation instant. The timestamp suffix keeps keys unique across
// repeated requests for the same name; callers retrying after a failure must
// take a fresh timestamp, since a used key is burned.
func StorageKey(name string, now time.Time) string {
	return fmt.Sprintf("%s-%d", sanitizeName(name), now.UnixNano())
}

func sanitizeName(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "script"
	}
	return out
}

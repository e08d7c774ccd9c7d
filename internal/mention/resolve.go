package mention

import (
	"strconv"
	"strings"
)

// Scheme is the typed URI prefix embedded in committed references.
const Scheme = "note:"

// ResolveHref extracts a note id from a link target. It understands
// the typed URI grammar first (note:<id> and note://<id>) and falls
// back to the conventional path form /note/<id> for links typed by
// hand. The second return is false when the href is not ours; the
// caller must then let default navigation proceed.
func ResolveHref(href string) (int64, bool) {
	href = strings.TrimSpace(href)

	if rest, ok := strings.CutPrefix(href, Scheme); ok {
		rest = strings.TrimPrefix(rest, "//")
		return parseID(rest)
	}
	if rest, ok := strings.CutPrefix(href, "/note/"); ok {
		// Tolerate a trailing slash or query fragment.
		if i := strings.IndexAny(rest, "/?#"); i >= 0 {
			rest = rest[:i]
		}
		return parseID(rest)
	}
	return 0, false
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

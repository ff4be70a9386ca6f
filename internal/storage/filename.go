package storage

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces an uploaded file name to a safe basename: accents
// are folded to ASCII, path separators become underscores, anything outside
// [A-Za-z0-9_.-] is dropped and leading/trailing dots and underscores are
// trimmed. The result may be empty.
//
//	SecureFilename("My cool movie.mov")  == "My_cool_movie.mov"
//	SecureFilename("../../etc/passwd")   == "etc_passwd"
func SecureFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	name = b.String()

	name = strings.NewReplacer("/", " ", `\`, " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

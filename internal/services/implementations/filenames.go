package implementations

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wardrobe/internal/domain/wardrobe"
)

const (
	defaultUploadName = "upload"
	maxExtLen         = 16
)

// secureFilename reduces a client-supplied name to a safe ASCII basename
func secureFilename(name string) string {
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(name)

	var b strings.Builder
	for _, field := range strings.Fields(name) {
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		for _, r := range field {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
				b.WriteRune(r)
			}
		}
	}

	secured := strings.Trim(b.String(), "._")
	if secured == "" {
		return defaultUploadName
	}
	return secured
}

// generateUniqueFilename creates a unique filename using timestamp and hash
func generateUniqueFilename(filename string, now time.Time) string {
	ext := filepath.Ext(filename)
	if len(ext) > maxExtLen {
		ext = ""
	}
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		base = defaultUploadName
	}

	hasher := sha256.New()
	hasher.Write([]byte(base + strconv.FormatInt(now.UnixNano(), 10)))
	hash := hex.EncodeToString(hasher.Sum(nil))[:8]

	// Leave room for "_" + hash + extension
	if limit := wardrobe.MaxFilenameLen - len(ext) - 9; len(base) > limit {
		base = base[:limit]
	}

	return fmt.Sprintf("%s_%s%s", base, hash, strings.ToLower(ext))
}

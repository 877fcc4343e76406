package html

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var (
	_ http.FileSystem = (*CacheBuster)(nil)

	// regexp for a hex-formatted sha256 hash sum
	sha256re = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// CacheBuster provides a cache-busting filesystem wrapper, mapping paths with a
// specific format containing a sha256 hash to paths without the hash in the
// wrapped filesystem. i.e. mapping
//
// /static/css/app.1fc822f99a2cfb6b5f316f00107a7d2770d547b64f3e0ea69baec12001a95f9f.css
// ->
// /static/css/app.css
type CacheBuster struct {
	fs.FS

	// hashed paths keyed by original path
	paths sync.Map
}

// Open strips the hash from the name before opening it in the wrapped
// filesystem.
func (cb *CacheBuster) Open(fname string) (http.File, error) {
	var partsSansHash []string

	// Reconstruct filename without hash
	for p := range strings.SplitSeq(fname, ".") {
		if !sha256re.MatchString(p) {
			partsSansHash = append(partsSansHash, p)
		}
	}
	return http.FS(cb.FS).Open(strings.Join(partsSansHash, "."))
}

// Path inserts a hash of the named file into its filename, before the filename
// extension: <path>.<ext> -> <path>.<hash>.<ext>, where <hash> is the hex
// format of the SHA256 hash of the contents of the file.
func (cb *CacheBuster) Path(fname string) (string, error) {
	if hashed, ok := cb.paths.Load(fname); ok {
		return hashed.(string), nil
	}

	// fs.FS expects paths without a leading slash
	f, err := cb.FS.Open(strings.TrimPrefix(fname, "/"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	ext := filepath.Ext(fname)
	hashed := fmt.Sprintf("%s.%x%s", strings.TrimSuffix(fname, ext), h.Sum(nil), ext)
	cb.paths.Store(fname, hashed)
	return hashed, nil
}

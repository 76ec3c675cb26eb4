package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
)

// dirPerms returns the directory and file modes for a cache root.
func dirPerms(strict bool) (os.FileMode, os.FileMode) {
	if strict {
		return 0o700, 0o600
	}
	return 0o755, 0o644
}

// ensureDir creates dir, tightening an existing directory to 0700 when strict.
func ensureDir(dir string, strict bool) error {
	if dir == "" {
		return errors.New("cache dir not configured")
	}
	dmode, _ := dirPerms(strict)
	if err := os.MkdirAll(dir, dmode); err != nil {
		return err
	}
	if strict {
		if info, err := os.Stat(dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(dir, 0o700)
		}
	}
	return nil
}

func digest(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte("\n\n"))
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

package watcher

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/bytedance/sonic"

	"github.com/handii-app/volunteer-directory/internal/domain"
)

// fingerprint hashes the profile fields of v. Availability and updated_at
// are excluded so an availability toggle is not also reported as an update.
func fingerprint(v domain.Volunteer) (string, error) {
	v.Available = false
	v.UpdatedAt = ""
	raw, err := sonic.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:]), nil
}

package utils

import (
	"path/filepath"
	"regexp"
	"roomrent/src/config"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateOwnerCode returns an uppercase hex code of config.OWNER_TOKEN_LENGTH.
func GenerateOwnerCode() string {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(code[:config.OWNER_TOKEN_LENGTH])
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SecureFilename reduces a client supplied name to a safe base name.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// StoredImageName prefixes a sanitised upload name with a uuid so names
// never collide.
func StoredImageName(original string) string {
	return uuid.NewString() + "_" + SecureFilename(original)
}

func SplitAmenities(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

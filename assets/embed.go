package assets

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"
)

//go:embed shaders
var assetsFS embed.FS

// VHSShader is the Kage source of the tape overlay post-process.
var VHSShader []byte

func init() {
	b, err := LoadFile("shaders/vhs.kage")
	if err != nil {
		panic(fmt.Sprintf("assets: load vhs shader: %v", err))
	}
	VHSShader = b
}

// LoadFile loads an embedded asset by assets-relative path.
func LoadFile(path string) ([]byte, error) {
	clean := cleanAssetPath(path)
	return assetsFS.ReadFile(clean)
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		s := filepath.ToSlash(path)
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "assets/") {
		return strings.TrimPrefix(s, "assets/")
	}
	return s
}

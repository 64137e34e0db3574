package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".eml":  true,
	".txt":  true,
	".md":   true,
}

// AllowedExtension reports whether the filename carries a supported
// document extension.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SanitizeFilename strips any path components and characters that could
// escape the upload directory.
func SanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, "..", "")
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "\x00", "")
	return replacer.Replace(name)
}

// SaveFileWithTimestamp writes the uploaded bytes into uploadDir under a
// timestamped name so repeated uploads of the same file never collide.
// Returns the destination path.
func SaveFileWithTimestamp(data []byte, originalName, uploadDir string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %v", err)
	}

	name := SanitizeFilename(originalName)
	ext := filepath.Ext(name)
	baseFileName := strings.TrimSuffix(name, ext)
	timestamp := time.Now().Unix()
	destFileName := fmt.Sprintf("%s_%d%s", baseFileName, timestamp, ext)
	destPath := filepath.Join(uploadDir, destFileName)

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}
	return destPath, nil
}

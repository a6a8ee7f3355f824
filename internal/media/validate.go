package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Supported source extensions, lowercase with leading dot.
var (
	videoExtensions = map[string]bool{
		".mp4":  true,
		".mov":  true,
		".mkv":  true,
		".avi":  true,
		".webm": true,
		".wmv":  true,
		".flv":  true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
	}
	audioExtensions = map[string]bool{
		".mp3":  true,
		".wav":  true,
		".m4a":  true,
		".flac": true,
		".aac":  true,
		".ogg":  true,
		".opus": true,
		".wma":  true,
	}
)

// ValidateFormat checks that path exists and carries a supported video or
// audio extension. It is pure apart from the existence stat.
func (p *Processor) ValidateFormat(path string) (bool, string) {
	if _, err := p.stat(path); err != nil {
		return false, fmt.Sprintf("file does not exist: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExtensions[ext]:
		return true, fmt.Sprintf("supported video format: %s", ext)
	case audioExtensions[ext]:
		return true, fmt.Sprintf("supported audio format: %s", ext)
	default:
		return false, fmt.Sprintf("unsupported format: %s", ext)
	}
}

// statFunc matches os.Stat for dependency injection in tests.
type statFunc func(name string) (os.FileInfo, error)

package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/pinstudio/internal/system"
)

// GenerateStoryboardPath создает имя файла сториборда с временной меткой в dir
func GenerateStoryboardPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("storyboard_%s.yaml", timestamp))
}

// FindLatestStoryboard ищет самый свежий сториборд в директории
func FindLatestStoryboard(dir string) (string, error) {
	return system.FindLatest(dir, ".yaml", ".yml")
}

// IsStoryboard reports whether path names a storyboard file.
func IsStoryboard(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// InitResourceLimits пытается увеличить лимит открытых файлов
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

func hasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FindLatest ищет самый свежий файл в dir с одним из расширений exts
func FindLatest(dir string, exts ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %v", dir, exts)
	}
	return latestFile, nil
}

func FindLatestImage(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}
	return FindLatest(path, ImageExtensions...)
}

// ListImages возвращает изображения из dir по имени, в порядке показа слайдов
func ListImages(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range files {
		if !f.IsDir() && hasExt(f.Name(), ImageExtensions) {
			out = append(out, filepath.Join(dir, f.Name()))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("в папке %s не найдено изображений", dir)
	}
	sort.Strings(out)
	return out, nil
}

var (
	encodersOnce sync.Once
	encoders     map[string]bool
	encodersErr  error
)

// ProbeEncoders один раз запускает `ffmpeg -encoders` и кэширует список энкодеров
func ProbeEncoders() (map[string]bool, error) {
	encodersOnce.Do(func() {
		out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			encodersErr = fmt.Errorf("ffmpeg -encoders: %w", err)
			return
		}
		encoders = ParseEncoders(string(out))
	})
	return encoders, encodersErr
}

// ParseEncoders extracts encoder names from `ffmpeg -encoders` output.
// Lines look like " V....D libvpx-vp9   libvpx VP9".
func ParseEncoders(out string) map[string]bool {
	found := make(map[string]bool)
	header := true
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if header {
			if len(fields) > 0 && strings.HasPrefix(fields[0], "---") {
				header = false
			}
			continue
		}
		if len(fields) >= 2 {
			found[fields[1]] = true
		}
	}
	return found
}

func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// CheckMemory возвращает ошибку, если системе не хватает need байт под буферы кадров
func CheckMemory(need uint64) error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[!] Не удалось получить сведения о памяти: %v", err)
		return nil
	}
	if vm.Available < need {
		return fmt.Errorf("недостаточно памяти: нужно %d МБ, доступно %d МБ", need>>20, vm.Available>>20)
	}
	return nil
}

// HostMemory возвращает общий и занятый объем памяти в мегабайтах для отчета
func HostMemory() (total, used uint64) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0
	}
	return vm.Total >> 20, vm.Used >> 20
}

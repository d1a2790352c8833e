package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	tempSuffix   = ".enkai.tmp"
	backupSuffix = ".enkai.bak"
)

// Applier writes resolved files in place through a sibling temp file and a
// rename, so readers of the target never observe partial content.
type Applier struct {
	// Backup keeps a copy of the original text at <target>.enkai.bak.
	Backup bool

	writeFile func(name string, data []byte, perm os.FileMode) error
	rename    func(oldpath, newpath string) error
}

func NewApplier(backup bool) *Applier {
	return &Applier{
		Backup:    backup,
		writeFile: writeFileSync,
		rename:    os.Rename,
	}
}

// TempPath is the hidden sibling used while replacing target.
func TempPath(target string) string {
	dir, base := filepath.Split(target)
	return filepath.Join(dir, "."+base+tempSuffix)
}

// BackupPath is where the original text goes when backups are enabled.
func BackupPath(target string) string {
	return target + backupSuffix
}

// Apply reconstructs f and replaces its file. An incompletely resolved file
// is rejected before anything on disk is touched. On failure the target keeps
// its previous content; a temp file that was written stays for inspection.
func (a *Applier) Apply(f *ConflictedFile) error {
	data, err := f.Reconstruct()
	if err != nil {
		return err
	}
	return a.replace(f.Path(), data, f.Original())
}

func (a *Applier) replace(target string, data, original []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		if !info.Mode().IsRegular() {
			return fmt.Errorf("replace %s: not a regular file", target)
		}
		perm = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", target, err)
	}

	if a.Backup {
		bak := BackupPath(target)
		if err := a.writeFile(bak, original, perm); err != nil {
			return fmt.Errorf("write backup %s: %w", filepath.Base(bak), err)
		}
	}

	tmp := TempPath(target)
	if err := a.writeFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := a.rename(tmp, target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}

func writeFileSync(name string, data []byte, perm os.FileMode) error {
	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

package utils

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"examly/config"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// backupTables lists every persisted table in FK-safe insert order.
var backupTables = []string{
	"tenants",
	"users",
	"access_logs",
	"exams",
	"questions",
	"choices",
	"attempts",
	"answers",
	"exam_progresses",
	"exam_deletion_logs",
}

// BackupInfo describes one stored archive.
type BackupInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupFolder returns (and ensures) the folder used to store backups.
func BackupFolder() (string, error) {
	dir := config.AppConfig.BackupDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// CreateBackupArchive bundles a JSON dump of every table plus the uploaded
// files into a zip archive and returns its full path.
func CreateBackupArchive(db *gorm.DB) (string, error) {
	folder, err := BackupFolder()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("exam_backup_%s.zip", time.Now().UTC().Format("20060102150405"))
	path := filepath.Join(folder, name)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	zw := zip.NewWriter(out)

	fail := func(err error) (string, error) {
		zw.Close()
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to create backup archive: %w", err)
	}

	dump := make(map[string][]map[string]interface{}, len(backupTables))
	for _, table := range backupTables {
		var rows []map[string]interface{}
		if err := db.Table(table).Find(&rows).Error; err != nil {
			return fail(err)
		}
		dump[table] = rows
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fail(err)
	}
	w, err := zw.Create("db/data.json")
	if err != nil {
		return fail(err)
	}
	if _, err := w.Write(data); err != nil {
		return fail(err)
	}

	uploadsCount, err := addUploads(zw)
	if err != nil {
		return fail(err)
	}

	manifest := map[string]interface{}{
		"created_at_utc": time.Now().UTC().Format(time.RFC3339),
		"database":       map[string]string{"mode": "table-json", "path": "db/data.json"},
		"uploads":        map[string]interface{}{"count": uploadsCount, "relative_root": "uploads"},
	}
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fail(err)
	}
	mw, err := zw.Create("manifest.json")
	if err != nil {
		return fail(err)
	}
	if _, err := mw.Write(manifestData); err != nil {
		return fail(err)
	}

	if err := zw.Close(); err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func addUploads(zw *zip.Writer) (int, error) {
	uploadDir := config.AppConfig.UploadDir
	if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
		return 0, nil
	}
	count := 0
	err := filepath.Walk(uploadDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(uploadDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create("uploads/" + filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err := io.Copy(w, src); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// ListBackups lists stored archives, newest first.
func ListBackups() ([]BackupInfo, error) {
	folder, err := BackupFolder()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:      entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].CreatedAt.After(backups[j].CreatedAt) })
	return backups, nil
}

// ResolveBackupPath maps a user-supplied archive name to a path inside the
// backup folder, rejecting traversal outside it.
func ResolveBackupPath(name string) (string, error) {
	folder, err := BackupFolder()
	if err != nil {
		return "", err
	}
	path := filepath.Join(folder, filepath.Base(name))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("backup not found")
	}
	return path, nil
}

// RestoreArchive replaces all table data and uploads with the archive
// contents. The table swap runs in one transaction.
func RestoreArchive(db *gorm.DB, path string) (int, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open backup archive: %w", err)
	}
	defer zr.Close()

	var dump map[string][]map[string]interface{}
	uploadsRestored := 0

	for _, f := range zr.File {
		if f.Name == "db/data.json" {
			rc, err := f.Open()
			if err != nil {
				return 0, err
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return 0, err
			}
			if err := json.Unmarshal(data, &dump); err != nil {
				return 0, fmt.Errorf("backup archive has a corrupt database dump: %w", err)
			}
		}
	}
	if dump == nil {
		return 0, fmt.Errorf("backup archive has no database dump")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := len(backupTables) - 1; i >= 0; i-- {
			if err := tx.Exec("DELETE FROM " + backupTables[i]).Error; err != nil {
				return err
			}
		}
		for _, table := range backupTables {
			rows := dump[table]
			if len(rows) == 0 {
				continue
			}
			if err := tx.Table(table).Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to restore database: %w", err)
	}

	uploadDir := config.AppConfig.UploadDir
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "uploads/") || f.FileInfo().IsDir() {
			continue
		}
		rel := strings.TrimPrefix(f.Name, "uploads/")
		target := filepath.Join(uploadDir, filepath.FromSlash(rel))
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(uploadDir)) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return uploadsRestored, err
		}
		rc, err := f.Open()
		if err != nil {
			return uploadsRestored, err
		}
		dst, err := os.Create(target)
		if err != nil {
			rc.Close()
			return uploadsRestored, err
		}
		if _, err := io.Copy(dst, rc); err != nil {
			dst.Close()
			rc.Close()
			return uploadsRestored, err
		}
		dst.Close()
		rc.Close()
		uploadsRestored++
	}

	return uploadsRestored, nil
}

// RestoreUploadedArchive stages an uploaded archive in a temp file and
// restores from it.
func RestoreUploadedArchive(db *gorm.DB, file *multipart.FileHeader) (int, error) {
	if file == nil || file.Filename == "" {
		return 0, fmt.Errorf("no backup file provided")
	}
	src, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	tmpPath := filepath.Join(os.TempDir(), "exam_restore_"+uuid.NewString()+".zip")
	dst, err := os.Create(tmpPath)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return 0, err
	}
	dst.Close()
	defer os.Remove(tmpPath)

	return RestoreArchive(db, tmpPath)
}

// PurgeAllData wipes every table and clears the upload folder. Returns the
// number of upload items removed.
func PurgeAllData(db *gorm.DB) (int, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := len(backupTables) - 1; i >= 0; i-- {
			if err := tx.Exec("DELETE FROM " + backupTables[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("factory reset failed: %w", err)
	}

	removed := 0
	uploadDir := config.AppConfig.UploadDir
	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(uploadDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

package adminController

import (
	"fmt"
	"log"

	"examly/database"
	"examly/middleware"
	"examly/utils"

	"github.com/gofiber/fiber/v2"
)

// ListBackups returns the stored archives, newest first.
func ListBackups(c *fiber.Ctx) error {
	backups, err := utils.ListBackups()
	if err != nil {
		log.Printf("Error listing backups: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to list backups!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Backups fetched successfully.", backups)
}

// CreateBackup produces a new archive on demand.
func CreateBackup(c *fiber.Ctx) error {
	path, err := utils.CreateBackupArchive(database.Database.Db)
	if err != nil {
		log.Printf("Error creating backup: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create backup!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Backup created successfully.", fiber.Map{"path": path})
}

// DownloadBackup streams a stored archive by name.
func DownloadBackup(c *fiber.Ctx) error {
	path, err := utils.ResolveBackupPath(c.Params("name"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Backup not found!", nil)
	}
	return c.Download(path)
}

// RestoreUpload replaces all data with an uploaded archive. The caller must
// send confirm=RESTORE to acknowledge the wipe.
func RestoreUpload(c *fiber.Ctx) error {
	if c.FormValue("confirm") != "RESTORE" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Type RESTORE to confirm replacing all current data!", nil)
	}

	file, err := c.FormFile("backup_file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No backup file provided!", nil)
	}

	uploads, err := utils.RestoreUploadedArchive(database.Database.Db, file)
	if err != nil {
		log.Printf("Error restoring backup: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to restore backup: "+err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true,
		fmt.Sprintf("Backup restored successfully. %d uploaded files recovered.", uploads), nil)
}

// RestoreFile restores from an archive already in the backup folder.
func RestoreFile(c *fiber.Ctx) error {
	if c.FormValue("confirm") != "RESTORE" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Type RESTORE to confirm replacing all current data!", nil)
	}

	path, err := utils.ResolveBackupPath(c.Params("name"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Backup not found!", nil)
	}

	uploads, err := utils.RestoreArchive(database.Database.Db, path)
	if err != nil {
		log.Printf("Error restoring backup: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to restore backup: "+err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true,
		fmt.Sprintf("Backup restored successfully. %d uploaded files recovered.", uploads), nil)
}

// FactoryReset wipes every table and the upload folder. Requires
// confirm=RESET. The next boot reseeds the default tenant and admin.
func FactoryReset(c *fiber.Ctx) error {
	if c.FormValue("confirm") != "RESET" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Type RESET to confirm wiping all data!", nil)
	}

	removed, err := utils.PurgeAllData(database.Database.Db)
	if err != nil {
		log.Printf("Error during factory reset: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Factory reset failed!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true,
		fmt.Sprintf("Factory reset completed. %d upload items removed.", removed), nil)
}

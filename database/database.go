package database

import (
	"examly/config"
	"examly/models"
	examModels "examly/models/exam"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		config.AppConfig.DBHost,
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBName,
		config.AppConfig.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	RunMigrations(db)
	seedDefaults(db)

	Database = DbInstance{Db: db}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.AccessLog{},
		&examModels.Exam{},
		&examModels.Question{},
		&examModels.Choice{},
		&examModels.Attempt{},
		&examModels.Answer{},
		&examModels.ExamProgress{},
		&examModels.ExamDeletionLog{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}

// seedDefaults creates an initial tenant and admin account on an empty
// database so the platform is reachable after first boot.
func seedDefaults(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	tenant := models.Tenant{Name: "Default", Slug: "default"}
	if err := db.Create(&tenant).Error; err != nil {
		log.Printf("Error seeding default tenant: %v", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin"), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing seed password: %v", err)
		return
	}

	admin := models.User{
		Username: "admin",
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		Password: string(hashed),
		TenantID: tenant.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin user: %v", err)
		return
	}

	log.Println("Seeded default tenant and admin user (admin/admin). Change the password immediately.")
}

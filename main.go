package main

import (
	"log"

	"examly/config"
	"examly/database"
	"examly/middleware"
	adminRoutes "examly/routers/adminRoutes"
	authRoutes "examly/routers/authRoutes"
	instructorRoutes "examly/routers/instructorRoutes"
	settingsRoutes "examly/routers/settingsRoutes"
	studentRoutes "examly/routers/studentRoutes"
	"examly/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // room for workbook and backup uploads
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Use(middleware.AccessLogMiddleware)

	// Serve uploaded images
	app.Static("/uploads", config.AppConfig.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	adminRoutes.SetupAdminRoutes(app)
	instructorRoutes.SetupInstructorRoutes(app)
	studentRoutes.SetupStudentRoutes(app)
	settingsRoutes.SetupSettingsRoutes(app)

	utils.StartSchedulers()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}

//go:build ignore

package main

import (
	"fmt"
	"log"

	"github.com/ivkov/toolshelf/internal/auth"
	"github.com/ivkov/toolshelf/internal/database"
	"github.com/ivkov/toolshelf/internal/database/models"
	"github.com/ivkov/toolshelf/pkg/config"
	"github.com/ivkov/toolshelf/pkg/util"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var categories = []string{
	"Автоматизация",
	"Анализ на данни",
	"Генериране на изображения",
	"Генериране на текст",
	"Дизайн и креативност",
	"Програмиране",
	"Чатоботове и асистенти",
}

var roles = []string{
	"owner",
	"Backend Developer",
	"Frontend Developer",
	"Project Manager",
	"QA Engineer",
	"UI/UX Designer",
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	for _, name := range categories {
		category := models.Category{Name: name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error; err != nil {
			log.Fatalf("failed to seed category %q: %v", name, err)
		}
	}

	for _, name := range roles {
		role := models.Role{Name: name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error; err != nil {
			log.Fatalf("failed to seed role %q: %v", name, err)
		}
	}

	if err := seedOwner(db); err != nil {
		log.Fatalf("failed to seed owner user: %v", err)
	}

	fmt.Println("Seeded categories, roles and the owner account.")
}

func seedOwner(db *gorm.DB) error {
	var existing models.User
	if err := db.Where("email = ?", "ivan@admin.local").First(&existing).Error; err == nil {
		return nil
	}

	hash, err := auth.HashPassword("password")
	if err != nil {
		return err
	}

	return db.Create(&models.User{
		Name:         "Ivan Ivanov",
		Email:        "ivan@admin.local",
		PasswordHash: hash,
		Role:         "owner",
	}).Error
}

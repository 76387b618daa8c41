package database

import (
	"fmt"
	"log"

	"api/config"
	"api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection, migrates the models and seeds
// default rows if needed
func InitDB() {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable TimeZone=Asia/Tokyo",
		config.PostgresHost, config.PostgresPort, config.PostgresUser, config.PostgresDB, config.PostgresPassword)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.Order{},
		&models.FetchLog{},
	)
	if err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	Populate()
}

// Populate seeds a first user when the table is empty so a fresh
// deployment is playable without a separate provisioning step. The handle
// comes from SEED_ATCODER_USER and must exist on AtCoder, since the judge's
// submission feed is queried by it.
func Populate() {
	if config.SeedUser == "" {
		return
	}

	var countUser int64
	DB.Model(&models.User{}).Count(&countUser)
	if countUser != 0 {
		return
	}

	user := models.User{Name: config.SeedUser}
	if err := DB.Create(&user).Error; err != nil {
		log.Println("failed to seed user: ", err)
		return
	}
	log.Println("Seed user created: ", user.Name)
}

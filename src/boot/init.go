package boot

import (
	"context"
	"errors"
	"log"
	"os"
	"roomrent/src/config"
	"roomrent/src/controllers"
	"roomrent/src/db"
	"roomrent/src/lib"
	"roomrent/src/models"
	"roomrent/src/types"
	"roomrent/src/utils"
	"strings"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(models.All()...)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	if err := SeedAdmin(db, os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		log.Printf("Error seeding admin: %s\n", err.Error())
	}

	return db
}

// SeedAdmin creates the admin account, or resets its password and role when
// it already exists. Empty credentials are a no-op.
func SeedAdmin(db *gorm.DB, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		err := tx.Model(&models.User{}).Where("username = ?", username).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Creating admin user %s\n", username)
			return tx.Create(&models.User{Username: username, Password: hashed, Role: types.ROLE_ADMIN}).Error
		}
		if err != nil {
			return err
		}
		return tx.
			Model(&models.User{}).
			Where("id = ?", admin.ID).
			Updates(map[string]any{"password": hashed, "role": types.ROLE_ADMIN}).
			Error
	})
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := lib.CreateCronJob("purge-owner-tokens", func() {
		controllers.PurgeExpiredOwnerTokens()
	}, time.Hour); err != nil {
		log.Printf("Error scheduling owner token purge: %s\n", err.Error())
	}
	if _, err := lib.CreateCronJob("purge-abandoned-bookings", func(ttl time.Duration) {
		controllers.PurgeAbandonedBookings(context.Background(), ttl)
	}, time.Hour, config.GetPendingBookingTTL()); err != nil {
		log.Printf("Error scheduling abandoned booking purge: %s\n", err.Error())
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

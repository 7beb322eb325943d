// Command admin_seed creates the first admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"os"

	"spark/internal/config"
	"spark/internal/logging"
	"spark/internal/models"
	"spark/internal/repositories"
	"spark/internal/validation"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	v := validation.New()
	v.Email("ADMIN_EMAIL", adminEmail)
	v.Password("ADMIN_PASSWORD", adminPassword)
	if !v.Valid() {
		logrus.Fatalf("invalid admin credentials: %s", v.Error())
	}

	db, err := repositories.OpenDB(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer repositories.CloseDB(db)

	users := repositories.NewUserRepository(db)
	ctx := context.Background()

	if _, err := users.GetByEmail(ctx, adminEmail); err == nil {
		logrus.Info("admin user already exists")
		return
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		logrus.WithError(err).Fatal("failed to look up admin user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Fatal("failed to hash password")
	}

	admin := &models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Name:     config.GetEnv("ADMIN_NAME", "Administrator"),
		Role:     models.RoleAdmin,
		Status:   "active",
	}
	if err := users.Create(ctx, admin); err != nil {
		logrus.WithError(err).Fatal("failed to create admin user")
	}
	logrus.WithField("user_id", admin.ID).Info("admin account created")
}

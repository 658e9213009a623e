package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rotaboard/rota-api/internal/models"
	"github.com/rotaboard/rota-api/internal/repository"
	"github.com/rotaboard/rota-api/pkg/config"
	"github.com/rotaboard/rota-api/pkg/database"
	"github.com/rotaboard/rota-api/pkg/logger"
)

var slotSeed = []models.SlotDefinition{
	{Key: "front-morning", Mission: "front-desk", Name: "Front Desk Morning", StartTime: "08:00", EndTime: "13:00", RequiredCount: 2},
	{Key: "front-afternoon", Mission: "front-desk", Name: "Front Desk Afternoon", StartTime: "13:00", EndTime: "17:30", RequiredCount: 2, IsLong: true},
	{Key: "support-morning", Mission: "support", Name: "Support Morning", StartTime: "08:00", EndTime: "13:00", RequiredCount: 1},
	{Key: "support-afternoon", Mission: "support", Name: "Support Afternoon", StartTime: "13:00", EndTime: "17:30", RequiredCount: 1, IsLong: true},
}

var rosterSeed = []models.Person{
	{FullName: "Dana Reyes", Mission: "front-desk", Active: true},
	{FullName: "Omri Shaked", Mission: "front-desk", Active: true},
	{FullName: "Lior Paz", Mission: "front-desk", Active: true},
	{FullName: "Maya Cohen", Mission: "support", Active: true},
	{FullName: "Tom Avidan", Mission: "support", Active: true},
}

func main() {
	var adminEmail string
	var adminPassword string

	flag.StringVar(&adminEmail, "admin-email", "admin@rotaboard.local", "email for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "changeme", "password for the seeded admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slotRepo := repository.NewSlotRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	userRepo := repository.NewUserRepository(db)

	for i := range slotSeed {
		def := slotSeed[i]
		if _, err := slotRepo.FindDefinition(ctx, def.Key); err == nil {
			logr.Info("slot already present, skipping", zap.String("key", def.Key))
			continue
		}
		if err := slotRepo.CreateDefinition(ctx, &def); err != nil {
			logr.Error("failed to seed slot", zap.String("key", def.Key), zap.Error(err))
			continue
		}
		logr.Info("slot seeded", zap.String("key", def.Key))
	}

	seededPersons := 0
	for i := range rosterSeed {
		person := rosterSeed[i]
		if err := rosterRepo.Create(ctx, &person); err != nil {
			logr.Error("failed to seed person", zap.String("name", person.FullName), zap.Error(err))
			continue
		}
		seededPersons++
	}
	logr.Info("roster seeded", zap.Int("count", seededPersons))

	if _, err := userRepo.FindByEmail(ctx, adminEmail); err == nil {
		logr.Info("admin account already present, skipping", zap.String("email", adminEmail))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		logr.Fatal("failed to hash admin password", zap.Error(err))
	}
	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		FullName:     "Rota Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		logr.Fatal("failed to seed admin account", zap.Error(err))
	}

	fmt.Printf("admin account ready: %s\n", adminEmail)
}

package main

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bluecarbon/internal/config"
	"bluecarbon/internal/db"
	"bluecarbon/internal/model"
	"bluecarbon/internal/repository"
)

// seedPassword is shared by all demo accounts.
const seedPassword = "secret123"

type seedAccount struct {
	Username string
	Role     model.Role
}

var seedAccounts = []seedAccount{
	{Username: "alice", Role: model.RoleCommunity},
	{Username: "bina", Role: model.RoleNGO},
	{Username: "gaurav", Role: model.RoleGovernment},
	{Username: "ira", Role: model.RoleInvestor},
}

var seedProjects = []model.Project{
	{
		Title:               "Sundarbans Mangrove Restoration",
		Description:         "Community-led replanting of mangrove belts across degraded delta islands.",
		Location:            "Sundarbans, West Bengal",
		AreaHectares:        1250,
		ProjectType:         model.ProjectBlueCarbon,
		Status:              model.StatusActive,
		CarbonCredits:       45000,
		BiodiversityCredits: 0,
	},
	{
		Title:               "Chilika Seagrass Meadows",
		Description:         "Seagrass bed recovery and dugong habitat protection in the Chilika lagoon.",
		Location:            "Chilika Lake, Odisha",
		AreaHectares:        430,
		ProjectType:         model.ProjectBoth,
		Status:              model.StatusVerified,
		CarbonCredits:       8200,
		BiodiversityCredits: 3100,
	},
	{
		Title:               "Gulf of Mannar Coral Corridor",
		Description:         "Reef restoration with biodiversity monitoring across the marine national park.",
		Location:            "Gulf of Mannar, Tamil Nadu",
		AreaHectares:        210,
		ProjectType:         model.ProjectBiodiversity,
		Status:              model.StatusApproved,
		CarbonCredits:       0,
		BiodiversityCredits: 5600,
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(&model.User{}, &model.Project{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	created := 0
	var firstUser *model.User
	for _, acc := range seedAccounts {
		existing, err := userRepo.FindByUsername(ctx, acc.Username)
		if err == nil {
			log.Printf("User %q already exists, skipping", acc.Username)
			if firstUser == nil {
				firstUser = existing
			}
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check user %q: %v", acc.Username, err)
		}

		user := &model.User{
			Username:     acc.Username,
			PasswordHash: string(hash),
			Role:         acc.Role,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %q: %v", acc.Username, err)
		}
		if firstUser == nil {
			firstUser = user
		}
		created++
		log.Printf("Created user %q (%s)", acc.Username, acc.Role)
	}
	log.Printf("Seeded %d users", created)

	existing, err := projectRepo.ListListed(ctx)
	if err != nil {
		log.Fatalf("Failed to list projects: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Registry already has %d projects, skipping project seed", len(existing))
		return
	}

	for i := range seedProjects {
		seedProjects[i].SubmittedBy = firstUser.ID
		if err := projectRepo.Create(ctx, &seedProjects[i]); err != nil {
			log.Fatalf("Failed to create project %q: %v", seedProjects[i].Title, err)
		}
		log.Printf("Created project %q", seedProjects[i].Title)
	}
	log.Printf("Seeded %d projects", len(seedProjects))
}

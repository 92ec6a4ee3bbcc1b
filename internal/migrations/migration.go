package migrations

import (
	"log"

	"handcraft_market/internal/database"
	"handcraft_market/internal/models"
	"handcraft_market/internal/repository"
	"handcraft_market/internal/services"

	"gorm.io/gorm"
)

// RunMigrations recreates the schema and seeds default data. Destructive;
// meant for fresh environments, not production upgrades.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	log.Println("Dropping existing tables...")
	err := db.Migrator().DropTable(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.CommissionRecord{},
		&models.Transaction{},
		&models.WithdrawRequest{},
		&models.PlatformSetting{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	log.Println("Creating tables...")
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData seeds the admin account and the platform rate settings.
func createDefaultData(db *gorm.DB) error {
	log.Println("Creating default data...")

	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)
	settingRepo := repository.NewSettingRepository(db)

	existingUser, err := userService.GetUserByUsername("admin")
	if err == nil && existingUser != nil {
		log.Println("Admin user already exists")
		return nil
	}

	log.Println("Creating admin user...")
	admin := &models.User{
		Username: "admin",
		Email:    "admin@handcraftmarket.local",
		Role:     string(models.RoleAdmin),
		IsActive: true,
	}

	if err := userService.CreateUser(admin, "admin123"); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("Admin user created successfully")
		log.Println("Username: admin")
		log.Println("Password: admin123")
	}

	log.Println("Creating default platform settings...")

	commissionSetting := &models.PlatformSetting{
		SettingName: models.SettingCommissionRate,
		Value:       0.10,
		IsActive:    true,
		CreatedBy:   admin.ID,
	}
	settingRepo.Create(commissionSetting)

	timeoutSetting := &models.PlatformSetting{
		SettingName: models.SettingPaymentTimeoutHours,
		Value:       24,
		IsActive:    true,
		CreatedBy:   admin.ID,
	}
	settingRepo.Create(timeoutSetting)

	log.Println("Default data created successfully!")
	return nil
}

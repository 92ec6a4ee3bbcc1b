package main

import (
	"fmt"
	"log"

	"handcraft_market/internal/config"
	"handcraft_market/internal/database"
	"handcraft_market/internal/migrations"
	"handcraft_market/internal/models"
	"handcraft_market/internal/repository"
	"handcraft_market/internal/services"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Recreate schema and seed defaults
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Demo accounts and catalog for local development
	fmt.Println("Creating demo data...")
	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)
	productRepo := repository.NewProductRepository(db)

	artist := &models.User{
		Username: "artisan_demo",
		Email:    "artisan@handcraftmarket.local",
		Role:     string(models.RoleArtist),
		IsActive: true,
	}
	if err := userService.CreateUser(artist, "artisan123"); err != nil {
		log.Printf("Warning: Failed to create demo artisan: %v", err)
	}

	customer := &models.User{
		Username: "customer_demo",
		Email:    "customer@handcraftmarket.local",
		Role:     string(models.RoleCustomer),
		IsActive: true,
	}
	if err := userService.CreateUser(customer, "customer123"); err != nil {
		log.Printf("Warning: Failed to create demo customer: %v", err)
	}

	products := []models.Product{
		{ArtistID: artist.ID, Name: "Hand-thrown ceramic vase", Price: 1_200_000, IsActive: true},
		{ArtistID: artist.ID, Name: "Woven rattan basket", Price: 400_000, IsActive: true},
		{ArtistID: artist.ID, Name: "Lacquered jewelry box", Price: 800_000, IsActive: true},
	}
	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			log.Printf("Warning: Failed to create demo product %q: %v", products[i].Name, err)
		}
	}

	fmt.Println("Database initialization completed successfully!")
}

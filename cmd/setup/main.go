package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"tastebook/backend/internal/database"
	"tastebook/backend/internal/models"
	"tastebook/backend/internal/seeders"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// readInput reads a line of text from the console.
func readInput(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads a password from the console, masking the input.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytePassword)), nil
}

func main() {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("--- Tastebook Setup ---")

	fmt.Println("\n--- Database Configuration ---")
	dbHost := readInput(reader, "Enter Database Host (e.g., localhost or 'db' if using docker-compose): ")
	dbPort := readInput(reader, "Enter Database Port (e.g., 5432): ")
	dbUser := readInput(reader, "Enter Database User: ")
	dbPassword, err := readPassword("Enter Database Password: ")
	if err != nil {
		log.Fatalf("Failed to read database password: %v", err)
	}
	dbName := readInput(reader, "Enter Database Name: ")
	dbSSLMode := readInput(reader, "Enter Database SSL Mode (e.g., disable, require): ")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	fmt.Println("Connecting to database...")
	if err := database.ConnectDB(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	fmt.Println("Successfully connected to the database.")

	if err := database.MigrateDB(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	fmt.Println("Database migrations completed successfully.")

	fmt.Println("\n--- First User Setup ---")
	username := readInput(reader, "Enter Username: ")
	email := readInput(reader, "Enter Email: ")
	password, err := readPassword("Enter Password: ")
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	db := database.GetDB()
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("User '%s' created successfully.\n", user.Username)

	if readInput(reader, "Seed demo data? (y/N): ") == "y" {
		if err := seeders.SeedInitialData(db); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	fmt.Println("\n--- Setup Complete ---")
}

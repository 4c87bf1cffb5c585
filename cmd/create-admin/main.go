package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/database"
	"github.com/stemsi/learnhub-backend/internal/logger"
	"github.com/stemsi/learnhub-backend/internal/model"
	"github.com/stemsi/learnhub-backend/internal/repository"
	"github.com/stemsi/learnhub-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	adminService := service.NewAdminService(repository.NewAdminRepository(pool))

	roles, err := adminService.ListRoles(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list roles")
	}
	if len(roles) == 0 {
		fmt.Println("Error: no roles found, run the migrations first")
		return
	}

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Staff Account ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// Role
	fmt.Println("Available roles:")
	for _, r := range roles {
		fmt.Printf("  %d) %s\n", r.ID, r.Name)
	}
	fmt.Printf("Enter Role ID (default %d): ", roles[0].ID)
	roleIDStr, _ := reader.ReadString('\n')
	roleIDStr = strings.TrimSpace(roleIDStr)
	roleID := roles[0].ID
	if roleIDStr != "" {
		p, err := strconv.Atoi(roleIDStr)
		if err != nil {
			fmt.Println("Error: Role ID must be a number")
			return
		}
		roleID = p
	}
	if !hasRole(roles, roleID) {
		fmt.Printf("Error: role %d does not exist\n", roleID)
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	newAdmin := &model.Admin{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
		RoleID:       roleID,
	}

	if err := adminService.Create(ctx, newAdmin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Staff account '%s' (%s) created with ID: %d\n", newAdmin.Name, newAdmin.Email, newAdmin.ID)
}

func hasRole(roles []model.Role, id int) bool {
	for _, r := range roles {
		if r.ID == id {
			return true
		}
	}
	return false
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"tally/internal/domain/user"
	"tally/internal/infrastructure/postgres"
	"tally/internal/shared/auth"
	"tally/internal/shared/config"
)

const usage = `Tally Admin CLI - Management commands for the Tally API

Usage:
  admin <command> [options]

Commands:
  migrate       Apply pending schema migrations
  create-user   Create an account from the terminal

Examples:
  # Apply migrations
  admin migrate

  # Create an account, prompting for the password
  admin create-user --email=alice@example.com --name="Alice"

  # Create an account non-interactively
  admin create-user --email=alice@example.com --name="Alice" --password=...
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	godotenv.Load()

	switch command := os.Args[1]; command {
	case "migrate":
		runMigrate()
	case "create-user":
		runCreateUser(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func connect() *postgres.DB {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")
	return db
}

func runMigrate() {
	db := connect()
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}

func runCreateUser(args []string) {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	email := fs.String("email", "", "Email address")
	name := fs.String("name", "", "Display name")
	password := fs.String("password", "", "Password (optional, will prompt if omitted)")

	fs.Usage = func() {
		fmt.Println("Usage: admin create-user [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	params := user.RegisterParams{
		Email:    *email,
		Name:     *name,
		Password: *password,
	}

	if params.Password == "" {
		fmt.Print("Password: ")
		pw, err := readPassword(os.Stdin)
		if err != nil {
			log.Fatalf("Failed to read password: %v", err)
		}
		fmt.Println()
		params.Password = pw
	}

	if errs := params.Validate(); errs.HasErrors() {
		for field, messages := range errs {
			for _, message := range messages {
				fmt.Fprintf(os.Stderr, "%s: %s\n", field, message)
			}
		}
		os.Exit(1)
	}

	db := connect()
	defer db.Close()

	repo := postgres.NewUserRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := repo.GetByEmail(ctx, params.Email)
	if err != nil {
		log.Fatalf("Failed to check existing user: %v", err)
	}
	if existing != nil {
		log.Fatalf("User %s already exists", params.Email)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	created, err := repo.Create(ctx, user.CreateUserParams{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
	})
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User %s created with ID %d\n", created.Email, created.ID)
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytePassword)), nil
	}

	// Fallback for pipes
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

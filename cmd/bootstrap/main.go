package main

import (
	"context"
	"fmt"
	"log"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/db"
	"github.com/factorhub/factorhub.go/db/migrations"
	"github.com/factorhub/factorhub.go/lib/logging"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/uptrace/bun/migrate"
)

// Bootstrap provisions a fresh deployment: it migrates the database,
// creates the platform wallet and one principal per role, and assigns
// the role slots. Credentials are printed once and not stored anywhere
// in plaintext.
func main() {

	c := &service.Config{}

	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	logger := logging.Logger(c.LogFilePath)

	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(ctx)
	if err != nil {
		logger.Fatalf("Error initializing db migrator: %v", err)
	}
	_, err = migrator.Migrate(ctx)
	if err != nil {
		logger.Fatalf("Error migrating database: %v", err)
	}

	svc := &service.FactorhubService{
		Config:        c,
		DB:            dbConn,
		Logger:        logger,
		InvoicePubSub: service.NewPubsub(),
	}

	if err := svc.EnsurePlatformUser(ctx); err != nil {
		logger.Fatalf("Error creating platform user: %v", err)
	}
	fmt.Printf("platform user id: %d (login %s)\n", svc.PlatformUserID, c.PlatformLogin)

	for _, role := range []string{common.RoleMinter, common.RolePurchaser, common.RoleSettler} {
		if existing, err := svc.AuthorizedUserID(ctx, role); err != nil {
			logger.Fatalf("Error looking up %s role: %v", role, err)
		} else if existing != 0 {
			fmt.Printf("%-9s already assigned to user %d\n", role, existing)
			continue
		}

		user, err := svc.CreateUser(ctx, role, "")
		if err != nil {
			logger.Fatalf("Error creating %s user: %v", role, err)
		}
		if _, err := svc.SetAuthorizedRole(ctx, role, user.ID); err != nil {
			logger.Fatalf("Error assigning %s role: %v", role, err)
		}
		// CreateUser hands back the plaintext password for one-time display
		fmt.Printf("%-9s user %d login=%s password=%s\n", role, user.ID, user.Login, user.Password)
	}
}

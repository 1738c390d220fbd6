// Command admin is the operator tool for the role-approval gate. Role
// requests are created pending by the API and only move to approved or
// rejected through this tool.
package main

import (
	"context"
	"fmt"
	"os"

	"teamnet-go/internal/config"
	"teamnet-go/internal/logging"
	"teamnet-go/internal/services"
	"teamnet-go/internal/storage"

	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  admin list-pending          list role requests awaiting review
  admin approve <roleID>      approve a pending role request
  admin reject <roleID>       reject a pending role request
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	roleRepo := storage.NewGormRoleRepository(db)
	userRepo := storage.NewGormUserRepository(db)
	roleService := services.NewRoleService(roleRepo, userRepo, logger)

	ctx := context.Background()
	switch os.Args[1] {
	case "list-pending":
		pending, err := roleService.ListPending(ctx)
		if err != nil {
			logger.Fatal("failed to list pending role requests", zap.Error(err))
		}
		if len(pending) == 0 {
			fmt.Println("no pending role requests")
			return
		}
		for _, req := range pending {
			username := "(unknown user)"
			if req.User != nil {
				username = req.User.Username
			}
			fmt.Printf("%d\t%s\t%s\trequested %s\n",
				req.ID, username, req.Name, req.CreatedAt.Format("2006-01-02 15:04"))
		}

	case "approve", "reject":
		if len(os.Args) < 3 {
			usage()
		}
		roleID, err := storage.StrToUint(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid role id %q\n", os.Args[2])
			os.Exit(1)
		}
		role, err := roleService.Review(ctx, roleID, os.Args[1] == "approve")
		if err != nil {
			logger.Fatal("failed to review role request", zap.Uint("roleID", roleID), zap.Error(err))
		}
		fmt.Printf("role request %d for user %d is now %s\n", role.ID, role.UserID, role.Status)

	default:
		usage()
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/projectsync/projectsync/internal/application/dto"
	"github.com/projectsync/projectsync/internal/config"
	"github.com/projectsync/projectsync/internal/infrastructure/database"
	"github.com/projectsync/projectsync/internal/injectable"
	"github.com/projectsync/projectsync/pkg/logger"
)

func main() {
	cmd := &cli.Command{
		Name:  "manage",
		Usage: "ProjectSync management CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to config.yaml",
				Value: "configs/config.yaml",
			},
		},
		Commands: []*cli.Command{
			usersCmd(),
			dbCmd(),
			sweepCmd(),
			statsCmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

// loadDeps builds the dependency graph for a CLI invocation.
func loadDeps(cmd *cli.Command) (*config.Config, *database.Database, injectable.Dependencies, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, injectable.Dependencies{}, err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = "warn"
	if err := logger.Init(logCfg); err != nil {
		return nil, nil, injectable.Dependencies{}, err
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, injectable.Dependencies{}, err
	}

	return cfg, db, injectable.LoadDependencies(cfg, db), nil
}

func usersCmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage user accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "cargo", Value: "ROLE_USER", Usage: "role (ROLE_USER or ROLE_ADMIN)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, db, deps, err := loadDeps(cmd)
					if err != nil {
						return err
					}
					defer db.Close()

					user, err := deps.UserService.CreateUser(ctx, &dto.CreateUserRequest{
						Username: cmd.String("username"),
						Email:    cmd.String("email"),
						Password: cmd.String("password"),
						Cargo:    cmd.String("cargo"),
					})
					if err != nil {
						return err
					}
					fmt.Println("user created:", user.Username, user.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List users",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, db, deps, err := loadDeps(cmd)
					if err != nil {
						return err
					}
					defer db.Close()

					users, total, err := deps.UserService.ListUsers(ctx, 1, 1000)
					if err != nil {
						return err
					}
					for _, u := range users {
						fmt.Println(u.Username, u.Email, u.Cargo)
					}
					fmt.Println("total:", total)
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true, Usage: "user id (uuid)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, db, deps, err := loadDeps(cmd)
					if err != nil {
						return err
					}
					defer db.Close()

					id, err := parseUUID(cmd.String("id"))
					if err != nil {
						return err
					}
					if err := deps.UserService.DeleteUser(ctx, id); err != nil {
						return err
					}
					fmt.Println("user deleted:", id)
					return nil
				},
			},
		},
	}
}

func dbCmd() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Database operations",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply schema migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(cmd.String("config"))
					if err != nil {
						return err
					}
					db, err := database.NewDatabase(&cfg.Database)
					if err != nil {
						return err
					}
					defer db.Close()

					if err := db.RunMigrations(); err != nil {
						return err
					}
					fmt.Println("migrations applied")
					return nil
				},
			},
		},
	}
}

func sweepCmd() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Delete stored artifacts no longer referenced by any repo",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, db, deps, err := loadDeps(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			removed, err := deps.SweeperService.Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Println("orphaned artifacts removed:", removed)
			return nil
		},
	}
}

func statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show entity counts",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, db, deps, err := loadDeps(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			users, err := deps.UserService.CountUsers(ctx)
			if err != nil {
				return err
			}
			repos, err := deps.RepoService.ListAll(ctx)
			if err != nil {
				return err
			}
			clients, err := deps.ClientService.ListClients(ctx)
			if err != nil {
				return err
			}
			fmt.Println("users", users)
			fmt.Println("repos", len(repos))
			fmt.Println("clients", len(clients))
			return nil
		},
	}
}

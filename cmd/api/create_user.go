package main

import (
	"catalog-api/internal/auth"
	"catalog-api/internal/rbac"
	"catalog-api/internal/users"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

type createUserOptions struct {
	name     string
	email    string
	password string
	role     string
}

// NewCreateUserCmd creates the create-user subcommand. Every users endpoint is
// guarded, so the first account has to be created out of band.
func NewCreateUserCmd() *cobra.Command {
	opts := &createUserOptions{}
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user directly in the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateUser(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.email, "email", "", "login email")
	cmd.Flags().StringVar(&opts.password, "password", "", "initial password (6 to 72 characters)")
	cmd.Flags().StringVar(&opts.role, "role", string(rbac.RoleAdmin), "role: admin or user")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runCreateUser(cmd *cobra.Command, opts *createUserOptions) error {
	role := rbac.Role(opts.role)
	if !role.Valid() {
		return oops.Code("INVALID_ROLE").Errorf("role must be admin or user, got %q", opts.role)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	db, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := users.NewService(users.NewPostgresRepo(db, cfg.DB.Timeout), hasher)
	u, err := svc.Create(cmd.Context(), users.CreateRequest{
		Name:     opts.name,
		Email:    opts.email,
		Password: opts.password,
		Role:     role,
	})
	if err != nil {
		return oops.Code("CREATE_USER_FAILED").With("email", opts.email).Wrap(err)
	}

	cmd.Printf("created %s user %s (%s)\n", u.Role, u.Email, u.ID)
	return nil
}

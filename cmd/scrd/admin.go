package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/daemon"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/sql"
	"github.com/supplychain-resilience/scr/internal/supplychain"
	"github.com/supplychain-resilience/scr/internal/tokens"
	"github.com/supplychain-resilience/scr/internal/user"
)

var errDatabaseRequired = errors.New("admin commands require --database")

// admin administers records directly in the database, acting as the
// superuser.
type admin struct {
	cfg *daemon.Config

	db           *sql.DB
	users        *user.Service
	supplyChains *supplychain.Service
}

func newAdminCommand(cfg *daemon.Config) *cobra.Command {
	a := &admin{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer departments, users and supply chains",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Database == "" {
				return errDatabaseRequired
			}
			logger, err := logr.New(&a.cfg.LogConfig)
			if err != nil {
				return err
			}
			a.db, err = sql.New(cmd.Context(), logger, a.cfg.Database)
			if err != nil {
				return err
			}
			a.users = user.NewService(user.Options{Logger: logger, DB: a.db})
			a.supplyChains = supplychain.NewService(supplychain.Options{Logger: logger, DB: a.db})
			cmd.SetContext(authz.AddSubjectToContext(cmd.Context(), &authz.Superuser{Username: "admin"}))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.db != nil {
				a.db.Close()
			}
		},
	}

	cmd.AddCommand(a.createDepartmentCommand())
	cmd.AddCommand(a.createUserCommand())
	cmd.AddCommand(a.createSupplyChainCommand())
	cmd.AddCommand(a.createActionCommand())
	cmd.AddCommand(a.newSessionCommand())

	return cmd
}

func (a *admin) createDepartmentCommand() *cobra.Command {
	var emailDomain string

	cmd := &cobra.Command{
		Use:           "create-department [name]",
		Short:         "Create a department",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dept, err := a.users.CreateDepartment(cmd.Context(), args[0], emailDomain)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created department %s\n", dept.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&emailDomain, "email-domain", "", "Email domain of the department's users, e.g. dft.gov.uk")
	return cmd
}

func (a *admin) createUserCommand() *cobra.Command {
	var opts user.CreateUserOptions

	cmd := &cobra.Command{
		Use:           "create-user [username]",
		Short:         "Create a user belonging to a department",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Username = args[0]
			u, err := a.users.CreateUser(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created user %s\n", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Email, "email", "", "Email address of the user")
	cmd.Flags().StringVar(&opts.Department, "department", "", "Name of the user's department")
	cmd.MarkFlagRequired("department")
	return cmd
}

func (a *admin) createSupplyChainCommand() *cobra.Command {
	var (
		department string
		opts       supplychain.CreateSupplyChainOptions
	)

	cmd := &cobra.Command{
		Use:           "create-supply-chain [name]",
		Short:         "Create a supply chain belonging to a department",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dept, err := a.users.GetDepartmentByName(cmd.Context(), department)
			if err != nil {
				return err
			}
			opts.Name = args[0]
			opts.DepartmentID = dept.ID
			chain, err := a.supplyChains.CreateSupplyChain(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created supply chain %s (/%s/)\n", chain.Name, chain.Slug)
			return nil
		},
	}
	cmd.Flags().StringVar(&department, "department", "", "Name of the department responsible for the supply chain")
	cmd.Flags().StringVar(&opts.ContactName, "contact-name", "", "Name of the supply chain's contact")
	cmd.Flags().StringVar(&opts.ContactEmail, "contact-email", "", "Email address of the supply chain's contact")
	cmd.MarkFlagRequired("department")
	return cmd
}

func (a *admin) createActionCommand() *cobra.Command {
	var (
		targetDate string
		opts       supplychain.CreateStrategicActionOptions
	)

	cmd := &cobra.Command{
		Use:           "create-action [name]",
		Short:         "Create a strategic action of a supply chain",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			if targetDate != "" {
				date, err := time.Parse(time.DateOnly, targetDate)
				if err != nil {
					return fmt.Errorf("parsing target completion date: %w", err)
				}
				opts.TargetCompletionDate = &date
			}
			action, err := a.supplyChains.CreateStrategicAction(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created strategic action %s\n", action.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.SupplyChainSlug, "supply-chain", "", "Slug of the supply chain")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Description of the action")
	cmd.Flags().StringVar(&targetDate, "target-completion-date", "", "Target completion date, e.g. 2027-03-31")
	cmd.Flags().BoolVar(&opts.IsOngoing, "ongoing", false, "The action has no completion date")
	cmd.MarkFlagRequired("supply-chain")
	return cmd
}

func (a *admin) newSessionCommand() *cobra.Command {
	var (
		username string
		expiry   time.Duration
		url      string
	)

	cmd := &cobra.Command{
		Use:           "new-session",
		Short:         "Create a session for a user, printing a link that signs them in",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Valid(); err != nil {
				return err
			}
			u, err := a.users.GetUser(cmd.Context(), username)
			if err != nil {
				return err
			}
			svc, err := tokens.NewService(tokens.Options{
				Logger:  logr.Discard(),
				Secret:  a.cfg.Secret,
				GetUser: a.users.GetSubject,
			})
			if err != nil {
				return err
			}
			token, err := svc.NewSessionToken(u.Username, time.Now().Add(expiry))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tokens.SessionURL(url, token))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username of the user")
	cmd.Flags().DurationVar(&expiry, "expiry", 24*time.Hour, "How long the session link is valid for")
	cmd.Flags().StringVar(&url, "url", "http://localhost:8080", "Base URL of scrd")
	cmd.MarkFlagRequired("username")
	return cmd
}

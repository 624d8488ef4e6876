package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gartstein/compliance/internal/checklist/auth"
	"github.com/gartstein/compliance/internal/checklist/controller"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const adminUser = "checklistctl"

type serviceOpener func(configPath string) (*controller.ChecklistService, func(), error)

func newRootCmd(open serviceOpener, out io.Writer) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "checklistctl",
		Short: "Administer the compliance checklist",
		Long: `checklistctl manages businesses and document definitions.

Example:
  checklistctl business create "Acme Accountants"
  checklistctl definition create --code B10 --name "Change of directors" --days 14 --business <id>
  checklistctl definition create --code B2 --name "Change of address" --global`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (defaults to $CHECKLIST_CONFIG)")

	withService := func(fn func(cmd *cobra.Command, svc *controller.ChecklistService) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := open(configPath)
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(cmd, svc)
		}
	}

	rootCmd.AddCommand(businessCmd(withService))
	rootCmd.AddCommand(definitionCmd(withService))
	rootCmd.AddCommand(tokenCmd())
	return rootCmd
}

type serviceRunner func(fn func(cmd *cobra.Command, svc *controller.ChecklistService) error) func(*cobra.Command, []string) error

func businessCmd(withService serviceRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "business",
		Short: "Manage businesses",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(cmd *cobra.Command, svc *controller.ChecklistService) error {
				business, err := svc.CreateBusiness(cmd.Context(), adminCaller(uuid.Nil), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", business.ID, business.Name)
				return nil
			})(cmd, args)
		},
	})
	return cmd
}

func definitionCmd(withService serviceRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "definition",
		Short: "Manage document definitions",
	}

	var businessFlag string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the definitions visible to a business",
		RunE: withService(func(cmd *cobra.Command, svc *controller.ChecklistService) error {
			businessID, err := parseBusiness(businessFlag)
			if err != nil {
				return err
			}
			defs, err := svc.ListDefinitions(cmd.Context(), businessID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tDAYS\tSCOPE")
			for _, d := range defs {
				scope := "business"
				if d.IsGlobal {
					scope = "global"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.Code, d.Name, d.DaysFromAnchor, scope)
			}
			return w.Flush()
		}),
	}
	list.Flags().StringVar(&businessFlag, "business", "", "Business ID (global definitions only when empty)")

	var (
		def        models.DocumentDefinition
		createBiz  string
		updateBiz  string
		deleteBiz  string
		updateDesc string
		updateDays int
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a definition",
		RunE: withService(func(cmd *cobra.Command, svc *controller.ChecklistService) error {
			businessID, err := parseBusiness(createBiz)
			if err != nil {
				return err
			}
			if !def.IsGlobal && businessID == uuid.Nil {
				return fmt.Errorf("--business is required unless --global is set")
			}
			created, err := svc.CreateDefinition(cmd.Context(), adminCaller(businessID), &def)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", created.Code, created.ID)
			return nil
		}),
	}
	create.Flags().StringVar(&def.Code, "code", "", "Definition code")
	create.Flags().StringVar(&def.Name, "name", "", "Definition name")
	create.Flags().StringVar(&def.Description, "description", "", "Description")
	create.Flags().IntVar(&def.DaysFromAnchor, "days", 0, "Days from the annual return date")
	create.Flags().BoolVar(&def.IsGlobal, "global", false, "Apply to every business")
	create.Flags().StringVar(&createBiz, "business", "", "Owning business ID")
	_ = create.MarkFlagRequired("code")
	_ = create.MarkFlagRequired("name")
	create.MarkFlagsMutuallyExclusive("global", "business")

	update := &cobra.Command{
		Use:   "update <code>",
		Short: "Change a definition's description or offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(cmd *cobra.Command, svc *controller.ChecklistService) error {
				businessID, err := parseBusiness(updateBiz)
				if err != nil {
					return err
				}
				u := &models.DefinitionUpdate{Code: args[0]}
				if cmd.Flags().Changed("description") {
					u.Description = &updateDesc
				}
				if cmd.Flags().Changed("days") {
					u.DaysFromAnchor = &updateDays
				}
				if u.Description == nil && u.DaysFromAnchor == nil {
					return fmt.Errorf("nothing to update: set --description or --days")
				}
				updated, err := svc.UpdateDefinition(cmd.Context(), adminCaller(businessID), u)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s: %d days\n", updated.Code, updated.DaysFromAnchor)
				return nil
			})(cmd, args)
		},
	}
	update.Flags().StringVar(&updateDesc, "description", "", "New description")
	update.Flags().IntVar(&updateDays, "days", 0, "New offset in days")
	update.Flags().StringVar(&updateBiz, "business", "", "Owning business ID for business definitions")

	del := &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete a definition and its checklist entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(cmd *cobra.Command, svc *controller.ChecklistService) error {
				businessID, err := parseBusiness(deleteBiz)
				if err != nil {
					return err
				}
				if err := svc.DeleteDefinition(cmd.Context(), adminCaller(businessID), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})(cmd, args)
		},
	}
	del.Flags().StringVar(&deleteBiz, "business", "", "Owning business ID for business definitions")

	cmd.AddCommand(list, create, update, del)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		user     string
		business string
		admin    bool
		secret   string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development JWT",
		RunE: func(cmd *cobra.Command, _ []string) error {
			businessID, err := parseBusiness(business)
			if err != nil {
				return err
			}
			token, err := auth.GenerateToken(user, businessID, admin, secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "12345", "Token subject")
	cmd.Flags().StringVar(&business, "business", "", "Business ID claim")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin claim")
	cmd.Flags().StringVar(&secret, "secret", "jwt_secret", "Signing secret")
	return cmd
}

func adminCaller(businessID uuid.UUID) models.Caller {
	return models.Caller{UserID: adminUser, BusinessID: businessID, Admin: true}
}

func parseBusiness(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid business ID %q: %w", raw, err)
	}
	return id, nil
}

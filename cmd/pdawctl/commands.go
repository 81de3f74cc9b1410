package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JFR35/pdaw-client/internal/guard"
	"github.com/JFR35/pdaw-client/internal/model"
)

// requireRoute applies the web client's navigation rules to commands:
// each command group maps to a dashboard route, and a command the
// guard would redirect away from is refused up front.
func requireRoute(route guard.Route) error {
	decision := guard.Decide(route, client.Sessions.Session())
	if decision.Allowed {
		return nil
	}
	if decision.RedirectTo == guard.LoginPath {
		return fmt.Errorf("not logged in, run: pdawctl login <email> <password>")
	}
	return fmt.Errorf("the current role has no access to this command")
}

func dashboardRoute() guard.Route {
	return guard.Route{Path: guard.DashboardPath, RequiresAuth: true}
}

func adminRoute() guard.Route {
	return guard.Route{
		Path:         guard.AdminLandingPath,
		RequiresAuth: true,
		Roles:        []model.Role{model.RoleAdmin},
	}
}

// Patient records and visits are clinical work, owned by the
// practitioner area of the dashboard.
func practitionerRoute() guard.Route {
	return guard.Route{
		Path:         guard.PractitionerLandingPath,
		RequiresAuth: true,
		Roles:        []model.Role{model.RolePractitioner},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Authenticate and persist the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !client.Sessions.Login(cmd.Context(), args[0], args[1]) {
				return fmt.Errorf("login failed")
			}
			s := client.Sessions.Session()
			fmt.Printf("logged in as %s (%s)\n", s.Username, s.Role)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(_ *cobra.Command, _ []string) error {
			client.Sessions.Logout()
			fmt.Println("logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(_ *cobra.Command, _ []string) error {
			s := client.Sessions.Session()
			if !s.LoggedIn {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("user %s, role %s\n", s.UserID, s.Role)
			return nil
		},
	}
}

func newPatientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Manage patient documents",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all patients",
		RunE: func(c *cobra.Command, _ []string) error {
			if err := requireRoute(dashboardRoute()); err != nil {
				return err
			}
			if err := client.Patients.LoadAll(c.Context()); err != nil {
				return err
			}
			for _, rec := range client.Patients.List() {
				name := ""
				if len(rec.Patient.Name) > 0 {
					name = rec.Patient.Name[0].String()
				}
				fmt.Printf("%s\t%s\t%s\n", rec.NationalID, name, rec.Patient.Gender)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <national-id>",
		Short: "Fetch one patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := requireRoute(dashboardRoute()); err != nil {
				return err
			}
			rec, err := client.Patients.GetByKey(c.Context(), args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				fmt.Println("not found")
				return nil
			}
			return printJSON(rec.Patient)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <document.json>",
		Short: "Create a patient from a document file",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := requireRoute(practitionerRoute()); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var doc model.Patient
			if err := json.Unmarshal(data, &doc); err != nil {
				return err
			}
			rec, err := client.Patients.CreatePatient(c.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Printf("created patient %s\n", rec.NationalID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <national-id>",
		Short: "Delete a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := requireRoute(practitionerRoute()); err != nil {
				return err
			}
			return client.Patients.Delete(c.Context(), args[0])
		},
	})

	return cmd
}

func newPractitionersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practitioners",
		Short: "Manage practitioner documents",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all practitioners",
		RunE: func(c *cobra.Command, _ []string) error {
			if err := requireRoute(dashboardRoute()); err != nil {
				return err
			}
			if err := client.Practitioners.LoadAll(c.Context()); err != nil {
				return err
			}
			for _, rec := range client.Practitioners.List() {
				fmt.Printf("%s\t%s\n", rec.NationalID, rec.Practitioner.FullName())
			}
			return nil
		},
	})

	return cmd
}

func newVisitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Read clinical visits",
	}

	var patientID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List a patient's visits",
		RunE: func(c *cobra.Command, _ []string) error {
			if err := requireRoute(practitionerRoute()); err != nil {
				return err
			}
			visits, err := client.Visits.ListByPatient(c.Context(), patientID)
			if err != nil {
				return err
			}
			for _, v := range visits {
				fmt.Printf("%s\t%s\t%s\n", v.UUID, v.Date.Format("2006-01-02"), v.PractitionerName)
			}
			return nil
		},
	}
	list.Flags().StringVar(&patientID, "patient", "", "patient national id")
	_ = list.MarkFlagRequired("patient")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <uuid>",
		Short: "Fetch one visit with its measurement detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := requireRoute(practitionerRoute()); err != nil {
				return err
			}
			visit, err := client.Visits.GetByUUID(c.Context(), args[0])
			if err != nil {
				return err
			}
			if visit == nil {
				fmt.Println("not found")
				return nil
			}
			return printJSON(visit)
		},
	})

	return cmd
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "medics",
		Short: "List practitioner accounts",
		RunE: func(c *cobra.Command, _ []string) error {
			if err := requireRoute(adminRoute()); err != nil {
				return err
			}
			if err := client.Users.LoadMedics(c.Context()); err != nil {
				return err
			}
			for _, u := range client.Users.Users() {
				fmt.Printf("%d\t%s %s\t%s\n", u.UserID, u.FirstName, u.LastName, u.Email)
			}
			return nil
		},
	})

	return cmd
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

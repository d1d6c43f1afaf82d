package leadsctl

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/leadscrm/leads.go"
	"github.com/leadscrm/leads.go/internal/codec"
	"github.com/leadscrm/leads.go/pkg/models"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid lead id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newListCommand() *cobra.Command {
	var (
		page     int
		archived bool

		search, status, source, priority, leadType, followUp string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads",
		Example: `  # First page of new leads
  leadsctl list --status new

  # Search, as JSON
  leadsctl list --search acme -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}

			f := models.DefaultFilters().Merge(models.Filters{
				Page:     models.Ptr(page),
				PageSize: models.Ptr(app.Config.PageSize),
				Search:   models.Ptr(search),
			})
			if status != "" {
				s, err := models.ParseLeadStatus(status)
				if err != nil {
					return err
				}
				f.Status = &s
			}
			if source != "" {
				s, err := models.ParseLeadSource(source)
				if err != nil {
					return err
				}
				f.Source = &s
			}
			if priority != "" {
				p, err := models.ParsePriority(priority)
				if err != nil {
					return err
				}
				f.Priority = &p
			}
			if leadType != "" {
				t, err := models.ParseLeadType(leadType)
				if err != nil {
					return err
				}
				f.LeadType = &t
			}
			if followUp != "" {
				d, err := models.ParseDate(followUp)
				if err != nil {
					return err
				}
				f.FollowUpDate = &d
			}
			if cmd.Flags().Changed("archived") {
				f.IsArchived = models.Ptr(archived)
			}

			result, err := app.Client.List(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("list leads: %w", err)
			}

			if app.Config.Output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			renderLeadPage(cmd.OutOrStdout(), result)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&page, "page", 1, "page number")
	fs.StringVar(&search, "search", "", "free text search")
	fs.StringVar(&status, "status", "", "filter by status")
	fs.StringVar(&source, "source", "", "filter by source")
	fs.StringVar(&priority, "priority", "", "filter by priority")
	fs.StringVar(&leadType, "lead-type", "", "filter by lead type")
	fs.StringVar(&followUp, "follow-up-date", "", "filter by follow-up date (YYYY-MM-DD)")
	fs.BoolVar(&archived, "archived", false, "list archived leads instead of active ones")
	return cmd
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			lead, err := app.Client.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get lead %d: %w", id, err)
			}

			if app.Config.Output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), lead)
			}
			renderLead(cmd.OutOrStdout(), lead)
			return nil
		},
	}
}

// leadFlags are the editable fields shared by create and update.
type leadFlags struct {
	file string

	firstName, surname, email, phone     string
	company, position, industry, notes   string
	leadType, source, status, priority   string
	contactMethod, followUp              string
	addressType, address1, city, country string
	postalCode                           string
}

func (f *leadFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.file, "file", "f", "", "read the lead from a JSON file (flags override its fields)")
	fs.StringVar(&f.firstName, "first-name", "", "first name")
	fs.StringVar(&f.surname, "surname", "", "surname")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.phone, "phone", "", "phone number, 10 digits")
	fs.StringVar(&f.company, "company", "", "company (required for commercial leads)")
	fs.StringVar(&f.position, "position", "", "position")
	fs.StringVar(&f.industry, "industry", "", "industry")
	fs.StringVar(&f.notes, "notes", "", "notes")
	fs.StringVar(&f.leadType, "lead-type", "", "commercial or residential")
	fs.StringVar(&f.source, "source", "", "lead source")
	fs.StringVar(&f.status, "status", "", "status")
	fs.StringVar(&f.priority, "priority", "", "priority")
	fs.StringVar(&f.contactMethod, "contact-method", "", "preferred contact method")
	fs.StringVar(&f.followUp, "follow-up-date", "", "follow-up date (YYYY-MM-DD)")
	fs.StringVar(&f.addressType, "address-type", string(models.AddressPrimary), "type of the address given with --address")
	fs.StringVar(&f.address1, "address", "", "address line 1; adds a default address")
	fs.StringVar(&f.city, "city", "", "address city")
	fs.StringVar(&f.postalCode, "postal-code", "", "address postal code")
	fs.StringVar(&f.country, "country", "", "address country")
}

// patch reads the file, if any, and sets the fields whose flags were given.
func (f *leadFlags) patch(fs *pflag.FlagSet) (*models.LeadPatch, error) {
	p := &models.LeadPatch{}
	if f.file != "" {
		if err := decodeFile(f.file, p); err != nil {
			return nil, err
		}
	}
	if err := f.fill(fs, p); err != nil {
		return nil, err
	}
	return p, nil
}

// lead builds a full record: the file, if any, with the set flags applied on top.
func (f *leadFlags) lead(fs *pflag.FlagSet) (*models.Lead, error) {
	lead := &models.Lead{}
	if f.file != "" {
		if err := decodeFile(f.file, lead); err != nil {
			return nil, err
		}
	}

	p := &models.LeadPatch{}
	if err := f.fill(fs, p); err != nil {
		return nil, err
	}
	p.Apply(lead)
	return lead, nil
}

func (f *leadFlags) fill(fs *pflag.FlagSet, p *models.LeadPatch) error {
	str := func(name, value string, dst **string) {
		if fs.Changed(name) {
			*dst = models.Ptr(value)
		}
	}
	str("first-name", f.firstName, &p.FirstName)
	str("surname", f.surname, &p.Surname)
	str("email", f.email, &p.Email)
	str("phone", f.phone, &p.Phone)
	str("company", f.company, &p.Company)
	str("position", f.position, &p.Position)
	str("industry", f.industry, &p.Industry)
	str("notes", f.notes, &p.Notes)

	var errs []error
	if fs.Changed("lead-type") {
		v, err := models.ParseLeadType(f.leadType)
		errs = append(errs, err)
		p.LeadType = &v
	}
	if fs.Changed("source") {
		v, err := models.ParseLeadSource(f.source)
		errs = append(errs, err)
		p.Source = &v
	}
	if fs.Changed("status") {
		v, err := models.ParseLeadStatus(f.status)
		errs = append(errs, err)
		p.Status = &v
	}
	if fs.Changed("priority") {
		v, err := models.ParsePriority(f.priority)
		errs = append(errs, err)
		p.Priority = &v
	}
	if fs.Changed("contact-method") {
		v, err := models.ParseContactMethod(f.contactMethod)
		errs = append(errs, err)
		p.ContactMethod = &v
	}
	if fs.Changed("follow-up-date") {
		v, err := models.ParseDate(f.followUp)
		errs = append(errs, err)
		p.FollowUpDate = &v
	}
	if fs.Changed("address") {
		t, err := models.ParseAddressType(f.addressType)
		errs = append(errs, err)
		p.Addresses = []models.Address{{
			AddressType:  t,
			AddressLine1: f.address1,
			City:         f.city,
			PostalCode:   f.postalCode,
			Country:      f.country,
			IsDefault:    true,
		}}
	}
	return errors.Join(errs...)
}

func decodeFile(path string, dst any) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	if err := (codec.JSON{}).NewDecoder(fh).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func newCreateCommand() *cobra.Command {
	var f leadFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a lead",
		Example: `  leadsctl create --first-name Ada --surname Lovelace --email ada@example.com \
    --phone 0123456789 --lead-type residential --status new --priority high \
    --contact-method email --follow-up-date 2024-07-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}

			lead, err := f.lead(cmd.Flags())
			if err != nil {
				return err
			}
			if err := lead.Validate(); err != nil {
				return err
			}

			created, err := app.Client.Create(cmd.Context(), lead)
			if err != nil {
				return fmt.Errorf("create lead: %w", err)
			}

			if app.Config.Output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), DefaultStyles().Success.Render(fmt.Sprintf("Created lead %d", created.ID)))
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newUpdateCommand() *cobra.Command {
	var f leadFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			patch, err := f.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if patch.Empty() {
				return errors.New("nothing to update")
			}
			if err := patch.Validate(); err != nil {
				return err
			}

			updated, err := app.Client.Update(cmd.Context(), id, patch)
			if err != nil {
				return fmt.Errorf("update lead %d: %w", id, err)
			}

			if app.Config.Output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			renderLead(cmd.OutOrStdout(), updated)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "archive <id>...",
		Aliases: []string{"delete"},
		Short:   "Archive leads",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			res, err := app.Client.DeleteMany(cmd.Context(), ids)
			if err != nil {
				return fmt.Errorf("archive leads: %w", err)
			}
			if !res.Success {
				app.Logger.Warn().Ints64("ids", ids).Msg("server reported success=false")
			}

			if app.Config.Output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), DefaultStyles().Success.Render("Archived leads "+formatIDs(ids)))
			return nil
		},
	}
}

func newNoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> <text>...",
		Short: "Add a note to a lead",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return errors.New("note is empty")
			}

			res, err := app.Client.AddNote(cmd.Context(), id, text)
			if err != nil {
				return fmt.Errorf("add note to lead %d: %w", id, err)
			}

			if app.Config.Output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), DefaultStyles().Success.Render(fmt.Sprintf("Added note to lead %d", id)))
			return nil
		},
	}
}

func newConvertCommand() *cobra.Command {
	var (
		check      bool
		customerID int64
		forceNew   bool
	)

	cmd := &cobra.Command{
		Use:   "convert <id>",
		Short: "Convert a lead into a customer",
		Long: `Convert a lead into a customer.

With --check the server refuses when a customer with the same email exists;
rerun with --customer-id to link to that customer or --force-new to create a
new one anyway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var res models.ConvertResult
			if check || cmd.Flags().Changed("customer-id") || forceNew {
				var opts models.ConvertOptions
				if cmd.Flags().Changed("customer-id") {
					opts.CustomerID = &customerID
				}
				if forceNew {
					opts.ForceNewCustomer = &forceNew
				}
				res, err = app.Client.ConvertWithCheck(cmd.Context(), id, opts)
				if errors.Is(err, leads.ErrConflict) {
					return fmt.Errorf("convert lead %d: %w (rerun with --customer-id or --force-new)", id, err)
				}
			} else {
				res, err = app.Client.Convert(cmd.Context(), id)
			}
			if err != nil {
				return fmt.Errorf("convert lead %d: %w", id, err)
			}

			if app.Config.Output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), DefaultStyles().Success.Render(fmt.Sprintf("Converted lead %d", id)))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&check, "check", false, "refuse when a matching customer exists")
	fs.Int64Var(&customerID, "customer-id", 0, "link the lead to this existing customer")
	fs.BoolVar(&forceNew, "force-new", false, "create a new customer even if one matches")
	cmd.MarkFlagsMutuallyExclusive("customer-id", "force-new")
	return cmd
}

func newLookupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookups",
		Short: "Show lead sources and tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}

			var (
				sources []models.MasterLeadSource
				tags    []models.Tag
			)
			eg, egctx := errgroup.WithContext(cmd.Context())
			eg.Go(func() error {
				var err error
				sources, err = app.Client.MasterLeadSources(egctx)
				return err
			})
			eg.Go(func() error {
				var err error
				tags, err = app.Client.Tags(egctx)
				return err
			})
			if err := eg.Wait(); err != nil {
				return fmt.Errorf("load lookups: %w", err)
			}

			if app.Config.Output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"master_lead_sources": sources,
					"tags":                tags,
				})
			}
			renderLookups(cmd.OutOrStdout(), sources, tags)
			return nil
		},
	}
}

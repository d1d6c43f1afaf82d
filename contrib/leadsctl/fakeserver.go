package leadsctl

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadscrm/leads.go/internal/fakeapi"
	"github.com/leadscrm/leads.go/pkg/models"
)

func newFakeServerCommand() *cobra.Command {
	var (
		addr     string
		token    string
		seed     int
		seedFile string
	)

	cmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Serve an in-memory Leads API for local development",
		Example: `  leadsctl fake-server --addr 127.0.0.1:8787 --seed 40 &
  leadsctl --base-url http://127.0.0.1:8787 list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}

			opts := []fakeapi.Option{fakeapi.WithLogger(&app.Logger)}
			if token != "" {
				opts = append(opts, fakeapi.WithToken(token))
			}
			srv := fakeapi.NewServer(addr, opts...)

			leads := sampleLeads(seed)
			if seedFile != "" {
				var fromFile []models.Lead
				if err := decodeFile(seedFile, &fromFile); err != nil {
					return err
				}
				leads = append(leads, fromFile...)
			}
			srv.Seed(leads...)

			if err := srv.Start(); err != nil {
				return fmt.Errorf("start fake server: %w", err)
			}
			app.Logger.Info().Str("url", srv.URL()).Int("leads", len(leads)).Msg("fake server listening")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Serving on "+srv.URL())

			<-cmd.Context().Done()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&addr, "addr", "127.0.0.1:8787", "listen address")
	fs.StringVar(&token, "token", "", "require this bearer token")
	fs.IntVar(&seed, "seed", 25, "number of generated sample leads")
	fs.StringVar(&seedFile, "seed-file", "", "JSON array of extra leads to load")
	return cmd
}

var (
	sampleFirstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Ken", "Margaret", "Dennis"}
	sampleSurnames   = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Thompson", "Hamilton", "Ritchie"}
)

// sampleLeads generates n deterministic leads spread over every status,
// priority and lead type.
func sampleLeads(n int) []models.Lead {
	start := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	out := make([]models.Lead, 0, max(n, 0))
	for i := 0; i < n; i++ {
		first := sampleFirstNames[i%len(sampleFirstNames)]
		last := sampleSurnames[(i/len(sampleFirstNames))%len(sampleSurnames)]
		l := models.Lead{
			FirstName:     first,
			Surname:       last,
			Email:         fmt.Sprintf("%s.%s%d@example.com", first, last, i),
			Phone:         fmt.Sprintf("04%08d", i),
			LeadType:      models.AllLeadTypes[i%len(models.AllLeadTypes)],
			Source:        models.AllLeadSources[i%len(models.AllLeadSources)],
			Status:        models.AllLeadStatuses[i%len(models.AllLeadStatuses)],
			Priority:      models.AllPriorities[i%len(models.AllPriorities)],
			ContactMethod: models.AllContactMethods[i%len(models.AllContactMethods)],
			FollowUpDate:  models.DateOf(start.AddDate(0, 0, i)),
		}
		if l.LeadType == models.LeadTypeCommercial {
			l.Company = last + " Pty Ltd"
		}
		out = append(out, l)
	}
	return out
}

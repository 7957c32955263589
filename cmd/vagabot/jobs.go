package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vagabot/vagabot/internal/model"
	"github.com/vagabot/vagabot/internal/notifier"
)

var (
	jobsTitle   string
	jobsCompany string
	jobsWide    bool
	jobsSet     []string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and maintain stored postings",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored postings",
	Long:  "Prints the stored postings, optionally narrowed by exact title and/or company.",
	RunE:  runJobsList,
}

var jobsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove stored postings",
	Long:  "Deletes every stored posting matching --title and/or --company. At least one is required.",
	RunE:  runJobsRemove,
}

var jobsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit one stored posting",
	Long:  "Overwrites fields of the single posting matching --title and/or --company, e.g. --set salary=\"R$ 900\".",
	RunE:  runJobsUpdate,
}

func init() {
	for _, c := range []*cobra.Command{jobsListCmd, jobsRemoveCmd, jobsUpdateCmd} {
		c.Flags().StringVar(&jobsTitle, "title", "", "exact posting title")
		c.Flags().StringVar(&jobsCompany, "company", "", "exact company name")
	}
	jobsListCmd.Flags().BoolVarP(&jobsWide, "wide", "w", false, "print every field")
	jobsUpdateCmd.Flags().StringArrayVar(&jobsSet, "set", nil, "field=value to overwrite (repeatable)")

	jobsCmd.AddCommand(jobsListCmd, jobsRemoveCmd, jobsUpdateCmd)
	rootCmd.AddCommand(jobsCmd)
}

func fragmentFromFlags() model.Fragment {
	f := model.Fragment{}
	if jobsTitle != "" {
		f["title"] = jobsTitle
	}
	if jobsCompany != "" {
		f["company"] = jobsCompany
	}
	return f
}

func runJobsList(cmd *cobra.Command, args []string) error {
	cfg, logger, closer := setup()
	defer closer.Close()

	jobStore, release, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer release()

	records, err := jobStore.Search(cmd.Context(), fragmentFromFlags())
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	fmt.Println(renderJobs(records, jobsWide))
	fmt.Printf("\nTotal: %d postings\n", len(records))
	return nil
}

func runJobsRemove(cmd *cobra.Command, args []string) error {
	f := fragmentFromFlags()
	if len(f) == 0 {
		return fmt.Errorf("--title or --company is required")
	}

	cfg, logger, closer := setup()
	defer closer.Close()

	jobStore, release, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer release()

	ctrl := buildController(cfg, jobStore, notifier.NewLogSink(logger), logger)
	n, err := ctrl.RemoveRecord(cmd.Context(), f)
	if err != nil {
		return err
	}
	fmt.Printf("%d postings removed\n", n)
	return nil
}

func runJobsUpdate(cmd *cobra.Command, args []string) error {
	f := fragmentFromFlags()
	if len(f) == 0 {
		return fmt.Errorf("--title or --company is required")
	}
	changes, err := parseSets(jobsSet)
	if err != nil {
		return err
	}

	cfg, logger, closer := setup()
	defer closer.Close()

	jobStore, release, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer release()

	ctx := cmd.Context()
	matches, err := jobStore.Search(ctx, f)
	if err != nil {
		return fmt.Errorf("finding posting: %w", err)
	}
	if len(matches) != 1 {
		return fmt.Errorf("expected exactly one matching posting, found %d", len(matches))
	}

	updated := matches[0]
	for k, v := range changes {
		updated[k] = v
	}

	ctrl := buildController(cfg, jobStore, notifier.NewLogSink(logger), logger)
	if _, err := ctrl.UpdateRecord(ctx, f, updated); err != nil {
		return err
	}
	fmt.Println(renderJobs([]model.Record{updated}, true))
	return nil
}

// parseSets turns repeated key=value flags into field changes.
func parseSets(sets []string) (map[string]string, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("at least one --set is required")
	}

	known := make(map[string]bool, model.FieldCount)
	for _, f := range model.JobFields {
		known[f.Key] = true
	}

	out := make(map[string]string, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || !known[k] {
			return nil, fmt.Errorf("invalid --set %q: want field=value with a known field", s)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

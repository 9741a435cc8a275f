package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and author search jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all job rows with status",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		jobs, err := env.Store.ReadJobs(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROFESSION\tCITY\tCOUNTRY\tSTATUS\tLAST RUN\tNOTE")
		for _, j := range jobs {
			lastRun := ""
			if j.LastRun != nil {
				lastRun = j.LastRun.Format("2006-01-02 15:04")
			}
			status := string(j.Status)
			if status == "" {
				status = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				j.Profession, j.City, j.Country, status, lastRun, j.Note)
		}
		return w.Flush()
	},
}

var (
	addProfession string
	addCity       string
	addCountry    string
)

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Queue one search job",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		job := model.Job{
			Profession: addProfession,
			City:       addCity,
			Country:    addCountry,
			Status:     model.JobStatusQueued,
		}

		existing, err := env.Store.ReadJobs(cmd.Context())
		if err != nil {
			return err
		}
		for _, j := range existing {
			if j.Key() == job.Key() {
				return eris.Errorf("job already exists: %s", job.Query())
			}
		}

		if err := env.Store.AppendJobs(cmd.Context(), []model.Job{job}); err != nil {
			return err
		}
		fmt.Printf("Queued: %s\n", job.Query())
		return nil
	},
}

// jobsFile is the YAML layout accepted by `jobs import`.
type jobsFile struct {
	Jobs []struct {
		Profession string `yaml:"profession"`
		City       string `yaml:"city"`
		Country    string `yaml:"country"`
	} `yaml:"jobs"`
}

var jobsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Queue jobs in bulk from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		var f jobsFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return eris.Wrapf(err, "parse %s", args[0])
		}
		if len(f.Jobs) == 0 {
			fmt.Println("No jobs in file")
			return nil
		}

		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		existing, err := env.Store.ReadJobs(cmd.Context())
		if err != nil {
			return err
		}
		known := make(map[string]struct{}, len(existing))
		for _, j := range existing {
			known[j.Key()] = struct{}{}
		}

		var newJobs []model.Job
		skipped := 0
		for _, entry := range f.Jobs {
			if entry.Profession == "" || entry.City == "" {
				return eris.Errorf("job entry missing profession or city: %+v", entry)
			}
			job := model.Job{
				Profession: entry.Profession,
				City:       entry.City,
				Country:    entry.Country,
				Status:     model.JobStatusQueued,
			}
			if _, ok := known[job.Key()]; ok {
				skipped++
				continue
			}
			known[job.Key()] = struct{}{}
			newJobs = append(newJobs, job)
		}

		if err := env.Store.AppendJobs(cmd.Context(), newJobs); err != nil {
			return err
		}
		fmt.Printf("Queued %d jobs, skipped %d duplicates\n", len(newJobs), skipped)
		return nil
	},
}

func init() {
	jobsAddCmd.Flags().StringVar(&addProfession, "profession", "", "profession to search for (required)")
	jobsAddCmd.Flags().StringVar(&addCity, "city", "", "city to search in (required)")
	jobsAddCmd.Flags().StringVar(&addCountry, "country", "", "country qualifier")
	jobsAddCmd.MarkFlagRequired("profession") //nolint:errcheck
	jobsAddCmd.MarkFlagRequired("city")       //nolint:errcheck

	jobsCmd.AddCommand(jobsListCmd, jobsAddCmd, jobsImportCmd)
	rootCmd.AddCommand(jobsCmd)
}

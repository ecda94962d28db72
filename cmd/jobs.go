package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emrgen/docrepo/internal/config"
	"github.com/emrgen/docrepo/internal/jobs"
)

func init() {
	rootCmd.AddCommand(jobsCmd())
}

// jobsCmd runs the background jobs in the foreground until interrupted.
func jobsCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "jobs",
		Short:   "run the background jobs",
		Example: "docrepo jobs",
		Run: func(cmd *cobra.Command, args []string) {
			cnf := config.LoadConfig()

			docs, cleanup := newService()
			defer cleanup()

			executor := jobs.NewTaskExecutor([]jobs.CronJob{
				jobs.NewReindexTask(cnf.ReindexCron, docs),
			})
			executor.Run()
			defer executor.Stop()

			logrus.Infof("running background jobs, reindex schedule %s", cnf.ReindexCron)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop
		},
	}

	return command
}

package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/templui/magicprofile/internal/config"
	"github.com/templui/magicprofile/internal/db"
)

// devOptions configures the hot-reload loop.
type devOptions struct {
	port        int
	appPort     int
	skipMigrate bool
}

func DevCmd() *cobra.Command {
	opts := devOptions{}

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Migrate the database, then run air for hot-reload development",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(opts)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 8080, "port the browser talks to (air proxy)")
	cmd.Flags().IntVar(&opts.appPort, "app-port", 8090, "port the server listens on behind the proxy")
	cmd.Flags().BoolVar(&opts.skipMigrate, "skip-migrate", false, "do not apply pending migrations first")

	return cmd
}

func runDev(opts devOptions) error {
	airPath, err := exec.LookPath("air")
	if err != nil {
		fmt.Println("Missing binary: air")
		fmt.Println("Install with:")
		fmt.Println("  go install github.com/air-verse/air@latest")
		return fmt.Errorf("air not found")
	}

	if !opts.skipMigrate {
		err := withDB(func(cfg *config.Config, database *sqlx.DB) error {
			return db.RunMigrations(database.DB, cfg.DBDriver)
		})
		if err != nil {
			return fmt.Errorf("migrate before dev: %w", err)
		}
	}

	env := append(os.Environ(), "PORT="+strconv.Itoa(opts.appPort))
	return syscall.Exec(airPath, airArgs(opts), env)
}

// airArgs builds the air command line. .sql files are watched because the
// migrations are embedded into the server binary.
func airArgs(opts devOptions) []string {
	return []string{
		"air",
		"-c", "/dev/null",
		"-root", ".",
		"-build.cmd", "go build -o ./tmp/main ./cmd/server",
		"-build.bin", "./tmp/main",
		"-build.delay", "100",
		"-build.exclude_dir", "bin,tmp,data,_examples",
		"-build.exclude_regex", "_test.go$",
		"-build.include_ext", "go,sql",
		"-build.kill_delay", "500ms",
		"-build.send_interrupt", "true",
		"-proxy.enabled", "true",
		"-proxy.proxy_port", strconv.Itoa(opts.port),
		"-proxy.app_port", strconv.Itoa(opts.appPort),
	}
}

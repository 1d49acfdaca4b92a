package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazygoals/internal/config"
	"github.com/Joseda-hg/lazygoals/internal/db"
	"github.com/Joseda-hg/lazygoals/internal/report"
	"github.com/Joseda-hg/lazygoals/internal/tui"
	"github.com/Joseda-hg/lazygoals/internal/web"
)

type app struct {
	configPath string
	dbPath     string
	web        bool
	port       int

	cfg     config.Config
	sqlDB   *sql.DB
	store   *db.Store
	printer *report.Printer
}

func main() {
	a := &app{}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lazygoals",
		Short:        "Track goals, habits and the days you worked on them",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Name() == "lazygoals" || cmd.Name() == "serve")
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.WebEnabled {
				go func() {
					if err := a.listen(); err != nil {
						log.Printf("web server error: %v", err)
					}
				}()
			}
			return tui.Run(a.store, tui.Options{
				FirstWeekday: a.cfg.FirstWeekday(),
				Range:        a.cfg.Range(),
			})
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "sqlite db path")
	cmd.PersistentFlags().IntVar(&a.port, "port", 0, "web server port")
	cmd.Flags().BoolVar(&a.web, "web", false, "also run the web server")

	cmd.AddCommand(a.serveCmd())
	cmd.AddCommand(a.goalCmd())
	cmd.AddCommand(a.habitCmd())
	cmd.AddCommand(a.logCmd())
	cmd.AddCommand(a.milestoneCmd())
	cmd.AddCommand(a.journalCmd())
	cmd.AddCommand(a.statsCmd())
	cmd.AddCommand(a.calendarCmd())
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listen()
		},
	}
}

func (a *app) listen() error {
	addr := fmt.Sprintf(":%d", a.cfg.WebPort)
	handler := web.NewServer(a.store,
		web.WithFirstWeekday(a.cfg.FirstWeekday()),
		web.WithDefaultRange(a.cfg.Range()),
	).Handler()
	log.Printf("Web server running at http://localhost%s", addr)
	return http.ListenAndServe(addr, handler)
}

// open resolves configuration (file, then .env and LAZYGOALS_* variables,
// then flags) and opens the store. Flag values are saved back to the config
// file when persist is set.
func (a *app) open(persist bool) error {
	cfgPath, err := resolveConfigPath(a.configPath)
	if err != nil {
		return err
	}

	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if persist {
		if err := config.Save(cfgPath, a.applyFlags(fileCfg, cfgPath)); err != nil {
			return err
		}
	}

	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.ApplyEnv(fileCfg, os.Getenv)
	if err != nil {
		return err
	}
	a.cfg = a.applyFlags(cfg, cfgPath)

	if err := config.EnsureDir(a.cfg.DBPath); err != nil {
		return err
	}
	sqlDB, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return err
	}
	a.sqlDB = sqlDB
	a.store = db.NewStore(sqlDB)
	a.printer = report.New(nil)
	return nil
}

func (a *app) applyFlags(cfg config.Config, cfgPath string) config.Config {
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "lazygoals.db")
	}
	if a.web {
		cfg.WebEnabled = true
	}
	if a.port != 0 {
		cfg.WebPort = a.port
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = 8080
	}
	return cfg
}

func (a *app) close() error {
	if a.sqlDB == nil {
		return nil
	}
	err := a.sqlDB.Close()
	a.sqlDB = nil
	return err
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

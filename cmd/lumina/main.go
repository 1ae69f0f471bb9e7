package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/luminahq/lumina/internal/capability"
	"github.com/luminahq/lumina/internal/database"
	"github.com/luminahq/lumina/internal/ingest"
	"github.com/luminahq/lumina/internal/scheduler"
	"github.com/luminahq/lumina/internal/storage"
	"github.com/luminahq/lumina/internal/view"
	"github.com/luminahq/lumina/internal/webserver"
	"github.com/mdouchement/logger"
	"github.com/ncw/swift/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const dbname = "lumina.db"

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	binding string
	port    string
)

func main() {
	c := &cobra.Command{
		Use:     "lumina",
		Short:   "Capability-issuing asset delivery coordinator",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.ExactArgs(0),
	}
	c.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for lumina",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(c.Version)
		},
	})
	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)

	serverCmd.Flags().StringVarP(&binding, "binding", "b", "0.0.0.0", "Server's binding")
	serverCmd.Flags().StringVarP(&port, "port", "p", "5000", "Server's port")
	c.AddCommand(serverCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Init the metadata database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return database.StormInit(config().GetString("database_path"))
		},
	}

	//

	reindexCmd = &cobra.Command{
		Use:   "reindex",
		Short: "Reindex the metadata database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return database.StormReIndex(config().GetString("database_path"))
		},
	}

	//

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Start server",
		Args:  cobra.ExactArgs(0),
		RunE: func(c *cobra.Command, _ []string) error {
			cfg := config()

			ctrl := webserver.Controller{
				Version:      c.Parent().Version,
				ServiceToken: cfg.GetString("service_token"),
			}

			//

			log := logrus.New()
			log.SetFormatter(&logger.LogrusTextFormatter{
				DisableColors:   false,
				ForceColors:     true,
				ForceFormatting: true,
				PrefixRE:        regexp.MustCompile(`^(\[.*?\])\s`),
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05",
			})
			ctrl.Logger = logger.WrapLogrus(log)

			//

			db, err := database.StormOpen(cfg.GetString("database_path"))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()
			ctrl.Database = db

			//

			conn := &swift.Connection{
				AuthUrl:  cfg.GetString("auth_url"),
				UserName: cfg.GetString("username"),
				ApiKey:   cfg.GetString("api_key"),
				Region:   cfg.GetString("region"),
				Domain:   cfg.GetString("domain"),
			}
			ctrl.Storage = storage.NewSwift(conn, cfg.GetString("container"), cfg.GetString("tempurl_key"))

			// A missing or misconfigured store degrades uploads to explicit
			// errors and views to empty lists; it does not prevent boot.
			if err := ctrl.Storage.Authenticate(context.Background()); err != nil {
				ctrl.Logger.Warnf("object store: %s", err)
			}

			//

			scheduler.Start(scheduler.Controller{
				Logger:        ctrl.Logger,
				Storage:       ctrl.Storage,
				Specification: cfg.GetString("token_refresh"),
			})

			//

			ctrl.Issuer = capability.NewIssuer(ctrl.Storage)
			ctrl.Composer = &view.Composer{
				Logger:   ctrl.Logger,
				Database: ctrl.Database,
				Storage:  ctrl.Storage,
				Issuer:   ctrl.Issuer,
			}
			ctrl.Ingest = &ingest.Coordinator{
				Logger:   ctrl.Logger,
				Database: ctrl.Database,
				Issuer:   ctrl.Issuer,
				Composer: ctrl.Composer,
			}

			//

			engine := webserver.EchoEngine(ctrl)
			webserver.PrintRoutes(engine)

			listen := fmt.Sprintf("%s:%s", binding, port)
			log.Printf("Server listening on %s", listen)
			return errors.Wrap(
				engine.Start(listen),
				"could not run server",
			)
		},
	}
)

// config reads the environment-driven configuration (LUMINA_* variables).
func config() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("LUMINA")
	v.AutomaticEnv()

	v.SetDefault("database_path", filepath.Join(datadir(), dbname))
	v.SetDefault("region", "RegionOne")
	v.SetDefault("domain", "Default")
	v.SetDefault("token_refresh", "@every 20m")

	return v
}

func datadir() string {
	p := os.Getenv("LUMINA_DATA_DIR")
	if len(p) == 0 {
		return "."
	}
	return p
}

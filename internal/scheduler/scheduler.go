package scheduler

import (
	"context"

	"github.com/luminahq/lumina/internal/storage"
	"github.com/mdouchement/logger"
	"github.com/robfig/cron/v3"
)

// A Controller is an Inversion Of Control pattern used to init the scheduler package.
type Controller struct {
	Logger        logger.Logger
	Storage       storage.Backend
	Specification string
}

// Start lauches the scheduler asynchronously. It keeps the store session
// fresh so capability signing always has a valid account endpoint
// (keystone tokens expire).
func Start(c Controller) {
	cron := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	log := c.Logger.WithPrefix("[scheduler]")

	_, err := cron.AddFunc(c.Specification, func() {
		log := c.Logger.WithPrefix("[token-refresh]")

		if err := c.Storage.Authenticate(context.Background()); err != nil {
			log.Error(err)
			return
		}

		log.Info("Store session refreshed")
	})
	if err != nil {
		panic(err)
	}
	log.Info("Token refresh task registred")

	cron.Start()
	log.Info("Scheduler is running")
}

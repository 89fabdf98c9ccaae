package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"simdb/internal/catalog"
	"simdb/internal/config"
	"simdb/internal/ingest"
	"simdb/internal/logging"
	"simdb/internal/scholar"
	"simdb/internal/simdb"
)

type commandContext struct {
	configFlag *string
	dbFlag     *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, dbFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		dbFlag:     dbFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
			override, err := config.ExpandPath(strings.TrimSpace(*c.dbFlag))
			if err != nil {
				c.configErr = err
				return
			}
			cfg.Paths.DBFile = override
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
	})
	return c.logger, c.loggerErr
}

// withStore opens the store for one command invocation and closes it when
// the command finishes. Opening acquires the exclusive run lock.
func (c *commandContext) withStore(fn func(*config.Config, *simdb.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := simdb.Open(cfg.Paths.DBFile)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func (c *commandContext) newIngestor(cfg *config.Config, store *simdb.Store) (*ingest.Ingestor, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	catalogClient := catalog.NewHTTPClient(cfg.Catalog.BaseURL, &http.Client{
		Timeout: time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second,
	})
	scholarClient := scholar.NewHTTPClient(cfg.Search.BaseURL, cfg.Search.Index, &http.Client{
		Timeout: time.Duration(cfg.Search.TimeoutSeconds) * time.Second,
	})

	return ingest.New(store, catalogClient, scholarClient, logger), nil
}

// resolveInput opens the command's input stream: the named file when an
// argument is given, stdin otherwise.
func resolveInput(args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	file, err := os.Open(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	return file, args[0], nil
}

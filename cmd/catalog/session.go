package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/mediatek86/catalog/internal/config"
	"github.com/mediatek86/catalog/internal/journal"
	"github.com/mediatek86/catalog/internal/logger"
	"github.com/mediatek86/catalog/pkg/catalog"
	"github.com/mediatek86/catalog/pkg/engine"
)

// session is one connected engine with its configuration
type session struct {
	cfg     *config.Config
	conn    engine.StoreConnector
	engine  *engine.Engine
	journal *journal.Journal
	log     logger.LoggerService
}

func resolveWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return dir, nil
}

// loadConfig reads the work directory configuration, defaults when absent
func loadConfig() (*config.Config, error) {
	dir, err := resolveWorkDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.NewLoader(dir).LoadOrDefault()
	if err != nil {
		return nil, err
	}
	if debugFlag != "" {
		cfg.Engine.Debug = debugFlag
	}
	return cfg, nil
}

// buildRegistry returns the catalog routes with the configured id strategy
func buildRegistry(cfg *config.Config) (*engine.Registry, error) {
	var opts []catalog.Option
	if cfg.UsesUUIDOrderIDs() {
		opts = append(opts, catalog.WithOrderIDs(catalog.UUIDOrderIDs))
	}
	r := engine.NewRegistry()
	if err := catalog.Register(r, opts...); err != nil {
		return nil, err
	}
	return r, nil
}

// openJournal returns nil when journaling is disabled
func openJournal(cfg *config.Config) (*journal.Journal, error) {
	if !cfg.Engine.Journal.Enabled || cfg.Engine.Journal.Dir == "" {
		return nil, nil
	}
	return journal.New(cfg.Engine.Journal.Dir)
}

// openLogger writes to engine.log_file when set, echoed to stderr with
// --verbose. Without a file only errors reach stderr unless --verbose is set.
func openLogger(cfg *config.Config) (log logger.LoggerService, chatty bool, err error) {
	if cfg.Engine.LogFile != "" {
		log, err = logger.New(cfg.Engine.LogFile, verbose)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open log file: %w", err)
		}
		return log, true, nil
	}
	return logger.NewStderr(), verbose, nil
}

func openSession(ctx context.Context) (s *session, err error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, chatty, err := openLogger(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = log.Close()
		}
	}()

	connCfg, err := cfg.Connector()
	if err != nil {
		return nil, err
	}
	if askPassword {
		pwd, err := readPassword()
		if err != nil {
			return nil, err
		}
		connCfg.Password = pwd
	}
	if chatty {
		log.Info(fmt.Sprintf("connecting to %s (%s)", connCfg.Redacted(), connCfg.Driver))
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	jrnl, err := openJournal(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := engine.Open(ctx, connCfg)
	if err != nil {
		log.Error("connection failed", err)
		return nil, engine.ErrNoConnection
	}
	if chatty {
		log.Success(fmt.Sprintf("connected to %s", connCfg.Driver))
	}

	opts := []engine.Option{}
	if jrnl != nil {
		opts = append(opts, engine.WithJournal(jrnl))
	} else if chatty {
		log.Warn("journal disabled")
	}

	eng := engine.New(conn, registry, opts...)
	if level := cfg.DebugLevel(); level != engine.DebugOff {
		eng.WithDebug(level)
	}

	return &session{
		cfg:     cfg,
		conn:    conn,
		engine:  eng,
		journal: jrnl,
		log:     log,
	}, nil
}

func (s *session) Close() {
	s.conn.Close()
	_ = s.log.Close()
}

// readPassword reads the database password without echo
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--ask-password needs an interactive terminal")
	}

	fmt.Fprint(os.Stderr, "Database password: ")
	passwordBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}

// reportError prints engine errors with their code and hint
func reportError(err error) {
	if engine.ErrorCode(err) != "" {
		fmt.Fprint(os.Stderr, engine.FormatError(err))
		return
	}
	printError("%v", err)
}

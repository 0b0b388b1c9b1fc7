package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mediatek86/catalog/internal/config"
	"github.com/mediatek86/catalog/pkg/engine"
)

const cliSchema = `
CREATE TABLE genre (id TEXT PRIMARY KEY, libelle TEXT NOT NULL);
CREATE TABLE suivi (id TEXT PRIMARY KEY, etat TEXT NOT NULL);
CREATE TABLE commande (id INTEGER PRIMARY KEY AUTOINCREMENT, dateCommande TEXT, montant REAL);
CREATE TABLE commandedocument (id INTEGER PRIMARY KEY, nbExemplaire INTEGER, idLivreDvd TEXT, idSuivi TEXT);
CREATE TABLE auteur (id TEXT PRIMARY KEY, nom TEXT);
INSERT INTO genre (id, libelle) VALUES ('10001', 'Policier'), ('10000', 'Humour');
INSERT INTO suivi (id, etat) VALUES ('1', 'en cours')
`

// captureStdout runs fn with os.Stdout redirected and returns what it printed
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	defer func() { os.Stdout = oldStdout }()
	fn()
	w.Close()
	return <-done
}

// run executes the root command with args and fresh flag values
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbose, workDir, debugFlag, askPassword = false, "", "", false
	demandeID, demandeFields = "", ""
	journalLimit, journalFormat = 10, "table"

	var err error
	out := captureStdout(t, func() {
		rootCmd.SetArgs(args)
		err = rootCmd.Execute()
	})
	return out, err
}

// setupWorkDir creates a work directory with a sqlite database and its config
func setupWorkDir(t *testing.T) string {
	t.Helper()
	for _, key := range []string{config.EnvServer, config.EnvPort, config.EnvDatabase, config.EnvLogin, config.EnvPassword, config.EnvDatabaseURL} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "catalog.db")

	conn := engine.NewSQLConnector(engine.ConnectorConfig{Driver: engine.DriverSQLite, Database: dbPath})
	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()
	conn.DB().MustExec(cliSchema)

	cfg := config.Defaults()
	cfg.Database.Driver = string(engine.DriverSQLite)
	cfg.Database.Name = "catalog.db"
	cfg.Engine.Journal.Dir = "journal"
	if err := config.NewLoader(dir).Save(cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return dir
}

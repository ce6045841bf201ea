// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/askarin/fieldvault/internal/adapter"
	"github.com/askarin/fieldvault/internal/config"
	"github.com/askarin/fieldvault/internal/gate"
	"github.com/askarin/fieldvault/internal/keychain"
	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/internal/session"
	"github.com/askarin/fieldvault/internal/store"
	"github.com/askarin/fieldvault/internal/vault"
	"github.com/askarin/fieldvault/internal/workers"
	"github.com/askarin/fieldvault/migrations"
	"github.com/askarin/fieldvault/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const usage = `Usage: fieldvault-client [flags] <command> [args]

Commands:
  setup              first-time master secret setup
  list               list all records
  get <id>           show one record
  add <title>        add a record (prompts for attributes)
  rm <id>            delete a record
  export [file]      write a plaintext JSON bundle (stdout by default)
  import <file>      import a bundle; always creates new records
  rekey              rotate the master secret and re-encrypt all records
  generate [length]  print a random password

The owner identity comes from the FIELDVAULT_OWNER environment variable;
an already-issued token may be supplied via FIELDVAULT_TOKEN.`

func main() {
	printBuildInfo()

	log := logger.NewLogger("fieldvault-client")

	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ownerID := os.Getenv("FIELDVAULT_OWNER")
	if ownerID == "" {
		log.Fatal().Msg("FIELDVAULT_OWNER is not set")
	}

	app, err := newClientApp(context.Background(), cfg, ownerID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error initialising client")
	}
	defer app.close()

	if err := app.run(context.Background(), args[0], args[1:]); err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("command failed")
	}
}

// clientApp holds the wired client-side collaborators for one invocation.
type clientApp struct {
	vault  *vault.Vault
	logger *logger.Logger

	db *store.DB // nil when running against the remote server
}

// newClientApp wires the vault either against the remote HTTP API or,
// when a SQLite DSN is configured, against a fully local store. The local
// mode keeps the whole zero-knowledge pipeline intact — only the
// persistence moves into the process.
func newClientApp(ctx context.Context, cfg *config.ClientConfig, ownerID string, log *logger.Logger) (*clientApp, error) {
	app := &clientApp{logger: log}
	sess := session.New(ownerID)
	kc := keychain.NewKeyChainService()

	if cfg.Storage.DSN != "" {
		db, err := store.NewConnectSQLite(ctx, cfg.Storage.DSN, log)
		if err != nil {
			return nil, err
		}
		if err = migrations.Migrate(db.DB, "sqlite3"); err != nil {
			return nil, err
		}
		app.db = db

		records := store.NewRetryingRecordRepository(store.NewRecordRepository(db, log), db.Classifier(), log)
		g := gate.NewGateService(store.NewVerifierRepository(db, log), 0, log)
		app.vault = vault.New(g, kc, records, sess, log)
		return app, nil
	}

	remote := adapter.NewHTTPVaultAdapter(adapter.HTTPClientConfig{
		BaseURL: cfg.Adapter.BaseURL,
		Timeout: cfg.Adapter.RequestTimeout,
	})
	if token := os.Getenv("FIELDVAULT_TOKEN"); token != "" {
		remote.SetToken(token)
	} else if err := remote.ObtainToken(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("obtaining token: %w", err)
	}

	app.vault = vault.New(remote, kc, remote, sess, log)

	// Lock an idle session in case a command ever blocks on input for long.
	workers.NewWorkers(
		workers.NewAutoLockWorker(ctx, sess, cfg.Workers.AutoLockAfter, log),
	).Run()

	return app, nil
}

func (a *clientApp) close() {
	a.vault.Lock()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *clientApp) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "setup":
		return a.setup(ctx)
	case "list":
		return a.withUnlocked(ctx, func() error { return a.list(ctx) })
	case "get":
		if len(args) != 1 {
			return errors.New("usage: get <id>")
		}
		return a.withUnlocked(ctx, func() error { return a.get(ctx, args[0]) })
	case "add":
		if len(args) != 1 {
			return errors.New("usage: add <title>")
		}
		return a.withUnlocked(ctx, func() error { return a.add(ctx, args[0]) })
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <id>")
		}
		return a.withUnlocked(ctx, func() error { return a.vault.DeleteRecord(ctx, args[0]) })
	case "export":
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		return a.withUnlocked(ctx, func() error { return a.export(ctx, target) })
	case "import":
		if len(args) != 1 {
			return errors.New("usage: import <file>")
		}
		return a.withUnlocked(ctx, func() error { return a.importBundle(ctx, args[0]) })
	case "rekey":
		return a.rekey(ctx)
	case "generate":
		return a.generate(args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// withUnlocked prompts for the master secret, unlocks the session, and
// runs op. The deferred Lock in close() zeroizes the key afterwards.
func (a *clientApp) withUnlocked(ctx context.Context, op func() error) error {
	secret, err := promptSecret("Master secret: ")
	if err != nil {
		return err
	}

	if err := a.vault.Unlock(ctx, secret); err != nil {
		if errors.Is(err, gate.ErrWrongSecret) {
			return errors.New("wrong master secret")
		}
		if errors.Is(err, store.ErrVerifierNotFound) {
			return errors.New("vault is not set up yet, run: fieldvault-client setup")
		}
		return err
	}

	return op()
}

func (a *clientApp) setup(ctx context.Context) error {
	secret, err := promptSecret("New master secret: ")
	if err != nil {
		return err
	}
	confirm, err := promptSecret("Repeat master secret: ")
	if err != nil {
		return err
	}
	if secret != confirm {
		return errors.New("secrets do not match")
	}

	strength, err := a.vault.Setup(ctx, secret)
	if err != nil {
		if errors.Is(err, keychain.ErrWeakSecret) {
			return fmt.Errorf("master secret must be at least %d characters", keychain.MinSecretLength)
		}
		if errors.Is(err, store.ErrVerifierAlreadySet) {
			return errors.New("vault is already set up")
		}
		return err
	}

	if strength.Weak {
		fmt.Println("warning: this master secret is weak — consider a longer passphrase")
	}
	fmt.Println("vault initialised and unlocked")
	return nil
}

func (a *clientApp) list(ctx context.Context) error {
	records, err := a.vault.ListRecords(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("vault is empty")
		return nil
	}

	for _, record := range records {
		fmt.Printf("%s  %-30s  %s\n", record.ID, record.Title, record.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *clientApp) get(ctx context.Context, id string) error {
	record, err := a.vault.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	printRecord(record)
	return nil
}

func (a *clientApp) add(ctx context.Context, title string) error {
	reader := bufio.NewReader(os.Stdin)

	username, err := promptLine(reader, "Username: ")
	if err != nil {
		return err
	}
	secretValue, err := promptSecret("Secret value: ")
	if err != nil {
		return err
	}
	locator, err := promptLine(reader, "Locator (URL): ")
	if err != nil {
		return err
	}
	notes, err := promptLine(reader, "Notes: ")
	if err != nil {
		return err
	}

	created, err := a.vault.CreateRecord(ctx, models.Record{
		Title:    title,
		Username: username,
		Secret:   secretValue,
		Locator:  locator,
		Notes:    notes,
	})
	if err != nil {
		return err
	}

	fmt.Printf("created %s\n", created.ID)
	return nil
}

func (a *clientApp) export(ctx context.Context, target string) error {
	raw, err := a.vault.Export(ctx)
	if err != nil {
		return err
	}

	if target == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}

	// 0600: the bundle is plaintext.
	if err = os.WriteFile(target, raw, 0o600); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", target)
	return nil
}

func (a *clientApp) importBundle(ctx context.Context, source string) error {
	raw, err := os.ReadFile(source)
	if err != nil {
		return err
	}

	result, err := a.vault.Import(ctx, raw)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d records\n", result.Succeeded)
	for _, failure := range result.Failed {
		fmt.Printf("  item %d failed: %s\n", failure.Index, failure.Reason)
	}
	return nil
}

func (a *clientApp) rekey(ctx context.Context) error {
	oldSecret, err := promptSecret("Current master secret: ")
	if err != nil {
		return err
	}
	newSecret, err := promptSecret("New master secret: ")
	if err != nil {
		return err
	}
	confirm, err := promptSecret("Repeat new master secret: ")
	if err != nil {
		return err
	}
	if newSecret != confirm {
		return errors.New("secrets do not match")
	}

	result, err := a.vault.Rekey(ctx, oldSecret, newSecret)
	if err != nil {
		if errors.Is(err, gate.ErrWrongSecret) {
			return errors.New("wrong master secret")
		}
		return err
	}

	fmt.Printf("re-encrypted %d records\n", result.Succeeded)
	for _, failure := range result.Failed {
		fmt.Printf("  record %s failed: %s\n", failure.RecordID, failure.Reason)
	}
	if !result.Ok() {
		fmt.Println("warning: some records are still encrypted under the old secret; run rekey again")
	}
	return nil
}

func (a *clientApp) generate(args []string) error {
	opts := keychain.DefaultGeneratorOptions()
	if len(args) == 1 {
		length, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid length %q", args[0])
		}
		opts.Length = length
	}

	password, err := keychain.GeneratePassword(opts)
	if err != nil {
		return err
	}

	fmt.Println(password)
	return nil
}

func printRecord(record models.Record) {
	fmt.Printf("id:       %s\n", record.ID)
	fmt.Printf("title:    %s\n", record.Title)
	if record.Username != "" {
		fmt.Printf("username: %s\n", record.Username)
	}
	if record.Secret != "" {
		fmt.Printf("secret:   %s\n", record.Secret)
	}
	if record.Locator != "" {
		fmt.Printf("locator:  %s\n", record.Locator)
	}
	if record.Notes != "" {
		fmt.Printf("notes:    %s\n", record.Notes)
	}
	fmt.Printf("created:  %s\n", record.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("updated:  %s\n", record.UpdatedAt.Format("2006-01-02 15:04:05"))
}

// promptSecret reads a line without echoing it back to the terminal.
func promptSecret(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return string(raw), nil
}

func promptLine(reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

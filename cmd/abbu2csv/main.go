package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/spachava753/abbu2csv/gmail"
	"github.com/spachava753/abbu2csv/internal/config"
	"github.com/spachava753/abbu2csv/internal/logging"
	"github.com/spachava753/abbu2csv/macos/addressbook"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the command line of abbu2csv.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`

	In      string `name:"in" required:"" placeholder:"PATH" help:"Path to the .abbu bundle or AddressBook .abcddb database."`
	Out     string `name:"out" required:"" placeholder:"PATH" help:"Output CSV file path (including filename)."`
	Config  string `help:"Config file layered over ~/.config/abbu2csv/config.yaml." placeholder:"PATH"`
	Verbose bool   `help:"Enable debug logging." short:"v"`

	Mail     bool     `help:"Deliver the CSV through Gmail after export."`
	MailTo   []string `name:"mail-to" help:"Recipient for --mail (repeatable)." placeholder:"ADDR"`
	MailMode string   `name:"mail-mode" enum:"send,draft," default:"" help:"Send the message or save it as a draft (send, draft)."`
	DryRun   bool     `name:"dry-run" help:"Build the mail without contacting Gmail."`
}

// Run executes the conversion.
func (c *CLI) Run(stdout io.Writer) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Verbose: c.Verbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	res, err := addressbook.Resolve(c.In, logger)
	if res.Selection != nil {
		printSelection(stdout, res)
	}
	if err != nil {
		return err
	}
	logger.Debug("resolved database", zap.String("input", c.In), zap.String("kind", string(res.Input.Kind)), zap.String("database", res.Database))

	count, err := addressbook.Export(res.Database, c.Out)
	if err != nil {
		return fmt.Errorf("error during conversion: %w", err)
	}
	fmt.Fprintf(stdout, "Exported %d contact records to %s\n", count, c.Out)
	fmt.Fprintln(stdout, "Conversion completed successfully!")

	if !cfg.Mail.Enabled {
		return nil
	}
	return deliver(stdout, logger, cfg.Mail, c.Out, c.DryRun)
}

// loadConfig loads layered config from the user path and --config with env
// and flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	userPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		userPath = filepath.Join(home, ".config", "abbu2csv", "config.yaml")
	}
	cfg, err := config.LoadLayered(userPath, c.Config)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if c.Mail {
		cfg.Mail.Enabled = true
	}
	if len(c.MailTo) > 0 {
		cfg.Mail.To = c.MailTo
	}
	if c.MailMode != "" {
		cfg.Mail.Mode = c.MailMode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printSelection(w io.Writer, res addressbook.Resolution) {
	fmt.Fprintf(w, "Found %d database files, checking for contacts...\n", len(res.Selection.Candidates))
	for _, candidate := range res.Selection.Candidates {
		fmt.Fprintf(w, "  %s: %d contacts\n", displayName(res.Input.Path, candidate.Path), candidate.Contacts)
	}
	if res.Selection.Best != "" {
		fmt.Fprintf(w, "Using database with %d contacts: %s\n", res.Selection.Contacts, displayName(res.Input.Path, res.Selection.Best))
	}
}

// displayName shows a database relative to its bundle, since every database
// in a bundle shares the same base name.
func displayName(bundle string, path string) string {
	if rel, err := filepath.Rel(bundle, path); err == nil {
		return rel
	}
	return filepath.Base(path)
}

func deliver(w io.Writer, logger *zap.Logger, mail config.Mail, outPath string, dryRun bool) error {
	data, err := os.ReadFile(outPath)
	if err != nil {
		return fmt.Errorf("mail: reading %s: %w", outPath, err)
	}

	out, err := gmail.Deliver(gmail.DeliverInput{
		Mode:    gmail.Mode(mail.Mode),
		To:      mail.To,
		Subject: mail.Subject,
		Attachment: gmail.Attachment{
			Filename:    filepath.Base(outPath),
			ContentType: "text/csv; charset=utf-8",
			Data:        data,
		},
		DryRun: dryRun,
	})
	if err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	logger.Info("delivered export",
		zap.String("mode", mail.Mode),
		zap.Strings("to", mail.To),
		zap.String("message_id", out.MessageID),
		zap.Int("bytes", out.Size),
		zap.Bool("dry_run", dryRun))

	switch {
	case dryRun:
		fmt.Fprintf(w, "Dry run: %s message of %d bytes prepared (%s)\n", mail.Mode, out.Size, out.MessageID)
	case mail.Mode == string(gmail.ModeDraft):
		fmt.Fprintf(w, "Saved Gmail draft %s\n", out.MessageID)
	default:
		fmt.Fprintf(w, "Mailed export to %d recipient(s) (%s)\n", len(mail.To), out.MessageID)
	}
	return nil
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("abbu2csv"),
		kong.Description("Convert Apple AddressBook (.abbu) contacts to CSV format."),
		kong.Vars{"version": version + " " + commit + " " + date},
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, kong.BindTo(os.Stdout, (*io.Writer)(nil)))
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/oauth2"

	"github.com/KirkDiggler/aionia-sheet/internal/auth"
	"github.com/KirkDiggler/aionia-sheet/internal/clients/drive"
	"github.com/KirkDiggler/aionia-sheet/internal/domain/character"
	"github.com/KirkDiggler/aionia-sheet/internal/services/drivesave"
	"github.com/KirkDiggler/aionia-sheet/internal/services/sheet"
)

const usage = `Usage: sheet <command> [arguments]

Commands:
  normalize <in>              print the normalized record of a .json or .zip sheet
  export <in> [outdir]        write a .zip export named after the character
  inspect <in>                print experience and weight totals
  ccfolia [-url URL] <in>     print the CCFOLIA clipboard JSON
  drive folder [path]         show or change the Drive save folder
  drive list                  list saved sheets on Drive
  drive push <in> [fileID]    upload a sheet, replacing fileID when given
  drive pull <fileID> [outdir] download a sheet as a .zip export
`

var errUsage = errors.New("invalid usage")

// driveEnv holds the credentials for the drive subcommands
type driveEnv struct {
	AccessToken  string `env:"DRIVE_ACCESS_TOKEN"`
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RefreshToken string `env:"GOOGLE_REFRESH_TOKEN"`
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	driveClient func(ctx context.Context) (drive.Client, error)
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		stdout:      stdout,
		stderr:      stderr,
		now:         time.Now,
		driveClient: googleDrive,
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.stderr, usage)
		return errUsage
	}

	switch args[0] {
	case "normalize":
		return c.normalize(args[1:])
	case "export":
		return c.export(args[1:])
	case "inspect":
		return c.inspect(args[1:])
	case "ccfolia":
		return c.ccfolia(args[1:])
	case "drive":
		return c.drive(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.stdout, usage)
		return nil
	default:
		fmt.Fprint(c.stderr, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func (c *cli) normalize(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: normalize <in>", errUsage)
	}
	store, err := c.open(args[0])
	if err != nil {
		return err
	}
	return c.printJSON(store.Record())
}

func (c *cli) export(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: export <in> [outdir]", errUsage)
	}
	store, err := c.open(args[0])
	if err != nil {
		return err
	}

	outDir := "."
	if len(args) == 2 {
		outDir = args[1]
	}
	name, data, err := store.Export()
	if err != nil {
		return err
	}
	return c.write(outDir, name, data)
}

type inspection struct {
	Name                    string                        `json:"name"`
	PlayerName              string                        `json:"playerName"`
	MaxExperiencePoints     int                           `json:"maxExperiencePoints"`
	CurrentExperiencePoints int                           `json:"currentExperiencePoints"`
	Spent                   character.ExperienceBreakdown `json:"spent"`
	CurrentWeight           int                           `json:"currentWeight"`
	OverBudget              bool                          `json:"overBudget"`
	Images                  int                           `json:"images"`
}

func (c *cli) inspect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: inspect <in>", errUsage)
	}
	store, err := c.open(args[0])
	if err != nil {
		return err
	}

	rec := store.Record()
	return c.printJSON(inspection{
		Name:                    rec.Character.Name,
		PlayerName:              rec.Character.PlayerName,
		MaxExperiencePoints:     store.MaxExperiencePoints(),
		CurrentExperiencePoints: store.CurrentExperiencePoints(),
		Spent:                   character.SpentExperience(rec),
		CurrentWeight:           store.CurrentWeight(),
		OverBudget:              store.OverBudget(),
		Images:                  len(store.Images()),
	})
}

func (c *cli) ccfolia(args []string) error {
	fs := flag.NewFlagSet("ccfolia", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	externalURL := fs.String("url", "", "external URL shown on the CCFOLIA piece")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: ccfolia [-url URL] <in>", errUsage)
	}

	store, err := c.open(fs.Arg(0))
	if err != nil {
		return err
	}
	out, err := store.CCFOLIA(*externalURL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, string(out))
	return err
}

func (c *cli) drive(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: drive folder|list|push|pull", errUsage)
	}

	client, err := c.driveClient(ctx)
	if err != nil {
		return err
	}
	mgr := drivesave.NewManager(&drivesave.Config{Client: client, TimeProvider: clock(c.now)})

	switch args[0] {
	case "folder":
		return c.driveFolder(ctx, mgr, args[1:])
	case "list":
		return c.driveList(ctx, mgr)
	case "push":
		return c.drivePush(ctx, mgr, args[1:])
	case "pull":
		return c.drivePull(ctx, mgr, args[1:])
	default:
		return fmt.Errorf("%w: unknown drive command %q", errUsage, args[0])
	}
}

func (c *cli) driveFolder(ctx context.Context, mgr *drivesave.Manager, args []string) error {
	var (
		path string
		err  error
	)
	switch len(args) {
	case 0:
		path, err = mgr.FolderPath(ctx)
	case 1:
		path, err = mgr.SetFolderPath(ctx, args[0])
	default:
		return fmt.Errorf("%w: drive folder [path]", errUsage)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, path)
	return err
}

func (c *cli) driveList(ctx context.Context, mgr *drivesave.Manager) error {
	files, err := mgr.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMODIFIED")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.ID, f.Name, f.ModifiedTime.Format(time.RFC3339))
	}
	return tw.Flush()
}

func (c *cli) drivePush(ctx context.Context, mgr *drivesave.Manager, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: drive push <in> [fileID]", errUsage)
	}
	store, err := c.open(args[0])
	if err != nil {
		return err
	}

	fileID := ""
	if len(args) == 2 {
		fileID = args[1]
	}
	f, err := mgr.Save(ctx, fileID, store.Record(), store.Images())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.stdout, "%s\t%s\n", f.ID, f.Name)
	return err
}

func (c *cli) drivePull(ctx context.Context, mgr *drivesave.Manager, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: drive pull <fileID> [outdir]", errUsage)
	}
	result, err := mgr.Load(ctx, args[0])
	if err != nil {
		return err
	}

	store := c.newStore()
	store.Load(result.Record, result.Images)
	name, data, err := store.Export()
	if err != nil {
		return err
	}

	outDir := "."
	if len(args) == 2 {
		outDir = args[1]
	}
	return c.write(outDir, name, data)
}

func (c *cli) newStore() *sheet.Store {
	return sheet.NewStore(&sheet.StoreConfig{TimeProvider: clock(c.now)})
}

func (c *cli) open(path string) (*sheet.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	store := c.newStore()
	if err := store.Import(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

func (c *cli) write(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.stdout, path)
	return err
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

type clock func() time.Time

func (f clock) Now() time.Time { return f() }

// googleDrive authenticates with a raw access token or, failing that, a refresh token
func googleDrive(ctx context.Context) (drive.Client, error) {
	var cfg driveEnv
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	var ts oauth2.TokenSource
	switch {
	case cfg.AccessToken != "":
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	case cfg.RefreshToken != "":
		provider, err := auth.NewGoogleProvider(&auth.GoogleConfig{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		})
		if err != nil {
			return nil, err
		}
		ts = provider.TokenSource(ctx, cfg.RefreshToken)
	default:
		return nil, errors.New("set DRIVE_ACCESS_TOKEN or GOOGLE_REFRESH_TOKEN with GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
	return drive.NewGoogleClient(ctx, ts)
}

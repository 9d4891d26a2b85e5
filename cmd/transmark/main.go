// Command transmark converts documents between markup formats.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/transmark/core/ast"
	"github.com/FocuswithJustin/transmark/core/convert"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/loss"
	"github.com/FocuswithJustin/transmark/core/markup"
	"github.com/FocuswithJustin/transmark/core/sqlite"
	"github.com/FocuswithJustin/transmark/internal/cache"
	"github.com/FocuswithJustin/transmark/internal/config"
	"github.com/FocuswithJustin/transmark/internal/logging"
	"github.com/FocuswithJustin/transmark/internal/validation"

	// Register the built-in formats
	_ "github.com/FocuswithJustin/transmark/internal/embedded"
)

const version = "0.1.0"

// Output streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Globals holds flags shared by every command.
type Globals struct {
	Config    string `name:"config" short:"c" help:"Configuration file (default: $XDG_CONFIG_HOME/transmark/config.yaml)" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat string `name:"log-format" help:"Log format: text, json"`
}

// CLI defines the command-line interface for transmark.
type CLI struct {
	Globals

	Convert  ConvertCmd  `cmd:"" help:"Convert markup between formats"`
	Inspect  InspectCmd  `cmd:"" help:"Print the common AST of a document"`
	Formats  FormatsCmd  `cmd:"" help:"List registered formats"`
	Cache    CacheGroup  `cmd:"" help:"Conversion cache maintenance"`
	Settings ConfigGroup `cmd:"" name:"config" help:"Configuration file operations"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// CacheGroup contains cache maintenance operations.
type CacheGroup struct {
	Stats CacheStatsCmd `cmd:"" help:"Show cache size"`
	Purge CachePurgeCmd `cmd:"" help:"Delete cached conversions"`
}

// ConfigGroup contains configuration operations.
type ConfigGroup struct {
	Init ConfigInitCmd `cmd:"" help:"Write a default configuration file"`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration"`
}

// load reads the configuration and applies the logging overrides.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.LogFormat = g.LogFormat
	}
	if err := cfg.InitLogging(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConvertCmd converts one or more documents.
type ConvertCmd struct {
	Files     []string `arg:"" optional:"" help:"Input files ('-' or none reads stdin)"`
	From      string   `short:"f" help:"Source format (default: from the file extension)"`
	To        string   `short:"t" required:"" help:"Target format"`
	Out       string   `short:"o" help:"Output file, or directory when converting several files"`
	Strict    bool     `help:"Fail instead of degrading unsupported constructs"`
	Parallel  bool     `help:"Degrade top-level blocks concurrently"`
	Workers   int      `help:"Worker goroutines for parallel and batch conversion (0 = all CPUs)"`
	Flavor    string   `help:"Markdown flavor: gfm or commonmark"`
	Delimiter string   `help:"Cell delimiter for flattened tables"`
	Width     int      `help:"Wrap plain text at this column" default:"-1"`
	Charset   string   `help:"Input character set (e.g., windows-1252)"`
	Sanitize  bool     `help:"Sanitize HTML output"`
	NoCache   bool     `name:"no-cache" help:"Bypass the conversion cache"`
	Quiet     bool     `short:"q" help:"Do not print degradation diagnostics"`
	Report    bool     `help:"Print the loss report as JSON to stderr"`
}

// options merges flags over the configuration.
func (c *ConvertCmd) options(cfg *config.Config) convert.Options {
	opts := convert.Options{Options: cfg.ConvertOptions()}
	opts.Strict = opts.Strict || c.Strict
	opts.Parallel = opts.Parallel || c.Parallel
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	if c.Flavor != "" {
		opts.Flavor = c.Flavor
	}
	if c.Delimiter != "" {
		opts.TableDelimiter = c.Delimiter
	}

	opts.Read.Charset = cfg.Charset
	if c.Charset != "" {
		opts.Read.Charset = c.Charset
	}

	opts.Write.Width = cfg.WrapWidth
	if c.Width >= 0 {
		opts.Write.Width = c.Width
	}
	opts.Write.Sanitize = cfg.SanitizeHTML || c.Sanitize
	return opts
}

func (c *ConvertCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	opts := c.options(cfg)

	ctx := context.Background()
	if cfg.CacheEnabled && !c.NoCache {
		store, err := cache.Open(ctx, cfg.CachePath, cache.Options{Memory: cache.DefaultConfig()})
		if err != nil {
			logging.Warn("conversion cache unavailable", "path", cfg.CachePath, "error", err.Error())
		} else {
			defer store.Close()
			opts.Cache = store
		}
	}

	if len(c.Files) > 1 {
		return c.runBatch(ctx, opts)
	}

	name := "-"
	if len(c.Files) == 1 {
		name = c.Files[0]
	}
	from, err := c.sourceFormat(name)
	if err != nil {
		return err
	}
	input, err := readInput(name, from, opts.Read.Charset)
	if err != nil {
		return err
	}
	opts.Read.Charset = ""

	res, err := convert.Convert(ctx, input, from, c.To, opts)
	if err != nil {
		return err
	}
	c.printReport(name, res.Report)
	return writeOutput(c.Out, res.Output)
}

func (c *ConvertCmd) runBatch(ctx context.Context, opts convert.Options) error {
	if c.Out == "" {
		return fmt.Errorf("--out must name a directory when converting several files")
	}
	target, err := format.Lookup(c.To)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	jobs := make([]convert.Job, 0, len(c.Files))
	for _, path := range c.Files {
		from, err := c.sourceFormat(path)
		if err != nil {
			return err
		}
		input, err := readInput(path, from, opts.Read.Charset)
		if err != nil {
			return err
		}
		jobs = append(jobs, convert.Job{Name: path, Input: input, From: from, To: c.To})
	}

	opts.Read.Charset = ""
	failed := 0
	for _, r := range convert.ConvertAll(ctx, jobs, c.Workers, opts) {
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "%s %s: %v\n", errorStyle.Render("failed"), r.Job.Name, r.Err)
			continue
		}
		out, err := outputPath(c.Out, r.Job.Name, target)
		if err != nil {
			return err
		}
		if err := writeOutput(out, r.Result.Output); err != nil {
			return err
		}
		c.printReport(r.Job.Name, r.Result.Report)
		if !c.Quiet {
			fmt.Fprintf(stderr, "%s %s -> %s\n", successStyle.Render("converted"), r.Job.Name, out)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(jobs))
	}
	return nil
}

// sourceFormat returns --from, or the format registered for the file's
// extension.
func (c *ConvertCmd) sourceFormat(path string) (string, error) {
	if c.From != "" {
		f, err := format.Lookup(c.From)
		if err != nil {
			return "", err
		}
		return f.Name, nil
	}
	if path == "-" {
		return "", fmt.Errorf("--from is required when reading stdin")
	}
	f, err := format.ByExtension(path)
	if err != nil {
		return "", fmt.Errorf("cannot infer source format of %s, use --from: %w", path, err)
	}
	return f.Name, nil
}

func (c *ConvertCmd) printReport(name string, report *loss.Report) {
	if report == nil {
		return
	}
	if c.Report {
		enc := json.NewEncoder(stderr)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		return
	}
	if c.Quiet {
		return
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintf(stderr, "%s %s %s %s\n",
			warningStyle.Render("degraded"),
			infoStyle.Render(string(d.NodeKind)),
			dimStyle.Render(d.Path),
			d.Reason,
		)
	}
	if report.HasLoss() {
		fmt.Fprintf(stderr, "%s %s: %d degradation(s), loss class %s\n",
			warningStyle.Render("lossy"), name, len(report.Diagnostics), report.LossClass)
	}
}

// outputPath names the output of a batch job inside dir, replacing the input
// extension with the target's first one.
func outputPath(dir, path string, target *format.Format) (string, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(target.Extensions) > 0 {
		name += "." + target.Extensions[0]
	}
	name, err := validation.SanitizeFilename(name)
	if err != nil {
		return "", fmt.Errorf("output name for %s: %w", path, err)
	}
	return validation.JoinWithin(dir, name)
}

// readInput reads and decodes an input file. The text it returns is UTF-8.
func readInput(path, from, charset string) (string, error) {
	// ReadAll closes what it reads; the process's stdin stays open.
	var r io.Reader = io.NopCloser(stdin)
	if path != "-" {
		if err := validation.ValidateInputFile(path); err != nil {
			return "", fmt.Errorf("invalid input: %w", err)
		}
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open input: %w", err)
		}
		r = f
	}
	return markup.ReadAll(r, markup.Options{Charset: charset, SniffHTML: charset == "" && from == "html"})
}

func writeOutput(path, output string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, output)
		return err
	}
	if err := validation.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(output), 0644)
}

// InspectCmd prints the common AST of a document.
type InspectCmd struct {
	File    string `arg:"" optional:"" default:"-" help:"Input file ('-' reads stdin)"`
	From    string `short:"f" help:"Source format (default: from the file extension)"`
	Flavor  string `help:"Markdown flavor: gfm or commonmark"`
	Charset string `help:"Input character set"`
	Hash    bool   `help:"Also print the BLAKE3 hash of the tree"`
}

func (c *InspectCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	from, err := (&ConvertCmd{From: c.From}).sourceFormat(c.File)
	if err != nil {
		return err
	}
	charset := cfg.Charset
	if c.Charset != "" {
		charset = c.Charset
	}
	input, err := readInput(c.File, from, charset)
	if err != nil {
		return err
	}

	opts := convert.Options{Options: cfg.ConvertOptions()}
	if c.Flavor != "" {
		opts.Flavor = c.Flavor
	}
	doc, err := convert.ToCommon(context.Background(), input, from, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, ast.Dump(doc))
	if c.Hash {
		fmt.Fprintln(stdout, dimStyle.Render("blake3:"+ast.Hash(doc)))
	}
	return nil
}

// FormatsCmd lists registered formats.
type FormatsCmd struct {
	JSON bool `help:"Print as JSON"`
}

type formatInfo struct {
	format.Manifest
	Capabilities []string `json:"capabilities"`
}

func (c *FormatsCmd) Run() error {
	formats := format.List()

	if c.JSON {
		infos := make([]formatInfo, 0, len(formats))
		for _, f := range formats {
			infos = append(infos, formatInfo{Manifest: f.Manifest, Capabilities: f.Capabilities.Names()})
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, headerStyle.Render("NAME")+"\t"+headerStyle.Render("ALIASES")+"\t"+
		headerStyle.Render("EXTENSIONS")+"\t"+headerStyle.Render("DESCRIPTION"))
	for _, f := range formats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name,
			strings.Join(f.Aliases, ","), strings.Join(f.Extensions, ","), f.Description)
	}
	return tw.Flush()
}

// CacheStatsCmd prints the number of cached conversions.
type CacheStatsCmd struct{}

func (c *CacheStatsCmd) Run(g *Globals) error {
	store, cfg, err := openCache(g)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Len(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s\n%s %d\n", dimStyle.Render("path:"), cfg.CachePath, dimStyle.Render("entries:"), n)
	return nil
}

// CachePurgeCmd deletes cached conversions.
type CachePurgeCmd struct {
	OlderThan time.Duration `name:"older-than" help:"Only delete entries older than this (e.g., 72h)"`
}

func (c *CachePurgeCmd) Run(g *Globals) error {
	store, _, err := openCache(g)
	if err != nil {
		return err
	}
	defer store.Close()

	var cutoff time.Time
	if c.OlderThan > 0 {
		cutoff = time.Now().Add(-c.OlderThan)
	}
	n, err := store.Purge(context.Background(), cutoff)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %d cached conversion(s)\n", successStyle.Render("purged"), n)
	return nil
}

func openCache(g *Globals) (*cache.Store, *config.Config, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, nil, err
	}
	store, err := cache.Open(context.Background(), cfg.CachePath, cache.Options{})
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// ConfigInitCmd writes the default configuration.
type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing file"`
}

func (c *ConfigInitCmd) Run(g *Globals) error {
	path := g.Config
	if path == "" {
		path = config.ConfigPath()
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s\n", successStyle.Render("wrote"), path)
	return nil
}

// ConfigShowCmd prints the effective configuration as YAML.
type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := sqlite.GetInfo()
	fmt.Fprintf(stdout, "transmark version %s\n", version)
	fmt.Fprintf(stdout, "%s %s (%s)\n", dimStyle.Render("sqlite:"), info.Package, info.DriverType)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("transmark"),
		kong.Description("TransMark - markup conversion through a common AST"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

// Package main is the entry point for the Effodio CLI
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/su1ph3r/effodio/internal/analyzer"
	"github.com/su1ph3r/effodio/internal/logger"
	"github.com/su1ph3r/effodio/internal/reporter"
	"github.com/su1ph3r/effodio/internal/webscan"
	"github.com/su1ph3r/effodio/pkg/types"
)

var (
	version = "1.0.0"
	cfgFile string
	config  *types.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "effodio",
	Short: "Effodio - static API surface scanner",
	Long: `Effodio (Latin: "to dig out, unearth") recovers the backend API surface of an
application without running it. It walks an application archive or a live web
page and its scripts, extracts candidate endpoints, infers their HTTP verb and
persistence intent, scores confidence, and flags security anti-patterns.

Web scans only fetch public addresses: private, loopback, link-local and
metadata targets are refused before and after DNS resolution.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var archiveCmd = &cobra.Command{
	Use:   "archive <path>",
	Short: "Analyze an application archive (APK or any zip)",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchive,
}

var webCmd = &cobra.Command{
	Use:   "web <url>",
	Short: "Scan a web application page and its scripts",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeb,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify Effodio configuration settings`,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		viper.Set(args[0], args[1])
		if err := viper.WriteConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && viper.ConfigFileUsed() != "" {
				return err
			}
			return viper.SafeWriteConfigAs(defaultConfigPath())
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(viper.Get(args[0]))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := viper.AllSettings()
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %v\n", k, settings[k])
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.effodio.yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	for _, cmd := range []*cobra.Command{archiveCmd, webCmd} {
		cmd.Flags().StringP("format", "f", "", "Output format: "+strings.Join(reporter.Formats, ", ")+" (comma-separated with --output)")
		cmd.Flags().StringP("output", "o", "", "Output file path (stdout if not specified)")
		cmd.Flags().Bool("verbose", false, "Verbose output and debug logging")
	}

	archiveCmd.Flags().Int("workers", 0, "Archive members processed in parallel")

	webCmd.Flags().Duration("timeout", 0, "Per-request timeout")
	webCmd.Flags().Int("max-scripts", 0, "Maximum external scripts fetched")
	webCmd.Flags().String("dns-server", "", "DNS server for the validating resolver (host[:port])")
	webCmd.Flags().Bool("no-doc-probe", false, "Skip probing conventional API documentation paths")
	webCmd.Flags().Float64("rate-limit", 0, "Requests per second for script and doc fetches")

	// Add commands
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configShowCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".effodio")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("EFFODIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			printWarning("Could not read config %s: %v", cfgFile, err)
		}
	}

	config = types.DefaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		printWarning("Ignoring malformed configuration: %v", err)
		config = types.DefaultConfig()
	}
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx, cancel := interruptContext()
	defer cancel()

	updateConfigFromFlags(cmd)
	if err := types.ValidateConfig(config); err != nil {
		return err
	}
	log := newLogger()

	printInfo("Analyzing archive %s", args[0])
	result, err := analyzer.New(config, log).AnalyzeArchive(ctx, args[0])
	if err != nil {
		return err
	}

	printSummary(result)
	return writeReport(result)
}

func runWeb(cmd *cobra.Command, args []string) error {
	ctx, cancel := interruptContext()
	defer cancel()

	updateConfigFromFlags(cmd)
	if err := types.ValidateConfig(config); err != nil {
		return err
	}
	log := newLogger()

	printInfo("Scanning %s", args[0])
	if config.Fetch.DNSServer != "" {
		printInfo("Resolving through %s", config.Fetch.DNSServer)
	}
	result, err := webscan.New(config, nil, log).Scan(ctx, args[0])
	if err != nil {
		if errors.Is(err, types.ErrPolicyViolation) {
			printWarning("Target refused by fetch policy")
		}
		return err
	}

	printSummary(result)
	return writeReport(result)
}

// interruptContext cancels on SIGINT/SIGTERM
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			printWarning("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

func updateConfigFromFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		config.Output.Format = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		config.Output.File = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		config.Output.Verbose = true
		config.Logger.Level = "DEBUG"
	}
	if v, _ := cmd.Flags().GetBool("no-color"); v {
		config.Output.Color = false
	}
	color.NoColor = color.NoColor || !config.Output.Color

	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		config.Analysis.Workers = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		config.Fetch.Timeout = v
	}
	if v, _ := cmd.Flags().GetInt("max-scripts"); v > 0 {
		config.Fetch.MaxScripts = v
	}
	if v, _ := cmd.Flags().GetString("dns-server"); v != "" {
		config.Fetch.DNSServer = v
	}
	if v, _ := cmd.Flags().GetBool("no-doc-probe"); v {
		config.Fetch.ProbeDocs = false
	}
	if v, _ := cmd.Flags().GetFloat64("rate-limit"); v > 0 {
		config.Fetch.RateLimit = v
	}
}

func newLogger() hclog.Logger {
	return logger.NewLogger(config, "effodio")
}

// writeReport renders result to stdout, a single file, or one file per
// format when several are requested
func writeReport(result *types.AnalysisResult) error {
	opts := reporter.DefaultOptions()
	opts.Version = version
	opts.NoColor = color.NoColor || config.Output.File != ""
	opts.Verbose = config.Output.Verbose

	format := config.Output.Format
	if format == "" {
		format = "json"
	}
	formats := strings.Split(format, ",")

	if len(formats) > 1 {
		if config.Output.File == "" {
			return fmt.Errorf("%w: multiple formats need --output", types.ErrInvalidInput)
		}
		mr, err := reporter.NewMultiReporter(formats, opts)
		if err != nil {
			return err
		}
		written, err := mr.WriteAll(result, config.Output.File)
		for _, path := range written {
			printSuccess("Report saved to: %s", path)
		}
		return err
	}

	rep, err := reporter.NewReporter(strings.TrimSpace(format), opts)
	if err != nil {
		return fmt.Errorf("failed to create reporter: %w", err)
	}

	if config.Output.File == "" {
		if err := rep.Write(result, os.Stdout); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	outputPath := config.Output.File
	if filepath.Ext(outputPath) == "" {
		outputPath += "." + rep.Extension()
	}
	if err := reporter.WriteToFile(rep, result, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	printSuccess("Report saved to: %s", outputPath)
	return nil
}

// Printing functions. Status lines go to stderr so a report on stdout stays
// machine readable.

func printInfo(format string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(os.Stderr, "[*] "+format+"\n", args...)
}

func printSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(os.Stderr, "[+] "+format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "[!] "+format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, "[-] "+format+"\n", args...)
}

func printSummary(result *types.AnalysisResult) {
	s := result.Summary
	out := os.Stderr

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 51))
	fmt.Fprintln(out, "ANALYSIS SUMMARY")
	fmt.Fprintln(out, strings.Repeat("=", 51))
	fmt.Fprintf(out, "Target:     %s\n", result.Target)
	fmt.Fprintf(out, "Duration:   %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Files:      %d scanned, %d skipped\n", s.FilesScanned, s.FilesSkipped)
	if result.Mode == types.ModeWebApp {
		fmt.Fprintf(out, "Scripts:    %d found, %d fetched, %d failed\n", s.ScriptsFound, s.ScriptsFetched, s.ScriptsFailed)
	}
	fmt.Fprintf(out, "Endpoints:  %d (%d high confidence)\n", s.TotalEndpoints, s.ByConfidence[types.ConfidenceHigh])
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Findings:   %d total\n", s.TotalFindings)

	if n := s.BySeverity[types.SeverityCritical]; n > 0 {
		color.New(color.FgRed, color.Bold).Fprintf(out, "  Critical: %d\n", n)
	}
	if n := s.BySeverity[types.SeverityHigh]; n > 0 {
		color.New(color.FgRed).Fprintf(out, "  High:     %d\n", n)
	}
	if n := s.BySeverity[types.SeverityMedium]; n > 0 {
		color.New(color.FgYellow).Fprintf(out, "  Medium:   %d\n", n)
	}
	if n := s.BySeverity[types.SeverityLow]; n > 0 {
		color.New(color.FgBlue).Fprintf(out, "  Low:      %d\n", n)
	}

	fmt.Fprintln(out, strings.Repeat("=", 51))
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".effodio.yaml"
	}
	return filepath.Join(home, ".effodio.yaml")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jwhitmer/cdm-audio-downloader/internal/audio"
	"github.com/jwhitmer/cdm-audio-downloader/internal/config"
	"github.com/jwhitmer/cdm-audio-downloader/internal/download"
)

func main() {
	// Command line flags
	var (
		queryFlag      = flag.String("query", "", "Search term (can also be given as the first positional argument)")
		baseFlag       = flag.String("base", "", "CONTENTdm base URL (overrides config)")
		collectionFlag = flag.String("collection", "", "Collection alias to search (overrides config)")
		labelFlag      = flag.String("collection-label", "", "Human label for the collection; sets the album tag to \"<label> Collection\"")
		outputFlag     = flag.String("output-root", "", "Root directory for downloaded audio (overrides config)")
		sizeFlag       = flag.Int("size", 0, "Search page size (overrides config)")
		maxFlag        = flag.Int("max", 0, "Maximum records to process (overrides config)")
		delayFlag      = flag.Float64("delay", -1, "Delay in seconds between records (overrides config)")
		mediaFlag      = flag.String("media", "", "Media acceptance: audio (any audio type) or mp3 (MP3 only)")
		retagFlag      = flag.String("retag", "", "Existing-tag policy: skip, update or overwrite")
		coverArtFlag   = flag.Bool("cover-art", false, "Embed the item thumbnail as cover art")
		printURLsFlag  = flag.Bool("print-urls", false, "Print resolved media URLs without downloading")
		ariaFlag       = flag.String("aria2c-list", "", "Write resolved URLs to a file in aria2c input format")
		dryRunFlag     = flag.Bool("dry-run", false, "Resolve and plan but do not write any files")
		dumpJSONFlag   = flag.String("dump-json", "", "Directory to dump raw item JSON for diagnostics")
		verboseFlag    = flag.Bool("verbose", false, "Show verbose output")
		configFlag     = flag.String("config", "", "Path to config file")
	)

	flag.Parse()

	query := *queryFlag
	if query == "" && flag.NArg() > 0 {
		query = flag.Arg(0)
	}
	if query == "" {
		fmt.Println("CONTENTdm Audio Downloader - fetch audio from a CONTENTdm collection")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  cdm-audio-dl -query <term> [options]")
		fmt.Println("  cdm-audio-dl <term> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: cdm-audio-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *baseFlag != "" {
		settings.BaseURL = *baseFlag
	}
	if *collectionFlag != "" {
		settings.DefaultCollection = *collectionFlag
	}
	if *labelFlag != "" {
		settings.CollectionLabel = *labelFlag
	}
	if *outputFlag != "" {
		settings.OutputRoot = *outputFlag
	}
	if *sizeFlag > 0 {
		settings.PageSize = *sizeFlag
	}
	if *maxFlag > 0 {
		settings.MaxRecords = *maxFlag
	}
	if *delayFlag >= 0 {
		settings.RequestDelaySeconds = *delayFlag
	}
	if *mediaFlag != "" {
		if *mediaFlag != "audio" && *mediaFlag != "mp3" {
			fmt.Fprintf(os.Stderr, "Error: -media must be audio or mp3, got %q\n", *mediaFlag)
			os.Exit(1)
		}
		settings.MediaMode = *mediaFlag
	}
	if *retagFlag != "" {
		settings.RetagPolicy = *retagFlag
	}
	if *coverArtFlag {
		settings.SaveCoverArtInTags = true
	}
	if *dumpJSONFlag != "" {
		settings.DumpJSONDir = *dumpJSONFlag
	}
	if *verboseFlag {
		settings.Verbose = true
	}

	policy, err := audio.ParsePolicy(settings.RetagPolicy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	opts := download.Options{
		PrintURLs:  *printURLsFlag,
		Aria2cList: *ariaFlag,
		DryRun:     *dryRunFlag,
	}

	manager := download.NewManager(settings, policy, opts, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !settings.Verbose {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "error: "
		case download.LevelWarning:
			prefix = "warning: "
		case download.LevelSuccess:
			prefix = "ok: "
		}

		fmt.Println(prefix + event.Message)
	})

	if err := manager.Initialize(ctx, settings.DefaultCollection, query); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := manager.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nCancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(manager.Summary())
}

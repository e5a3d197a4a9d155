// Command mcprovision is a small, non-interactive exerciser for the
// provisioning core: list published versions, check-or-download a
// version (plus an optional mod loader) onto disk, or launch it. It
// talks to the real Mojang/Fabric/Forge endpoints for manual
// verification; it is deliberately not a TUI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/aayushdutt/mcprovision/internal/config"
	"github.com/aayushdutt/mcprovision/internal/events"
	"github.com/aayushdutt/mcprovision/internal/fetch"
	"github.com/aayushdutt/mcprovision/internal/java"
	"github.com/aayushdutt/mcprovision/internal/launch"
	"github.com/aayushdutt/mcprovision/internal/loader"
	"github.com/aayushdutt/mcprovision/internal/loader/fabric"
	"github.com/aayushdutt/mcprovision/internal/loader/forge"
	"github.com/aayushdutt/mcprovision/internal/manifest"
	"github.com/aayushdutt/mcprovision/internal/mcpath"
	"github.com/aayushdutt/mcprovision/internal/provision"
	"github.com/pterm/pterm"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "list-versions":
		err = runListVersions(ctx, os.Args[2:])
	case "check-or-download":
		err = runCheckOrDownload(ctx, os.Args[2:])
	case "launch":
		err = runLaunch(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mcprovision <list-versions|check-or-download|launch> [flags]")
}

// resolveLoaderVersion maps a loader type + version flag pair to its
// loader.Type and LoaderVersion, or (loader.Vanilla, nil, nil) for "" /
// "vanilla".
func resolveLoaderVersion(loaderType, mcVersion, loaderVersion string) (loader.Type, loader.LoaderVersion, error) {
	switch loader.Type(loaderType) {
	case "", loader.Vanilla:
		return loader.Vanilla, nil, nil
	case loader.Fabric:
		return loader.Fabric, fabric.NewVersion(fabric.Fabric, mcVersion, loaderVersion), nil
	case loader.Quilt:
		return loader.Quilt, fabric.NewVersion(fabric.Quilt, mcVersion, loaderVersion), nil
	case loader.Forge:
		return loader.Forge, forge.NewVersion(forge.Forge, mcVersion, loaderVersion), nil
	case loader.NeoForge:
		return loader.NeoForge, forge.NewVersion(forge.NeoForge, mcVersion, loaderVersion), nil
	default:
		return "", nil, fmt.Errorf("unknown loader type %q", loaderType)
	}
}

func runListVersions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list-versions", flag.ExitOnError)
	dataDir := fs.String("data-dir", "", "data directory (default: platform data dir)")
	releasesOnly := fs.Bool("releases-only", false, "only list release versions, not snapshots")
	loaderType := fs.String("loader", "", "list loader versions for this loader instead of Minecraft versions")
	mcVersion := fs.String("mc-version", "", "Minecraft version to list loader builds for (required with -loader)")
	limit := fs.Int("limit", 20, "maximum number of entries to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfigOrDefault(*dataDir)
	if err != nil {
		return err
	}

	store := manifest.New(cfg.DataDir)

	if *loaderType != "" {
		if *mcVersion == "" {
			return fmt.Errorf("-mc-version is required with -loader")
		}
		mc := mcpath.NewMC(cfg.DataDir)
		ver := mcpath.NewVersion(cfg.DataDir, *mcVersion)

		var ld loader.Loader
		switch loader.Type(*loaderType) {
		case loader.Fabric:
			ld = fabric.New(fabric.Fabric)
		case loader.Quilt:
			ld = fabric.New(fabric.Quilt)
		case loader.Forge:
			ld = forge.New(forge.Forge)
		case loader.NeoForge:
			ld = forge.New(forge.NeoForge)
		default:
			return fmt.Errorf("unknown loader type %q", *loaderType)
		}

		if err := ld.DownloadMetadata(ctx, mc, ver); err != nil {
			return fmt.Errorf("fetching %s metadata: %w", *loaderType, err)
		}
		versions, err := ld.LoaderVersionsFor(ctx, *mcVersion, ver, false)
		if err != nil {
			return err
		}
		printLimited(versions, *limit)
		return nil
	}

	versions, err := store.ListVersions(ctx, *releasesOnly)
	if err != nil {
		return err
	}
	pterm.Println(headerStyle.Render(fmt.Sprintf("%d minecraft versions", len(versions))))
	for i, v := range versions {
		if i >= *limit {
			pterm.Println(mutedStyle.Render(fmt.Sprintf("... %d more", len(versions)-*limit)))
			break
		}
		pterm.Printfln("%s  %s  %s", v.ReleaseTime.Format("2006-01-02"), v.ID, v.Type)
	}
	return nil
}

func printLimited(items []string, limit int) {
	for i, it := range items {
		if i >= limit {
			pterm.Println(mutedStyle.Render(fmt.Sprintf("... %d more", len(items)-limit)))
			break
		}
		pterm.Println(it)
	}
}

// checkOrDownloadRegistry lets a concurrently-issued "cancel" target one
// check-or-download run by its update id without affecting any other run
// sharing this process.
var checkOrDownloadRegistry = provision.NewCancelRegistry()

func runCheckOrDownload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check-or-download", flag.ExitOnError)
	dataDir := fs.String("data-dir", "", "data directory (default: platform data dir)")
	mcVersion := fs.String("mc-version", "", "Minecraft version id to provision (required)")
	loaderType := fs.String("loader", "", "mod loader: fabric, quilt, forge, neoforge")
	loaderVersion := fs.String("loader-version", "", "loader version (required with -loader)")
	javaBin := fs.String("java", "", "java binary for loader preprocessing (auto-detected if empty)")
	updateID := fs.Int("update-id", 1, "id this run's progress/cancel is addressed under")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mcVersion == "" {
		return fmt.Errorf("-mc-version is required")
	}

	cfg, err := loadConfigOrDefault(*dataDir)
	if err != nil {
		return err
	}

	lt, lv, err := resolveLoaderVersion(*loaderType, *mcVersion, *loaderVersion)
	if err != nil {
		return err
	}

	jb := *javaBin
	if jb == "" && lv != nil {
		if best := java.NewDetector().FindBest(8); best != nil {
			jb = best.Path
		}
	}

	store := manifest.New(cfg.DataDir)
	p := provision.New(store, fetch.New())

	bus := events.NewBus()
	progress, _ := pterm.DefaultProgressbar.WithTotal(100).WithTitle("provisioning " + *mcVersion).Start()
	handler := func(s events.Status) {
		progress.UpdateTitle(string(s.Kind))
		if s.Total > 0 {
			pct := s.Done * 100 / s.Total
			if delta := pct - progress.Current; delta > 0 {
				progress.Add(delta)
			}
		}
	}

	opts := provision.Options{
		DataDir:             cfg.DataDir,
		Version:             *mcVersion,
		Loader:              lv,
		LoaderType:          lt,
		JavaBin:             jb,
		CheckConcurrency:    cfg.CheckConcurrency,
		DownloadConcurrency: cfg.DownloadConcurrency,
		UpdateID:            *updateID,
		Bus:                 bus,
		Handler:             handler,
	}

	start := time.Now()
	runErr := checkOrDownloadRegistry.Run(ctx, *updateID, func(ctx context.Context) error {
		_, err := p.Run(ctx, opts)
		return err
	})
	if runErr != nil {
		progress.Stop()
		return runErr
	}
	progress.Stop()
	elapsed := time.Since(start).Round(time.Millisecond)
	pterm.Println(headerStyle.Render(fmt.Sprintf("provisioned %s in %s", *mcVersion, elapsed)))
	return nil
}

func runLaunch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("launch", flag.ExitOnError)
	dataDir := fs.String("data-dir", "", "data directory (default: platform data dir)")
	mcVersion := fs.String("mc-version", "", "Minecraft version id to launch (required)")
	loaderType := fs.String("loader", "", "mod loader: fabric, quilt, forge, neoforge")
	loaderVersion := fs.String("loader-version", "", "loader version (required with -loader)")
	javaBin := fs.String("java", "", "java binary (auto-detected if empty)")
	playerName := fs.String("player", "Player", "offline player name")
	quickPlaySingleplayer := fs.String("quick-play-world", "", "world name to quick-play into")
	quickPlayMultiplayer := fs.String("quick-play-server", "", "server address to quick-play into")
	xmx := fs.Int("xmx-mb", 2048, "JVM max heap, in megabytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mcVersion == "" {
		return fmt.Errorf("-mc-version is required")
	}

	cfg, err := loadConfigOrDefault(*dataDir)
	if err != nil {
		return err
	}

	lt, lv, err := resolveLoaderVersion(*loaderType, *mcVersion, *loaderVersion)
	if err != nil {
		return err
	}

	jb := *javaBin
	if jb == "" {
		best := java.NewDetector().FindBest(8)
		if best == nil {
			return fmt.Errorf("no suitable java installation found; pass -java")
		}
		jb = best.Path
	}

	var qp launch.QuickPlay
	switch {
	case *quickPlaySingleplayer != "":
		qp = launch.Singleplayer{World: *quickPlaySingleplayer}
	case *quickPlayMultiplayer != "":
		qp = launch.Multiplayer{Address: *quickPlayMultiplayer}
	}

	store := manifest.New(cfg.DataDir)
	composer := launch.NewComposer(store, launch.NewRegistry())

	inst, err := composer.Launch(ctx, launch.Args{
		LauncherName:    "mcprovision",
		LauncherVersion: "dev",
		PlayerName:      *playerName,
		UserType:        "legacy",
		DataDir:         cfg.DataDir,
		Version:         *mcVersion,
		WorkingSubDir:   "instances/" + *mcVersion,
		QuickPlay:       qp,
		Loader:          lv,
		LoaderType:      lt,
		LoaderVersion:   *loaderVersion,
		JavaBin:         jb,
		ExtraJVMArgs:    []string{"-Xmx" + strconv.Itoa(*xmx) + "M"},
	})
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}

	pterm.Success.Printfln("launched %s (instance %s)", *mcVersion, inst.ID)

	go streamInstanceLog(inst)

	return inst.Wait()
}

func streamInstanceLog(inst *launch.Instance) {
	seen := 0
	for {
		lines := inst.Lines()
		for _, l := range lines[seen:] {
			if l.Stream == "stderr" {
				pterm.Error.Println(l.Text)
			} else {
				pterm.Println(l.Text)
			}
		}
		seen = len(lines)
		time.Sleep(100 * time.Millisecond)
	}
}

func loadConfigOrDefault(dataDirOverride string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataDirOverride != "" {
		cfg.DataDir = dataDirOverride
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	return cfg, nil
}

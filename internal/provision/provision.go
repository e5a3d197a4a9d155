// Package provision assembles a full check-or-download run for one
// Minecraft version (plus an optional mod-loader version) out of the
// manifest, fetch, pool, and events primitives: client jar, libraries
// and their natives, assets, the managed Java runtime, and whatever the
// loader itself contributes.
package provision

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/aayushdutt/mcprovision/internal/events"
	"github.com/aayushdutt/mcprovision/internal/fetch"
	"github.com/aayushdutt/mcprovision/internal/loader"
	"github.com/aayushdutt/mcprovision/internal/manifest"
	"github.com/aayushdutt/mcprovision/internal/maven"
	"github.com/aayushdutt/mcprovision/internal/mcpath"
	"github.com/aayushdutt/mcprovision/internal/pool"
	"github.com/aayushdutt/mcprovision/internal/provisionerr"
	"github.com/aayushdutt/mcprovision/internal/rules"
)

// Options describes one provisioning run.
type Options struct {
	DataDir string
	Version string

	Loader     loader.LoaderVersion // nil for a plain vanilla run
	LoaderType loader.Type
	JavaBin    string // required only if Loader needs preprocessing

	CheckConcurrency    int
	DownloadConcurrency int

	// UpdateID and Handler feed internal/events.Bus.Emit; Handler may be
	// nil to discard progress entirely.
	UpdateID int
	Bus      *events.Bus
	Handler  events.Handler
}

// Provisioner runs provisioning jobs against one manifest Store and
// fetch Client, shared across concurrent runs.
type Provisioner struct {
	store  *manifest.Store
	client *fetch.Client
}

// New returns a Provisioner backed by store and client.
func New(store *manifest.Store, client *fetch.Client) *Provisioner {
	return &Provisioner{store: store, client: client}
}

// Run resolves opts.Version's manifest and materializes everything a
// launch needs: client jar, libraries (with natives extracted),
// assets, the managed Java runtime for the version's required
// component, and the loader's own files and preprocessing step.
func (p *Provisioner) Run(ctx context.Context, opts Options) (vm *manifest.VersionManifest, err error) {
	emit := func(k events.Kind, done, total int) {
		if opts.Bus == nil || opts.Handler == nil {
			return
		}
		opts.Bus.Emit(opts.UpdateID, opts.Handler, events.Status{Kind: k, Done: done, Total: total})
	}

	// Any ErrOffline bubbling out of a step below means netstate's probe
	// confirmed there is no network path at all; surface that as its own
	// event rather than letting it look like an ordinary failed step.
	defer func() {
		if err != nil && errors.Is(err, provisionerr.ErrOffline) {
			emit(events.Offline, 0, 0)
		}
	}()

	vm, err = p.store.ResolveVersionDetails(ctx, opts.Version)
	if err != nil {
		return nil, fmt.Errorf("resolving version %q: %w", opts.Version, err)
	}
	emit(events.VersionManifestDownload, 1, 1)

	mc := mcpath.NewMC(opts.DataDir)
	ver := mcpath.NewVersion(opts.DataDir, opts.Version)

	checkPool := pool.NewCheckPool(opts.CheckConcurrency)
	dlPool := pool.NewDownloadPool(opts.DownloadConcurrency)

	if err := p.provisionClient(ctx, vm, ver, dlPool, emit); err != nil {
		return nil, err
	}

	existingLibs, err := p.provisionLibraries(ctx, vm, mc, dlPool, emit)
	if err != nil {
		return nil, err
	}

	if err := p.provisionAssets(ctx, vm, mc, checkPool, dlPool, emit); err != nil {
		return nil, err
	}

	if err := p.provisionJava(ctx, vm, opts.DataDir, dlPool, emit); err != nil {
		return nil, err
	}

	if opts.Loader != nil {
		if err := p.provisionLoader(ctx, opts, mc, ver, existingLibs, dlPool, emit); err != nil {
			return nil, err
		}
	}

	emit(events.Done, 1, 1)
	return vm, nil
}

// runPool drives a Pool batch while forwarding its intermediate progress
// snapshots as emit(kind, done, total) calls, so a long batch streams
// per-completion updates instead of only a start/end pair.
func runPool(ctx context.Context, p *pool.Pool, tasks []pool.Task, emit func(events.Kind, int, int), kind events.Kind) error {
	if len(tasks) == 0 {
		return nil
	}

	progressChan := make(chan pool.Progress, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for pr := range progressChan {
			emit(kind, pr.CompletedItems, pr.TotalItems)
		}
	}()

	err := p.Run(ctx, tasks, progressChan)
	close(progressChan)
	<-done
	return err
}

func (p *Provisioner) provisionClient(ctx context.Context, vm *manifest.VersionManifest, ver mcpath.Version, dlPool *pool.Pool, emit func(events.Kind, int, int)) error {
	emit(events.ClientCheck, 0, 1)
	if vm.Downloads.Client == nil {
		return fmt.Errorf("version %s has no client download entry", vm.ID)
	}
	client := vm.Downloads.Client
	task := pool.Task{
		Label: "client.jar",
		Size:  client.Size,
		Run: func(ctx context.Context, onChunk func(int)) error {
			_, err := p.client.CheckOrDownload(ctx, client.URL, ver.ClientJar(), client.SHA1, onChunk)
			return err
		},
	}
	if err := runPool(ctx, dlPool, []pool.Task{task}, emit, events.ClientDownload); err != nil {
		return fmt.Errorf("client jar: %w", err)
	}
	emit(events.ClientDownload, 1, 1)
	return nil
}

// provisionLibraries downloads every rule-allowed library (and
// extracts natives from classifier jars where present), returning the
// set of (group:artifact) keys it satisfied so a loader can skip them.
func (p *Provisioner) provisionLibraries(ctx context.Context, vm *manifest.VersionManifest, mc mcpath.MC, dlPool *pool.Pool, emit func(events.Kind, int, int)) (map[string]bool, error) {
	existing := make(map[string]bool, len(vm.Libraries))
	osName := rules.CurrentOSName()

	var tasks []pool.Task
	for _, lib := range vm.Libraries {
		if !rules.Evaluate(lib.Rules, rules.Features{}) {
			continue
		}

		if art, perr := maven.Parse(lib.Name); perr == nil {
			existing[art.Key().Group+":"+art.Key().Name] = true
		}

		lib := lib
		if lib.Downloads != nil && lib.Downloads.Artifact != nil {
			artifact := lib.Downloads.Artifact
			path := filepath.Join(mc.LibraryPath(), artifact.Path)
			tasks = append(tasks, pool.Task{
				Label: lib.Name,
				Size:  artifact.Size,
				Run: func(ctx context.Context, onChunk func(int)) error {
					_, err := p.client.CheckOrDownload(ctx, artifact.URL, path, artifact.SHA1, onChunk)
					return err
				},
			})
		}

		if lib.Downloads != nil {
			if native, ok := lib.Downloads.Classifiers[manifest.NativesClassifierKey(osName)]; ok {
				nativePath := filepath.Join(mc.LibraryPath(), native.Path)
				destDir := mc.LibraryPath()
				tasks = append(tasks, pool.Task{
					Label: lib.Name + " (natives)",
					Size:  native.Size,
					Run: func(ctx context.Context, onChunk func(int)) error {
						if _, err := p.client.CheckOrDownload(ctx, native.URL, nativePath, native.SHA1, onChunk); err != nil {
							return err
						}
						return fetch.ExtractNatives(nativePath, destDir, fetch.NativeSuffixesForOS())
					},
				})
			}
		}
	}

	emit(events.LibraryCheck, 0, len(tasks))
	if err := runPool(ctx, dlPool, tasks, emit, events.LibraryDownload); err != nil {
		return nil, fmt.Errorf("libraries: %w", err)
	}
	emit(events.LibraryDownload, len(tasks), len(tasks))
	return existing, nil
}

func (p *Provisioner) provisionAssets(ctx context.Context, vm *manifest.VersionManifest, mc mcpath.MC, checkPool, dlPool *pool.Pool, emit func(events.Kind, int, int)) error {
	emit(events.AssetsManifestCheck, 0, 1)
	idx, err := p.store.ResolveAssetIndex(ctx, vm.AssetIndex)
	if err != nil {
		return fmt.Errorf("asset index: %w", err)
	}
	emit(events.AssetsManifestDownload, 1, 1)

	tasks := make([]pool.Task, 0, len(idx.Objects))
	for name, obj := range idx.Objects {
		obj := obj
		path := mc.AssetObjectPath(obj.Hash)
		url := assetObjectURL(obj.Hash)
		tasks = append(tasks, pool.Task{
			Label: name,
			Size:  obj.Size,
			Run: func(ctx context.Context, onChunk func(int)) error {
				_, err := p.client.CheckOrDownload(ctx, url, path, obj.Hash, onChunk)
				return err
			},
		})
	}

	emit(events.AssetsCheck, 0, len(tasks))
	if err := runPool(ctx, checkPool, tasks, emit, events.AssetsDownload); err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	emit(events.AssetsDownload, len(tasks), len(tasks))
	return nil
}

// assetObjectURL builds the resource CDN URL for a content-addressed
// asset object identified by its hash.
func assetObjectURL(hash string) string {
	return "https://resources.download.minecraft.net/" + hash[:2] + "/" + hash
}

func (p *Provisioner) provisionJava(ctx context.Context, vm *manifest.VersionManifest, dataDir string, dlPool *pool.Pool, emit func(events.Kind, int, int)) error {
	if vm.JavaVersion.Component == "" {
		return nil
	}
	component := manifest.JavaComponent(vm.JavaVersion.Component)

	emit(events.JavaManifestCheck, 0, 1)
	candidates, err := p.store.JavaComponentFor(ctx, component)
	if err != nil {
		return fmt.Errorf("java component %s: %w", component, err)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no java runtime candidates for component %s", component)
	}
	entry := candidates[0]

	files, err := p.store.ResolveJavaFiles(ctx, entry)
	if err != nil {
		return fmt.Errorf("java files for %s: %w", component, err)
	}
	emit(events.JavaManifestDownload, 1, 1)

	javaRoot := mcpath.NewJava(dataDir, string(component)).BasePath()

	tasks := make([]pool.Task, 0, len(files.Files))
	for relPath, entry := range files.Files {
		relPath, entry := relPath, entry
		tasks = append(tasks, pool.Task{
			Label: relPath,
			Size:  entry.Downloads.Raw.Size,
			Run: func(ctx context.Context, onChunk func(int)) error {
				return p.client.ApplyJavaFile(ctx, javaRoot, relPath, entry, onChunk)
			},
		})
	}

	emit(events.JavaCheck, 0, len(tasks))
	if err := runPool(ctx, dlPool, tasks, emit, events.JavaDownload); err != nil {
		return fmt.Errorf("java runtime: %w", err)
	}
	emit(events.JavaDownload, len(tasks), len(tasks))
	return nil
}

func (p *Provisioner) provisionLoader(ctx context.Context, opts Options, mc mcpath.MC, ver mcpath.Version, existingLibs map[string]bool, dlPool *pool.Pool, emit func(events.Kind, int, int)) error {
	emit(events.ModLoaderMeta, 0, 1)
	tasks, err := opts.Loader.Download(ctx, mc, ver, existingLibs)
	if err != nil {
		return fmt.Errorf("%s metadata: %w", opts.LoaderType, err)
	}

	emit(events.ModLoaderFilesCheck, 0, len(tasks))
	if err := runPool(ctx, dlPool, tasks, emit, events.ModLoaderFilesDownload); err != nil {
		return fmt.Errorf("%s files: %w", opts.LoaderType, err)
	}
	emit(events.ModLoaderFilesDownload, len(tasks), len(tasks))

	emit(events.ModLoaderPreprocess, 0, 1)
	if err := opts.Loader.Preprocess(ctx, mc, ver, opts.JavaBin); err != nil {
		return fmt.Errorf("%s preprocess: %w", opts.LoaderType, err)
	}
	emit(events.ModLoaderPreprocessDone, 1, 1)
	return nil
}

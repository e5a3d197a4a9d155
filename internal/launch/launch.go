// Package launch composes a resolved version manifest and an optional
// mod loader into a runnable Java invocation, spawns it, and tracks the
// running process as an in-memory Instance.
package launch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aayushdutt/mcprovision/internal/loader"
	"github.com/aayushdutt/mcprovision/internal/manifest"
	"github.com/aayushdutt/mcprovision/internal/maven"
	"github.com/aayushdutt/mcprovision/internal/mcpath"
	"github.com/aayushdutt/mcprovision/internal/provisionerr"
	"github.com/aayushdutt/mcprovision/internal/rules"
)

// Args mirrors the launch request a caller builds up: identity,
// credentials, the resolved version/loader to run, and the optional
// quick-play target.
type Args struct {
	LauncherName    string
	LauncherVersion string

	PlayerName  string
	PlayerUUID  string
	UserType    string // "legacy" or "msa"
	AccessToken string

	DataDir       string
	Version       string
	WorkingSubDir string

	QuickPlay QuickPlay

	// Loader is the resolved mod-loader version to compose on top of the
	// vanilla version, or nil for a plain vanilla launch.
	Loader        loader.LoaderVersion
	LoaderType    loader.Type
	LoaderVersion string

	JavaBin      string
	ExtraJVMArgs []string
}

// Composer resolves a version manifest and produces a running Instance
// from it.
type Composer struct {
	store    *manifest.Store
	registry *Registry
}

// NewComposer returns a Composer backed by store, registering every
// launch it starts in registry.
func NewComposer(store *manifest.Store, registry *Registry) *Composer {
	return &Composer{store: store, registry: registry}
}

// Launch resolves args.Version's manifest, composes JVM/game arguments
// and classpath (folding in args.Loader's contribution where present),
// spawns the java process, and returns its running Instance immediately
// — the caller observes completion via Instance.Wait.
func (c *Composer) Launch(ctx context.Context, args Args) (*Instance, error) {
	vm, err := c.store.ResolveVersionDetails(ctx, args.Version)
	if err != nil {
		return nil, err
	}

	mc := mcpath.NewMC(args.DataDir)
	ver := mcpath.NewVersion(args.DataDir, args.Version)

	lv := args.Loader
	if lv == nil {
		lv = loader.NewVanillaLoaderVersion()
	}

	classpath, err := c.buildClasspath(ctx, mc, ver, vm, lv)
	if err != nil {
		return nil, fmt.Errorf("building classpath: %w", err)
	}

	vars := c.buildVariables(args, vm, mc, ver, classpath)

	loaderJVM, loaderGame, overwriteGame, err := lv.ExtraArguments(ctx, ver)
	if err != nil {
		return nil, fmt.Errorf("loader arguments: %w", err)
	}

	jvmArgs := append([]string{}, args.ExtraJVMArgs...)
	jvmArgs = append(jvmArgs, c.buildJVMArgs(vm, vars)...)
	jvmArgs = append(jvmArgs, substituteAll(loaderJVM, vars)...)

	mainClass, err := lv.MainClass(ctx, ver)
	if err != nil {
		return nil, fmt.Errorf("loader main class: %w", err)
	}
	if mainClass == "" {
		mainClass = vm.MainClass
	}
	if mainClass == "" {
		return nil, fmt.Errorf("%w: version %s has no main class", provisionerr.ErrInvalidMetadata, args.Version)
	}

	gameArgs := c.buildGameArgs(vm, vars, args.QuickPlay)
	gameArgs = append(gameArgs, "--userProperties", "{}")
	if overwriteGame {
		// Forge/NeoForge supply a complete game-argument list of their
		// own; vanilla's list must not be appended to it.
		gameArgs = nil
	}
	gameArgs = append(gameArgs, substituteAll(loaderGame, vars)...)

	workDir := filepath.Join(args.DataDir, args.WorkingSubDir)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	cmdArgs := append(append([]string{}, jvmArgs...), mainClass)
	cmdArgs = append(cmdArgs, gameArgs...)

	cmd := exec.CommandContext(ctx, args.JavaBin, cmdArgs...)
	cmd.Dir = workDir
	detachProcess(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	inst := newInstance(args.Version, args.LoaderType, args.LoaderVersion, cmd)
	c.registry.add(inst)

	go streamLines(stdout, "stdout", inst)
	go streamLines(stderr, "stderr", inst)

	go func() {
		waitErr := cmd.Wait()
		c.registry.remove(inst.ID)
		inst.finish(waitErr)
	}()

	return inst, nil
}

// buildClasspath resolves every vanilla library path allowed by its
// rules, adds the client jar, then lets the loader replace any entry
// sharing its (group, artifact) identity with its own build.
func (c *Composer) buildClasspath(ctx context.Context, mc mcpath.MC, ver mcpath.Version, vm *manifest.VersionManifest, lv loader.LoaderVersion) (string, error) {
	order := make([]string, 0, len(vm.Libraries)+1)
	paths := make(map[string]string, len(vm.Libraries)+1)

	addLib := func(key, path string) {
		if _, ok := paths[key]; !ok {
			order = append(order, key)
		}
		paths[key] = path
	}

	for _, lib := range vm.Libraries {
		if !rules.Evaluate(lib.Rules, rules.Features{}) {
			continue
		}

		art, perr := maven.Parse(lib.Name)
		key := lib.Name
		if perr == nil {
			key = art.Key().Group + ":" + art.Key().Name
		}

		var path string
		switch {
		case lib.Downloads != nil && lib.Downloads.Artifact != nil && lib.Downloads.Artifact.Path != "":
			path = filepath.Join(mc.LibraryPath(), lib.Downloads.Artifact.Path)
		case perr == nil:
			path = filepath.Join(mc.LibraryPath(), art.Path())
		default:
			continue
		}

		addLib(key, path)
	}

	loaderPaths, err := lv.Classpath(ctx, mc, ver)
	if err != nil {
		return "", err
	}
	for key, path := range loaderPaths {
		addLib(key, path)
	}

	entries := make([]string, 0, len(order)+1)
	for _, key := range order {
		entries = append(entries, paths[key])
	}
	entries = append(entries, ver.ClientJar())

	return strings.Join(entries, mcpath.ClasspathSeparator()), nil
}

// buildVariables assembles the full ${name} substitution table used for
// both JVM and game arguments.
func (c *Composer) buildVariables(args Args, vm *manifest.VersionManifest, mc mcpath.MC, ver mcpath.Version, classpath string) map[string]string {
	userType := args.UserType
	if userType == "" {
		userType = "legacy"
	}
	uuid := args.PlayerUUID
	if uuid == "" {
		uuid = "00000000-0000-0000-0000-000000000000"
	}
	token := args.AccessToken
	if token == "" {
		token = "0"
	}
	playerName := args.PlayerName
	if playerName == "" {
		playerName = "Player"
	}

	vars := map[string]string{
		"${auth_player_name}":    playerName,
		"${auth_uuid}":           uuid,
		"${auth_access_token}":   token,
		"${auth_xuid}":           "0",
		"${user_type}":           userType,
		"${clientid}":            args.LauncherName,
		"${game_directory}":      filepath.Join(args.DataDir, args.WorkingSubDir),
		"${version_name}":        vm.ID,
		"${version_type}":        string(vm.Type),
		"${assets_index_name}":   vm.AssetIndex.ID,
		"${assets_root}":         mc.AssetsPath(),
		"${library_directory}":   mc.LibraryPath(),
		"${natives_directory}":   filepath.Join(ver.BasePath(), "natives"),
		"${launcher_name}":       args.LauncherName,
		"${launcher_version}":    args.LauncherVersion,
		"${classpath}":           classpath,
		"${classpath_separator}": mcpath.ClasspathSeparator(),
		"${quickPlayPath}":       mcpath.QuickPlayFile,
	}
	for k, v := range quickPlayVariables(args.QuickPlay) {
		vars[k] = v
	}
	return vars
}

// buildJVMArgs substitutes and rule-filters the version's JVM argument
// list. Versions old enough to carry no structured JVM arguments get a
// minimal fallback so natives and the classpath are still wired in.
func (c *Composer) buildJVMArgs(vm *manifest.VersionManifest, vars map[string]string) []string {
	if len(vm.Arguments.JVM) == 0 {
		return []string{
			"-Djava.library.path=" + vars["${natives_directory}"],
			"-cp", vars["${classpath}"],
		}
	}

	var out []string
	for _, arg := range vm.Arguments.JVM {
		out = append(out, expandArgument(arg, rules.Features{}, vars)...)
	}
	return out
}

// buildGameArgs substitutes and rule-filters the version's game
// argument list against the quick-play feature set.
func (c *Composer) buildGameArgs(vm *manifest.VersionManifest, vars map[string]string, qp QuickPlay) []string {
	features := gameFeatures(qp)

	var out []string
	for _, arg := range vm.Arguments.Game {
		out = append(out, expandArgument(arg, features, vars)...)
	}
	return out
}

// expandArgument evaluates one Argument's rules (if any) against have
// and substitutes variables into the surviving literal(s).
func expandArgument(arg manifest.Argument, have rules.Features, vars map[string]string) []string {
	if !arg.IsRule {
		return []string{substitute(arg.Literal, vars)}
	}
	if !rules.Evaluate(arg.Rules, have) {
		return nil
	}
	out := make([]string, len(arg.Value))
	for i, v := range arg.Value {
		out[i] = substitute(v, vars)
	}
	return out
}

func substitute(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, k, v)
	}
	return s
}

func substituteAll(ss []string, vars map[string]string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = substitute(s, vars)
	}
	return out
}

// streamLines reads r line by line, appending each to inst's log buffer
// with the given stream label.
func streamLines(r io.Reader, stream string, inst *Instance) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		inst.appendLine(LogLine{Text: scanner.Text(), Stream: stream})
	}
}

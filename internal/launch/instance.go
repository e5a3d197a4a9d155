package launch

import (
	"os/exec"
	"sync"
	"time"

	"github.com/aayushdutt/mcprovision/internal/loader"
	"github.com/google/uuid"
)

// LogLine is one line of merged stdout/stderr output from a running
// instance.
type LogLine struct {
	Text   string
	Stream string // "stdout" or "stderr"
}

// Instance is a single running (or just-finished) launch: an in-memory
// handle distinct from any on-disk profile, identified by a fresh id
// generated at launch time and discarded once the process exits.
type Instance struct {
	ID            string
	VersionID     string
	LoaderType    loader.Type
	LoaderVersion string
	LaunchedAt    time.Time

	cmd  *exec.Cmd
	done chan struct{}

	mu      sync.Mutex
	lines   []LogLine
	waitErr error
}

func newInstance(versionID string, lt loader.Type, loaderVersion string, cmd *exec.Cmd) *Instance {
	return &Instance{
		ID:            uuid.NewString(),
		VersionID:     versionID,
		LoaderType:    lt,
		LoaderVersion: loaderVersion,
		LaunchedAt:    time.Now(),
		cmd:           cmd,
		done:          make(chan struct{}),
	}
}

func (i *Instance) appendLine(l LogLine) {
	i.mu.Lock()
	i.lines = append(i.lines, l)
	i.mu.Unlock()
}

// Lines returns a snapshot of every log line merged so far.
func (i *Instance) Lines() []LogLine {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]LogLine, len(i.lines))
	copy(out, i.lines)
	return out
}

// Wait blocks until the launched process exits and returns its exit
// error, if any. Safe to call from multiple goroutines.
func (i *Instance) Wait() error {
	<-i.done
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.waitErr
}

func (i *Instance) finish(err error) {
	i.mu.Lock()
	i.waitErr = err
	i.mu.Unlock()
	close(i.done)
}

// Registry tracks every instance currently running, keyed by id.
type Registry struct {
	mu        sync.Mutex
	instances map[string]*Instance
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[string]*Instance)}
}

func (r *Registry) add(inst *Instance) {
	r.mu.Lock()
	r.instances[inst.ID] = inst
	r.mu.Unlock()
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.instances, id)
	r.mu.Unlock()
}

// Get returns the instance for id, if still running.
func (r *Registry) Get(id string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	return inst, ok
}

// List returns every instance currently tracked, in no particular order.
func (r *Registry) List() []*Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, inst)
	}
	return out
}

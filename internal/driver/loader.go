package driver

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/vvka-141/cxn/pkg/cxn"
)

// Module describes a driver module linked into the binary.
type Module struct {
	// Path is the Go module path, e.g. github.com/jackc/pgx/v5.
	Path string

	// Version is the module version as recorded at build time.
	Version string
}

func (m *Module) String() string {
	return m.Path + "@" + m.Version
}

// Loader resolves a module by path.
//
// Load returns a *cxn.DependencyError with reason cxn.ErrModuleNotInstalled
// when the module is absent and cxn.ErrVersionUnknown when it is present
// without a usable version.
type Loader interface {
	Load(path string) (*Module, error)
}

// BuildInfoLoader resolves modules from runtime/debug.ReadBuildInfo.
// The build information is read once and shared by all calls.
type BuildInfoLoader struct {
	once    sync.Once
	modules map[string]string
	readErr error

	// read is swapped in tests; defaults to debug.ReadBuildInfo.
	read func() (*debug.BuildInfo, bool)
}

// NewBuildInfoLoader creates a loader over the running binary's build info.
func NewBuildInfoLoader() *BuildInfoLoader {
	return &BuildInfoLoader{read: debug.ReadBuildInfo}
}

// Load implements Loader.
func (l *BuildInfoLoader) Load(path string) (*Module, error) {
	l.once.Do(l.index)
	if l.readErr != nil {
		return nil, &cxn.DependencyError{Module: path, Reason: cxn.ErrModuleNotInstalled, Err: l.readErr}
	}

	version, ok := l.modules[path]
	if !ok {
		return nil, &cxn.DependencyError{Module: path, Reason: cxn.ErrModuleNotInstalled}
	}
	if version == "" || version == "(devel)" {
		return nil, &cxn.DependencyError{Module: path, Reason: cxn.ErrVersionUnknown}
	}
	return &Module{Path: path, Version: version}, nil
}

func (l *BuildInfoLoader) index() {
	read := l.read
	if read == nil {
		read = debug.ReadBuildInfo
	}
	info, ok := read()
	if !ok {
		l.readErr = fmt.Errorf("binary was built without module support")
		return
	}

	l.modules = make(map[string]string, len(info.Deps)+1)
	l.modules[info.Main.Path] = info.Main.Version
	for _, dep := range info.Deps {
		if dep.Replace != nil {
			l.modules[dep.Path] = dep.Replace.Version
			continue
		}
		l.modules[dep.Path] = dep.Version
	}
}

// StaticLoader resolves modules from a fixed path -> version table.
// An empty version string simulates a module that exposes no version.
type StaticLoader map[string]string

// Load implements Loader.
func (s StaticLoader) Load(path string) (*Module, error) {
	version, ok := s[path]
	if !ok {
		return nil, &cxn.DependencyError{Module: path, Reason: cxn.ErrModuleNotInstalled}
	}
	if version == "" {
		return nil, &cxn.DependencyError{Module: path, Reason: cxn.ErrVersionUnknown}
	}
	return &Module{Path: path, Version: version}, nil
}

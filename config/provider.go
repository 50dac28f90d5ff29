package config

import (
	"context"
	"net"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Reference prefixes of the standard providers.
const (
	PrefixEnv    = "ENV"
	PrefixSysEnv = "SYSENV"
	PrefixConfig = "CONFIG"
)

// LookupEnvFunc looks up an environment variable.
type LookupEnvFunc func(key string) (string, bool)

// EnvProvider resolves $ENV{name} from the process environment.
type EnvProvider struct {
	lookup LookupEnvFunc
}

// NewEnvProvider returns an EnvProvider using lookup, or [os.LookupEnv] if
// lookup is nil.
func NewEnvProvider(lookup LookupEnvFunc) *EnvProvider {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	return &EnvProvider{lookup: lookup}
}

// Prefix implements [Provider].
func (p *EnvProvider) Prefix() string { return PrefixEnv }

// Resolve implements [Provider].
func (p *EnvProvider) Resolve(_ context.Context, name string) (string, error) {
	if v, ok := p.lookup(name); ok {
		return v, nil
	}

	return "", ErrUnresolved
}

// SysEnvProvider resolves $SYSENV{name} from facts about the host.
//
// Supported names: cwd, numproc, hostname, domainname, osname, arch, pid,
// user, homedir, tempdir.
type SysEnvProvider struct{}

// sysEnvNames lists the names served by SysEnvProvider.
var sysEnvNames = []string{
	"arch", "cwd", "domainname", "homedir", "hostname",
	"numproc", "osname", "pid", "tempdir", "user",
}

// Prefix implements [Provider].
func (SysEnvProvider) Prefix() string { return PrefixSysEnv }

// Names implements [Suggester].
func (SysEnvProvider) Names() []string { return append([]string(nil), sysEnvNames...) }

// Resolve implements [Provider].
func (SysEnvProvider) Resolve(ctx context.Context, name string) (string, error) {
	switch name {
	case "cwd":
		return os.Getwd()

	case "numproc":
		return strconv.Itoa(runtime.NumCPU()), nil

	case "hostname":
		return os.Hostname()

	case "domainname":
		return domainName(ctx)

	case "osname":
		return runtime.GOOS, nil

	case "arch":
		return runtime.GOARCH, nil

	case "pid":
		return strconv.Itoa(os.Getpid()), nil

	case "user":
		u, err := user.Current()
		if err != nil {
			return "", err
		}

		return u.Username, nil

	case "homedir":
		return os.UserHomeDir()

	case "tempdir":
		return os.TempDir(), nil
	}

	return "", ErrUnresolved
}

// domainLookupTimeout bounds the DNS query made for $SYSENV{domainname}.
const domainLookupTimeout = 2 * time.Second

// domainName returns the fully qualified name of the host, falling back to
// the plain host name when it cannot be resolved before ctx is done or
// [domainLookupTimeout] elapses.
func domainName(ctx context.Context) (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, domainLookupTimeout)
	defer cancel()

	cname, err := net.DefaultResolver.LookupCNAME(ctx, host)
	if err != nil || cname == "" {
		return host, nil
	}

	return strings.TrimSuffix(cname, "."), nil
}

// ConfigProvider resolves $CONFIG{key} from values already committed to a
// store.
type ConfigProvider struct {
	store Store
}

// NewConfigProvider returns a ConfigProvider reading from store.
func NewConfigProvider(store Store) *ConfigProvider {
	return &ConfigProvider{store: store}
}

// Prefix implements [Provider].
func (p *ConfigProvider) Prefix() string { return PrefixConfig }

// Names implements [Suggester] when the store can enumerate its keys.
func (p *ConfigProvider) Names() []string {
	if k, ok := p.store.(interface{ Keys() []string }); ok {
		return k.Keys()
	}

	return nil
}

// Resolve implements [Provider].
func (p *ConfigProvider) Resolve(_ context.Context, name string) (string, error) {
	if v, ok := p.store.Get(name); ok {
		return v, nil
	}

	return "", ErrUnresolved
}

// ProviderFunc adapts a function to [Provider].
type ProviderFunc struct {
	Name string
	Func func(ctx context.Context, name string) (string, error)
}

// Prefix implements [Provider].
func (p ProviderFunc) Prefix() string { return p.Name }

// Resolve implements [Provider].
func (p ProviderFunc) Resolve(ctx context.Context, name string) (string, error) {
	return p.Func(ctx, name)
}

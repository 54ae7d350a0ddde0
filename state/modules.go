package state

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"apx/common"
	"apx/locate"
)

// Resolver is satisfied by *locate.Locator.
type Resolver interface {
	Resolve(ctx context.Context, req locate.Request) (string, bool, error)
}

// ModuleLocator is what program needs from *locate.Locator.
type ModuleLocator interface {
	Resolver
	Candidates(ctx context.Context, workspaceRoot string) ([]string, error)
}

// NotInstalledError is returned when module could not be found in any of the
// candidate locations.
type NotInstalledError struct {
	Module string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("failed to load %[1]s library, please install %[1]s in your workspace folder using 'npm install %[1]s' or globally using 'npm install -g %[1]s'", e.Module)
}

// ModuleCache remembers resolved module locations for the lifetime of the
// process. With ResolvePolicyOnce a module is probed until first success, with
// ResolvePolicyAlways every call goes to the locator.
type ModuleCache struct {
	mu     sync.Mutex
	policy common.ResolvePolicy
	paths  map[string]string
}

func NewModuleCache(policy common.ResolvePolicy) *ModuleCache {
	return &ModuleCache{
		policy: policy,
		paths:  make(map[string]string),
	}
}

// SetPolicy changes policy, already cached locations are kept.
func (c *ModuleCache) SetPolicy(policy common.ResolvePolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = policy
}

// Resolve finds module using r. Not found result is reported as
// *NotInstalledError and is never cached.
func (c *ModuleCache) Resolve(ctx context.Context, r Resolver, req locate.Request, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Lock is held while locator runs (including package manager query), so
	// concurrent callers are serialized and the global prefix is queried once.
	// Stylesheets are processed sequentially so nobody waits in practice.
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(req.ShortCircuit) == 0 && c.policy == common.ResolvePolicyOnce {
		if p, ok := c.paths[req.Module]; ok {
			log.Debug("Using cached module location", zap.String("module", req.Module), zap.String("path", p))
			req.ShortCircuit = p
		}
	}

	p, found, err := r.Resolve(ctx, req)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", req.Module, err)
	}
	if !found {
		return "", &NotInstalledError{Module: req.Module}
	}
	c.paths[req.Module] = p
	return p, nil
}

package platform

import "sync"

type registration struct {
	compat string
	p      Platform
}

var (
	registryLock sync.Mutex
	registry     []registration
)

// Register is called from init() by each family package.  Registering the
// same compatible string twice is a programming error.
func Register(compat string, p Platform) {
	if compat == "" || p == nil {
		panic("platform: bad registration")
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	for _, r := range registry {
		if r.compat == compat {
			panic("platform: registered twice: " + compat)
		}
	}
	registry = append(registry, registration{compat: compat, p: p})
}

func Lookup(compat string) (Platform, bool) {
	registryLock.Lock()
	defer registryLock.Unlock()
	for _, r := range registry {
		if r.compat == compat {
			return r.p, true
		}
	}
	return nil, false
}

// Match returns the first registered platform whose compatible string is
// among compats.  Registration order decides, not the order of compats.
func Match(compats []string) (string, Platform, bool) {
	registryLock.Lock()
	defer registryLock.Unlock()
	for _, r := range registry {
		for _, c := range compats {
			if c == r.compat {
				return r.compat, r.p, true
			}
		}
	}
	return "", nil, false
}

// Registered lists compatible strings in registration order.
func Registered() []string {
	registryLock.Lock()
	defer registryLock.Unlock()
	result := make([]string, 0, len(registry))
	for _, r := range registry {
		result = append(result, r.compat)
	}
	return result
}

// unregister is for tests that register throwaway platforms.
func unregister(compat string) {
	registryLock.Lock()
	defer registryLock.Unlock()
	for i, r := range registry {
		if r.compat == compat {
			registry = append(registry[:i], registry[i+1:]...)
			return
		}
	}
}

package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultRecycleAfter is the number of renders after which the browser is
// replaced by a fresh instance.
const DefaultRecycleAfter = 75

// browser owns one headless Chrome process. Renders lease the current
// instance; once recycleAfter leases have been handed out the next lease
// launches a replacement, and the old process is killed when its last
// lease is released.
type browser struct {
	bin          string
	noSandbox    bool
	recycleAfter int

	mu     sync.Mutex
	cur    *instance
	closed bool
}

// instance is one launched Chrome process.
type instance struct {
	rod      *rod.Browser
	launcher *launcher.Launcher
	leases   int
	served   int
	retired  bool
}

func newBrowser(bin string, noSandbox bool, recycleAfter int) (*browser, error) {
	b := &browser{
		bin:          bin,
		noSandbox:    noSandbox,
		recycleAfter: recycleAfter,
	}
	if b.recycleAfter <= 0 {
		b.recycleAfter = DefaultRecycleAfter
	}
	inst, err := b.launch()
	if err != nil {
		return nil, err
	}
	b.cur = inst
	return b, nil
}

// acquire leases the current browser. The returned release must be called
// once the render is done.
func (b *browser) acquire() (*rod.Browser, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, fmt.Errorf("browser is closed")
	}

	if b.cur.served >= b.recycleAfter {
		// A failed launch keeps the old instance serving.
		if next, err := b.launch(); err == nil {
			b.retire(b.cur)
			b.cur = next
		}
	}

	inst := b.cur
	inst.leases++
	inst.served++

	var once sync.Once
	release := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			inst.leases--
			if inst.retired && inst.leases == 0 {
				inst.kill()
			}
		})
	}
	return inst.rod, release, nil
}

// retire marks inst for shutdown. Must be called with mu held.
func (b *browser) retire(inst *instance) {
	inst.retired = true
	if inst.leases == 0 {
		inst.kill()
	}
}

func (b *browser) launch() (*instance, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		NoSandbox(b.noSandbox).
		Leakless(true).
		Headless(true)
	if b.bin != "" {
		l = l.Bin(b.bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	r := rod.New().ControlURL(u)
	if err := r.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &instance{rod: r, launcher: l}, nil
}

func (inst *instance) kill() {
	if inst.rod != nil {
		_ = inst.rod.Close()
		inst.rod = nil
	}
	if inst.launcher != nil {
		inst.launcher.Kill()
		inst.launcher = nil
	}
}

// pid returns the launcher process ID of the current instance, 0 if none.
func (b *browser) pid() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cur == nil || b.cur.launcher == nil {
		return 0
	}
	return b.cur.launcher.PID()
}

// close kills the current instance immediately. Leases still held are
// invalidated.
func (b *browser) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.cur != nil {
		b.cur.kill()
	}
}

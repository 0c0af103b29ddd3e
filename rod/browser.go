package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// browser owns headless Chrome processes. A new process is launched every
// maxPages pages; the one it replaces keeps running until its open pages
// are released.
type browser struct {
	mu       sync.Mutex
	current  *instance
	retired  map[*instance]struct{}
	maxPages int
	closed   bool
}

// instance is one Chrome process.
type instance struct {
	rod      *rod.Browser
	launcher *launcher.Launcher
	opened   int
	active   int
}

func launchBrowser(maxPages int) (*browser, error) {
	inst, err := launchInstance()
	if err != nil {
		return nil, err
	}
	return &browser{
		current:  inst,
		retired:  make(map[*instance]struct{}),
		maxPages: maxPages,
	}, nil
}

// acquire returns the browser to open the next page in and a func that must
// be called once that page is closed. When the page budget is spent a new
// process takes over; a failed relaunch keeps the old one.
func (b *browser) acquire() (*rod.Browser, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, fmt.Errorf("browser closed")
	}

	if b.maxPages > 0 && b.current.opened >= b.maxPages {
		if next, err := launchInstance(); err == nil {
			old := b.current
			b.current = next
			if old.active == 0 {
				_ = old.shutdown()
			} else {
				b.retired[old] = struct{}{}
			}
		}
	}

	inst := b.current
	inst.opened++
	inst.active++

	var once sync.Once
	release := func() {
		once.Do(func() { b.release(inst) })
	}
	return inst.rod, release, nil
}

func (b *browser) release(inst *instance) {
	b.mu.Lock()
	defer b.mu.Unlock()

	inst.active--
	if _, ok := b.retired[inst]; ok && inst.active == 0 {
		delete(b.retired, inst)
		_ = inst.shutdown()
	}
}

func launchInstance() (*instance, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

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

func (i *instance) shutdown() error {
	err := i.rod.Close()
	i.launcher.Kill()
	return err
}

// close stops every process, including retired ones with pages still open.
func (b *browser) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	err := b.current.shutdown()
	for inst := range b.retired {
		_ = inst.shutdown()
		delete(b.retired, inst)
	}
	return err
}

func (b *browser) pid() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	return b.current.launcher.PID()
}

// processes returns the number of running browser processes.
func (b *browser) processes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	return 1 + len(b.retired)
}

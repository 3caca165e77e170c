package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/user/avtranscoder/pkg/ports"
)

// dotPrinter prints a dot for every progress notification.
type dotPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	printed bool
}

func (p *dotPrinter) OnProgress(ports.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, ".")
	p.printed = true
}

func (p *dotPrinter) OnError(error) {}

// finish ends the line of dots. It is safe on a nil printer.
func (p *dotPrinter) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed {
		fmt.Fprintln(p.w)
		p.printed = false
	}
}

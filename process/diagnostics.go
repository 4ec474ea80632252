package process

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"sync"

	"cssbust/bust"
)

// diagnostics collects references left untouched by all documents of a run.
type diagnostics struct {
	mu    sync.Mutex
	items []bust.Diagnostic
}

func (d *diagnostics) Report(diag bust.Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, diag)
}

func (d *diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// listing returns tab separated text, one diagnostic per line ordered by
// document. Order inside of a document is the order of references.
func (d *diagnostics) listing() []byte {
	d.mu.Lock()
	items := slices.Clone(d.items)
	d.mu.Unlock()

	slices.SortStableFunc(items, func(a, b bust.Diagnostic) int {
		return cmp.Compare(a.Document, b.Document)
	})

	buf := new(bytes.Buffer)
	for _, it := range items {
		fmt.Fprintf(buf, "%s\t%s\t%s\t%s\t%v\n", it.Kind, it.Document, it.Reference, it.Path, it.Err)
	}
	return buf.Bytes()
}

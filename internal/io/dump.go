package ioutils

import (
	"encoding/json"
	"path/filepath"
)

// Dumper writes raw fetched records to disk for operator diagnostics.
//
// Each record is written to <dir>/<alias>_<pointer>.json. Dump failures
// are swallowed: diagnostics must never affect the pipeline.
type Dumper struct {
	dir string
}

// NewDumper creates a Dumper rooted at dir. An empty dir disables
// dumping entirely.
func NewDumper(dir string) *Dumper {
	return &Dumper{dir: dir}
}

// Enabled reports whether the dumper will write anything.
func (d *Dumper) Enabled() bool {
	return d != nil && d.dir != ""
}

// DumpRecord writes one record keyed by alias and pointer.
func (d *Dumper) DumpRecord(alias, pointer string, record any) {
	d.DumpNamed(SanitizeFileName(alias+"_"+pointer), record)
}

// DumpNamed writes an arbitrary JSON document under the given name
// (without extension).
func (d *Dumper) DumpNamed(name string, doc any) {
	if !d.Enabled() {
		return
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return
	}
	if err := EnsureDir(d.dir); err != nil {
		return
	}
	_ = WriteFile(filepath.Join(d.dir, name+".json"), data)
}

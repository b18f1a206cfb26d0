// Package fingerprint digests custom commands so later runs can tell
// whether a rule changed.
package fingerprint

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/cmdrule/internal/core/ports"
)

var _ ports.Fingerprinter = (*Fingerprinter)(nil)

// Fingerprinter computes XXHash digests of custom commands.
type Fingerprinter struct{}

// New creates a new Fingerprinter.
func New() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint returns a 16-digit hex digest of every field of cc.
// The backtrace is excluded: moving a rule within its file is not a change.
func (f *Fingerprinter) Fingerprint(cc *domain.CustomCommand) string {
	w := &fieldWriter{hasher: xxhash.New()}

	w.strings(cc.Outputs())
	w.strings(cc.Byproducts())
	w.strings(cc.Depends())
	w.optional(cc.MainDependency)

	lines := cc.CommandLines()
	w.count(len(lines))
	for _, line := range lines {
		w.strings(line)
	}

	w.field(cc.WorkingDirectory())
	w.optional(cc.Comment)

	deps := cc.ImplicitDepends()
	w.count(len(deps))
	for _, dep := range deps {
		w.field(dep.Language)
		w.field(dep.Path)
	}

	w.field(cc.Target())
	w.field(cc.Role())
	w.field(cc.Depfile())
	w.field(cc.JobPool())

	flags := []bool{
		cc.EscapeOldStyle(),
		cc.EscapeAllowMakeVars(),
		cc.UsesTerminal(),
		cc.CommandExpandLists(),
		cc.StdPipesUTF8(),
		cc.DependsExplicitOnly(),
		cc.JobserverAware(),
		cc.Codegen(),
	}
	for _, b := range flags {
		w.field(strconv.FormatBool(b))
	}

	for id, status := range cc.Policies().All() {
		w.field(id.String())
		w.field(status.String())
	}

	return fmt.Sprintf("%016x", w.hasher.Sum64())
}

// Key returns a digest of an arbitrary string, used to name store files.
func Key(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// fieldWriter length-prefixes every string and counts every sequence, so no
// two distinct field layouts produce the same byte stream.
type fieldWriter struct {
	hasher *xxhash.Digest
	buf    [binary.MaxVarintLen64]byte
}

func (w *fieldWriter) count(n int) {
	_, _ = w.hasher.Write(binary.AppendUvarint(w.buf[:0], uint64(n)))
}

func (w *fieldWriter) field(s string) {
	w.count(len(s))
	_, _ = w.hasher.WriteString(s)
}

func (w *fieldWriter) strings(strs []string) {
	w.count(len(strs))
	for _, s := range strs {
		w.field(s)
	}
}

// optional distinguishes an absent value from a present empty one.
func (w *fieldWriter) optional(get func() (string, bool)) {
	v, ok := get()
	if !ok {
		_, _ = w.hasher.Write([]byte{0})
		return
	}
	_, _ = w.hasher.Write([]byte{1})
	w.field(v)
}

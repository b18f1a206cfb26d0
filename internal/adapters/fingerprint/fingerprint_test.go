package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/cmdrule/internal/adapters/fingerprint"
	"go.trai.ch/cmdrule/internal/core/domain"
)

func baseRule() *domain.CustomCommand {
	cc := domain.NewSynthesizedCommand()
	cc.SetOutputs([]string{"out.o"})
	cc.SetDepends([]string{"in.c"})
	cc.AppendCommands(domain.CommandLines{domain.NewCommandLine("cc", "-c", "in.c", "-o", "out.o")})
	cc.SetWorkingDirectory("/build")
	return cc
}

func TestFingerprint_Stable(t *testing.T) {
	f := fingerprint.New()
	a, b := baseRule(), baseRule()

	fa := f.Fingerprint(a)
	assert.Len(t, fa, 16)
	assert.Equal(t, fa, f.Fingerprint(b))

	// Provenance does not count.
	b.SetBacktrace(domain.Backtrace{}.Push(domain.Frame{File: domain.NewInternedString("x.yaml"), Line: 9}))
	assert.Equal(t, fa, f.Fingerprint(b))
}

func TestFingerprint_Changes(t *testing.T) {
	f := fingerprint.New()
	base := f.Fingerprint(baseRule())

	tests := []struct {
		name   string
		mutate func(*domain.CustomCommand)
	}{
		{name: "output", mutate: func(cc *domain.CustomCommand) { cc.SetOutput("other.o") }},
		{name: "byproduct", mutate: func(cc *domain.CustomCommand) { cc.SetByproducts([]string{"x.log"}) }},
		{name: "depend appended", mutate: func(cc *domain.CustomCommand) { cc.AppendDepends([]string{"in.h"}) }},
		{name: "empty main dependency", mutate: func(cc *domain.CustomCommand) { cc.SetMainDependency("") }},
		{name: "empty comment", mutate: func(cc *domain.CustomCommand) { cc.SetComment("") }},
		{name: "command split", mutate: func(cc *domain.CustomCommand) {
			cc.SetCommandLines(domain.CommandLines{
				domain.NewCommandLine("cc", "-c"),
				domain.NewCommandLine("in.c", "-o", "out.o"),
			})
		}},
		{name: "implicit depend", mutate: func(cc *domain.CustomCommand) {
			cc.AppendImplicitDepends(domain.ImplicitDepends{{Path: "in.h", Language: "C"}})
		}},
		{name: "working dir", mutate: func(cc *domain.CustomCommand) { cc.SetWorkingDirectory("") }},
		{name: "job pool", mutate: func(cc *domain.CustomCommand) { cc.SetJobPool("link") }},
		{name: "flag", mutate: func(cc *domain.CustomCommand) { cc.SetEscapeOldStyle(false) }},
		{name: "codegen", mutate: func(cc *domain.CustomCommand) { cc.SetCodegen(true) }},
		{name: "policy", mutate: func(cc *domain.CustomCommand) {
			var snap domain.PolicySnapshot
			cc.RecordPolicyValues(snap.With(domain.PolicyDepfileTransform, domain.PolicyOld))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := baseRule()
			tt.mutate(cc)
			assert.NotEqual(t, base, f.Fingerprint(cc))
		})
	}
}

func TestFingerprint_FieldBoundaries(t *testing.T) {
	f := fingerprint.New()

	tests := []struct {
		name string
		a, b func(*domain.CustomCommand)
	}{
		{
			name: "empty argument vs empty invocation",
			a: func(cc *domain.CustomCommand) {
				cc.SetCommandLines(domain.CommandLines{domain.NewCommandLine("echo", "")})
			},
			b: func(cc *domain.CustomCommand) {
				cc.SetCommandLines(domain.CommandLines{domain.NewCommandLine("echo"), domain.NewCommandLine()})
			},
		},
		{
			name: "output moved to byproducts",
			a:    func(cc *domain.CustomCommand) { cc.SetOutputs([]string{"a", "b"}) },
			b: func(cc *domain.CustomCommand) {
				cc.SetOutputs([]string{"a"})
				cc.SetByproducts([]string{"b"})
			},
		},
		{
			name: "empty output vs no output",
			a:    func(cc *domain.CustomCommand) { cc.SetOutputs([]string{""}) },
			b:    func(cc *domain.CustomCommand) { cc.SetOutputs(nil) },
		},
		{
			name: "implicit depend fields shifted",
			a: func(cc *domain.CustomCommand) {
				cc.SetImplicitDepends(domain.ImplicitDepends{{Path: "", Language: "C"}})
				cc.SetWorkingDirectory("x")
			},
			b: func(cc *domain.CustomCommand) {
				cc.SetImplicitDepends(nil)
				cc.SetWorkingDirectory("")
				cc.SetTarget("C")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := domain.NewSynthesizedCommand(), domain.NewSynthesizedCommand()
			tt.a(a)
			tt.b(b)
			assert.False(t, a.Equal(b))
			assert.NotEqual(t, f.Fingerprint(a), f.Fingerprint(b))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, fingerprint.Key("gen"), fingerprint.Key("gen"))
	assert.NotEqual(t, fingerprint.Key("gen"), fingerprint.Key("lib"))
	assert.Len(t, fingerprint.Key(""), 16)
}

package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/cmdrule/internal/app"
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/cmdrule/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader        *mocks.MockRuleLoader
	store         *mocks.MockRecordStore
	generator     *mocks.MockGenerator
	fingerprinter *mocks.MockFingerprinter
	logger        *mocks.MockLogger
	spans         *tracetest.SpanRecorder
	out           *bytes.Buffer
	app           *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	ctrl := gomock.NewController(t)
	f := &fixture{
		loader:        mocks.NewMockRuleLoader(ctrl),
		store:         mocks.NewMockRecordStore(ctrl),
		generator:     mocks.NewMockGenerator(ctrl),
		fingerprinter: mocks.NewMockFingerprinter(ctrl),
		logger:        mocks.NewMockLogger(ctrl),
		spans:         tracetest.NewSpanRecorder(),
		out:           &bytes.Buffer{},
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans))
	f.app = app.New(f.loader, f.store, f.generator, f.fingerprinter, f.logger).
		WithOutput(f.out).
		WithTracer(tp.Tracer("test"))
	return f
}

func (f *fixture) spanNames() []string {
	var names []string
	for _, s := range f.spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func record(target string, outputs []string, depends ...string) *domain.CustomCommand {
	cc := domain.NewCustomCommand(domain.PolicySnapshot{})
	cc.SetTarget(target)
	cc.SetOutputs(outputs)
	cc.SetDepends(depends)
	return cc
}

func TestApp_Inspect_JSON(t *testing.T) {
	f := newFixture(t)

	cc := record("parser", []string{"parser.c"}, "grammar.y")
	cc.SetRole("pre-build")
	cc.SetComment("")
	cc.AppendCommands(domain.CommandLines{domain.NewCommandLine("bison", "grammar.y")})
	f.loader.EXPECT().Load("/work").Return(&domain.RuleSet{Root: "/work", Commands: []*domain.CustomCommand{cc}}, nil)

	err := f.app.Inspect(t.Context(), "/work", app.InspectOptions{Format: "auto"})
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "parser", got[0]["target"])
	assert.Equal(t, "", got[0]["comment"], "a present empty comment is kept")
	assert.NotContains(t, got[0], "mainDependency")
	assert.Equal(t, map[string]any{"CR0001": "NEW", "CR0002": "NEW", "CR0003": "NEW"}, got[0]["policies"])
	assert.Equal(t, true, got[0]["flags"].(map[string]any)["escapeOldStyle"])

	assert.Equal(t, []string{"load", "inspect"}, f.spanNames())
}

func TestApp_Inspect_Text(t *testing.T) {
	f := newFixture(t)

	parser := record("parser", []string{"parser.c"})
	parser.SetRole("pre-build")
	parser.SetMainDependency("grammar.y")
	parser.SetCodegen(true)
	other := record("docs", []string{"index.html"})
	f.loader.EXPECT().Load(".").Return(&domain.RuleSet{Commands: []*domain.CustomCommand{parser, other}}, nil)

	err := f.app.Inspect(t.Context(), ".", app.InspectOptions{Format: "text", Target: "parser"})
	require.NoError(t, err)

	out := f.out.String()
	assert.Contains(t, out, "parser [pre-build]")
	assert.Contains(t, out, `"grammar.y"`)
	assert.Contains(t, out, "escapeOldStyle codegen")
	assert.Contains(t, out, "CR0001=NEW CR0002=NEW CR0003=NEW")
	assert.NotContains(t, out, "docs")
}

func TestApp_Inspect_UnknownFormat(t *testing.T) {
	f := newFixture(t)

	err := f.app.Inspect(t.Context(), ".", app.InspectOptions{Format: "xml"})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnknownOutputFormat.Error())

	ended := f.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestApp_Inspect_LoadError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigNotFound)

	err := f.app.Inspect(t.Context(), ".", app.InspectOptions{Format: "json"})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}

func TestApp_Emit_Stdout(t *testing.T) {
	f := newFixture(t)

	a := record("app", []string{"a.out"}, "b.out")
	b := record("app", []string{"b.out"}, "b.in")
	f.loader.EXPECT().Load(".").Return(&domain.RuleSet{Commands: []*domain.CustomCommand{a, b}}, nil)
	f.generator.EXPECT().Generate(gomock.Any(), f.out, domain.BuildPlan{Rules: []*domain.CustomCommand{b, a}}).Return(nil)

	require.NoError(t, f.app.Emit(t.Context(), ".", app.EmitOptions{Output: "-"}))
}

func TestApp_Emit_CodegenRulesFromGraph(t *testing.T) {
	f := newFixture(t)

	gen := record("gen", []string{"gen.c"}, "gen.in")
	gen.SetCodegen(true)
	use := record("app", []string{"app.o"}, "gen.c")
	f.loader.EXPECT().Load(".").Return(&domain.RuleSet{Commands: []*domain.CustomCommand{use, gen}}, nil)
	f.generator.EXPECT().Generate(gomock.Any(), f.out, domain.BuildPlan{
		Rules:   []*domain.CustomCommand{gen, use},
		Codegen: []*domain.CustomCommand{gen},
	}).Return(nil)

	require.NoError(t, f.app.Emit(t.Context(), ".", app.EmitOptions{}))
}

func TestApp_Emit_File(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()

	cc := record("app", []string{"a.out"})
	f.loader.EXPECT().Load(root).Return(&domain.RuleSet{Root: root, Commands: []*domain.CustomCommand{cc}}, nil)
	f.generator.EXPECT().Generate(gomock.Any(), gomock.Any(), domain.BuildPlan{Rules: []*domain.CustomCommand{cc}}).
		DoAndReturn(func(_ context.Context, w io.Writer, _ domain.BuildPlan) error {
			_, err := io.WriteString(w, "build a.out: phony\n")
			return err
		})
	f.logger.EXPECT().Info("wrote 1 rules to build/rules.ninja")

	require.NoError(t, f.app.Emit(t.Context(), root, app.EmitOptions{Output: "build/rules.ninja"}))

	data, err := os.ReadFile(filepath.Join(root, "build", "rules.ninja"))
	require.NoError(t, err)
	assert.Equal(t, "build a.out: phony\n", string(data))
}

func TestApp_Emit_GraphErrors(t *testing.T) {
	t.Run("duplicate output", func(t *testing.T) {
		f := newFixture(t)
		f.loader.EXPECT().Load(".").Return(&domain.RuleSet{Commands: []*domain.CustomCommand{
			record("a", []string{"gen.h"}),
			record("b", []string{"gen.h"}),
		}}, nil)

		err := f.app.Emit(t.Context(), ".", app.EmitOptions{})
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrDuplicateOutput.Error())
	})

	t.Run("cycle", func(t *testing.T) {
		f := newFixture(t)
		f.loader.EXPECT().Load(".").Return(&domain.RuleSet{Commands: []*domain.CustomCommand{
			record("a", []string{"a"}, "b"),
			record("b", []string{"b"}, "a"),
		}}, nil)

		err := f.app.Emit(t.Context(), ".", app.EmitOptions{})
		require.Error(t, err)
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("missing outputs under OLD policy warns", func(t *testing.T) {
		f := newFixture(t)
		var old domain.PolicySnapshot
		cc := domain.NewCustomCommand(old.With(domain.PolicyRequireOutputs, domain.PolicyOld))
		cc.SetTarget("sync")
		f.loader.EXPECT().Load(".").Return(&domain.RuleSet{Commands: []*domain.CustomCommand{cc}}, nil)
		f.logger.EXPECT().Warn(gomock.Any())
		f.generator.EXPECT().Generate(gomock.Any(), f.out, domain.BuildPlan{Rules: []*domain.CustomCommand{cc}}).Return(nil)

		require.NoError(t, f.app.Emit(t.Context(), ".", app.EmitOptions{}))
	})
}

func TestApp_Snapshot(t *testing.T) {
	f := newFixture(t)

	a1 := record("a", []string{"1"})
	b1 := record("b", []string{"2"})
	a2 := record("a", []string{"3"})
	f.loader.EXPECT().Load(".").Return(&domain.RuleSet{Root: "/r", Commands: []*domain.CustomCommand{a1, b1, a2}}, nil)

	gomock.InOrder(
		f.store.EXPECT().Put("/r", "a", []*domain.CustomCommand{a1, a2}).Return(nil),
		f.store.EXPECT().Put("/r", "b", []*domain.CustomCommand{b1}).Return(nil),
	)
	f.logger.EXPECT().Info("snapshot of 3 rules across 2 targets saved")

	require.NoError(t, f.app.Snapshot(t.Context(), "."))
}

func TestApp_Snapshot_StoreError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(&domain.RuleSet{Commands: []*domain.CustomCommand{record("a", []string{"1"})}}, nil)
	f.store.EXPECT().Put(gomock.Any(), "a", gomock.Any()).Return(errors.New("disk full"))

	err := f.app.Snapshot(t.Context(), ".")
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
}

func TestApp_Diff(t *testing.T) {
	f := newFixture(t)

	storedX := record("t", []string{"x.out"})
	storedX.SetDepfile("old")
	storedY := record("t", []string{"y.out"})
	currentX := record("t", []string{"x.out"})
	currentX.SetDepfile("new")
	currentZ := record("t", []string{"z.out"})
	same := record("u", []string{"u.out"})

	f.loader.EXPECT().Load(".").Return(&domain.RuleSet{
		Root:     "/r",
		Commands: []*domain.CustomCommand{currentX, currentZ, same},
	}, nil)
	f.store.EXPECT().Get("/r", "t").Return([]*domain.CustomCommand{storedX, storedY}, nil)
	f.store.EXPECT().Get("/r", "u").Return([]*domain.CustomCommand{same}, nil)
	f.fingerprinter.EXPECT().Fingerprint(gomock.Any()).
		DoAndReturn(func(cc *domain.CustomCommand) string { return cc.Depfile() }).AnyTimes()

	report, err := f.app.Diff(t.Context(), ".")
	require.NoError(t, err)

	assert.Equal(t, []app.Change{
		{Kind: app.ChangeModified, Target: "t", Rule: "x.out"},
		{Kind: app.ChangeAdded, Target: "t", Rule: "z.out"},
		{Kind: app.ChangeRemoved, Target: "t", Rule: "y.out"},
	}, report.Changes)

	out := f.out.String()
	assert.Contains(t, out, "~ t: x.out")
	assert.Contains(t, out, "+ t: z.out")
	assert.Contains(t, out, "- t: y.out")
	assert.Contains(t, out, "3 rules changed")
}

func TestApp_Diff_NoChanges(t *testing.T) {
	f := newFixture(t)
	cc := record("t", []string{"x.out"})
	f.loader.EXPECT().Load(".").Return(&domain.RuleSet{Commands: []*domain.CustomCommand{cc}}, nil)
	f.store.EXPECT().Get("", "t").Return([]*domain.CustomCommand{cc}, nil)
	f.fingerprinter.EXPECT().Fingerprint(cc).Return("abc").Times(2)

	report, err := f.app.Diff(t.Context(), ".")
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Contains(t, f.out.String(), "rules match the snapshot")
}

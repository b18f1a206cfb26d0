package commands_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cmdrule/cmd/cmdrule/commands"
	"go.trai.ch/cmdrule/internal/app"
	"go.trai.ch/cmdrule/internal/build"
	"go.trai.ch/cmdrule/internal/core/domain"
)

type mockApp struct {
	cwd         string
	inspectOpts app.InspectOptions
	emitOpts    app.EmitOptions
	calls       []string
	report      app.DiffReport
	err         error
}

func (m *mockApp) Inspect(_ context.Context, cwd string, opts app.InspectOptions) error {
	m.calls = append(m.calls, "inspect")
	m.cwd, m.inspectOpts = cwd, opts
	return m.err
}

func (m *mockApp) Emit(_ context.Context, cwd string, opts app.EmitOptions) error {
	m.calls = append(m.calls, "emit")
	m.cwd, m.emitOpts = cwd, opts
	return m.err
}

func (m *mockApp) Snapshot(_ context.Context, cwd string) error {
	m.calls = append(m.calls, "snapshot")
	m.cwd = cwd
	return m.err
}

func (m *mockApp) Diff(_ context.Context, cwd string) (app.DiffReport, error) {
	m.calls = append(m.calls, "diff")
	m.cwd = cwd
	return m.report, m.err
}

type recordingLogs struct {
	json  []bool
	debug []bool
}

func (r *recordingLogs) SetJSON(enable bool) {
	r.json = append(r.json, enable)
}

func (r *recordingLogs) SetDebug(enable bool) {
	r.debug = append(r.debug, enable)
}

type recordingTelemetry struct {
	enabled int
}

func (r *recordingTelemetry) Enable() {
	r.enabled++
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(t.Context())
	return buf.String(), err
}

func TestCommands_Inspect(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "inspect", "--format", "json", "-t", "parser", "-C", "sub")
	require.NoError(t, err)

	assert.Equal(t, []string{"inspect"}, m.calls)
	assert.Equal(t, app.InspectOptions{Format: "json", Target: "parser"}, m.inspectOpts)
	assert.True(t, filepath.IsAbs(m.cwd))
	assert.Equal(t, "sub", filepath.Base(m.cwd))
}

func TestCommands_InspectDefaultsToAuto(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "inspect")
	require.NoError(t, err)
	assert.Equal(t, "auto", m.inspectOpts.Format)
}

func TestCommands_Emit(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "emit", "-o", "build/rules.ninja")
	require.NoError(t, err)
	assert.Equal(t, app.EmitOptions{Output: "build/rules.ninja"}, m.emitOpts)
}

func TestCommands_Snapshot(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshot"}, m.calls)
}

func TestCommands_Diff(t *testing.T) {
	changed := app.DiffReport{Changes: []app.Change{{Kind: app.ChangeAdded, Target: "t", Rule: "x"}}}

	tests := []struct {
		name    string
		report  app.DiffReport
		args    []string
		wantErr error
	}{
		{name: "changes without exit code", report: changed, args: []string{"diff"}},
		{name: "changes with exit code", report: changed, args: []string{"diff", "--exit-code"}, wantErr: domain.ErrRulesChanged},
		{name: "no changes with exit code", args: []string{"diff", "--exit-code"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockApp{report: tt.report}
			_, err := execute(t, m, tt.args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCommands_PropagatesErrors(t *testing.T) {
	m := &mockApp{err: errors.New("simulated error")}
	for _, cmd := range []string{"inspect", "emit", "snapshot", "diff"} {
		t.Run(cmd, func(t *testing.T) {
			_, err := execute(t, m, cmd)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "simulated error")
		})
	}
}

func TestCommands_RejectsArgs(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "emit", "extra")
	require.Error(t, err)
	assert.Empty(t, m.calls)
}

func TestCommands_LogFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		logs := &recordingLogs{}
		cli := commands.New(&mockApp{}, commands.WithLogFormatter(logs))
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"snapshot", "--log-format", "json"})
		require.NoError(t, cli.Execute(t.Context()))
		assert.Equal(t, []bool{true}, logs.json)
	})

	t.Run("unknown", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "snapshot", "--log-format", "xml")
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrUnknownLogFormat.Error())
		assert.Empty(t, m.calls)
	})
}

func TestCommands_Trace(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantDebug   []bool
		wantEnabled int
	}{
		{name: "off by default", args: []string{"emit"}, wantDebug: nil, wantEnabled: 0},
		{name: "enabled", args: []string{"emit", "--trace"}, wantDebug: []bool{true}, wantEnabled: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := &recordingLogs{}
			tel := &recordingTelemetry{}
			cli := commands.New(&mockApp{}, commands.WithLogFormatter(logs), commands.WithTelemetry(tel))
			cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
			cli.SetArgs(tt.args)
			require.NoError(t, cli.Execute(t.Context()))
			assert.Equal(t, tt.wantDebug, logs.debug)
			assert.Equal(t, tt.wantEnabled, tel.enabled)
		})
	}
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "cmdrule version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out)

	out, err = execute(t, &mockApp{}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "cmdrule version "+build.Version)
}

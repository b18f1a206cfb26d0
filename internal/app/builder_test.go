package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cmdrule/internal/app"
	"go.trai.ch/cmdrule/internal/core/domain"
	_ "go.trai.ch/cmdrule/internal/wiring" // Register providers
)

func TestAppWiring(t *testing.T) {
	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
	require.NotNil(t, components.Telemetry)
}

func TestAppWiring_EmitWithRealAdapters(t *testing.T) {
	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)

	root := t.TempDir()
	rulefile := `minimumVersion: "1.6"
rules:
  - target: parser
    outputs: [parser.c]
    depends: [grammar.y]
    commands:
      - [bison, grammar.y]
`
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.YAMLRuleFileName), []byte(rulefile), domain.FilePerm))

	var out bytes.Buffer
	a := components.App.WithOutput(&out)
	require.NoError(t, a.Emit(context.Background(), root, app.EmitOptions{}))

	assert.Contains(t, out.String(), "build parser.c: custom_command_0 grammar.y")
	assert.Contains(t, out.String(), "command = bison grammar.y")
}

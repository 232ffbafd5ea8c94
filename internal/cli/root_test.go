package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	require.NoError(t, err)
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "ensure-indexes")
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	formatFlag := root.PersistentFlags().Lookup("log-format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "", formatFlag.DefValue)
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestServeFlags(t *testing.T) {
	root := NewRootCmd()
	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("port"))
}

func TestVersion(t *testing.T) {
	out, err := executeCommand("version")
	require.NoError(t, err)
	assert.Equal(t, Version, strings.TrimSpace(out))
}

func TestCommandsRejectArgs(t *testing.T) {
	for _, name := range []string{"serve", "ensure-indexes", "version"} {
		t.Run(name, func(t *testing.T) {
			_, err := executeCommand(name, "extra")
			assert.Error(t, err)
		})
	}
}

func TestServeFailsWithoutRequiredConfig(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("AWS_S3_BUCKET", "")

	_, err := executeCommand("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

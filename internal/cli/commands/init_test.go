package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execInitIn runs the init command from inside dir and returns its output.
func execInitIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	cmd := NewInitCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return buf.String(), err
}

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name: "init empty directory",
			wantFiles: []string{
				"fieldlens.yaml",
				".gitignore",
				"workbooks",
				"workbooks/sample.twb",
			},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "fieldlens.yaml"), []byte("existing"), 0600)
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "fieldlens.yaml"), []byte("existing"), 0600)
			},
			args: []string{"--force"},
			wantFiles: []string{
				"fieldlens.yaml",
				"workbooks",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			out, err := execInitIn(t, tmpDir, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err, "init output:\n%s", out)

			for _, f := range tt.wantFiles {
				_, statErr := os.Stat(filepath.Join(tmpDir, f))
				assert.NoError(t, statErr, "expected %q to be created", f)
			}
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "--force flag should exist")
}

func TestInitTargetDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "my-project")

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{target})

	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(filepath.Join(target, "fieldlens.yaml"))
	require.NoError(t, err, "failed to read fieldlens.yaml")

	// The project name comes from the directory name
	assert.Contains(t, string(content), "project_name: my-project")
}

func TestInitCreatesValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := execInitIn(t, tmpDir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(tmpDir, "fieldlens.yaml"))
	require.NoError(t, err, "failed to read fieldlens.yaml")

	for _, expected := range []string{
		"project_name:",
		"workbooks_dir: workbooks",
		"state_path: .fieldlens/catalog.db",
		"strategy: token-scan",
		"output_dir: docs-site",
		"port: 8080",
	} {
		assert.Contains(t, string(content), expected, "config should contain %q", expected)
	}
}

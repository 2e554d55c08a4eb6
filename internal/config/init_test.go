package config

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/temirov/ctxpick/internal/output"
	"github.com/temirov/ctxpick/internal/utils"
)

func TestInitializeConfigurationTargets(t *testing.T) {
	testCases := []struct {
		name         string
		target       InitTarget
		expectedPath string
	}{
		{name: "default_is_local", target: "", expectedPath: filepath.Join(fixtureWorkingDirectory, utils.ConfigFileName)},
		{name: "local", target: InitTargetLocal, expectedPath: filepath.Join(fixtureWorkingDirectory, utils.ConfigFileName)},
		{name: "global", target: InitTargetGlobal, expectedPath: filepath.Join(fixtureHomeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fileSystem := afero.NewMemMapFs()
			path, err := InitializeConfiguration(InitOptions{
				FileSystem:       fileSystem,
				Target:           testCase.target,
				WorkingDirectory: fixtureWorkingDirectory,
				HomeDirectory:    fixtureHomeDirectory,
			})
			if err != nil {
				t.Fatalf("InitializeConfiguration error: %v", err)
			}
			if path != testCase.expectedPath {
				t.Fatalf("expected path %s, got %s", testCase.expectedPath, path)
			}
			content, readErr := afero.ReadFile(fileSystem, path)
			if readErr != nil {
				t.Fatalf("read config: %v", readErr)
			}
			for _, section := range []string{"tree:", "concat:", "browse:"} {
				if !strings.Contains(string(content), section) {
					t.Fatalf("missing %s in configuration:\n%s", section, content)
				}
			}
		})
	}
}

func TestInitializeConfigurationRejectsUnknownTarget(t *testing.T) {
	_, err := InitializeConfiguration(InitOptions{FileSystem: afero.NewMemMapFs(), Target: "remote"})
	if err == nil {
		t.Fatalf("expected error for unknown target")
	}
}

func TestInitializeConfigurationOverwriteRequiresForce(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	path := filepath.Join(fixtureWorkingDirectory, utils.ConfigFileName)
	writeConfigurationFixture(t, fileSystem, path, "existing")
	options := InitOptions{FileSystem: fileSystem, WorkingDirectory: fixtureWorkingDirectory}

	if _, err := InitializeConfiguration(options); err == nil {
		t.Fatalf("expected error when configuration already exists")
	}
	options.Force = true
	if _, err := InitializeConfiguration(options); err != nil {
		t.Fatalf("forced InitializeConfiguration error: %v", err)
	}
	content, _ := afero.ReadFile(fileSystem, path)
	if string(content) == "existing" {
		t.Fatalf("expected configuration to be replaced")
	}
}

func TestInitializedConfigurationLoads(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	if _, err := InitializeConfiguration(InitOptions{FileSystem: fileSystem, WorkingDirectory: fixtureWorkingDirectory}); err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	loaded, err := loadFixtureConfiguration(fileSystem, "")
	if err != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", err)
	}
	if loaded.Browse.Output != utils.DefaultOutputFileName {
		t.Fatalf("expected browse output %q, got %q", utils.DefaultOutputFileName, loaded.Browse.Output)
	}
	if !slices.Equal(loaded.Concat.Extensions, utils.DefaultAllowedExtensions) {
		t.Fatalf("expected default extensions, got %v", loaded.Concat.Extensions)
	}
	if loaded.Concat.Header != output.DefaultHeaderFormat {
		t.Fatalf("expected header %q, got %q", output.DefaultHeaderFormat, loaded.Concat.Header)
	}
	if BoolValue(loaded.Concat.Clipboard, true) || !BoolValue(loaded.Browse.Tokens.Enabled, false) {
		t.Fatalf("unexpected boolean defaults: %+v", loaded)
	}
	if BoolValue(loaded.Tree.Paths.IncludeGit, true) {
		t.Fatalf("expected include_git to load as false")
	}
}

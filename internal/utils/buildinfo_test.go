package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func commitFixture(testingInstance *testing.T, repositoryDirectory string) (*git.Repository, plumbing.Hash) {
	testingInstance.Helper()
	repository, initError := git.PlainInit(repositoryDirectory, false)
	if initError != nil {
		testingInstance.Fatalf("init repository: %v", initError)
	}
	if writeError := os.WriteFile(filepath.Join(repositoryDirectory, "index.ts"), []byte("export {}\n"), 0o644); writeError != nil {
		testingInstance.Fatalf("write file: %v", writeError)
	}
	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		testingInstance.Fatalf("worktree: %v", worktreeError)
	}
	if _, addError := worktree.Add("index.ts"); addError != nil {
		testingInstance.Fatalf("add: %v", addError)
	}
	commitHash, commitError := worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Unix(1700000000, 0)},
	})
	if commitError != nil {
		testingInstance.Fatalf("commit: %v", commitError)
	}
	return repository, commitHash
}

func TestRepositoryVersionOutsideRepository(testingInstance *testing.T) {
	if version := repositoryVersion(testingInstance.TempDir()); version != "" {
		testingInstance.Fatalf("expected empty version, got %q", version)
	}
}

func TestRepositoryVersionUsesAbbreviatedCommit(testingInstance *testing.T) {
	repositoryDirectory := testingInstance.TempDir()
	_, commitHash := commitFixture(testingInstance, repositoryDirectory)

	version := repositoryVersion(repositoryDirectory)
	expected := revisionVersionStart + commitHash.String()[:shortRevisionLength]
	if version != expected {
		testingInstance.Fatalf("expected %q, got %q", expected, version)
	}
}

func TestRepositoryVersionPrefersTagFromNestedDirectory(testingInstance *testing.T) {
	repositoryDirectory := testingInstance.TempDir()
	repository, commitHash := commitFixture(testingInstance, repositoryDirectory)
	if _, tagError := repository.CreateTag("v1.4.0", commitHash, nil); tagError != nil {
		testingInstance.Fatalf("tag: %v", tagError)
	}
	nestedDirectory := filepath.Join(repositoryDirectory, "src", "components")
	if mkdirError := os.MkdirAll(nestedDirectory, 0o755); mkdirError != nil {
		testingInstance.Fatalf("mkdir: %v", mkdirError)
	}

	if version := repositoryVersion(nestedDirectory); version != "v1.4.0" {
		testingInstance.Fatalf("expected tag version, got %q", version)
	}
}

func TestGetApplicationVersionIsNeverEmpty(testingInstance *testing.T) {
	if version := GetApplicationVersion(); strings.TrimSpace(version) == "" {
		testingInstance.Fatalf("expected a version string")
	}
}

package utils

import (
	"runtime/debug"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	unknownVersion       = "unknown"
	developmentVersion   = "(devel)"
	revisionSettingKey   = "vcs.revision"
	shortRevisionLength  = 7
	revisionVersionStart = "dev-"
)

// GetApplicationVersion reports the module version stamped by the Go toolchain.
// Development builds fall back to the tag at HEAD of the enclosing repository,
// then to the abbreviated commit.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}
	if repositoryVersionValue := repositoryVersion("."); repositoryVersionValue != "" {
		return repositoryVersionValue
	}
	if buildInfoAvailable {
		for _, setting := range buildInfo.Settings {
			if setting.Key == revisionSettingKey && len(setting.Value) >= shortRevisionLength {
				return revisionVersionStart + setting.Value[:shortRevisionLength]
			}
		}
	}
	return unknownVersion
}

// repositoryVersion names HEAD of the repository containing startDirectory.
// It returns an empty string outside a repository or before the first commit.
func repositoryVersion(startDirectory string) string {
	repository, openError := git.PlainOpenWithOptions(startDirectory, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return ""
	}
	head, headError := repository.Head()
	if headError != nil {
		return ""
	}

	tagName := ""
	tags, tagsError := repository.Tags()
	if tagsError == nil {
		_ = tags.ForEach(func(reference *plumbing.Reference) error {
			target := reference.Hash()
			if annotated, annotatedError := repository.TagObject(target); annotatedError == nil {
				target = annotated.Target
			}
			if target == head.Hash() {
				tagName = reference.Name().Short()
				return storer.ErrStop
			}
			return nil
		})
	}
	if tagName != "" {
		return tagName
	}
	return revisionVersionStart + head.Hash().String()[:shortRevisionLength]
}

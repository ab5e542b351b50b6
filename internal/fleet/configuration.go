package fleet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	pathutils "gitfleet/internal/utils/path"
)

const (
	baseURLConfigurationKeyConstant           = "base_url"
	checkoutDirectoryConfigurationKeyConstant = "checkout_directory"
	configurationKeyTemplateConstant          = "%s.%s"
	defaultCheckoutDirectoryConstant          = "."
	urlPathSeparatorConstant                  = "/"
	parentDirectoryReferenceConstant          = ".."
	missingCheckoutDirectoryMessageConstant   = "configuration is missing fleet.checkout_directory"
	emptyRepositoryNameMessageConstant        = "configuration lists an empty repository name"
	repositoryNameSeparatorTemplateConstant   = "repository name %q must not contain path separators"
	repositoryNameParentTemplateConstant      = "repository name %q must not reference the parent directory"
	duplicateRepositoryNameTemplateConstant   = "repository name %q is listed more than once"
)

// Configuration describes the repository fleet managed by the CLI.
type Configuration struct {
	BaseURL           string   `mapstructure:"base_url"`
	CheckoutDirectory string   `mapstructure:"checkout_directory"`
	Repositories      []string `mapstructure:"repositories"`
}

// DefaultConfiguration returns the fleet configuration applied before any
// file or environment overrides.
func DefaultConfiguration() Configuration {
	return Configuration{CheckoutDirectory: defaultCheckoutDirectoryConstant}
}

// DefaultConfigurationValues flattens the default configuration into loader
// defaults keyed beneath the provided root key.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		fmt.Sprintf(configurationKeyTemplateConstant, rootKey, checkoutDirectoryConfigurationKeyConstant): defaults.CheckoutDirectory,
	}
}

// Sanitize normalizes user supplied values, expanding home directory
// shortcuts and trimming stray whitespace.
func (configuration Configuration) Sanitize(homeExpander *pathutils.HomeExpander) Configuration {
	sanitized := configuration
	sanitized.BaseURL = strings.TrimSpace(configuration.BaseURL)
	sanitized.CheckoutDirectory = strings.TrimSpace(configuration.CheckoutDirectory)
	if homeExpander != nil {
		sanitized.CheckoutDirectory = homeExpander.Expand(sanitized.CheckoutDirectory)
	}
	sanitizedRepositories := make([]string, 0, len(configuration.Repositories))
	for _, repositoryName := range configuration.Repositories {
		sanitizedRepositories = append(sanitizedRepositories, strings.TrimSpace(repositoryName))
	}
	sanitized.Repositories = sanitizedRepositories
	return sanitized
}

// Validate ensures the configuration can drive fleet operations. An empty
// repository list is valid, as is an empty base URL since read-only commands
// never construct remote URLs; every listed name must be usable as a
// directory name and appear only once.
func (configuration Configuration) Validate() error {
	if len(configuration.CheckoutDirectory) == 0 {
		return errors.New(missingCheckoutDirectoryMessageConstant)
	}

	seenRepositoryNames := make(map[string]struct{}, len(configuration.Repositories))
	for _, repositoryName := range configuration.Repositories {
		if len(repositoryName) == 0 {
			return errors.New(emptyRepositoryNameMessageConstant)
		}
		if strings.ContainsAny(repositoryName, urlPathSeparatorConstant+string(filepath.Separator)) {
			return fmt.Errorf(repositoryNameSeparatorTemplateConstant, repositoryName)
		}
		if repositoryName == parentDirectoryReferenceConstant {
			return fmt.Errorf(repositoryNameParentTemplateConstant, repositoryName)
		}
		if _, alreadySeen := seenRepositoryNames[repositoryName]; alreadySeen {
			return fmt.Errorf(duplicateRepositoryNameTemplateConstant, repositoryName)
		}
		seenRepositoryNames[repositoryName] = struct{}{}
	}
	return nil
}

// RepositoryURL joins the base URL and a repository name with exactly one
// separator regardless of a trailing slash on the base URL.
func (configuration Configuration) RepositoryURL(repositoryName string) string {
	trimmedBaseURL := strings.TrimRight(configuration.BaseURL, urlPathSeparatorConstant)
	return trimmedBaseURL + urlPathSeparatorConstant + repositoryName
}

// RepositoryPath resolves the local checkout path for a repository name.
func (configuration Configuration) RepositoryPath(repositoryName string) string {
	return filepath.Join(configuration.CheckoutDirectory, repositoryName)
}

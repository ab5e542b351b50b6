package fleet_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gitfleet/internal/fleet"
	pathutils "gitfleet/internal/utils/path"
)

const (
	trailingSlashCaseNameConstant    = "trailing_slash_is_collapsed"
	bareBaseURLCaseNameConstant      = "bare_base_url_gains_separator"
	manySlashesCaseNameConstant      = "repeated_trailing_slashes_collapse"
	validConfigurationCaseName       = "valid_configuration"
	emptyRepositoriesCaseName        = "empty_repository_list_is_valid"
	absentBaseURLCaseName            = "absent_base_url_is_allowed"
	missingCheckoutDirectoryCaseName = "missing_checkout_directory"
	blankRepositoryNameCaseName      = "blank_repository_name"
	slashRepositoryNameCaseName      = "repository_name_with_separator"
	parentRepositoryNameCaseName     = "repository_name_referencing_parent"
	duplicateRepositoryNameCaseName  = "duplicate_repository_name"
	testConfigurationBaseURLConstant = "https://git.example.com/mirrors"
	testCheckoutDirectoryConstant    = "/srv/checkouts"
	testRepositoryNameConstant       = "tooling"
	stubExpanderHomeConstant         = "/stub/home"
	tildeCheckoutDirectoryConstant   = "~/checkouts"
	expandedCheckoutSuffixConstant   = "checkouts"
	separatorRepositoryNameConstant  = "group/tooling"
	paddedRepositoryNameConstant     = " tooling "
	paddedBaseURLConstant            = " https://git.example.com/mirrors "
)

func TestConfigurationRepositoryURL(testInstance *testing.T) {
	testCases := []struct {
		name           string
		baseURL        string
		repositoryName string
		expectedURL    string
	}{
		{
			name:           trailingSlashCaseNameConstant,
			baseURL:        testConfigurationBaseURLConstant + "/",
			repositoryName: testRepositoryNameConstant,
			expectedURL:    testConfigurationBaseURLConstant + "/" + testRepositoryNameConstant,
		},
		{
			name:           bareBaseURLCaseNameConstant,
			baseURL:        testConfigurationBaseURLConstant,
			repositoryName: testRepositoryNameConstant,
			expectedURL:    testConfigurationBaseURLConstant + "/" + testRepositoryNameConstant,
		},
		{
			name:           manySlashesCaseNameConstant,
			baseURL:        testConfigurationBaseURLConstant + "///",
			repositoryName: testRepositoryNameConstant,
			expectedURL:    testConfigurationBaseURLConstant + "/" + testRepositoryNameConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			configuration := fleet.Configuration{BaseURL: testCase.baseURL}
			require.Equal(subtest, testCase.expectedURL, configuration.RepositoryURL(testCase.repositoryName))
		})
	}
}

func TestConfigurationRepositoryPath(testInstance *testing.T) {
	configuration := fleet.Configuration{CheckoutDirectory: testCheckoutDirectoryConstant}
	expectedPath := filepath.Join(testCheckoutDirectoryConstant, testRepositoryNameConstant)
	require.Equal(testInstance, expectedPath, configuration.RepositoryPath(testRepositoryNameConstant))
}

func TestConfigurationSanitize(testInstance *testing.T) {
	stubExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return stubExpanderHomeConstant, nil
	})
	configuration := fleet.Configuration{
		BaseURL:           paddedBaseURLConstant,
		CheckoutDirectory: tildeCheckoutDirectoryConstant,
		Repositories:      []string{paddedRepositoryNameConstant},
	}

	sanitized := configuration.Sanitize(stubExpander)
	require.Equal(testInstance, testConfigurationBaseURLConstant, sanitized.BaseURL)
	require.Equal(testInstance, filepath.Join(stubExpanderHomeConstant, expandedCheckoutSuffixConstant), sanitized.CheckoutDirectory)
	require.Equal(testInstance, []string{testRepositoryNameConstant}, sanitized.Repositories)
}

func TestConfigurationValidate(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration fleet.Configuration
		expectError   bool
	}{
		{
			name: validConfigurationCaseName,
			configuration: fleet.Configuration{
				BaseURL:           testConfigurationBaseURLConstant,
				CheckoutDirectory: testCheckoutDirectoryConstant,
				Repositories:      []string{testRepositoryNameConstant, "dashboards"},
			},
			expectError: false,
		},
		{
			name: emptyRepositoriesCaseName,
			configuration: fleet.Configuration{
				BaseURL:           testConfigurationBaseURLConstant,
				CheckoutDirectory: testCheckoutDirectoryConstant,
			},
			expectError: false,
		},
		{
			name: absentBaseURLCaseName,
			configuration: fleet.Configuration{
				CheckoutDirectory: testCheckoutDirectoryConstant,
				Repositories:      []string{testRepositoryNameConstant},
			},
			expectError: false,
		},
		{
			name: missingCheckoutDirectoryCaseName,
			configuration: fleet.Configuration{
				BaseURL: testConfigurationBaseURLConstant,
			},
			expectError: true,
		},
		{
			name: blankRepositoryNameCaseName,
			configuration: fleet.Configuration{
				BaseURL:           testConfigurationBaseURLConstant,
				CheckoutDirectory: testCheckoutDirectoryConstant,
				Repositories:      []string{""},
			},
			expectError: true,
		},
		{
			name: slashRepositoryNameCaseName,
			configuration: fleet.Configuration{
				BaseURL:           testConfigurationBaseURLConstant,
				CheckoutDirectory: testCheckoutDirectoryConstant,
				Repositories:      []string{separatorRepositoryNameConstant},
			},
			expectError: true,
		},
		{
			name: parentRepositoryNameCaseName,
			configuration: fleet.Configuration{
				BaseURL:           testConfigurationBaseURLConstant,
				CheckoutDirectory: testCheckoutDirectoryConstant,
				Repositories:      []string{".."},
			},
			expectError: true,
		},
		{
			name: duplicateRepositoryNameCaseName,
			configuration: fleet.Configuration{
				BaseURL:           testConfigurationBaseURLConstant,
				CheckoutDirectory: testCheckoutDirectoryConstant,
				Repositories:      []string{testRepositoryNameConstant, testRepositoryNameConstant},
			},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			validationError := testCase.configuration.Validate()
			if testCase.expectError {
				require.Error(subtest, validationError)
				return
			}
			require.NoError(subtest, validationError)
		})
	}
}

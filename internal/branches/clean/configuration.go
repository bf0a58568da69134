package clean

import "strings"

const (
	protectedConfigurationKeySuffixConstant = ".protected"
	ignoreConfigurationKeySuffixConstant    = ".ignore"
)

// CommandConfiguration captures configuration values for the clean command.
type CommandConfiguration struct {
	ProtectedBranches []string `mapstructure:"protected"`
	IgnoredBranches   []string `mapstructure:"ignore"`
	Force             bool     `mapstructure:"force"`
	DryRun            bool     `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides baseline configuration values for clean.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ProtectedBranches: nil,
		IgnoredBranches:   nil,
		Force:             false,
		DryRun:            false,
	}
}

// DefaultConfigurationValues exposes viper defaults under the provided key prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + protectedConfigurationKeySuffixConstant: []string{},
		configurationKeyPrefix + ignoreConfigurationKeySuffixConstant:    []string{},
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ProtectedBranches = sanitizeBranchList(configuration.ProtectedBranches)
	sanitized.IgnoredBranches = sanitizeBranchList(configuration.IgnoredBranches)
	return sanitized
}

func sanitizeBranchList(rawBranchNames []string) []string {
	sanitizedBranchNames := make([]string, 0, len(rawBranchNames))
	for _, candidateBranchName := range rawBranchNames {
		trimmedBranchName := strings.TrimSpace(candidateBranchName)
		if len(trimmedBranchName) == 0 {
			continue
		}
		sanitizedBranchNames = append(sanitizedBranchNames, trimmedBranchName)
	}
	return sanitizedBranchNames
}

package fetch

import "strings"

const (
	remoteConfigurationKeySuffixConstant = ".remote"
	ignoreConfigurationKeySuffixConstant = ".ignore"
)

// CommandConfiguration captures configuration values for the fetch command.
type CommandConfiguration struct {
	RemoteName      string   `mapstructure:"remote"`
	IgnoredBranches []string `mapstructure:"ignore"`
}

// DefaultCommandConfiguration provides baseline configuration values for fetch.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:      "",
		IgnoredBranches: nil,
	}
}

// DefaultConfigurationValues exposes viper defaults under the provided key prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + remoteConfigurationKeySuffixConstant: "origin",
		configurationKeyPrefix + ignoreConfigurationKeySuffixConstant: []string{},
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
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

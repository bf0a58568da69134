package merge

import "strings"

const (
	excludeConfigurationKeySuffixConstant     = ".exclude"
	fastForwardConfigurationKeySuffixConstant = ".fast_forward_only"
)

// CommandConfiguration captures configuration values for the merge command.
type CommandConfiguration struct {
	ExcludedBranches []string `mapstructure:"exclude"`
	FastForwardOnly  bool     `mapstructure:"fast_forward_only"`
}

// DefaultCommandConfiguration provides baseline configuration values for merge.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ExcludedBranches: nil,
		FastForwardOnly:  true,
	}
}

// DefaultConfigurationValues exposes viper defaults under the provided key prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + excludeConfigurationKeySuffixConstant:     []string{},
		configurationKeyPrefix + fastForwardConfigurationKeySuffixConstant: true,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ExcludedBranches = sanitizeBranchList(configuration.ExcludedBranches)
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

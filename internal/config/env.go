package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env is the environment-supplied configuration, read once per invocation.
// The three Android paths form the NDK discovery fallback chain, in order.
type Env struct {
	NDKHome string `env:"ANDROID_NDK_HOME"`
	NDKRoot string `env:"ANDROID_NDK_ROOT"`
	SDKRoot string `env:"ANDROID_SDK_ROOT"`

	GitHubToken string `env:"GITHUB_TOKEN"`
	Repository  string `env:"GITHUB_REPOSITORY"`
}

// ParseEnv reads Env from the process environment.
func ParseEnv() (*Env, error) {
	e := &Env{}
	if err := env.Parse(e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

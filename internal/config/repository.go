package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// RepositoryEnv is the environment variable holding the repository
// coordinate. GitHub Actions sets it to "owner/repo" for every workflow run.
const RepositoryEnv = "GITHUB_REPOSITORY"

// StepSummaryEnv is the environment variable naming the job summary file
// of a GitHub Actions step.
const StepSummaryEnv = "GITHUB_STEP_SUMMARY"

// DefaultDotEnvFile is the dotenv file loaded before reading RepositoryEnv.
const DefaultDotEnvFile = ".env"

// LoadDotEnv loads variables from a dotenv file into the process
// environment. Variables that are already set are left untouched, and a
// missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// ResolveRepository picks the repository coordinate by precedence:
// the --repository flag, then RepositoryEnv, then the config file.
// Blank values are skipped. The result is empty when none is set.
func ResolveRepository(flagValue, fileValue string) string {
	for _, candidate := range []string{flagValue, os.Getenv(RepositoryEnv), fileValue} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return ""
}

// ParseOwner returns the owner segment of a repository coordinate.
// "owner/repo" yields "owner"; a value without a slash is taken as the
// owner itself.
func ParseOwner(coordinate string) (string, error) {
	coordinate = strings.TrimSpace(coordinate)
	if coordinate == "" {
		return "", ErrMissingRepository
	}

	owner, _, _ := strings.Cut(coordinate, "/")
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", ErrInvalidRepository
	}
	return owner, nil
}

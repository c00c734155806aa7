package config

import (
	"os"

	"github.com/joho/godotenv"
)

// FileSystem is the file access the loader needs. Tests substitute a fake.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (osFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver locates the config.yml and .env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles holds the chosen paths. An empty path means none was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles keeps explicit paths from opts and searches for the rest.
// The search runs from the working directory and up to two parents, so a
// binary started from the repo root or from cmd/<service> finds the same
// files.
func (r *Resolver) ResolveFiles(service string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	dirs := searchDirs(service)
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(dirs, "config.yml")
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(dirs, ".env."+service, ".env")
	}
	return files
}

// first returns the first existing name, trying every directory for each
// name before moving to the next.
func (r *Resolver) first(dirs []string, names ...string) string {
	for _, name := range names {
		for _, dir := range dirs {
			if path := dir + "/" + name; r.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

func searchDirs(service string) []string {
	var dirs []string
	for _, up := range []string{".", "..", "../.."} {
		dirs = append(dirs, up+"/cmd/"+service, up+"/config")
	}
	return append(dirs, ".", "..")
}

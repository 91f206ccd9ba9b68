package dataset

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
)

// FileSuffix is appended to the repository name by the mining step.
const FileSuffix = "_repo_analysis.csv"

// Dir is a dataset laid out as one CSV per repository, with an optional
// sibling directory holding the cleaned tables.
type Dir struct {
	DataDir    string
	CleanedDir string
}

var _ contract.DataSource = &Dir{} // Compile-time check

// NewDir returns a DataSource over the given directories.
func NewDir(dataDir, cleanedDir string) *Dir {
	return &Dir{DataDir: dataDir, CleanedDir: cleanedDir}
}

// FileName returns the dataset file name of a repository.
func FileName(repo string) string {
	return repo + FileSuffix
}

// RepoFromFileName extracts the repository name from a dataset file name.
func RepoFromFileName(name string) (string, bool) {
	if !strings.HasSuffix(name, FileSuffix) {
		return "", false
	}
	repo := strings.TrimSuffix(name, FileSuffix)
	return repo, repo != ""
}

// ListRepos implements the DataSource interface.
func (d *Dir) ListRepos() ([]string, error) {
	entries, err := os.ReadDir(d.DataDir)
	if err != nil {
		return nil, err
	}
	var repos []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if repo, ok := RepoFromFileName(e.Name()); ok {
			repos = append(repos, repo)
		}
	}
	return repos, nil
}

// LoadTable implements the DataSource interface.
func (d *Dir) LoadTable(repo string) (*schema.CommitTable, error) {
	return LoadFile(filepath.Join(d.DataDir, FileName(repo)), repo)
}

// LoadCleaned implements the DataSource interface.
// Without a cleaned file the uncleaned table is returned and cleaning happens downstream.
func (d *Dir) LoadCleaned(repo string) (*schema.CommitTable, bool, error) {
	if d.CleanedDir != "" {
		table, err := LoadFile(filepath.Join(d.CleanedDir, FileName(repo)), repo)
		if err == nil {
			return table, true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, err
		}
	}
	table, err := d.LoadTable(repo)
	return table, false, err
}

// Fingerprint implements the DataSource interface.
func (d *Dir) Fingerprint(repo string) (string, error) {
	h := sha256.New()
	paths := []string{filepath.Join(d.DataDir, FileName(repo))}
	if d.CleanedDir != "" {
		paths = append(paths, filepath.Join(d.CleanedDir, FileName(repo)))
	}
	for i, p := range paths {
		err := hashFile(h, p)
		if i > 0 && errors.Is(err, fs.ErrNotExist) {
			_, _ = io.WriteString(h, "no-cleaned-file")
			continue
		}
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}

package addressbook

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Candidate is one database considered by Select.
type Candidate struct {
	Path     string
	Contacts int
	// Err is the open or query failure that made Contacts zero, if any.
	Err error
}

// Selection reports the outcome of Select.
type Selection struct {
	Best       string
	Contacts   int
	Candidates []Candidate
}

// Resolution is a source path resolved to a single database.
//
// Selection is nil when the input was a direct database path.
type Resolution struct {
	Input     Input
	Database  string
	Selection *Selection
}

// Discover returns every AddressBook database under root, in lexical walk
// order. A root without matches yields an empty slice.
//
// A symlinked root is followed; returned paths stay under root as given.
// Subdirectories that cannot be read are skipped and logged.
func Discover(root string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("addressbook: scanning %s failed: %w", root, err)
	}

	paths := make([]string, 0, 4)
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == walkRoot {
				return err
			}
			logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		matched, err := filepath.Match(DatabasePattern, d.Name())
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}
		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.Join(root, rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("addressbook: scanning %s failed: %w", root, err)
	}
	return paths, nil
}

// CountContacts returns the number of qualifying contacts in the database at
// path.
func CountContacts(path string) (int, error) {
	db, err := openDB(path)
	if err != nil {
		return 0, fmt.Errorf("addressbook: %w", err)
	}
	defer db.Close()

	count, err := countContacts(db)
	if err != nil {
		return 0, fmt.Errorf("addressbook: %w", err)
	}
	return count, nil
}

// Select picks the candidate with the most qualifying contacts. Ties keep
// the earliest candidate. Candidates that fail to open or query count as
// zero and are logged.
//
// The returned Selection is populated even when the error is
// ErrorCodeNoContacts, so callers can report per-candidate counts.
func Select(candidates []string, logger *zap.Logger) (Selection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(candidates) == 0 {
		return Selection{}, &Error{Code: ErrorCodeNoDatabase, Message: "no candidate databases"}
	}

	selection := Selection{Candidates: make([]Candidate, 0, len(candidates))}
	for _, path := range candidates {
		count, err := CountContacts(path)
		if err != nil {
			logger.Warn("skipping unreadable database", zap.String("path", path), zap.Error(err))
			count = 0
		} else {
			logger.Debug("counted contacts", zap.String("path", path), zap.Int("contacts", count))
		}
		selection.Candidates = append(selection.Candidates, Candidate{Path: path, Contacts: count, Err: err})

		if count > selection.Contacts {
			selection.Best = path
			selection.Contacts = count
		}
	}

	if selection.Best == "" {
		return selection, &Error{Code: ErrorCodeNoContacts, Message: "no database contains contact records"}
	}
	logger.Info("selected database",
		zap.String("path", selection.Best),
		zap.Int("contacts", selection.Contacts),
		zap.Int("candidates", len(candidates)))
	return selection, nil
}

// Resolve turns a source path into the database to export.
//
// A bundle is searched and the best database selected; a database path is
// used as is. The resolved path must exist.
func Resolve(path string, logger *zap.Logger) (Resolution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	input := Classify(path)
	res := Resolution{Input: input}

	switch input.Kind {
	case InputBundle:
		candidates, err := Discover(input.Path, logger)
		if err != nil {
			return res, &Error{Code: ErrorCodeNoDatabase, Message: fmt.Sprintf("searching %s", input.Path), Err: err}
		}
		if len(candidates) == 0 {
			return res, &Error{Code: ErrorCodeNoDatabase, Message: fmt.Sprintf("no AddressBook database found in %s", input.Path)}
		}
		logger.Debug("discovered databases", zap.String("bundle", input.Path), zap.Strings("paths", candidates))

		selection, err := Select(candidates, logger)
		res.Selection = &selection
		if err != nil {
			return res, err
		}
		res.Database = selection.Best
	case InputDatabase:
		res.Database = input.Path
	default:
		return res, &Error{
			Code:    ErrorCodeUnsupportedInput,
			Message: fmt.Sprintf("input must be either a %s directory or %s database file: %s", BundleExt, DatabaseExt, input.Path),
		}
	}

	if _, err := os.Stat(res.Database); err != nil {
		return res, &Error{Code: ErrorCodeMissingDatabase, Message: fmt.Sprintf("database file not found: %s", res.Database), Err: err}
	}
	return res, nil
}

package addressbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// BundleExt is the extension of an AddressBook export directory.
	BundleExt = ".abbu"
	// DatabaseExt is the extension of an AddressBook sqlite database.
	DatabaseExt = ".abcddb"
	// DatabasePattern matches database base names inside a bundle.
	DatabasePattern = "AddressBook*" + DatabaseExt
)

// ErrorCode classifies pipeline failures.
type ErrorCode string

const (
	// ErrorCodeNoDatabase indicates a bundle holds no database files.
	ErrorCodeNoDatabase ErrorCode = "no_database"
	// ErrorCodeNoContacts indicates no candidate database has qualifying contacts.
	ErrorCodeNoContacts ErrorCode = "no_contacts"
	// ErrorCodeUnsupportedInput indicates the input is neither a bundle nor a database.
	ErrorCodeUnsupportedInput ErrorCode = "unsupported_input"
	// ErrorCodeMissingDatabase indicates the resolved database path does not exist.
	ErrorCodeMissingDatabase ErrorCode = "missing_database"
	// ErrorCodeExtraction indicates a failure while querying or writing rows.
	ErrorCodeExtraction ErrorCode = "extraction"
)

// Error is a typed package error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "addressbook: <nil>"
	}
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if msg == "" {
		return fmt.Sprintf("addressbook: %s", e.Code)
	}
	return fmt.Sprintf("addressbook: %s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "" when
// there is none.
func CodeOf(err error) ErrorCode {
	var typed *Error
	if errors.As(err, &typed) && typed != nil {
		return typed.Code
	}
	return ""
}

// InputKind is the shape of a user-supplied source path.
type InputKind string

const (
	// InputBundle is an ".abbu" export directory.
	InputBundle InputKind = "bundle"
	// InputDatabase is a direct ".abcddb" database path.
	InputDatabase InputKind = "database"
	// InputUnsupported is anything else.
	InputUnsupported InputKind = "unsupported"
)

// Input is a classified source path.
type Input struct {
	Kind InputKind
	Path string
}

// Classify decides how a source path is treated. Only bundles are checked on
// disk; a database path is accepted by extension and its existence is
// verified later by Resolve.
func Classify(path string) Input {
	cleaned := filepath.Clean(path)
	ext := filepath.Ext(cleaned)

	if ext == BundleExt {
		if info, err := os.Stat(cleaned); err == nil && info.IsDir() {
			return Input{Kind: InputBundle, Path: cleaned}
		}
	}
	if ext == DatabaseExt {
		return Input{Kind: InputDatabase, Path: cleaned}
	}
	return Input{Kind: InputUnsupported, Path: cleaned}
}

// Row is one joined result row. Nil fields are SQL NULLs.
type Row struct {
	FirstName *string `db:"first_name"`
	LastName  *string `db:"last_name"`
	Email     *string `db:"email"`
	Phone     *string `db:"phone"`
}

// Record returns the CSV cells for r: NULLs become empty strings and
// surrounding whitespace is stripped.
func (r Row) Record() []string {
	return []string{clean(r.FirstName), clean(r.LastName), clean(r.Email), clean(r.Phone)}
}

func clean(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

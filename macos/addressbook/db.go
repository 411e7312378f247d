package addressbook

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	countContactsSQL = `
SELECT COUNT(*)
FROM ZABCDRECORD
WHERE (ZFIRSTNAME IS NOT NULL OR ZLASTNAME IS NOT NULL);
`

	// Nulls sort first under SQLite's ascending order.
	extractRowsSQL = `
SELECT DISTINCT
	r.ZFIRSTNAME AS first_name,
	r.ZLASTNAME AS last_name,
	e.ZADDRESS AS email,
	p.ZFULLNUMBER AS phone
FROM ZABCDRECORD r
LEFT JOIN ZABCDEMAILADDRESS e ON r.Z_PK = e.ZOWNER
LEFT JOIN ZABCDPHONENUMBER p ON r.Z_PK = p.ZOWNER
WHERE (r.ZFIRSTNAME IS NOT NULL OR r.ZLASTNAME IS NOT NULL)
ORDER BY r.ZLASTNAME, r.ZFIRSTNAME, e.ZADDRESS, p.ZFULLNUMBER;
`
)

var dsnEscaper = strings.NewReplacer("%", "%25", " ", "%20", "?", "%3F", "#", "%23")

// openDB opens an AddressBook database read-only. The caller owns Close.
func openDB(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", dsnEscaper.Replace(path))
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s failed: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database %s failed: %w", path, err)
	}
	return db, nil
}

// queryPath opens the database at path and returns its rows. Errors carry no
// package prefix; callers add it or wrap them in an *Error.
func queryPath(path string) ([]Row, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return queryRows(db)
}

func countContacts(db *sqlx.DB) (int, error) {
	var count int
	if err := db.Get(&count, countContactsSQL); err != nil {
		return 0, fmt.Errorf("counting contacts failed: %w", err)
	}
	return count, nil
}

func queryRows(db *sqlx.DB) ([]Row, error) {
	rows := make([]Row, 0, 64)
	if err := db.Select(&rows, extractRowsSQL); err != nil {
		return nil, fmt.Errorf("querying contacts failed: %w", err)
	}
	return rows, nil
}

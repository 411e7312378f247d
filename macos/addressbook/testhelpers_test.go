package addressbook

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

const fixtureSchemaSQL = `
CREATE TABLE ZABCDRECORD (Z_PK INTEGER PRIMARY KEY, ZFIRSTNAME VARCHAR, ZLASTNAME VARCHAR, ZORGANIZATION VARCHAR);
CREATE TABLE ZABCDEMAILADDRESS (Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZADDRESS VARCHAR);
CREATE TABLE ZABCDPHONENUMBER (Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZFULLNUMBER VARCHAR);
`

type fixtureContact struct {
	First  *string
	Last   *string
	Emails []string
	Phones []string
}

func ptr(s string) *string {
	return &s
}

// writeFixture creates an AddressBook-shaped database at path.
func writeFixture(t *testing.T, path string, contacts ...fixtureContact) string {
	t.Helper()

	be.Err(t, os.MkdirAll(filepath.Dir(path), 0o755), nil)
	db, err := sql.Open("sqlite3", path)
	be.Err(t, err, nil)
	defer db.Close()

	_, err = db.Exec(fixtureSchemaSQL)
	be.Err(t, err, nil)

	for i, contact := range contacts {
		pk := i + 1
		_, err = db.Exec(`INSERT INTO ZABCDRECORD (Z_PK, ZFIRSTNAME, ZLASTNAME) VALUES (?, ?, ?)`, pk, contact.First, contact.Last)
		be.Err(t, err, nil)
		for _, email := range contact.Emails {
			_, err = db.Exec(`INSERT INTO ZABCDEMAILADDRESS (ZOWNER, ZADDRESS) VALUES (?, ?)`, pk, email)
			be.Err(t, err, nil)
		}
		for _, phone := range contact.Phones {
			_, err = db.Exec(`INSERT INTO ZABCDPHONENUMBER (ZOWNER, ZFULLNUMBER) VALUES (?, ?)`, pk, phone)
			be.Err(t, err, nil)
		}
	}
	return path
}

// contactsNamed returns n qualifying contacts without emails or phones.
func contactsNamed(n int) []fixtureContact {
	out := make([]fixtureContact, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fixtureContact{First: ptr(string(rune('A' + i))), Last: ptr("Person")})
	}
	return out
}

func records(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Record())
	}
	return out
}

// Package addressbook reads Apple AddressBook exports and flattens their
// contacts into CSV.
//
// An export is either a bundle directory (".abbu") holding one or more
// embedded databases, or a single database file (".abcddb"). The pipeline is:
//
//	Classify -> Discover -> Select -> Query -> WriteCSV
//
// Resolve runs the first three steps and Export runs the last two.
//
// # Selection
//
// A bundle usually contains a root database plus one per synced source, and
// most of them are empty. Select counts qualifying contacts (first or last
// name present) in every candidate and keeps the first candidate with the
// strictly highest count. A database that cannot be opened or queried counts
// as zero.
//
// # Rows
//
// Query left-joins contacts to their email addresses and phone numbers, so a
// contact with two emails and two phones produces four rows sharing the same
// names. This mirrors the relational result and is not collapsed.
//
// # Errors
//
// Every failure surfaced by Resolve and Export is an *Error carrying an
// ErrorCode. Use CodeOf to branch on the kind:
//
//	res, err := addressbook.Resolve(in, logger)
//	switch addressbook.CodeOf(err) {
//	case addressbook.ErrorCodeNoDatabase, addressbook.ErrorCodeNoContacts:
//		// nothing to export
//	}
//
// Source databases are always opened read-only.
package addressbook

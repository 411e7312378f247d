// Package abbu2csv is a lightweight index for the packages in this module.
//
// This root package is documentation-only. Import specific subpackages to use
// concrete helpers.
//
// Available packages:
//   - github.com/spachava753/abbu2csv/macos/addressbook
//     Locate the populated database inside an AddressBook export and flatten
//     its contacts to CSV.
//   - github.com/spachava753/abbu2csv/gmail
//     Deliver a finished export through Gmail, either sent or saved as a draft.
//   - github.com/spachava753/abbu2csv/cmd/abbu2csv
//     The command line converter.
//
// Discovery workflow:
//   - Run: go doc github.com/spachava753/abbu2csv
//   - Then drill in with:
//     go doc github.com/spachava753/abbu2csv/macos/addressbook
//     go doc github.com/spachava753/abbu2csv/gmail
package abbu2csv

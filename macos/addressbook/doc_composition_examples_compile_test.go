package addressbook_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spachava753/abbu2csv/gmail"
	"github.com/spachava753/abbu2csv/macos/addressbook"
)

func composeExportBundle(bundle string, out string) (int, error) {
	res, err := addressbook.Resolve(bundle, zap.NewNop())
	switch addressbook.CodeOf(err) {
	case "":
	case addressbook.ErrorCodeNoDatabase, addressbook.ErrorCodeNoContacts:
		return 0, nil
	default:
		return 0, err
	}
	return addressbook.Export(res.Database, out)
}

func composeListCandidates(bundle string) ([]string, error) {
	paths, err := addressbook.Discover(bundle, zap.NewNop())
	if err != nil {
		return nil, err
	}
	selection, err := addressbook.Select(paths, nil)
	if err != nil && addressbook.CodeOf(err) != addressbook.ErrorCodeNoContacts {
		return nil, err
	}
	lines := make([]string, 0, len(selection.Candidates))
	for _, candidate := range selection.Candidates {
		lines = append(lines, fmt.Sprintf("%s=%d", filepath.Base(candidate.Path), candidate.Contacts))
	}
	return lines, nil
}

func composeMailExportAsDraft(db string) (string, error) {
	rows, err := addressbook.Query(db)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := addressbook.WriteCSV(&buf, rows); err != nil {
		return "", err
	}
	out, err := gmail.Deliver(gmail.DeliverInput{
		Mode:    gmail.ModeDraft,
		Subject: "Contacts export",
		Body:    fmt.Sprintf("%d rows attached.", len(rows)),
		Attachment: gmail.Attachment{
			Filename:    "contacts.csv",
			ContentType: "text/csv; charset=utf-8",
			Data:        buf.Bytes(),
		},
	})
	if err != nil {
		return "", err
	}
	return out.MessageID, nil
}

func composeExportDirectDatabase(db string) error {
	in := addressbook.Classify(db)
	if in.Kind != addressbook.InputDatabase {
		return fmt.Errorf("not a database: %s", db)
	}
	_, err := addressbook.Export(in.Path, filepath.Join(os.TempDir(), "contacts.csv"))
	return err
}


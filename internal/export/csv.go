package export

import (
	"encoding/csv"
	"io"
	"strings"
)

// WriteCSV writes one row per asset in the column order bulk pin uploaders expect.
func WriteCSV(w io.Writer, assets []Asset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "Description", "Link", "Tags"}); err != nil {
		return err
	}
	for _, a := range assets {
		if err := cw.Write([]string{a.Title, a.Description, a.Link, strings.Join(a.Tags, ",")}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

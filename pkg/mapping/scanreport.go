package mapping

import (
	"path/filepath"
	"strings"

	"github.com/ruslano69/whiterabbit/pkg/report"
)

// FromScanReport builds the source database model of a scan report workbook.
// The database is named after the file.
func FromScanReport(path string) (*Database, error) {
	rep, err := report.Read(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromReport(rep, name), nil
}

// FromReport builds the source database model of a parsed scan report.
func FromReport(rep *report.Report, name string) *Database {
	db := &Database{Name: name, Tables: make([]*Table, 0, len(rep.Tables))}
	for _, rt := range rep.Tables {
		t := &Table{
			Name:             rt.Name,
			Description:      rt.Description,
			RowCount:         rt.RowCount,
			RowsCheckedCount: rt.RowsChecked,
			Fields:           make([]*Field, 0, len(rt.Fields)),
		}
		for _, rf := range rt.Fields {
			f := &Field{
				Name:             rf.Name,
				Type:             rf.Type,
				Description:      rf.Description,
				Nullable:         rf.FractionEmpty > 0,
				MaxLength:        rf.MaxLength,
				RowCount:         rf.RowCount,
				RowsCheckedCount: rf.RowsChecked,
				FractionEmpty:    rf.FractionEmpty,
				UniqueCount:      rf.UniqueCount,
				FractionUnique:   rf.FractionUnique,
			}
			for _, vc := range rf.Values {
				f.ValueCounts = append(f.ValueCounts, ValueCount{Value: vc.Value, Frequency: vc.Count})
			}
			t.Fields = append(t.Fields, f)
		}
		db.Tables = append(db.Tables, t)
	}
	return db
}

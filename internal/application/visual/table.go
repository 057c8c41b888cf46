package visual

import "github.com/doeshing/budgetq/internal/domain"

// Table is the tabular view of the result records.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// BuildTable uses the union of keys across all records, in first-seen order,
// as columns. Fields a record lacks render blank.
func BuildTable(data []domain.Fields) Table {
	var table Table
	if len(data) == 0 {
		return table
	}

	index := map[string]int{}
	for _, record := range data {
		for _, key := range record.Keys() {
			if _, seen := index[key]; seen {
				continue
			}
			index[key] = len(table.Columns)
			table.Columns = append(table.Columns, key)
		}
	}

	table.Rows = make([][]string, len(data))
	for i, record := range data {
		row := make([]string, len(table.Columns))
		for _, field := range record {
			row[index[field.Key]] = domain.FormatValue(field.Value)
		}
		table.Rows[i] = row
	}
	return table
}

// Parameter is one query parameter rendered for display.
type Parameter struct {
	Name  string
	Value string
}

// Parameters lists every query parameter in the order given, unfiltered.
func Parameters(payload domain.ResultPayload) []Parameter {
	out := make([]Parameter, 0, len(payload.QueryParameters))
	for _, field := range payload.QueryParameters {
		out = append(out, Parameter{Name: field.Key, Value: domain.FormatValue(field.Value)})
	}
	return out
}

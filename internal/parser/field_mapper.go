package parser

// FieldMapper 字段映射器：按配置的列名把源表投影为内部字段
type FieldMapper struct {
	source   SourceKind
	mappings []FieldMapping
}

// NewFieldMapper 创建字段映射器
func NewFieldMapper(source SourceKind, mappings []FieldMapping) *FieldMapper {
	return &FieldMapper{
		source:   source,
		mappings: mappings,
	}
}

// RosterMapping 花名册列映射
func RosterMapping(idColumn, nameColumn, lateDaysColumn string) []FieldMapping {
	return []FieldMapping{
		{ColumnName: idColumn, Field: FieldID},
		{ColumnName: nameColumn, Field: FieldName},
		{ColumnName: lateDaysColumn, Field: FieldLateDays},
	}
}

// WrittenMapping Gradescope 列映射
func WrittenMapping(idColumn, latenessColumn, statusColumn string) []FieldMapping {
	return []FieldMapping{
		{ColumnName: idColumn, Field: FieldID},
		{ColumnName: latenessColumn, Field: FieldWritLateness},
		{ColumnName: statusColumn, Field: FieldWritSubmitStatus},
	}
}

// ProgrammingMapping Codio 列映射
func ProgrammingMapping(nameTokenColumn, emailColumn, submitTimeColumn, statusColumn string) []FieldMapping {
	return []FieldMapping{
		{ColumnName: nameTokenColumn, Field: FieldNameToken},
		{ColumnName: emailColumn, Field: FieldEmail},
		{ColumnName: submitTimeColumn, Field: FieldProgSubmitTime},
		{ColumnName: statusColumn, Field: FieldProgSubmitStatus},
	}
}

// Resolve 在表头中定位每个映射列，返回 列索引 -> 映射
func (m *FieldMapper) Resolve(path string, headers []string) (map[int]FieldMapping, error) {
	normalized := make(map[string]int, len(headers))
	for idx, col := range headers {
		key := NormalizeColumnName(col)
		if key == "" {
			continue
		}
		// 重复列名取第一列
		if _, ok := normalized[key]; !ok {
			normalized[key] = idx
		}
	}

	result := make(map[int]FieldMapping, len(m.mappings))
	for _, mapping := range m.mappings {
		idx, ok := normalized[NormalizeColumnName(mapping.ColumnName)]
		if !ok {
			return nil, &MissingColumnError{Source: m.source, Path: path, Column: mapping.ColumnName}
		}
		result[idx] = mapping
	}
	return result, nil
}

// Project 只保留映射列并重命名为内部字段
func (m *FieldMapper) Project(table *Table) ([]Record, error) {
	columns, err := m.Resolve(table.Path, table.Headers)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(table.Rows))
	for rowIdx, row := range table.Rows {
		if isBlankRow(row) {
			continue
		}
		rec := Record{
			RowNo:  rowIdx + 2,
			Fields: make(map[string]string, len(columns)),
		}
		for colIdx, mapping := range columns {
			value := ""
			if colIdx < len(row) {
				value = trimCell(row[colIdx])
			}
			rec.Fields[mapping.Field] = value
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if trimCell(cell) != "" {
			return false
		}
	}
	return true
}

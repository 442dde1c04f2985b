package parser

// RecognitionResult 表头与某一输入源列配置的匹配结果
type RecognitionResult struct {
	Source     SourceKind
	Confidence float64
	Matched    []string
	Missing    []string
}

// SourceRecognizer 根据表头判断文件更像哪一种导出
type SourceRecognizer struct {
	order    []SourceKind
	profiles map[SourceKind][]FieldMapping
}

// NewSourceRecognizer 按给定顺序登记各输入源的列配置
func NewSourceRecognizer() *SourceRecognizer {
	return &SourceRecognizer{profiles: make(map[SourceKind][]FieldMapping)}
}

// Register 登记输入源
func (r *SourceRecognizer) Register(source SourceKind, mappings []FieldMapping) *SourceRecognizer {
	if _, ok := r.profiles[source]; !ok {
		r.order = append(r.order, source)
	}
	r.profiles[source] = mappings
	return r
}

// Score 表头对某一输入源的匹配度
func (r *SourceRecognizer) Score(source SourceKind, headers []string) RecognitionResult {
	result := RecognitionResult{Source: source}
	mappings := r.profiles[source]
	if len(mappings) == 0 {
		return result
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[NormalizeColumnName(h)] = true
	}
	for _, m := range mappings {
		if present[NormalizeColumnName(m.ColumnName)] {
			result.Matched = append(result.Matched, m.ColumnName)
		} else {
			result.Missing = append(result.Missing, m.ColumnName)
		}
	}
	result.Confidence = float64(len(result.Matched)) / float64(len(mappings))
	return result
}

// Recognize 返回匹配度最高的输入源；低于 0.5 视为无法识别
func (r *SourceRecognizer) Recognize(headers []string) (RecognitionResult, bool) {
	var best RecognitionResult
	for _, source := range r.order {
		if res := r.Score(source, headers); res.Confidence > best.Confidence {
			best = res
		}
	}
	return best, best.Confidence >= 0.5
}

package ledger

import "github.com/awissink/latedays/internal/model"

// ValidateRow 对账后校验（仅提示，不阻断导出）
func ValidateRow(r *model.LedgerRow) []string {
	if r == nil {
		return []string{}
	}

	errs := make([]string, 0, 3)

	if r.Budget == nil {
		errs = append(errs, "remaining late days missing in roster")
	} else if *r.Budget < 0 {
		errs = append(errs, "remaining late days is negative")
	}
	if r.WrittenOverride != nil && r.WrittenLateDays > *r.WrittenOverride {
		errs = append(errs, "written late days exceed override")
	}
	if r.ProgrammingOverride != nil && r.ProgrammingLateDays > *r.ProgrammingOverride {
		errs = append(errs, "programming late days exceed override")
	}

	return errs
}

// Violation 某学生的校验结果
type Violation struct {
	Row    *model.LedgerRow
	Errors []string
}

// Validate 校验整张对账表
func Validate(ledger *model.Ledger) []Violation {
	var out []Violation
	for _, r := range ledger.Rows {
		if errs := ValidateRow(r); len(errs) > 0 {
			out = append(out, Violation{Row: r, Errors: errs})
		}
	}
	return out
}

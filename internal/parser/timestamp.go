package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// 依次尝试的时间格式；不带时区的按 TimestampParser.location 解释
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/06 15:04",
	"01-02-06 15:04",
	"2006-01-02",
}

// TimestampParser 提交时间解析器
type TimestampParser struct {
	location *time.Location
}

// NewTimestampParser 创建解析器，location 为导出文件的时区（Codio 为 UTC）
func NewTimestampParser(location *time.Location) *TimestampParser {
	if location == nil {
		location = time.UTC
	}
	return &TimestampParser{location: location}
}

// Parse 解析提交时间；无法解析返回 false（调用方按“未提交”处理）
func (p *TimestampParser) Parse(raw string, fromSpreadsheet bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, p.location); err == nil {
			return t, true
		}
	}

	// 表格来源的日期可能是 Excel 序列号
	if fromSpreadsheet {
		if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= 1 {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), p.location), true
			}
		}
	}

	return time.Time{}, false
}

package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	latenessRe   = regexp.MustCompile(`^(?:(-?\d+)\s*days?,?\s*)?([-+])?(\d+):(\d{1,2}):(\d{1,2}(?:\.\d+)?)$`)
)

// maxLatenessHours 保证换算成 time.Duration 时不溢出（留出分秒余量）
const maxLatenessHours = math.MaxInt64/int64(time.Hour) - 1

// NormalizeColumnName 规范化列名：去掉 BOM 和全部空白并转小写
func NormalizeColumnName(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.TrimSpace(name)
	name = whitespaceRe.ReplaceAllString(name, "")
	return strings.ToLower(name)
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}

// ParseLateness 解析 Gradescope 的 "H:M:S"（小时可超过 24）
// 也接受 "N days HH:MM:SS" 前缀；空字符串返回 nil
func ParseLateness(s string) (*time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}

	m := latenessRe.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}

	var days int64
	if m[1] != "" {
		var err error
		if days, err = strconv.ParseInt(m[1], 10, 64); err != nil {
			return nil, false
		}
	}
	hours, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil || hours > maxLatenessHours {
		return nil, false
	}
	if days > maxLatenessHours/24 || days < -maxLatenessHours/24 {
		return nil, false
	}
	if total := days*24 + hours; total > maxLatenessHours || total < -maxLatenessHours {
		return nil, false
	}
	minutes, _ := strconv.ParseInt(m[4], 10, 64)
	seconds, _ := strconv.ParseFloat(m[5], 64)
	if minutes >= 60 || seconds >= 60 {
		return nil, false
	}

	clock := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(math.Round(seconds*float64(time.Second)))
	if m[2] == "-" {
		clock = -clock
	}
	d := time.Duration(days)*24*time.Hour + clock
	return &d, true
}

// ParseBudget 解析剩余 late day（兼容 "5.0" 这类导出格式）；空单元格返回 nil
func ParseBudget(s string) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	s = strings.ReplaceAll(s, ",", "")
	if i, err := strconv.Atoi(s); err == nil {
		return &i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	i := int(math.Floor(f))
	return &i, true
}

// ParseBool 解析 TRUE/FALSE 类字段；无法识别返回 nil
func ParseBool(s string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		v = true
	case "false", "f", "no", "n", "0":
		v = false
	default:
		return nil
	}
	return &v
}

// FormatDuration 输出为 "H:MM:SS"（小时不折算成天）
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int64(d / time.Second)
	return sign + strconv.FormatInt(total/3600, 10) + ":" +
		pad2(total%3600/60) + ":" + pad2(total%60)
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
